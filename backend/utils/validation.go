package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/swapbook/swapbook/backend/models"
)

// ParseIDParam reads a positive integer route parameter.
func ParseIDParam(c *fiber.Ctx, name string) (int64, []models.ValidationError) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, []models.ValidationError{{
			Field:       name,
			Description: "must be a positive integer",
		}}
	}
	return id, nil
}

// ParseAddressParam reads a non-empty address route parameter.
func ParseAddressParam(c *fiber.Ctx) (string, []models.ValidationError) {
	address := strings.TrimSpace(c.Params("address"))
	if address == "" {
		return "", []models.ValidationError{{
			Field:       "address",
			Description: "is required",
		}}
	}
	return address, nil
}

// ParsePagination reads page and limit query values. Missing or malformed
// values fall back to zero and are normalized by the caller.
func ParsePagination(c *fiber.Ctx) (page, limit int) {
	return c.QueryInt("page", 1), c.QueryInt("limit", 0)
}

// ParseSince reads the optional RFC3339 `since` query value.
func ParseSince(c *fiber.Ctx) (time.Time, []models.ValidationError) {
	raw := c.Query("since")
	if raw == "" {
		return time.Time{}, nil
	}
	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, []models.ValidationError{{
			Field:       "since",
			Description: "must be an RFC3339 timestamp",
		}}
	}
	return since, nil
}
