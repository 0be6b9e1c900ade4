package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/swapbook/swapbook/backend/config"
	webmodels "github.com/swapbook/swapbook/backend/models"
	"github.com/swapbook/swapbook/backend/utils"
	"github.com/swapbook/swapbook/swapbook/database"
	"github.com/swapbook/swapbook/swapbook/database/repositories"
	"github.com/swapbook/swapbook/swapbook/notify"
	"github.com/swapbook/swapbook/swapbook/query"
	"github.com/swapbook/swapbook/swapbook/swaps"
)

// WebApp represents the web application with all dependencies
type WebApp struct {
	Config  *config.WebAppConfig
	DB      *database.DB
	Engine  *swaps.Engine
	Query   *query.Service
	Inbox   *notify.Inbox
	Version string
	Commit  string
}

// HealthCheck reports process and database reachability.
func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(webApp.Version, webApp.Commit)

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		start := time.Now()
		if err := webApp.DB.Ping(ctx); err != nil {
			health.AddComponent("database", "unhealthy", err.Error(), nil)
		} else {
			health.AddComponent("database", "healthy", "", map[string]interface{}{
				"latency_ms": time.Since(start).Milliseconds(),
				"postgres":   webApp.DB.IsPostgres(),
			})
		}

		if health.Status != "healthy" {
			slog.Warn("Health check failed",
				slog.String("type", "http"),
				slog.Any("components", health.Components),
			)
			return utils.SendJSON(c, http.StatusServiceUnavailable, webmodels.NewErrorResponse("UNHEALTHY", "Health check failed", nil))
		}
		return utils.SendSuccess(c, health, "Health check successful")
	}
}

// sendReadError maps read-path failures: a repository miss is a 404,
// anything else an internal error.
func sendReadError(c *fiber.Ctx, err error) error {
	if repositories.IsNotFound(err) {
		return utils.SendNotFound(c, err.Error())
	}
	return utils.SendEngineError(c, err)
}

// bindBody parses the JSON body. On failure it has already answered 400 and
// reports false.
func bindBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, utils.SendBadRequest(c, "Invalid request body", map[string]string{"body": err.Error()})
	}
	return true, nil
}
