package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/swapbook/swapbook/backend/models"
	"github.com/swapbook/swapbook/backend/utils"
	"github.com/swapbook/swapbook/swapbook/notify"
	"github.com/swapbook/swapbook/swapbook/query"
	"github.com/swapbook/swapbook/swapbook/swaps"
)

type addressLister func(ctx context.Context, address string) ([]*query.SwapView, error)

func listForAddress(webApp *WebApp, message string, list addressLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address, verrs := utils.ParseAddressParam(c)
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		views, err := list(c.UserContext(), address)
		if err != nil {
			return sendReadError(c, err)
		}
		return utils.SendSuccess(c, views, message)
	}
}

func UnreadNotifications(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address, verrs := utils.ParseAddressParam(c)
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		since, verrs := utils.ParseSince(c)
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}

		rows, err := webApp.Inbox.Unread(c.UserContext(), address, since)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, rows, swaps.MsgNotifications)
	}
}

func NotificationHistory(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address, verrs := utils.ParseAddressParam(c)
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		page, limit := notify.NormalizePage(utils.ParsePagination(c))

		rows, total, err := webApp.Inbox.History(c.UserContext(), address, page, limit)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		pagination := webmodels.NewPaginationInfo(page, limit, int64(total))
		return utils.SendPaginated(c, rows, pagination, swaps.MsgNotificationsHistory)
	}
}

func MarkNotificationRead(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address, verrs := utils.ParseAddressParam(c)
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		ok, err := webApp.Inbox.MarkRead(c.UserContext(), address, c.Params("id"))
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		if !ok {
			return utils.SendNotFound(c, "notification not found")
		}
		return utils.SendSuccess(c, fiber.Map{"id": c.Params("id")}, swaps.MsgNotificationRead)
	}
}

func MarkAllNotificationsRead(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address, verrs := utils.ParseAddressParam(c)
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		n, err := webApp.Inbox.MarkAllRead(c.UserContext(), address)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, fiber.Map{"updated": n}, swaps.MsgNotificationsRead)
	}
}

func DeleteNotification(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address, verrs := utils.ParseAddressParam(c)
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		ok, err := webApp.Inbox.Delete(c.UserContext(), address, c.Params("id"))
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		if !ok {
			return utils.SendNotFound(c, "notification not found")
		}
		return utils.SendSuccess(c, fiber.Map{"id": c.Params("id")}, swaps.MsgNotificationDeleted)
	}
}

func DeleteAllNotifications(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address, verrs := utils.ParseAddressParam(c)
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		n, err := webApp.Inbox.DeleteAll(c.UserContext(), address)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, fiber.Map{"deleted": n}, swaps.MsgNotificationsDeleted)
	}
}

// RecordSubname promotes the address once its first subname is minted.
func RecordSubname(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		address, verrs := utils.ParseAddressParam(c)
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		var body webmodels.SubnameBody
		if ok, err := bindBody(c, &body); !ok {
			return err
		}
		n, err := webApp.Engine.RecordSubname(c.UserContext(), address, body.Subname)
		if err != nil {
			return utils.SendEngineError(c, err)
		}
		return utils.SendSuccess(c, fiber.Map{"address": address, "updated": n}, swaps.MsgSubnameMinted)
	}
}
