package handlers

import (
	"github.com/gofiber/fiber/v2"

	webmodels "github.com/swapbook/swapbook/backend/models"
	"github.com/swapbook/swapbook/backend/utils"
	"github.com/swapbook/swapbook/swapbook/config"
	"github.com/swapbook/swapbook/swapbook/swaps"
)

func sendResult(c *fiber.Ctx, result *swaps.Result, err error, created bool) error {
	if err != nil {
		return utils.SendEngineError(c, err)
	}
	if created {
		return utils.SendCreated(c, result, result.Message)
	}
	return utils.SendSuccess(c, result, result.Message)
}

func CreatePrivateSwap(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body webmodels.CreateSwapBody
		if ok, err := bindBody(c, &body); !ok {
			return err
		}
		result, err := webApp.Engine.CreatePrivate(c.UserContext(), body.ToRequest())
		return sendResult(c, result, err, true)
	}
}

func CreateOpenSwap(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body webmodels.CreateSwapBody
		if ok, err := bindBody(c, &body); !ok {
			return err
		}
		result, err := webApp.Engine.CreateOpen(c.UserContext(), body.ToRequest())
		return sendResult(c, result, err, true)
	}
}

func ProposeOffer(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		openTradeID, verrs := utils.ParseIDParam(c, "open_trade_id")
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		var body webmodels.ProposeBody
		if ok, err := bindBody(c, &body); !ok {
			return err
		}
		result, err := webApp.Engine.Propose(c.UserContext(), body.ToRequest(openTradeID))
		return sendResult(c, result, err, true)
	}
}

func CounterOffer(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, verrs := utils.ParseIDParam(c, "id")
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		var body webmodels.CounterBody
		if ok, err := bindBody(c, &body); !ok {
			return err
		}
		result, err := webApp.Engine.Counter(c.UserContext(), body.ToRequest(id))
		return sendResult(c, result, err, true)
	}
}

func AcceptSwap(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, verrs := utils.ParseIDParam(c, "id")
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		var body webmodels.AcceptBody
		if ok, err := bindBody(c, &body); !ok {
			return err
		}
		result, err := webApp.Engine.Accept(c.UserContext(), body.ToRequest(id))
		return sendResult(c, result, err, false)
	}
}

func RejectSwap(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, verrs := utils.ParseIDParam(c, "id")
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		var body webmodels.SignBody
		if ok, err := bindBody(c, &body); !ok {
			return err
		}
		result, err := webApp.Engine.Reject(c.UserContext(), swaps.RejectRequest{ID: id, SignMessage: body.SignMessage})
		return sendResult(c, result, err, false)
	}
}

func CancelOpenSwap(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, ok, err := cancelOpenRequest(c)
		if !ok {
			return err
		}
		result, err := webApp.Engine.CancelOpen(c.UserContext(), req)
		return sendResult(c, result, err, false)
	}
}

func CloseOpenSwapOffers(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, ok, err := cancelOpenRequest(c)
		if !ok {
			return err
		}
		result, err := webApp.Engine.CloseOpenSwapOffers(c.UserContext(), req)
		return sendResult(c, result, err, false)
	}
}

func cancelOpenRequest(c *fiber.Ctx) (swaps.CancelOpenRequest, bool, error) {
	id, verrs := utils.ParseIDParam(c, "open_trade_id")
	if verrs != nil {
		return swaps.CancelOpenRequest{}, false, utils.HandleValidationErrors(c, verrs)
	}
	var body webmodels.SignBody
	if ok, err := bindBody(c, &body); !ok {
		return swaps.CancelOpenRequest{}, false, err
	}
	return swaps.CancelOpenRequest{OpenTradeID: id, SignMessage: body.SignMessage}, true, nil
}

func CancelPrivateSwap(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body webmodels.SignBody
		if ok, err := bindBody(c, &body); !ok {
			return err
		}
		result, err := webApp.Engine.CancelPrivate(c.UserContext(), swaps.CancelPrivateRequest{
			TradeID:     c.Params("trade_id"),
			SignMessage: body.SignMessage,
		})
		return sendResult(c, result, err, false)
	}
}

func GetSwap(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, verrs := utils.ParseIDParam(c, "id")
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		view, err := webApp.Query.GetByID(c.UserContext(), id)
		if err != nil {
			return sendReadError(c, err)
		}
		return utils.SendSuccess(c, view, swaps.MsgGetSwap)
	}
}

func GetSwapByTradeID(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := webApp.Query.GetByTradeID(c.UserContext(), c.Params("trade_id"))
		if err != nil {
			return sendReadError(c, err)
		}
		return utils.SendSuccess(c, view, swaps.MsgGetSwap)
	}
}

func GetSwapPreferences(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, verrs := utils.ParseIDParam(c, "id")
		if verrs != nil {
			return utils.HandleValidationErrors(c, verrs)
		}
		prefs, err := webApp.Query.SwapPreferences(c.UserContext(), id)
		if err != nil {
			return sendReadError(c, err)
		}
		return utils.SendSuccess(c, fiber.Map{"id": id, "swap_preferences": prefs}, swaps.MsgSwapPreferences)
	}
}

// ListOpenMarket pages the open market, or fuzzy-searches it when q is set.
func ListOpenMarket(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if q := c.Query("q"); q != "" {
			views, err := webApp.Query.Search(c.UserContext(), q, c.QueryInt("limit", config.SearchLimit))
			if err != nil {
				return sendReadError(c, err)
			}
			return utils.SendSuccess(c, views, swaps.MsgSearchSwaps)
		}

		page, limit := utils.ParsePagination(c)
		result, err := webApp.Query.ListOpenMarket(c.UserContext(), page, limit)
		if err != nil {
			return sendReadError(c, err)
		}
		pagination := webmodels.NewPaginationInfo(result.Page, result.Limit, int64(result.Total))
		return utils.SendPaginated(c, result.Items, pagination, swaps.MsgOpenMarketSwaps)
	}
}

func ListPendingSwaps(webApp *WebApp) fiber.Handler {
	return listForAddress(webApp, swaps.MsgPendingSwaps, webApp.Query.ListPending)
}

func ListSwapHistory(webApp *WebApp) fiber.Handler {
	return listForAddress(webApp, swaps.MsgSwapHistory, webApp.Query.ListHistory)
}

func ListMySwaps(webApp *WebApp) fiber.Handler {
	return listForAddress(webApp, swaps.MsgMySwaps, webApp.Query.ListMine)
}
