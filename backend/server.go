package backend

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/swapbook/swapbook/backend/handlers"
	"github.com/swapbook/swapbook/backend/middleware"
	"github.com/swapbook/swapbook/backend/utils"
)

// NewApp builds the fiber application with global middleware and routes.
func NewApp(webApp *handlers.WebApp) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "swapbook API",
		ServerHeader:          "swapbook",
		ErrorHandler:          middleware.CustomErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: webApp.Config.AllowOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(middleware.LoggingMiddleware())

	web := webApp.Config.GetWebConfig()
	limiter := middleware.NewRateLimiter(web.RateLimit, web.RateWindow)
	stop := make(chan struct{})
	go limiter.Run(stop)
	app.Hooks().OnShutdown(func() error {
		close(stop)
		return nil
	})

	SetupRoutes(app, webApp, middleware.RateLimit(limiter))
	return app
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, webApp *handlers.WebApp, limit fiber.Handler) {
	app.Get("/health", handlers.HealthCheck(webApp))

	api := app.Group("/api", limit)

	// static segments are registered ahead of /:id
	swaps := api.Group("/swaps")
	swaps.Post("/private", handlers.CreatePrivateSwap(webApp))
	swaps.Post("/private/:trade_id/cancel", handlers.CancelPrivateSwap(webApp))
	swaps.Post("/open", handlers.CreateOpenSwap(webApp))
	swaps.Get("/open", handlers.ListOpenMarket(webApp))
	swaps.Post("/open/:open_trade_id/offers", handlers.ProposeOffer(webApp))
	swaps.Post("/open/:open_trade_id/cancel", handlers.CancelOpenSwap(webApp))
	swaps.Post("/open/:open_trade_id/close", handlers.CloseOpenSwapOffers(webApp))
	swaps.Get("/trade/:trade_id", handlers.GetSwapByTradeID(webApp))
	swaps.Get("/:id", handlers.GetSwap(webApp))
	swaps.Get("/:id/preferences", handlers.GetSwapPreferences(webApp))
	swaps.Post("/:id/counter", handlers.CounterOffer(webApp))
	swaps.Post("/:id/accept", handlers.AcceptSwap(webApp))
	swaps.Post("/:id/reject", handlers.RejectSwap(webApp))

	users := api.Group("/users/:address")
	users.Get("/swaps/pending", handlers.ListPendingSwaps(webApp))
	users.Get("/swaps/history", handlers.ListSwapHistory(webApp))
	users.Get("/swaps/mine", handlers.ListMySwaps(webApp))
	users.Get("/notifications", handlers.UnreadNotifications(webApp))
	users.Get("/notifications/history", handlers.NotificationHistory(webApp))
	users.Post("/notifications/read", handlers.MarkAllNotificationsRead(webApp))
	users.Post("/notifications/:id/read", handlers.MarkNotificationRead(webApp))
	users.Delete("/notifications", handlers.DeleteAllNotifications(webApp))
	users.Delete("/notifications/:id", handlers.DeleteNotification(webApp))
	users.Post("/subname", handlers.RecordSubname(webApp))

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return utils.SendNotFound(c, "The requested endpoint does not exist")
	})
}
