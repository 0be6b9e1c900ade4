package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/swapbook/swapbook/backend"
	webconfig "github.com/swapbook/swapbook/backend/config"
	"github.com/swapbook/swapbook/backend/handlers"
	"github.com/swapbook/swapbook/swapbook/config"
	"github.com/swapbook/swapbook/swapbook/database"
	"github.com/swapbook/swapbook/swapbook/database/repositories"
	"github.com/swapbook/swapbook/swapbook/logger"
	"github.com/swapbook/swapbook/swapbook/notify"
	"github.com/swapbook/swapbook/swapbook/query"
	"github.com/swapbook/swapbook/swapbook/swaps"
	"github.com/swapbook/swapbook/swapbook/usertags"
)

var debug bool

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig("swapbook")
		if err != nil {
			return err
		}
		slog.Info("Starting swapbook",
			slog.String("type", "sys"),
			slog.String("version", version),
			slog.String("commit", commit),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dbStart := time.Now()
		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			logger.LogError("Database connection failed", err, slog.Duration("attempted_for", time.Since(dbStart)))
			return err
		}
		defer db.Close()

		if err = db.InitializeSchema(ctx); err != nil {
			logger.LogError("Failed to initialize database schema", err)
			return err
		}
		logger.LogSystem("Database ready",
			slog.String("driver", cfg.DB.Driver),
			slog.Duration("took", time.Since(dbStart)),
		)

		store := repositories.NewStore(db.BunDB())

		var sinks []notify.Sink
		if cfg.Notify.DiscordWebhookID != "" {
			discordSink, err := notify.NewDiscordSink(cfg.Notify.DiscordWebhookID, cfg.Notify.DiscordWebhookToken)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				discordSink.Close(closeCtx)
			}()
			sinks = append(sinks, discordSink)
		}
		if cfg.Notify.RedisAddr != "" {
			client := notify.NewRedisClient(cfg.Notify.RedisAddr, cfg.Notify.RedisPassword, cfg.Notify.RedisDB)
			defer client.Close()
			sinks = append(sinks, notify.NewRedisSink(client))
		}

		dispatcher := notify.NewDispatcher(cfg.Notify.IsAsync(), cfg.Notify.Timeout)
		engine := swaps.NewEngine(store, notify.NewEmitter(store.Notifications, sinks...), usertags.NewUpdater(), dispatcher)

		querySvc, err := query.NewService(store.Swaps, cfg.Query.CacheSize, cfg.Query.PageSize)
		if err != nil {
			return err
		}

		webCfg := webconfig.NewWebAppConfig(cfg, debug)
		app := backend.NewApp(&handlers.WebApp{
			Config:  webCfg,
			DB:      db,
			Engine:  engine,
			Query:   querySvc,
			Inbox:   notify.NewInbox(store.Notifications),
			Version: version,
			Commit:  commit,
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.LogSystem("HTTP server listening",
				slog.String("address", webCfg.Address()),
				slog.Int("sinks", len(sinks)),
			)
			return app.Listen(webCfg.Address())
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.LogSystem("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		})

		err = g.Wait()
		dispatcher.Wait()
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCMD.Flags().BoolVar(&debug, "debug", false, "run in development mode")
	rootCmd.AddCommand(serveCMD)
}
