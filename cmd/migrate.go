package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/swapbook/swapbook/swapbook/database"
	"github.com/swapbook/swapbook/swapbook/logger"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "create tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig("swapbook-migrate")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		start := time.Now()

		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			logger.LogError("Failed to connect to database", err)
			return err
		}
		defer db.Close()

		if err := db.InitializeSchema(ctx); err != nil {
			logger.LogError("Migration failed", err)
			return err
		}

		logger.LogSystem("Migration completed",
			slog.String("driver", cfg.DB.Driver),
			slog.Duration("took", time.Since(start)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCMD)
}
