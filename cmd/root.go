package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/swapbook/swapbook/swapbook"
	"github.com/swapbook/swapbook/swapbook/logger"
)

var (
	version = "dev"
	commit  = "unknown"

	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "swapbook",
	Short:         "P2P asset swap matchmaking backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to config")
}

// Execute runs the root command and exits non-zero on failure.
func Execute(buildVersion, buildCommit string) {
	version, commit = buildVersion, buildCommit
	rootCmd.Version = version

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Command failed", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(1)
	}
}

// loadConfig reads the config and installs the process logger.
func loadConfig(prefix string) (*swapbook.Config, error) {
	slog.SetDefault(slog.New(logger.NewHandler(prefix)))

	cfg, err := swapbook.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: cfg.Log.Level, AddSource: cfg.Log.AddSource}
	if cfg.Log.Format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
	} else {
		slog.SetDefault(slog.New(logger.NewHandlerWithOptions(prefix, os.Stdout, opts)))
	}
	return cfg, nil
}
