package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/bookmarksort/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "bookmarksort",
	Short: "Classify browser bookmarks into categories",
	Long: `bookmarksort parses exported browser bookmark files, classifies every
bookmark by keyword, TF-IDF, folder, domain or live page title, and exports
the result as a bookmark file grouped by category.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		initLogger(cfg.Log)

		cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./bookmarksort.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type contextKey string

const configKey contextKey = "config"

func configFrom(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	// Logs go to stderr so offline commands can pipe their output.
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
