package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/bookmarksort/api"
	"github.com/use-agent/bookmarksort/cache"
	"github.com/use-agent/bookmarksort/metrics"
	"github.com/use-agent/bookmarksort/storage"
	"github.com/use-agent/bookmarksort/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFrom(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("bookmarksort starting",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"mode", cfg.Server.Mode,
			"engine", cfg.Fetch.Engine,
		)

		// ── 1. Storage and cache ────────────────────────────────────
		store, err := storage.New(cfg.Storage.UploadDir, cfg.Storage.MaxUploadBytes)
		if err != nil {
			return err
		}
		cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
		defer cc.Stop()

		// ── 2. Fetch engine and classifier ──────────────────────────
		eng, closeEngine, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer closeEngine()

		m := metrics.New()
		cl, err := buildClassifier(cfg, eng, m, "")
		if err != nil {
			return err
		}

		// ── 3. Router ───────────────────────────────────────────────
		router := api.NewRouter(api.Deps{
			Config:     cfg,
			Store:      store,
			Cache:      cc,
			Classifier: cl,
			Notifier:   webhook.New(cfg.Webhook.Timeout),
			Metrics:    m,
			StartTime:  time.Now(),
		})

		// ── 4. HTTP server ──────────────────────────────────────────
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("HTTP server listening", "addr", addr, "upload_dir", store.Dir())
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		// ── 5. Graceful shutdown ────────────────────────────────────
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			slog.Info("shutdown signal received", "signal", sig.String())
		case err := <-errCh:
			return fmt.Errorf("HTTP server error: %w", err)
		}

		// Give in-flight requests 5 seconds to complete.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("HTTP server forced shutdown", "error", err)
		} else {
			slog.Info("HTTP server drained gracefully")
		}

		slog.Info("bookmarksort stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
