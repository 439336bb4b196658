package main

import (
	"fmt"
	"log/slog"

	"github.com/use-agent/bookmarksort/category"
	"github.com/use-agent/bookmarksort/classify"
	"github.com/use-agent/bookmarksort/config"
	"github.com/use-agent/bookmarksort/crawl"
	"github.com/use-agent/bookmarksort/engine"
	"github.com/use-agent/bookmarksort/metrics"
)

// buildEngine assembles the fetch engine named by cfg.Fetch.Engine. The
// returned cleanup releases the browser and limiter, if any.
func buildEngine(cfg *config.Config) (engine.Engine, func(), error) {
	httpEngine := engine.NewHTTPEngine(engine.HTTPOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})

	var (
		eng     engine.Engine
		cleanup = func() {}
	)
	switch cfg.Fetch.Engine {
	case "", "http":
		eng = httpEngine
	case "browser", "auto":
		browser, err := engine.NewBrowserEngine(engine.BrowserOptions{
			Headless:             cfg.Browser.Headless,
			NoSandbox:            cfg.Browser.NoSandbox,
			Bin:                  cfg.Browser.Bin,
			Proxy:                cfg.Browser.Proxy,
			MaxPages:             cfg.Browser.MaxPages,
			Stealth:              cfg.Browser.Stealth,
			BlockedResourceTypes: cfg.Browser.BlockedResources,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("start browser: %w", err)
		}
		cleanup = browser.Close
		eng = browser
		if cfg.Fetch.Engine == "auto" {
			eng = engine.NewChain(httpEngine, browser)
		}
	default:
		return nil, nil, fmt.Errorf("unknown fetch engine %q (want http, browser or auto)", cfg.Fetch.Engine)
	}

	if cfg.Fetch.RatePerHost > 0 {
		limiter := engine.NewHostLimiter(eng, cfg.Fetch.RatePerHost, 1)
		prev := cleanup
		cleanup = func() {
			limiter.Stop()
			prev()
		}
		eng = limiter
	}

	slog.Info("fetch engine ready", "engine", cfg.Fetch.Engine, "rate_per_host", cfg.Fetch.RatePerHost)
	return eng, cleanup, nil
}

// loadTable returns the built-in categories merged with path, if set.
func loadTable(path string) (category.Table, error) {
	table := category.Default()
	if path == "" {
		return table, nil
	}
	overrides, err := category.LoadFile(path)
	if err != nil {
		return nil, err
	}
	slog.Info("category overrides loaded", "file", path, "categories", len(overrides))
	return table.Merge(overrides), nil
}

// buildClassifier wires a crawler over eng into a Classifier. A nil eng
// leaves live-fetch classification unavailable.
func buildClassifier(cfg *config.Config, eng engine.Engine, m *metrics.Metrics, extraCategories string) (*classify.Classifier, error) {
	table, err := loadTable(cfg.Categories.File)
	if err != nil {
		return nil, err
	}
	if extraCategories != "" {
		extra, err := category.LoadFile(extraCategories)
		if err != nil {
			return nil, err
		}
		table = table.Merge(extra)
	}

	var crawler *crawl.Crawler
	if eng != nil {
		crawler = crawl.New(eng,
			crawl.WithTimeout(cfg.Fetch.Timeout),
			crawl.WithUserAgent(cfg.Fetch.UserAgent),
			crawl.WithMetrics(m),
		)
	}
	return classify.NewClassifier(table, crawler, m), nil
}
