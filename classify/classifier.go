package classify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/use-agent/bookmarksort/category"
	"github.com/use-agent/bookmarksort/crawl"
	"github.com/use-agent/bookmarksort/metrics"
	"github.com/use-agent/bookmarksort/models"
)

// Classifier binds the strategies to a base category table and a crawler.
// It is safe for concurrent use; every call builds its own matcher.
type Classifier struct {
	base    category.Table
	crawler *crawl.Crawler
	metrics *metrics.Metrics
}

// NewClassifier returns a Classifier. base is normally category.Default()
// merged with the configured overrides file.
func NewClassifier(base category.Table, crawler *crawl.Crawler, m *metrics.Metrics) *Classifier {
	return &Classifier{base: base.Clone(), crawler: crawler, metrics: m}
}

// Table returns the base table with per-request overrides applied.
func (c *Classifier) Table(overrides category.Table) category.Table {
	return c.base.Merge(overrides)
}

// Crawler returns the crawler used for live-fetch classification.
func (c *Classifier) Crawler() *crawl.Crawler {
	return c.crawler
}

// Run classifies bookmarks with the named method.
func (c *Classifier) Run(ctx context.Context, method string, bookmarks []models.Bookmark, overrides category.Table) (*Outcome, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}
	strategy, err := New(m, c.crawler)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := strategy.Classify(ctx, bookmarks, c.Table(overrides))
	elapsed := time.Since(start)
	c.metrics.ObserveClassify(string(m), len(bookmarks), elapsed, err)
	if err != nil {
		slog.Warn("classification failed", "method", m, "bookmarks", len(bookmarks), "error", err)
		return nil, err
	}

	slog.Info("classification complete",
		"method", m,
		"bookmarks", len(bookmarks),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return out, nil
}

// ErrNoCrawler is returned when live-fetch classification is requested from
// a Classifier built without a crawler.
var ErrNoCrawler = errors.New("classify: no crawler configured")

// Stream runs live-fetch classification and returns its events. The run is
// recorded once the result event has been handed to the consumer, or when
// ctx ends first.
func (c *Classifier) Stream(ctx context.Context, bookmarks []models.Bookmark, overrides category.Table) (<-chan crawl.Event, error) {
	if c.crawler == nil {
		return nil, ErrNoCrawler
	}

	start := time.Now()
	in := c.crawler.Stream(ctx, bookmarks, c.Table(overrides))
	out := make(chan crawl.Event)

	go func() {
		defer close(out)
		var err error
		defer func() {
			c.metrics.ObserveClassify(string(MethodSmartKeyword), len(bookmarks), time.Since(start), err)
		}()

		for ev := range in {
			select {
			case out <- ev:
			case <-ctx.Done():
				err = ctx.Err()
				return
			}
			if ev.Kind == crawl.EventResult {
				slog.Info("streamed classification complete",
					"bookmarks", len(bookmarks),
					"elapsed_ms", time.Since(start).Milliseconds(),
				)
				return
			}
		}
		err = ctx.Err()
		if err == nil {
			err = context.Canceled
		}
	}()

	return out, nil
}
