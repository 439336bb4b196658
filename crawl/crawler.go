// Package crawl fetches each bookmark's page, replaces the stored title with
// the live <title>, and classifies the record against a category table.
//
// Progress is reported as a sequence of Events over a channel so the same
// loop can drive a blocking call, a server-sent event stream or a websocket.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/bookmarksort/category"
	"github.com/use-agent/bookmarksort/engine"
	"github.com/use-agent/bookmarksort/metrics"
	"github.com/use-agent/bookmarksort/models"
)

// DefaultTimeout bounds each page fetch.
const DefaultTimeout = 3 * time.Second

// EventKind discriminates Event.
type EventKind int

const (
	// EventProgress carries one human-readable log line.
	EventProgress EventKind = iota
	// EventResult carries the full classified batch. It is always last.
	EventResult
)

// Event is one step of a crawl.
type Event struct {
	Kind   EventKind
	Log    string
	Result []models.Bookmark
}

// Name is the wire name of the event kind.
func (e Event) Name() string {
	if e.Kind == EventResult {
		return "result"
	}
	return "progress"
}

// Payload is the JSON body sent to clients for this event.
func (e Event) Payload() any {
	if e.Kind == EventResult {
		return models.ResultPayload{Result: e.Result}
	}
	return models.ProgressPayload{Log: e.Log}
}

// Crawler fetches bookmark pages one at a time.
type Crawler struct {
	engine    engine.Engine
	timeout   time.Duration
	userAgent string
	metrics   *metrics.Metrics
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Crawler) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent sent with every fetch.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) { c.userAgent = ua }
}

// WithMetrics records fetch outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) { c.metrics = m }
}

// New returns a Crawler fetching through eng.
func New(eng engine.Engine, opts ...Option) *Crawler {
	c := &Crawler{
		engine:    eng,
		timeout:   DefaultTimeout,
		userAgent: engine.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EngineName reports the underlying engine.
func (c *Crawler) EngineName() string {
	return c.engine.Name()
}

// Stream crawls a copy of bookmarks in input order and returns the event
// channel. For every record it emits a "requesting" progress event, then one
// outcome event; after the last record it emits a single result event and
// closes the channel.
//
// The channel is unbuffered: the crawl advances only as fast as the consumer
// reads, and each send is a point where other work may run. Cancelling ctx
// stops the crawl at the next record or send, and the channel is closed
// without a result event.
func (c *Crawler) Stream(ctx context.Context, bookmarks []models.Bookmark, table category.Table) <-chan Event {
	out := make(chan Event)
	records := models.CloneBookmarks(bookmarks)
	matcher := category.NewMatcher(table)

	go func() {
		defer close(out)

		emit := func(ev Event) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for i := range records {
			if ctx.Err() != nil {
				slog.Debug("crawl cancelled", "done", i, "total", len(records))
				return
			}
			if !c.crawlOne(ctx, &records[i], matcher, emit) {
				return
			}
		}
		emit(Event{Kind: EventResult, Result: records})
	}()

	return out
}

// Collect runs Stream to completion and returns the classified batch with
// every progress message in order.
func (c *Crawler) Collect(ctx context.Context, bookmarks []models.Bookmark, table category.Table) ([]models.Bookmark, []string, error) {
	logs := make([]string, 0, 2*len(bookmarks))
	var result []models.Bookmark
	got := false

	for ev := range c.Stream(ctx, bookmarks, table) {
		switch ev.Kind {
		case EventProgress:
			logs = append(logs, ev.Log)
		case EventResult:
			result = ev.Result
			got = true
		}
	}
	if !got {
		if err := ctx.Err(); err != nil {
			return nil, logs, err
		}
		return nil, logs, context.Canceled
	}
	return result, logs, nil
}

// crawlOne fetches b's page, updates it in place and emits its two progress
// events. It returns false when the consumer has gone away.
func (c *Crawler) crawlOne(ctx context.Context, b *models.Bookmark, matcher *category.Matcher, emit func(Event) bool) bool {
	progress := func(format string, args ...any) bool {
		return emit(Event{Kind: EventProgress, Log: fmt.Sprintf(format, args...)})
	}

	if !progress("requesting %s", b.URL) {
		return false
	}

	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	res, err := c.engine.Fetch(fetchCtx, &engine.FetchRequest{
		URL:       b.URL,
		UserAgent: c.userAgent,
		Timeout:   c.timeout,
	})
	cancel()

	var title *TitleResult
	if err == nil {
		title, err = ExtractTitle(res.Body, res.ContentType)
	}
	elapsed := time.Since(start)

	switch {
	case err != nil:
		slog.Debug("bookmark fetch failed", "url", b.URL, "error", err)
		c.metrics.ObserveFetch(metrics.OutcomeFailed, elapsed)
		b.Category = category.FetchFailed
		return progress("failed: %s error: %v", b.URL, err)

	case !title.Found:
		c.metrics.ObserveFetch(metrics.OutcomeNoTitle, elapsed)
		b.Category = category.NoTitleFound
		return progress("failed: %s no <title> found", b.URL)

	case title.Title == "":
		c.metrics.ObserveFetch(metrics.OutcomeEmptyTitle, elapsed)
		b.Category = category.NoTitleFound
		return progress("failed: %s <title> is empty", b.URL)
	}

	c.metrics.ObserveFetch(metrics.OutcomeSuccess, elapsed)
	b.Title = title.Title
	b.Category = matcher.Resolve(b.Category, b.Title, b.URL)
	return progress("success: %s -> %s", b.URL, b.Title)
}
