package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// BrowserOptions configures the headless Chrome engine.
type BrowserOptions struct {
	Headless  bool
	NoSandbox bool
	Bin       string
	Proxy     string
	MaxPages  int
	Stealth   bool

	// BlockedResourceTypes lists resource types that are never loaded,
	// e.g. "Image", "Stylesheet", "Font", "Media".
	BlockedResourceTypes []string
}

// BrowserEngine renders pages in headless Chrome. It serves bookmarks whose
// title is only set by JavaScript.
type BrowserEngine struct {
	browser *rod.Browser
	pool    rod.Pool[rod.Page]
	opts    BrowserOptions
	blocked map[proto.NetworkResourceType]struct{}
	health  *pageHealth[*rod.Page]
}

// resourceTypes maps human-readable config strings to Rod protocol resource types.
var resourceTypes = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// NewBrowserEngine launches a browser and initialises the page pool.
func NewBrowserEngine(opts BrowserOptions) (*BrowserEngine, error) {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 4
	}

	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.Proxy != "" {
		l = l.Proxy(opts.Proxy)
	}
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser_engine: launch: %w", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("browser_engine: connect: %w", err)
	}

	blocked := make(map[proto.NetworkResourceType]struct{}, len(opts.BlockedResourceTypes))
	for _, name := range opts.BlockedResourceTypes {
		if rt, ok := resourceTypes[name]; ok {
			blocked[rt] = struct{}{}
		}
	}

	return &BrowserEngine{
		browser: browser,
		pool:    rod.NewPagePool(opts.MaxPages),
		opts:    opts,
		blocked: blocked,
		health:  newPageHealth[*rod.Page](),
	}, nil
}

func (e *BrowserEngine) Name() string { return "browser" }

// Fetch navigates a pooled page to req.URL and returns the rendered HTML.
func (e *BrowserEngine) Fetch(ctx context.Context, req *FetchRequest) (result *FetchResult, err error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	page, err := e.pool.Get(func() (*rod.Page, error) {
		return e.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, fmt.Errorf("browser_engine: acquire page: %w", err)
	}
	// The original page reference has no request context, so cleanup
	// succeeds even after ctx expired.
	defer func() { e.release(page, err == nil) }()

	if e.opts.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	if req.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{UserAgent: req.UserAgent}.Call(page)
	}
	if len(req.Headers) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(req.Headers)}.Call(page)
	}

	if router := e.hijack(page); router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)
	if err := p.Navigate(req.URL); err != nil {
		return nil, fmt.Errorf("browser_engine: navigate: %w", err)
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("browser_engine: read html: %w", err)
	}

	finalURL := req.URL
	if res, err := p.Eval(`() => window.location.href`); err == nil && res.Value.Str() != "" {
		finalURL = res.Value.Str()
	}

	return &FetchResult{
		Body:        []byte(rawHTML),
		ContentType: "text/html; charset=utf-8",
		StatusCode:  0,
		FinalURL:    finalURL,
		EngineName:  e.Name(),
	}, nil
}

// release returns page to the pool, or closes it and frees its slot when
// its health says it should be retired.
func (e *BrowserEngine) release(page *rod.Page, success bool) {
	if e.health.record(page, success) {
		slog.Debug("retiring browser page")
		_ = page.Close()
		e.pool.Put(nil)
		return
	}
	if navErr := page.Navigate("about:blank"); navErr != nil {
		slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
	}
	e.pool.Put(page)
}

// hijack blocks the configured resource types. Returns nil if there is
// nothing to block.
func (e *BrowserEngine) hijack(page *rod.Page) *rod.HijackRouter {
	if len(e.blocked) == 0 {
		return nil
	}
	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if _, ok := e.blocked[h.Request.Type()]; ok {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
	return router
}

// Close drains the page pool and kills the browser process.
func (e *BrowserEngine) Close() {
	slog.Info("browser engine shutting down: draining page pool")
	e.pool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	if err := e.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
