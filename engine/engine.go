package engine

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotText is returned when a response is not a text document and so
// cannot carry a <title>.
var ErrNotText = errors.New("non-text response")

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "browser", "chain").
	Name() string

	// Fetch retrieves the raw document for the given request. The caller
	// bounds the fetch with ctx.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL       string
	UserAgent string
	Headers   map[string]string
	Timeout   time.Duration
}

// FetchResult is the output of a successful engine fetch. Body is the raw
// undecoded response; ContentType is the response header (or a synthetic one
// for engines that only see decoded text).
type FetchResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
	FinalURL    string
	EngineName  string
}

// IsTextContentType reports whether a Content-Type header may carry an HTML
// title. An absent header is accepted; the body is sniffed later.
func IsTextContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text/") ||
		strings.Contains(ct, "application/xhtml+xml") ||
		strings.Contains(ct, "application/xml")
}
