package models

import "github.com/use-agent/bookmarksort/category"

// ParseRequest is the payload for POST /api/v1/parse.
type ParseRequest struct {
	// Filename is the handle returned by the upload endpoint.
	Filename string `json:"filename" binding:"required"`
}

// ClassifyRequest is the payload for POST /api/v1/classify and the
// streaming variants.
type ClassifyRequest struct {
	Bookmarks []Bookmark `json:"bookmarks"`

	// Method selects the strategy. Allowed: keyword (default), tfidf,
	// folder, domain, smart_keyword.
	Method string `json:"method,omitempty"`

	// Categories overrides entries of the default table for this request.
	// A label present here replaces the default keyword list; new labels
	// are appended.
	Categories category.Table `json:"categories,omitempty"`

	// WebhookURL, when set, receives a signed classify.completed event
	// after a successful run.
	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ClassifyRequest) Defaults() {
	if r.Method == "" {
		r.Method = "keyword"
	}
	if r.Bookmarks == nil {
		r.Bookmarks = []Bookmark{}
	}
}

// ExportRequest is the payload for POST /api/v1/export.
type ExportRequest struct {
	Bookmarks []Bookmark `json:"bookmarks"`

	// Format is "html" (Netscape bookmark file, default) or "markdown".
	Format string `json:"format,omitempty" binding:"omitempty,oneof=html markdown"`

	// Title overrides the document title.
	Title string `json:"title,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ExportRequest) Defaults() {
	if r.Format == "" {
		r.Format = "html"
	}
}

// SocketMessage is the envelope exchanged over the websocket endpoint in
// both directions.
type SocketMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// SocketRequest is an inbound SocketMessage whose payload is a classify
// request.
type SocketRequest struct {
	Event string          `json:"event"`
	Data  ClassifyRequest `json:"data"`
}
