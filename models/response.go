package models

// UploadResponse is the response for POST /api/v1/upload.
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// ParseResponse is the response for POST /api/v1/parse.
type ParseResponse struct {
	Bookmarks []Bookmark `json:"bookmarks"`

	// CacheStatus is "hit" or "miss".
	CacheStatus string `json:"cache_status,omitempty"`
}

// ClassifyResponse is the response for POST /api/v1/classify.
type ClassifyResponse struct {
	Classified []Bookmark `json:"classified"`

	// Logs carries the crawl progress messages, smart_keyword only.
	Logs []string `json:"logs,omitempty"`
}

// ProgressPayload is one human-readable crawl progress message.
type ProgressPayload struct {
	Log string `json:"log"`
}

// ResultPayload carries the final classified batch of a streamed run.
type ResultPayload struct {
	Result []Bookmark `json:"result"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
	Engine  string `json:"engine"`
}
