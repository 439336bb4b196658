package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmarksort/category"
	"github.com/use-agent/bookmarksort/classify"
	"github.com/use-agent/bookmarksort/crawl"
	"github.com/use-agent/bookmarksort/models"
)

// ClassifyStream returns a handler for GET and POST
// /api/v1/classify/stream.
//
// The POST form takes a ClassifyRequest body. The GET form takes the same
// fields as query parameters, with bookmarks and categories JSON-encoded.
// Progress lines and the final result are sent as server-sent events; a
// client disconnect stops the crawl.
func ClassifyStream(cl *classify.Classifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := bindStreamRequest(c)
		if err != nil {
			abortInvalid(c, err.Error())
			return
		}
		req.Defaults()

		if req.Method != string(classify.MethodSmartKeyword) {
			abortInvalid(c, "only smart_keyword supports streaming")
			return
		}

		ctx := c.Request.Context()
		events, err := cl.Stream(ctx, req.Bookmarks, req.Categories)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)

		sent := 0
		for ev := range events {
			// Unnamed events reach EventSource.onmessage.
			c.SSEvent("", ev.Payload())
			c.Writer.Flush()
			sent++
			if ev.Kind == crawl.EventResult {
				break
			}
		}
		slog.Debug("classify stream closed", "events", sent, "client_gone", ctx.Err() != nil)
	}
}

// bindStreamRequest reads a ClassifyRequest from the body (POST) or the
// query string (GET).
func bindStreamRequest(c *gin.Context) (*models.ClassifyRequest, error) {
	var req models.ClassifyRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	req.Method = c.Query("method")
	if raw := c.Query("bookmarks"); raw != "" {
		if err := decodeQueryJSON(raw, &req.Bookmarks); err != nil {
			return nil, fmt.Errorf("invalid bookmarks parameter: %w", err)
		}
	}
	if raw := c.Query("categories"); raw != "" {
		var table category.Table
		if err := decodeQueryJSON(raw, &table); err != nil {
			return nil, fmt.Errorf("invalid categories parameter: %w", err)
		}
		req.Categories = table
	}
	return &req, nil
}

// decodeQueryJSON accepts JSON that was URL-encoded once (already undone by
// the query parser) or twice.
func decodeQueryJSON(raw string, v any) error {
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	unescaped, uerr := url.QueryUnescape(raw)
	if uerr != nil || unescaped == raw {
		return err
	}
	return json.Unmarshal([]byte(unescaped), v)
}
