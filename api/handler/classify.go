package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/bookmarksort/classify"
	"github.com/use-agent/bookmarksort/models"
	"github.com/use-agent/bookmarksort/webhook"
)

// Classify returns a handler for POST /api/v1/classify.
//
// Flow:
//  1. Bind and validate the request, apply defaults.
//  2. Run the selected strategy over the batch.
//  3. Fire the optional completion webhook in the background.
//  4. Return the classified batch (plus crawl logs for smart_keyword).
func Classify(cl *classify.Classifier, notifier *webhook.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ClassifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortInvalid(c, err.Error())
			return
		}
		req.Defaults()

		out, err := cl.Run(c.Request.Context(), req.Method, req.Bookmarks, req.Categories)
		if err != nil {
			respondError(c, err)
			return
		}

		if req.WebhookURL != "" && notifier != nil {
			event := &webhook.Event{
				Type:      webhook.EventClassifyCompleted,
				RunID:     uuid.NewString(),
				Timestamp: time.Now().Unix(),
				Data:      summarize(req.Method, out.Bookmarks),
			}
			notifier.DeliverAsync(req.WebhookURL, req.WebhookSecret, event)
			slog.Debug("classify webhook scheduled", "url", req.WebhookURL, "run_id", event.RunID)
		}

		c.JSON(http.StatusOK, models.ClassifyResponse{
			Classified: out.Bookmarks,
			Logs:       out.Logs,
		})
	}
}

func summarize(method string, bookmarks []models.Bookmark) webhook.ClassifySummary {
	counts := make(map[string]int)
	for _, b := range bookmarks {
		counts[b.Category]++
	}
	return webhook.ClassifySummary{
		Method:     method,
		Total:      len(bookmarks),
		Categories: counts,
	}
}
