package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// EventClassifyCompleted is sent after a classification run finishes.
const EventClassifyCompleted = "classify.completed"

// SignatureHeader carries "sha256=<hex HMAC of the body>" when a secret is set.
const SignatureHeader = "X-Bookmarksort-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	RunID     string `json:"run_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// ClassifySummary is the Data of a classify.completed event.
type ClassifySummary struct {
	Method     string         `json:"method"`
	Total      int            `json:"total"`
	Categories map[string]int `json:"categories"`
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Notifier delivers events to caller-supplied URLs.
type Notifier struct {
	client  *http.Client
	timeout time.Duration
	delays  []time.Duration
}

// New returns a Notifier with per-attempt timeout. Async delivery retries
// after 1s, 5s and 30s.
func New(timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		delays:  []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second},
	}
}

// Deliver sends an event synchronously.
// The request body is signed with HMAC-SHA256 if secret is non-empty.
func (n *Notifier) Deliver(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Bookmarksort-Webhook/1.0")
	if secret != "" {
		req.Header.Set(SignatureHeader, Sign(secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// DeliverAsync sends an event in the background, retrying on failure.
// The returned channel receives the final error (nil on success) and is
// then closed.
func (n *Notifier) DeliverAsync(url, secret string, event *Event) <-chan error {
	result := make(chan error, 1)
	go func() {
		defer close(result)
		var err error
		for attempt, delay := range n.delays {
			if delay > 0 {
				time.Sleep(delay)
			}
			ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
			err = n.Deliver(ctx, url, secret, event)
			cancel()
			if err == nil {
				slog.Info("webhook delivered",
					"url", url,
					"event", event.Type,
					"run_id", event.RunID,
					"attempt", attempt+1,
				)
				result <- nil
				return
			}
			slog.Warn("webhook delivery failed",
				"url", url,
				"event", event.Type,
				"run_id", event.RunID,
				"attempt", attempt+1,
				"error", err,
			)
		}
		slog.Error("webhook delivery exhausted all retries",
			"url", url,
			"event", event.Type,
			"run_id", event.RunID,
		)
		result <- err
	}()
	return result
}
