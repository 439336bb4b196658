package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/use-agent/bookmarksort/classify"
	"github.com/use-agent/bookmarksort/crawl"
	"github.com/use-agent/bookmarksort/models"
)

// Websocket event names.
const (
	SocketEventClassify = "smart_keyword_classify"
	SocketEventError    = "error"
)

const socketWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Socket returns a handler for GET /api/v1/ws.
//
// Each inbound {"event":"smart_keyword_classify","data":{...}} message
// starts a live-fetch run; its events are pushed back as
// {"event":"progress"|"result","data":...}. Runs on one connection are
// sequential. A write failure ends the run and the connection.
func Socket(cl *classify.Classifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		remote := conn.RemoteAddr().String()
		slog.Debug("websocket connected", "remote", remote)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.Warn("websocket read failed", "remote", remote, "error", err)
				}
				return
			}

			var msg models.SocketRequest
			if err := json.Unmarshal(data, &msg); err != nil {
				if !writeSocketError(conn, "malformed message: "+err.Error()) {
					return
				}
				continue
			}
			if msg.Event != SocketEventClassify {
				if !writeSocketError(conn, "unknown event: "+msg.Event) {
					return
				}
				continue
			}
			msg.Data.Defaults()

			if !runSocketBatch(c.Request.Context(), conn, cl, &msg.Data) {
				return
			}
		}
	}
}

// runSocketBatch streams one run to conn. It reports false when the
// connection is no longer writable.
func runSocketBatch(parent context.Context, conn *websocket.Conn, cl *classify.Classifier, req *models.ClassifyRequest) bool {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	events, err := cl.Stream(ctx, req.Bookmarks, req.Categories)
	if err != nil {
		return writeSocketError(conn, err.Error())
	}

	for ev := range events {
		if err := writeSocket(conn, models.SocketMessage{Event: ev.Name(), Data: ev.Payload()}); err != nil {
			slog.Debug("websocket write failed, stopping run", "error", err)
			return false
		}
		if ev.Kind == crawl.EventResult {
			return true
		}
	}
	return ctx.Err() == nil
}

func writeSocket(conn *websocket.Conn, msg models.SocketMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func writeSocketError(conn *websocket.Conn, message string) bool {
	err := writeSocket(conn, models.SocketMessage{
		Event: SocketEventError,
		Data: models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: message,
		},
	})
	return err == nil
}
