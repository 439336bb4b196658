package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmarksort/models"
)

// APIKeyContextKey is the gin context key holding the authenticated key.
const APIKeyContextKey = "api_key"

// Auth returns API-key authentication middleware.
//
// Keys are accepted from, in order:
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//	?api_key=<key>
//
// The query form exists for EventSource and WebSocket clients, which cannot
// set request headers. If apiKeys is empty, the middleware is a no-op.
func Auth(apiKeys []string) gin.HandlerFunc {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	if len(keys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := extractAPIKey(c)
		if key == "" {
			abortUnauthorized(c, "missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			return
		}
		if !knownKey(keys, key) {
			abortUnauthorized(c, "invalid API key")
			return
		}

		c.Set(APIKeyContextKey, key)
		c.Next()
	}
}

func knownKey(keys [][]byte, key string) bool {
	candidate := []byte(key)
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k, candidate) == 1 {
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: message,
		},
	})
}

func extractAPIKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.Query("api_key")
}
