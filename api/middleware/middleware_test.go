package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/bookmarksort/config"
	"github.com/use-agent/bookmarksort/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(APIKeyContextKey))
	})
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newEngine(Auth([]string{"secret", ""}))

	tests := []struct {
		name   string
		setup  func(*http.Request)
		target string
		status int
		body   string
	}{
		{"x-api-key", func(r *http.Request) { r.Header.Set("X-API-Key", "secret") }, "/ping", http.StatusOK, "secret"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer secret") }, "/ping", http.StatusOK, "secret"},
		{"query", func(r *http.Request) {}, "/ping?api_key=secret", http.StatusOK, "secret"},
		{"missing", func(r *http.Request) {}, "/ping", http.StatusUnauthorized, ""},
		{"wrong", func(r *http.Request) { r.Header.Set("X-API-Key", "nope") }, "/ping", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			tt.setup(req)
			w := do(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
				return
			}
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, models.ErrCodeUnauthorized, resp.Error.Code)
		})
	}
}

func TestAuth_NoKeysIsOpen(t *testing.T) {
	r := newEngine(Auth(nil))
	w := do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := newEngine(RateLimit(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}))

	for i := 0; i < 2; i++ {
		w := do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrCodeRateLimited, resp.Error.Code)
}

func TestRateLimit_PerIdentity(t *testing.T) {
	r := newEngine(Auth([]string{"a", "b"}), RateLimit(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}))

	for _, key := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-API-Key", key)
		assert.Equal(t, http.StatusOK, do(r, req).Code, key)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-API-Key", "a")
	assert.Equal(t, http.StatusTooManyRequests, do(r, req).Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	r := newEngine(RateLimit(config.RateLimitConfig{}))
	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/ping", nil)).Code)
	}
}

func TestLimiterSet_Prune(t *testing.T) {
	s := newLimiterSet(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	now := time.Now()
	s.get("old", now.Add(-2*time.Hour))
	s.get("new", now)

	s.prune(now.Add(-time.Hour))
	assert.Equal(t, 1, s.len())
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS())

	w := do(r, httptest.NewRequest(http.MethodOptions, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
