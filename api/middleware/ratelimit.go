package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmarksort/config"
	"github.com/use-agent/bookmarksort/models"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = time.Hour
	limiterPruneInterval = 5 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one token bucket per caller identity.
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
}

func newLimiterSet(cfg config.RateLimitConfig) *limiterSet {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &limiterSet{
		limiters: make(map[string]*limiterEntry),
		limit:    limit,
		burst:    burst,
	}
}

func (s *limiterSet) get(identity string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.limiters[identity]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[identity] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (s *limiterSet) prune(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, id)
		}
	}
}

func (s *limiterSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// RateLimit returns per-identity (API key or client IP) token-bucket rate
// limiting middleware. A non-positive rate disables limiting.
//
// Identities idle for an hour are evicted every five minutes.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	set := newLimiterSet(cfg)

	go func() {
		ticker := time.NewTicker(limiterPruneInterval)
		defer ticker.Stop()
		for now := range ticker.C {
			set.prune(now.Add(-limiterIdleTTL))
		}
	}()

	return func(c *gin.Context) {
		identity := c.GetString(APIKeyContextKey)
		if identity == "" {
			identity = c.ClientIP()
		}

		now := time.Now()
		reservation := set.get(identity, now).ReserveN(now, 1)
		if delay := reservation.DelayFrom(now); !reservation.OK() || delay > 0 {
			reservation.CancelAt(now)
			if reservation.OK() {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded, please slow down",
				},
			})
			return
		}

		c.Next()
	}
}
