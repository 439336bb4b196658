package engine

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type hostEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// HostLimiter wraps an Engine and spaces out requests to the same host with
// a token bucket per hostname. Bookmark exports often hold many links to one
// site, and the crawler should not hammer it.
//
// Hosts unused for the idle TTL are pruned by a background goroutine.
type HostLimiter struct {
	next  Engine
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu    sync.Mutex
	hosts map[string]*hostEntry
	done  chan struct{}
	once  sync.Once
}

// NewHostLimiter allows perSecond requests per host with the given burst.
func NewHostLimiter(next Engine, perSecond float64, burst int) *HostLimiter {
	if burst <= 0 {
		burst = 1
	}
	hl := &HostLimiter{
		next:  next,
		limit: rate.Limit(perSecond),
		burst: burst,
		ttl:   10 * time.Minute,
		hosts: make(map[string]*hostEntry),
		done:  make(chan struct{}),
	}
	go hl.cleanupLoop()
	return hl
}

func (hl *HostLimiter) Name() string { return hl.next.Name() }

// Fetch waits for the host's bucket, then delegates. Waiting honours ctx, so
// a fetch timeout also bounds time spent queued.
func (hl *HostLimiter) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if err := hl.limiter(hostOf(req.URL)).Wait(ctx); err != nil {
		return nil, fmt.Errorf("host_limiter: %w", err)
	}
	return hl.next.Fetch(ctx, req)
}

func (hl *HostLimiter) limiter(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	entry, ok := hl.hosts[host]
	if !ok {
		entry = &hostEntry{limiter: rate.NewLimiter(hl.limit, hl.burst)}
		hl.hosts[host] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// Len returns the number of tracked hosts.
func (hl *HostLimiter) Len() int {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	return len(hl.hosts)
}

// Stop terminates the background cleanup goroutine.
func (hl *HostLimiter) Stop() {
	hl.once.Do(func() { close(hl.done) })
}

func (hl *HostLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-hl.done:
			return
		case <-ticker.C:
			hl.prune(time.Now().Add(-hl.ttl))
		}
	}
}

func (hl *HostLimiter) prune(cutoff time.Time) {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	for host, entry := range hl.hosts {
		if entry.lastSeen.Before(cutoff) {
			delete(hl.hosts, host)
		}
	}
}

// hostOf parses the hostname from a URL string.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
