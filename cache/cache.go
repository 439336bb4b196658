package cache

import (
	"sync"
	"time"

	"github.com/use-agent/bookmarksort/models"
)

// entry holds a parsed bookmark list with its creation timestamp.
type entry struct {
	bookmarks []models.Bookmark
	createdAt time.Time
}

// Cache keeps parse results per upload handle so that re-parsing the same
// file is free. Uploaded files are immutable, so the handle alone is the key.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration

	done chan struct{}
	once sync.Once
}

// New creates a Cache holding at most maxEntries results for ttl each.
// A background goroutine evicts expired entries until Stop is called.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		done:       make(chan struct{}),
	}

	go c.cleanupLoop()
	return c
}

// Get returns a copy of the cached result for handle, if present and fresh.
func (c *Cache) Get(handle string) ([]models.Bookmark, bool) {
	c.mu.RLock()
	e, ok := c.store[handle]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > c.ttl {
		return nil, false
	}
	return models.CloneBookmarks(e.bookmarks), true
}

// Set stores a copy of bookmarks. If the cache is at capacity, the oldest
// entry is evicted to make room.
func (c *Cache) Set(handle string, bookmarks []models.Bookmark) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[handle]; !exists && len(c.store) >= c.maxEntries {
		var oldest string
		var oldestAt time.Time
		for k, e := range c.store {
			if oldest == "" || e.createdAt.Before(oldestAt) {
				oldest, oldestAt = k, e.createdAt
			}
		}
		delete(c.store, oldest)
	}

	c.store[handle] = &entry{
		bookmarks: models.CloneBookmarks(bookmarks),
		createdAt: time.Now(),
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stop terminates the background cleanup goroutine.
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.done) })
}

// cleanupLoop evicts expired entries every ttl/4 (at most every 5 minutes).
func (c *Cache) cleanupLoop() {
	interval := c.ttl / 4
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evictBefore(time.Now().Add(-c.ttl))
		}
	}
}

func (c *Cache) evictBefore(cutoff time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
}
