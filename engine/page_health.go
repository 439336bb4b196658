package engine

import (
	"math"
	"sync"
	"time"
)

// Page retirement thresholds.
//
// Scoring rules:
//   - Success: errScore -= 0.5 (min 0)
//   - Failure: errScore += 1.0
//
// A page is retired when any of these is reached.
const (
	pageMaxErrScore = 3.0
	pageMaxUses     = 50
	pageMaxAge      = 50 * time.Minute
)

type pageStats struct {
	errScore float64
	uses     int
	created  time.Time
}

// pageHealth scores pooled browser pages so that a tab that keeps failing,
// has served many navigations or has lived too long is replaced.
type pageHealth[K comparable] struct {
	mu    sync.Mutex
	pages map[K]*pageStats
	now   func() time.Time
}

func newPageHealth[K comparable]() *pageHealth[K] {
	return &pageHealth[K]{pages: make(map[K]*pageStats), now: time.Now}
}

// record scores one navigation on page and reports whether the page should
// be retired. A retired page is forgotten.
func (h *pageHealth[K]) record(page K, success bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.pages[page]
	if !ok {
		s = &pageStats{created: h.now()}
		h.pages[page] = s
	}
	s.uses++
	if success {
		s.errScore = math.Max(0, s.errScore-0.5)
	} else {
		s.errScore += 1.0
	}

	retire := s.errScore >= pageMaxErrScore ||
		s.uses >= pageMaxUses ||
		h.now().Sub(s.created) >= pageMaxAge
	if retire {
		delete(h.pages, page)
	}
	return retire
}

func (h *pageHealth[K]) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pages)
}
