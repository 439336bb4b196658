package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPageHealth_RetiresAfterFailures(t *testing.T) {
	h := newPageHealth[int]()

	assert.False(t, h.record(1, false))
	assert.False(t, h.record(1, false))
	assert.True(t, h.record(1, false), "third straight failure reaches the threshold")
	assert.Equal(t, 0, h.len())
}

func TestPageHealth_SuccessHeals(t *testing.T) {
	h := newPageHealth[int]()

	h.record(1, false)
	h.record(1, false)
	h.record(1, true)
	h.record(1, true)
	assert.False(t, h.record(1, false))
	assert.Equal(t, 1, h.len())
}

func TestPageHealth_RetiresAfterUses(t *testing.T) {
	h := newPageHealth[int]()
	for i := 1; i < pageMaxUses; i++ {
		assert.False(t, h.record(1, true))
	}
	assert.True(t, h.record(1, true))
}

func TestPageHealth_RetiresByAge(t *testing.T) {
	now := time.Now()
	h := newPageHealth[int]()
	h.now = func() time.Time { return now }

	assert.False(t, h.record(1, true))
	now = now.Add(pageMaxAge)
	assert.True(t, h.record(1, true))
}
