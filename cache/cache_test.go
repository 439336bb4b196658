package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/bookmarksort/models"
)

func TestCache_SetGet(t *testing.T) {
	c := New(4, time.Hour)
	defer c.Stop()

	c.Set("a.html", []models.Bookmark{{Title: "x", Folders: []string{"f"}}})
	got, ok := c.Get("a.html")
	require.True(t, ok)
	assert.Equal(t, "x", got[0].Title)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := New(4, time.Hour)
	defer c.Stop()

	in := []models.Bookmark{{Title: "x", Folders: []string{"f"}}}
	c.Set("h", in)
	in[0].Title = "mutated"

	got, _ := c.Get("h")
	got[0].Folders[0] = "changed"

	again, _ := c.Get("h")
	assert.Equal(t, "x", again[0].Title)
	assert.Equal(t, "f", again[0].Folders[0])
}

func TestCache_Expiry(t *testing.T) {
	c := New(4, 20*time.Millisecond)
	defer c.Stop()

	c.Set("h", []models.Bookmark{{Title: "x"}})
	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get("h")
	assert.False(t, ok)

	c.evictBefore(time.Now())
	assert.Equal(t, 0, c.Len())
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	c := New(2, time.Hour)
	defer c.Stop()

	c.Set("first", nil)
	time.Sleep(time.Millisecond)
	c.Set("second", nil)
	time.Sleep(time.Millisecond)
	c.Set("third", nil)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("first")
	assert.False(t, ok)
	_, ok = c.Get("third")
	assert.True(t, ok)
}
