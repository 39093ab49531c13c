package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := NewLRU(4, 0)
	c.Set("a", 1, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCapacityEviction(t *testing.T) {
	c := NewLRU(3, 0)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, 0)
	}
	// Touch k0 so k1 becomes the eviction candidate.
	_, ok := c.Get("k0")
	require.True(t, ok)

	c.Set("k3", 3, 0)
	assert.Equal(t, 3, c.Len())

	_, ok = c.Get("k1")
	assert.False(t, ok)
	_, ok = c.Get("k0")
	assert.True(t, ok)
}

func TestUpdateExistingKey(t *testing.T) {
	c := NewLRU(2, 0)
	c.Set("a", 1, 0)
	c.Set("a", 2, 0)

	assert.Equal(t, 1, c.Len())
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
}

func TestTTLExpiry(t *testing.T) {
	c := NewLRU(4, 0)
	c.Set("a", 1, 20*time.Millisecond)

	_, ok := c.Get("a")
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestPurge(t *testing.T) {
	c := NewLRU(4, 0)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}
