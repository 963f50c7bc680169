package l1

import (
	"testing"

	"github.com/deepzoom/mandelcore/internal/cache"
	"github.com/stretchr/testify/assert"
)

func TestUploadGetRoundTrip(t *testing.T) {
	c := New(4)
	k := cache.Key{X: 1}
	_, ok := c.Get(k)
	assert.False(t, ok)

	h := c.Upload(k, 256, 1000)
	assert.NotZero(t, h.TextureID)

	got, ok := c.Get(k)
	assert.True(t, ok)
	assert.Equal(t, h.TextureID, got.TextureID)
}

func TestLRUEviction(t *testing.T) {
	c := New(2)
	c.Upload(cache.Key{X: 1}, 256, 0)
	c.Upload(cache.Key{X: 2}, 256, 0)
	c.Upload(cache.Key{X: 3}, 256, 0) // evicts X:1

	_, ok := c.Get(cache.Key{X: 1})
	assert.False(t, ok)
}

func TestSweepEvictsUntouchedGeneration(t *testing.T) {
	c := New(4)
	k1 := cache.Key{X: 1}
	k2 := cache.Key{X: 2}
	c.Upload(k1, 256, 0)
	c.Upload(k2, 256, 0)

	c.Sweep() // both touched by Upload this generation, survive

	_, ok1 := c.Get(k1) // touches k1 only
	assert.True(t, ok1)

	c.Sweep() // k2 untouched since the last sweep, evicted

	_, ok2 := c.Get(k2)
	assert.False(t, ok2)
	_, ok1again := c.Get(k1)
	assert.True(t, ok1again)
}
