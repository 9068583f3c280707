package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameCacheIgnoresEmptyWrites(t *testing.T) {
	c := NewNameCache()

	c.Put("t1", "Rosa Diaz")
	c.Put("t1", "")
	c.Put("", "Ghost")

	name, ok := c.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "Rosa Diaz", name)
	assert.Equal(t, 1, c.Len())
}

func TestNameCacheOverwritesWithNonEmpty(t *testing.T) {
	c := NewNameCache()

	c.Put("t1", "rdiaz")
	c.Put("t1", "Rosa Diaz")

	name, _ := c.Get("t1")
	assert.Equal(t, "Rosa Diaz", name)
}

func TestNameCacheMiss(t *testing.T) {
	c := NewNameCache()
	_, ok := c.Get("nope")
	assert.False(t, ok)
}
