package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteCache_PutThenGet(t *testing.T) {
	// Given: a cache and a query/rewrite pair
	c, err := NewRewriteCache(10)
	require.NoError(t, err)

	// When
	c.Put("what do I like to eat", "food preferences")

	// Then
	got, ok := c.Get("what do I like to eat")
	require.True(t, ok)
	assert.Equal(t, "food preferences", got)
}

func TestRewriteCache_MissOnUnknownQuery(t *testing.T) {
	c, err := NewRewriteCache(10)
	require.NoError(t, err)

	_, ok := c.Get("never seen before")
	assert.False(t, ok)
}

func TestRewriteCache_NonPositiveSizeDefaults(t *testing.T) {
	// Given: a non-positive requested size
	c, err := NewRewriteCache(0)

	// Then: it still builds successfully and is usable
	require.NoError(t, err)
	c.Put("q", "r")
	got, ok := c.Get("q")
	assert.True(t, ok)
	assert.Equal(t, "r", got)
}

func TestRewriteCache_KeyedByRawQueryNotRewrite(t *testing.T) {
	// Given: a cached rewrite
	c, err := NewRewriteCache(10)
	require.NoError(t, err)
	c.Put("raw query", "rewritten form")

	// Then: looking up the rewritten text itself is a miss
	_, ok := c.Get("rewritten form")
	assert.False(t, ok)
}
