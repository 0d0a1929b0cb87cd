package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndFind(t *testing.T) {
	c := New[int](2)
	require.True(t, c.Insert("a", 1))
	v, ok := c.Find("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestInsertRejectsDuplicate(t *testing.T) {
	c := New[int](2)
	require.True(t, c.Insert("a", 1))
	require.False(t, c.Insert("a", 2))
	v, _ := c.Find("a")
	assert.Equal(t, 1, v)
}

func TestUpdateResetsPriority(t *testing.T) {
	c := New[int](2)
	require.True(t, c.Insert("a", 1))
	c.Find("a")
	c.Find("a") // priority now 3
	require.True(t, c.Update("a", 99))
	assert.Equal(t, uint32(1), c.byKey["a"].priority)
	v, _ := c.Find("a")
	assert.Equal(t, 99, v)
}

func TestCapacityZeroDisablesCache(t *testing.T) {
	c := New[int](0)
	require.False(t, c.Insert("a", 1))
	require.False(t, c.Update("a", 1))
	_, ok := c.Find("a")
	require.False(t, ok)
}

func TestEvictsLeastFrequentlyUsed(t *testing.T) {
	c := New[string](2)
	require.True(t, c.Insert("a", "A"))
	require.True(t, c.Insert("b", "B"))
	// Access "a" repeatedly so "b" stays at priority 1.
	c.Find("a")
	c.Find("a")
	c.Find("a")

	require.True(t, c.Insert("c", "C")) // evicts "b", the smallest counter
	_, ok := c.Find("b")
	assert.False(t, ok)
	_, ok = c.Find("a")
	assert.True(t, ok)
	_, ok = c.Find("c")
	assert.True(t, ok)
}

func TestHitRateAndAccessCount(t *testing.T) {
	c := New[int](1)
	c.Insert("a", 1)
	c.Find("a")
	c.Find("missing")
	assert.Equal(t, uint64(2), c.AccessCount())
	assert.InDelta(t, 0.5, c.HitRate(), 1e-9)
}

func TestEraseAndClear(t *testing.T) {
	c := New[int](2)
	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Erase("a")
	_, ok := c.Find("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}
