// file: internal/cache/cache_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[int](time.Minute)
	c.now = func() time.Time { return now }
	c.Set("k", 42)

	now = now.Add(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[int](0)
	c.now = func() time.Time { return now }
	c.Set("k", 1)
	now = now.Add(24 * 365 * time.Hour)
	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestFetchStoresOnlySuccess(t *testing.T) {
	c := New[string](time.Minute)
	calls := 0
	failing := func() (string, error) {
		calls++
		return "", errors.New("boom")
	}
	_, err := c.Fetch("cfg", failing)
	assert.Error(t, err)
	_, err = c.Fetch("cfg", failing)
	assert.Error(t, err)
	assert.Equal(t, 2, calls)

	v, err := c.Fetch("cfg", func() (string, error) { calls++; return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	v, err = c.Fetch("cfg", failing)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestInvalidate(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, "2", v)
}
