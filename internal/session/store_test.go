package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestStorePutGet(t *testing.T) {
	clock := newFakeClock()
	s := New[string](10*time.Minute, clock, nil)

	s.Put("a", "first")
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", v)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStorePutResetsTTL(t *testing.T) {
	clock := newFakeClock()
	s := New[string](10*time.Minute, clock, nil)

	s.Put("a", "first")
	clock.Advance(9 * time.Minute)
	s.Put("a", "second")
	clock.Advance(9 * time.Minute)

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestStoreGetExpiresLazily(t *testing.T) {
	clock := newFakeClock()
	var evicted []string
	s := New[string](10*time.Minute, clock, func(key string, value string) {
		evicted = append(evicted, key)
	})

	s.Put("a", "x")
	clock.Advance(11 * time.Minute)

	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, evicted)
	assert.Equal(t, 0, s.Len())
}

func TestStoreEvict(t *testing.T) {
	clock := newFakeClock()
	var evicted []string
	s := New[string](10*time.Minute, clock, func(key string, value string) {
		evicted = append(evicted, key)
	})

	s.Put("old", "x")
	clock.Advance(6 * time.Minute)
	s.Put("fresh", "y")
	clock.Advance(5 * time.Minute) // old is 11m, fresh is 5m

	assert.Equal(t, 1, s.Evict())
	assert.Equal(t, []string{"old"}, evicted)

	_, ok := s.Get("fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestStoreDeleteSkipsCallback(t *testing.T) {
	clock := newFakeClock()
	var evicted []string
	s := New[string](10*time.Minute, clock, func(key string, value string) {
		evicted = append(evicted, key)
	})

	s.Put("a", "x")
	s.Delete("a")

	assert.Empty(t, evicted)
	assert.Equal(t, 0, s.Len())
}
