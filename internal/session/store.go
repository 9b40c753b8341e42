// Package session holds the process-wide registries of in-flight
// provisioning state. Entries live in memory only; a restart forfeits them.
// That limitation is deliberate: sessions are short-lived and worthless
// without the matching upstream ticket anyway.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/accmint-dev/accmint/internal/logger"
)

// Clock abstracts time.Now so expiry is testable without real timers.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

type entry[V any] struct {
	value   V
	expires time.Time
}

// Store is a mutex-guarded TTL map. Expired entries are reaped lazily on Get
// and eagerly by Evict; both paths fire the onEvict callback so the owner can
// account for forfeited state instead of losing it silently.
type Store[V any] struct {
	mu      sync.Mutex
	items   map[string]entry[V]
	ttl     time.Duration
	clock   Clock
	onEvict func(key string, value V)
}

func New[V any](ttl time.Duration, clock Clock, onEvict func(key string, value V)) *Store[V] {
	return &Store[V]{
		items:   make(map[string]entry[V]),
		ttl:     ttl,
		clock:   clock,
		onEvict: onEvict,
	}
}

// Put stores value under key, resetting its time-to-live.
func (s *Store[V]) Put(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = entry[V]{value: value, expires: s.clock.Now().Add(s.ttl)}
}

// Get returns the live value for key. An expired entry counts as missing and
// is evicted on the spot.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	e, ok := s.items[key]
	if ok && s.clock.Now().After(e.expires) {
		delete(s.items, key)
		s.mu.Unlock()
		if s.onEvict != nil {
			s.onEvict(key, e.value)
		}
		var zero V
		return zero, false
	}
	s.mu.Unlock()
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes key without firing the eviction callback; it is for normal
// terminal transitions, not expiry.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Evict removes every expired entry and returns how many were dropped.
func (s *Store[V]) Evict() int {
	now := s.clock.Now()

	s.mu.Lock()
	var expired []struct {
		key   string
		value V
	}
	for key, e := range s.items {
		if now.After(e.expires) {
			expired = append(expired, struct {
				key   string
				value V
			}{key, e.value})
			delete(s.items, key)
		}
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for _, e := range expired {
			s.onEvict(e.key, e.value)
		}
	}
	return len(expired)
}

// Now exposes the store's clock so owners stamp state consistently with
// expiry decisions.
func (s *Store[V]) Now() time.Time {
	return s.clock.Now()
}

func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// StartBackgroundEviction sweeps expired entries until ctx is cancelled.
func (s *Store[V]) StartBackgroundEviction(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.Evict(); n > 0 {
					logger.Log.Debug("evicted expired sessions", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
