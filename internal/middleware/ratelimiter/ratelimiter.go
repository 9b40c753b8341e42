// Package ratelimiter implements per-identity token buckets for the API's
// rate limits. Identities are whatever the caller keys on: bot client ids,
// source IPs, or a single shared key for global caps. Buckets of idle
// identities are pruned opportunistically on access, so a limiter needs no
// background goroutine and no shutdown.
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time // guarded by Limiter.mu, not bucket.mu
}

type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      float64 // tokens refilled per second
	burst     float64 // bucket capacity
	idleTTL   time.Duration
	nextPrune time.Time
}

// New creates a limiter refilling rate tokens per second up to burst.
// Buckets untouched for idleTTL are dropped on the next prune pass.
func New(rate, burst float64, idleTTL time.Duration) *Limiter {
	return &Limiter{
		buckets:   make(map[string]*bucket),
		rate:      rate,
		burst:     burst,
		idleTTL:   idleTTL,
		nextPrune: time.Now().Add(idleTTL),
	}
}

// Allow reports whether a request for identity may proceed, consuming one
// token if so.
func (l *Limiter) Allow(identity string) bool {
	now := time.Now()

	l.mu.Lock()
	if now.After(l.nextPrune) {
		l.prune(now)
	}
	b, ok := l.buckets[identity]
	if !ok {
		b = &bucket{tokens: l.burst, lastRefill: now}
		l.buckets[identity] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.take(l.rate, l.burst, now)
}

// prune drops idle buckets. Caller holds l.mu. Runs at most once per idleTTL,
// so a hot limiter does not scan its map on every request.
func (l *Limiter) prune(now time.Time) {
	for identity, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, identity)
		}
	}
	l.nextPrune = now.Add(l.idleTTL)
}

// take refills the bucket for the time elapsed since the last refill, then
// spends one token if available.
func (b *bucket) take(rate, burst float64, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * rate
	if b.tokens > burst {
		b.tokens = burst
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
