package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks request timestamps and failed auth attempts per
// client IP. State is process-local and resets on restart; the service
// makes no multi-instance consistency claim.
type Limiter struct {
	mu sync.Mutex

	requests map[string][]time.Time
	failures map[string]int
	blocked  map[string]time.Time

	max           int
	window        time.Duration
	blockAfter    int
	blockDuration time.Duration

	now func() time.Time // overridable in tests
}

// New creates a limiter allowing max requests per window, blocking a
// client for blockDuration after blockAfter failed auth attempts.
func New(max int, window time.Duration, blockAfter int, blockDuration time.Duration) *Limiter {
	return &Limiter{
		requests:      make(map[string][]time.Time),
		failures:      make(map[string]int),
		blocked:       make(map[string]time.Time),
		max:           max,
		window:        window,
		blockAfter:    blockAfter,
		blockDuration: blockDuration,
		now:           time.Now,
	}
}

// Allow records a request from ip and reports whether it is within the
// sliding window budget.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.evict(ip, now)

	if len(recent) >= l.max {
		l.requests[ip] = recent
		return false
	}

	l.requests[ip] = append(recent, now)
	return true
}

// evict drops timestamps older than the window. Caller holds the lock.
func (l *Limiter) evict(ip string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	kept := l.requests[ip][:0]
	for _, ts := range l.requests[ip] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.requests, ip)
		return nil
	}
	return kept
}

// RecordFailure notes a failed auth attempt; hitting the threshold
// blocks the client.
func (l *Limiter) RecordFailure(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures[ip]++
	if l.failures[ip] >= l.blockAfter {
		l.blocked[ip] = l.now().Add(l.blockDuration)
	}
}

// IsBlocked reports whether the client is currently blocked.
func (l *Limiter) IsBlocked(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.blocked[ip]
	if !ok {
		return false
	}
	if l.now().After(until) {
		delete(l.blocked, ip)
		l.failures[ip] = 0
		return false
	}
	return true
}

// Reset clears failure tracking for a client, e.g. after a successful
// auth.
func (l *Limiter) Reset(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.failures, ip)
	delete(l.blocked, ip)
}
