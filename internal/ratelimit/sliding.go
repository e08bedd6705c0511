// Package ratelimit provides an in-process sliding-window rate limiter
// keyed by an arbitrary string (client IP, user id).
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow tracks recent attempt timestamps per key and denies a key
// once it has made max attempts within the window.
type SlidingWindow struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

func NewSlidingWindow(max int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Allow records an attempt for key and reports whether it is allowed.
// Attempts older than the window are dropped first; a denied attempt is
// not recorded, so the window is not extended by rejected calls.
func (l *SlidingWindow) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.attempts[key][:0]
	for _, ts := range l.attempts[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.max {
		l.attempts[key] = recent
		return false
	}

	l.attempts[key] = append(recent, now)
	return true
}

// Prune drops keys whose every attempt has aged out of the window.
// Callers run it periodically to bound memory on high-cardinality keys.
func (l *SlidingWindow) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, ts := range l.attempts {
		if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
			delete(l.attempts, key)
		}
	}
}
