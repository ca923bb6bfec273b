// Package ratelimit implements sliding-window admission control keyed by
// client identity. Unlike a token bucket, the window counts actual request
// timestamps in the trailing interval, so the limit is exact at window
// boundaries.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks request timestamps per key and admits a request only when
// fewer than Limit requests were seen within the trailing Window.
type Limiter struct {
	limit  int
	window time.Duration

	// now is injectable for tests.
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*keyWindow
}

type keyWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

// New creates a limiter admitting at most limit requests per key within window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*keyWindow),
	}
}

// Allow records and admits a request for key, or rejects it when the window
// is full. Safe for concurrent use; requests for the same key serialize on a
// per-key lock so bursts cannot undercount.
func (l *Limiter) Allow(key string) bool {
	w := l.keyWindow(key)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	// Prune entries that have slid out of the window. Stamps are appended in
	// order, so the first still-valid index bounds the prune.
	keep := 0
	for keep < len(w.stamps) && !w.stamps[keep].After(cutoff) {
		keep++
	}
	w.stamps = w.stamps[keep:]

	if len(w.stamps) >= l.limit {
		return false
	}

	w.stamps = append(w.stamps, now)
	return true
}

// Remaining reports how many requests key has left in the current window.
func (l *Limiter) Remaining(key string) int {
	w := l.keyWindow(key)

	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	n := 0
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			n++
		}
	}
	if n >= l.limit {
		return 0
	}
	return l.limit - n
}

// Prune drops keys whose every timestamp has left the window. Call it
// periodically to bound memory for ephemeral keys.
func (l *Limiter) Prune() {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		w.mu.Lock()
		idle := len(w.stamps) == 0 || !w.stamps[len(w.stamps)-1].After(cutoff)
		w.mu.Unlock()
		if idle {
			delete(l.windows, key)
		}
	}
}

func (l *Limiter) keyWindow(key string) *keyWindow {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok {
		w = &keyWindow{}
		l.windows[key] = w
	}
	return w
}

// SetClock overrides the limiter's time source. Intended for tests.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}
