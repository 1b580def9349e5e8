package ratelimit

import (
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// FixedWindow is an in-process counter used where redis is not
// configured. State is per instance, which is acceptable for the
// single-node deployments this protects.
type FixedWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*windowEntry
}

func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
	}
}

// Allow records one attempt for key and reports whether it is within
// the window limit.
func (f *FixedWindow) Allow(key string, now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[key]
	if !ok || now.After(entry.resetAt) {
		f.entries[key] = &windowEntry{count: 1, resetAt: now.Add(f.window)}
		f.sweep(now)
		return true
	}

	if entry.count >= f.limit {
		return false
	}
	entry.count++
	return true
}

// sweep drops expired entries so the map does not grow unbounded.
// Caller must hold the mutex.
func (f *FixedWindow) sweep(now time.Time) {
	if len(f.entries) < 1024 {
		return
	}
	for key, entry := range f.entries {
		if now.After(entry.resetAt) {
			delete(f.entries, key)
		}
	}
}
