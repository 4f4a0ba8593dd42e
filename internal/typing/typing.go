// Package typing deduplicates typing-indicator publication server-side: a
// given (room, sender) pair may broadcast a Typing event at most once per
// window, regardless of how often the client re-POSTs.
package typing

import (
	"sync"
	"time"
)

const (
	window     = 2 * time.Second
	pruneAfter = 30 * time.Second
)

// Dedup is the typing dedup map: its own mutex, independent of presence.
type Dedup struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// New creates an empty dedup tracker.
func New() *Dedup {
	return &Dedup{last: make(map[string]time.Time)}
}

// Allow reports whether a Typing event for (room, sender) should be
// published now: true if this is the first call for the pair, or the last
// allowed call was more than the dedup window ago. Also prunes stale
// entries older than pruneAfter on every call.
func (d *Dedup) Allow(room, sender string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	d.pruneLocked(now)

	key := room + "\x00" + sender
	prev, ok := d.last[key]
	if ok && now.Sub(prev) < window {
		return false
	}
	d.last[key] = now
	return true
}

func (d *Dedup) pruneLocked(now time.Time) {
	for key, t := range d.last {
		if now.Sub(t) > pruneAfter {
			delete(d.last, key)
		}
	}
}
