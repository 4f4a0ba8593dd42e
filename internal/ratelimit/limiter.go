// Package ratelimit is a sliding-window in-memory limiter, grounded on
// original_source/src/rate_limit.rs. Used as back-pressure in front of
// sends, room creation, file uploads, broadcasts, and DMs (spec.md §5).
package ratelimit

import (
	"sync"
	"time"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// Limiter tracks recent request timestamps per key.
type Limiter struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{entries: make(map[string][]time.Time)}
}

// Check reports whether a request under key is allowed given max requests
// per window, returning a *chatcore.Error (KindRateLimited) when it isn't.
// key is typically "<action>:<ip>" or "<action>:<sender>".
func (l *Limiter) Check(key string, max int, window time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entries := l.entries[key]

	kept := entries[:0]
	for _, t := range entries {
		if now.Sub(t) < window {
			kept = append(kept, t)
		}
	}

	if len(kept) >= max {
		oldest := kept[0]
		for _, t := range kept {
			if t.Before(oldest) {
				oldest = t
			}
		}
		elapsed := now.Sub(oldest)
		retryAfter := 1
		if elapsed < window {
			retryAfter = int((window - elapsed).Seconds()) + 1
		}
		l.entries[key] = kept
		return chatcore.RateLimited(retryAfter, max, 0)
	}

	kept = append(kept, now)
	l.entries[key] = kept
	return nil
}
