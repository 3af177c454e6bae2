package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limiter is a sliding-window attempt counter keyed by identity:bucket.
// State lives in process memory only: a restart resets every counter,
// which is acceptable for an advisory guard. Not distributed-safe.
type Limiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time

	now func() time.Time
}

func New() *Limiter {
	return &Limiter{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Limited prunes timestamps older than window, records the current
// attempt and reports whether the attempt count now exceeds max.
func (l *Limiter) Limited(identity, bucket string, max int, window time.Duration) bool {
	key := fmt.Sprintf("%s:%s", identity, bucket)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	win := l.hits[key]
	validStart := len(win)
	for i, t := range win {
		if now.Sub(t) < window {
			validStart = i
			break
		}
	}
	win = append(win[validStart:], now)
	l.hits[key] = win

	return len(win) > max
}
