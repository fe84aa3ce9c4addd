package voice

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// startLimiter throttles call starts per visitor. The key is the visitor ID
// only, so rotating tab session IDs does not bypass it.
type startLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

func newStartLimiter(perMinute, burst int) *startLimiter {
	return &startLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Every(time.Minute / time.Duration(max(perMinute, 1))),
		burst:    max(burst, 1),
	}
}

// Allow reports whether visitorID may start another call now.
func (l *startLimiter) Allow(visitorID string) bool {
	l.mu.Lock()
	e, ok := l.limiters[visitorID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[visitorID] = e
	}
	e.lastUsed = time.Now()
	l.mu.Unlock()
	return e.limiter.Allow()
}

// evict drops limiters unused for longer than idle.
func (l *startLimiter) evict(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, e := range l.limiters {
		if e.lastUsed.Before(cutoff) {
			delete(l.limiters, k)
			n++
		}
	}
	return n
}
