package worker

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles work per key; the watcher keys it by file path
// so one noisy file cannot starve re-evaluation of the others
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter allowing perSecond events per key with the given burst.
// A non-positive rate means unlimited.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until an event for key is allowed or ctx is done
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.getLimiter(normalizeKey(key)).Wait(ctx)
}

// Allow reports whether an event for key may happen now
func (l *Limiter) Allow(key string) bool {
	return l.getLimiter(normalizeKey(key)).Allow()
}

func (l *Limiter) getLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[key] = limiter

	return limiter
}

// SetRate overrides the limit for one key
func (l *Limiter) SetRate(key string, perSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[normalizeKey(key)] = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// Forget drops the state for a key, e.g. after its file was removed
func (l *Limiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, normalizeKey(key))
}

// normalizeKey makes equivalent file paths share one limiter
func normalizeKey(key string) string {
	if key == "" {
		return key
	}
	if abs, err := filepath.Abs(key); err == nil {
		return abs
	}
	return filepath.Clean(key)
}
