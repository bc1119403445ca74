package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimiter is the single-process fallback used when Redis is not
// reachable at startup, and in tests.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)
	kept := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	count := len(kept)
	l.attempts[key] = append(kept, now)
	return count < limit, nil
}

func (l *MemoryRateLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
	return nil
}
