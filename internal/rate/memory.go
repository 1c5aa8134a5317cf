package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es un fixed-window en proceso, para despliegues de una sola
// instancia o desarrollo sin Redis. Misma semántica que RedisLimiter.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   *gocache.Cache
	Max    int64
	Window time.Duration
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	winEnd := winStart.Add(l.Window)
	k := key + ":" + winStart.Format(time.RFC3339)

	l.mu.Lock()
	var hits int64 = 1
	if v, ok := l.hits.Get(k); ok {
		hits = v.(int64) + 1
	}
	l.hits.Set(k, hits, time.Until(winEnd))
	l.mu.Unlock()

	allowed := hits <= l.Max
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   time.Until(winEnd),
	}
	if !allowed {
		res.RetryAfter = time.Until(winEnd)
	}
	return res, nil
}

var _ Limiter = (*MemoryLimiter)(nil)
var _ Limiter = (*RedisLimiter)(nil)
