package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter - ограничение исходящих запросов к API, отдельный token bucket на каждый ключ
// (эндпоинт), чтобы частый поллинг не съедал лимит на отправку задач.
// Нулевой или nil Limiter ничего не ограничивает.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

type Config struct {
	RequestsPerMinute int
	Burst             int
}

func New(cfg Config) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:    burst,
	}
}

// Wait блокирует до получения токена или отмены ctx
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if l == nil {
		return nil
	}
	return l.get(key).Wait(ctx)
}

func (l *Limiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	return l.get(key).Allow()
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	return lim
}
