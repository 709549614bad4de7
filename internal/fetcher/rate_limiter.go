package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает число запросов в минуту отдельно для каждого хоста.
type RateLimiter struct {
	rpm      int
	burst    int
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

func NewRateLimiter(rpm, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rpm:      rpm,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) Wait(ctx context.Context, host string) error {
	rl.mu.Lock()
	limiter, exists := rl.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.rpm)), rl.burst)
		rl.limiters[host] = limiter
	}
	rl.mu.Unlock()

	return limiter.Wait(ctx)
}
