package security

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client in fixed Redis windows.
type RateLimiter struct {
	redis    *redis.Client
	identify func(e *core.RequestEvent) string
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{
		redis:    redisClient,
		identify: func(e *core.RequestEvent) string { return e.RealIP() },
	}
}

// Allow reports whether identifier may make another request in the current
// window. Redis failures let the request through.
func (r *RateLimiter) Allow(ctx context.Context, identifier string, limit int64, window time.Duration) bool {
	count, err := r.redis.Incr(ctx, identifier).Result()
	if err != nil {
		slog.Warn("Rate limiter unavailable", "error", err)
		return true
	}
	if count == 1 {
		r.redis.Expire(ctx, identifier, window)
	}
	return count <= limit
}

// Limit allows limit requests per window for each client on the routes it
// is bound to. name keeps the counters of different routes apart.
func (r *RateLimiter) Limit(name string, limit int64, window time.Duration) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := fmt.Sprintf("ratelimit:%s:%s", name, r.identify(e))
		if !r.Allow(e.Request.Context(), key, limit, window) {
			slog.Warn("Rate limit exceeded", "route", name, "client", r.identify(e))
			return e.TooManyRequestsError("Muitas tentativas. Aguarde um pouco e tente novamente.", nil)
		}
		return e.Next()
	}
}
