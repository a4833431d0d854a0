package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carmint/internal/config"
	"carmint/internal/domain"

	"github.com/redis/go-redis/v9"
)

// redisLimiter counts requests in redis so the window is shared when
// carmintd runs with more than one replica.
type redisLimiter struct {
	client *redis.Client
}

// countAndExpire bumps the window counter, arming its expiry on first use,
// and reports the counter alongside the window's remaining life.
var countAndExpire = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// NewRedisLimiter connects to the redis instance named by the configuration.
func NewRedisLimiter(cfg config.Config) (domain.RateLimiter, error) {
	if cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ADDR is required for the redis rate limiter")
	}
	return &redisLimiter{client: redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})}, nil
}

func (r *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (domain.RateLimitDecision, error) {
	if limit <= 0 {
		return domain.RateLimitDecision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	millis := window.Milliseconds()
	if millis <= 0 {
		millis = time.Second.Milliseconds()
	}

	reply, err := countAndExpire.Run(ctx, r.client, []string{key}, millis).Int64Slice()
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("redis rate limit: %w", err)
	}
	if len(reply) != 2 {
		return domain.RateLimitDecision{}, fmt.Errorf("redis rate limit: reply has %d values", len(reply))
	}
	count, ttl := reply[0], reply[1]

	decision := domain.RateLimitDecision{
		Allowed: count <= int64(limit),
		Limit:   limit,
		ResetAt: time.Now(),
	}
	if ttl > 0 {
		decision.ResetAt = decision.ResetAt.Add(time.Duration(ttl) * time.Millisecond)
	}
	if left := limit - int(count); left > 0 {
		decision.Remaining = left
	}
	return decision, nil
}
