package redis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/draeangela/industry-data-visualizer/pkg/config"
)

// RateLimiter implements sliding window rate limiting using Redis
// ⭐ SSOT: 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // Unique identifier (e.g., "industry", "fred")
	Limit  int           // Maximum requests allowed
	Window time.Duration // Time window
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
	}
}

// Allow checks if a request is allowed under the rate limit
// Returns (allowed, remaining, error)
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (bool, int, error) {
	if !r.client.Enabled() {
		// If Redis is disabled, allow all requests
		return true, cfg.Limit, nil
	}

	key := fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
	now := time.Now().UnixMilli()
	windowStart := now - cfg.Window.Milliseconds()

	rdb := r.client.Redis()

	// Use Lua script for atomic operation
	script := redis.NewScript(`
		local key = KEYS[1]
		local now = tonumber(ARGV[1])
		local window_start = tonumber(ARGV[2])
		local limit = tonumber(ARGV[3])
		local window_ms = tonumber(ARGV[4])

		-- Remove old entries outside the window
		redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

		-- Count current requests in window
		local count = redis.call('ZCARD', key)

		if count < limit then
			-- Add current request
			redis.call('ZADD', key, now, now)
			redis.call('PEXPIRE', key, window_ms)
			return {1, limit - count - 1}
		else
			return {0, 0}
		end
	`)

	result, err := script.Run(ctx, rdb, []string{key},
		now,
		windowStart,
		cfg.Limit,
		cfg.Window.Milliseconds(),
	).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	allowed := result[0].(int64) == 1
	remaining := int(result[1].(int64))

	return allowed, remaining, nil
}

// Wait blocks until a request is allowed or context is cancelled
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		allowed, _, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		// Wait before retrying
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Retry
		}
	}
}

// BoundLimiter pairs a RateLimiter with one config so it can be handed to
// httputil.Client as a plain Wait(ctx) limiter. Replicas sharing a Redis
// instance then share the backend budget.
type BoundLimiter struct {
	limiter *RateLimiter
	cfg     RateLimitConfig
}

// For binds cfg to the limiter
func (r *RateLimiter) For(cfg RateLimitConfig) *BoundLimiter {
	return &BoundLimiter{limiter: r, cfg: cfg}
}

// Wait blocks until the bound key has budget
func (b *BoundLimiter) Wait(ctx context.Context) error {
	return b.limiter.Wait(ctx, b.cfg)
}

// Config returns the bound config
func (b *BoundLimiter) Config() RateLimitConfig {
	return b.cfg
}

// BackendRateLimit converts a backend's requests-per-second setting into a
// one second sliding window. A fractional rate rounds up.
func BackendRateLimit(key string, b config.BackendConfig) RateLimitConfig {
	limit := int(math.Ceil(b.RateLimit))
	if limit < 1 {
		limit = 1
	}
	return RateLimitConfig{
		Key:    key,
		Limit:  limit,
		Window: time.Second,
	}
}

// Rate limit keys for the series backends
const (
	IndustryLimitKey = "industry"
	FredLimitKey     = "fred"
)
