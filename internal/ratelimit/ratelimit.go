// Package ratelimit throttles how fast a paired user can relay payloads.
package ratelimit

import (
	"context"
	"fmt"
	"strangerchat/backend/internal/models"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "relay_rl:"

// Unlimited allows everything. It is used when Redis is not configured.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, models.UserID) (bool, error) { return true, nil }

// RedisLimiter is a fixed-window counter: the first hit in a window creates
// the key with a TTL, so counters disappear on their own.
type RedisLimiter struct {
	Redis  redis.Cmdable
	Limit  int64
	Window time.Duration
	now    func() time.Time
}

// NewRedisLimiter allows limit payloads per window per user.
func NewRedisLimiter(rdb redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		Redis:  rdb,
		Limit:  int64(limit),
		Window: window,
		now:    time.Now,
	}
}

// Key returns the counter key for a user at time t.
func (l *RedisLimiter) Key(user models.UserID, t time.Time) string {
	bucket := t.UnixNano() / int64(l.Window)
	return fmt.Sprintf("%s%s:%d", keyPrefix, user, bucket)
}

// Allow counts one relay and reports whether it fits in the current window.
func (l *RedisLimiter) Allow(ctx context.Context, user models.UserID) (bool, error) {
	key := l.Key(user, l.now())

	n, err := l.Redis.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.Redis.Expire(ctx, key, l.Window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= l.Limit, nil
}
