package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"regsync/internal/ratelimit/models"
)

// RedisBucketStore implements a fixed window counter shared by every replica.
// Each window is one key with INCR and a PEXPIRE set on first use.
type RedisBucketStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisBucketStore creates a store over any go-redis client.
func NewRedisBucketStore(client redis.Cmdable) *RedisBucketStore {
	return &RedisBucketStore{client: client, prefix: "regsync:", now: time.Now}
}

// Allow increments the current window and reports whether it is within limit.
func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	windowStart := now.Truncate(window)
	resetAt := windowStart.Add(window)
	windowKey := fmt.Sprintf("%s%s:%d", s.prefix, key, windowStart.Unix())

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, windowKey)
		pipe.PExpire(ctx, windowKey, window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit: %w", err)
	}

	count := int(incr.Val())
	if count > limit {
		return &models.RateLimitResult{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: models.RetryAfterSeconds(now, resetAt),
		}, nil
	}
	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - count,
		ResetAt:   resetAt,
	}, nil
}

// Reset deletes the current window for a key.
func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	pattern := s.prefix + key + ":*"
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis reset: %w", err)
		}
	}
	return iter.Err()
}
