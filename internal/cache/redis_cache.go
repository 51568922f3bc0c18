package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore counts hits per key inside a fixed window
type CounterStore interface {
	// Hit increments key and returns the new count together with the time
	// left in the window. The window starts at the first hit.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type redisCounter struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewRedisCounter(client *redis.Client, prefix string, logger *slog.Logger) CounterStore {
	return &redisCounter{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (r *redisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := r.prefix + key

	count, err := r.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to increment %s: %w", fullKey, err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("failed to set expiry on %s: %w", fullKey, err)
		}
		return count, window, nil
	}

	ttl, err := r.client.TTL(ctx, fullKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read ttl of %s: %w", fullKey, err)
	}
	if ttl < 0 {
		// A crash between INCR and EXPIRE leaves the key without expiry
		r.logger.Warn("Counter key has no expiry, resetting window", "key", fullKey)
		if err := r.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("failed to set expiry on %s: %w", fullKey, err)
		}
		ttl = window
	}
	return count, ttl, nil
}
