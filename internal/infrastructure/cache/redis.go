package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tabula/internal/core/types"
	"tabula/pkg/logger"
)

// RedisBackend stores entries in a shared Redis instance. Values are passed
// through the value serializer and JSON-encoded so they survive across
// processes; expiry is enforced server-side at write time.
type RedisBackend struct {
	client redis.UniversalClient
}

// NewRedisBackend creates a backend on top of an existing client. The
// client's own dial/read timeouts bound every call.
func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

// Get returns the cached value for key, or a miss when absent or expired.
func (b *RedisBackend) Get(ctx context.Context, key string) (any, bool) {
	data, err := b.client.Get(ctx, namespaced(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Debug(ctx, "redis cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		logger.Debug(ctx, "redis cache payload corrupt", "key", key, "error", err)
		return nil, false
	}
	return value, true
}

// Set stores value under key with server-side expiry of ttl.
func (b *RedisBackend) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(types.Serialize(value))
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}

	if err := b.client.Set(ctx, namespaced(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key; removing a non-existent key is not an error.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, namespaced(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
