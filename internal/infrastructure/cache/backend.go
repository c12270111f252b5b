// Package cache provides pluggable TTL-based result caching for tabular
// sources. Backends are shared external resources accessed by concurrent
// request handlers; single-key writes are atomic, expiry is lazy and a
// corrupt or expired entry always reads as a miss, never an error.
package cache

import (
	"context"
	"time"
)

// keyPrefix namespaces every logical key so cache entries never collide with
// unrelated data stored in the same Redis database or directory.
const keyPrefix = "tabula:cache:"

// Backend is the pluggable cache contract.
//
// Get returns the stored value and true, or (nil, false) when the key was
// never set, has expired, or the stored payload is unreadable. Set stores a
// JSON-safe value for ttl; callers treat failures as best-effort. Delete is
// idempotent.
type Backend interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func namespaced(key string) string {
	return keyPrefix + key
}
