package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBackend(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBackend(client), mr
}

func TestRedisBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b, _ := newRedisBackend(t)

	value := map[string]any{"columns": []any{"id", "name"}, "rows": []any{[]any{1, "a"}}}
	require.NoError(t, b.Set(ctx, "frame", value, time.Minute))

	got, ok := b.Get(ctx, "frame")
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"columns": []any{"id", "name"},
		"rows":    []any{[]any{float64(1), "a"}},
	}, got)
}

func TestRedisBackend_MissOnAbsentKey(t *testing.T) {
	b, _ := newRedisBackend(t)

	_, ok := b.Get(context.Background(), "never-set")
	assert.False(t, ok)
}

func TestRedisBackend_Expiry(t *testing.T) {
	ctx := context.Background()
	b, mr := newRedisBackend(t)

	require.NoError(t, b.Set(ctx, "k", "v", 10*time.Second))

	_, ok := b.Get(ctx, "k")
	require.True(t, ok)

	mr.FastForward(11 * time.Second)
	_, ok = b.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisBackend_CorruptPayloadIsAMiss(t *testing.T) {
	ctx := context.Background()
	b, mr := newRedisBackend(t)

	require.NoError(t, mr.Set(namespaced("k"), "{not json"))

	_, ok := b.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisBackend_KeysAreNamespaced(t *testing.T) {
	ctx := context.Background()
	b, mr := newRedisBackend(t)

	require.NoError(t, b.Set(ctx, "k", "v", time.Minute))
	assert.True(t, mr.Exists("tabula:cache:k"))
}

func TestRedisBackend_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b, _ := newRedisBackend(t)

	require.NoError(t, b.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, b.Delete(ctx, "k"))
	require.NoError(t, b.Delete(ctx, "k"))

	_, ok := b.Get(ctx, "k")
	assert.False(t, ok)
}
