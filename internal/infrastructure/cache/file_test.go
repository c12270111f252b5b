package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())

	value := map[string]any{"columns": []any{"id"}, "rows": []any{[]any{1}}}
	require.NoError(t, b.Set(ctx, "frame", value, time.Minute))

	got, ok := b.Get(ctx, "frame")
	require.True(t, ok)
	// values round-trip through JSON, so numbers come back as float64
	assert.Equal(t, map[string]any{
		"columns": []any{"id"},
		"rows":    []any{[]any{float64(1)}},
	}, got)
}

func TestFileBackend_MissOnAbsentKey(t *testing.T) {
	b := NewFileBackend(t.TempDir())

	_, ok := b.Get(context.Background(), "never-set")
	assert.False(t, ok)
}

func TestFileBackend_Expiry(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())

	written := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return written }
	require.NoError(t, b.Set(ctx, "frame", "v", 10*time.Second))

	b.now = func() time.Time { return written.Add(9 * time.Second) }
	_, ok := b.Get(ctx, "frame")
	assert.True(t, ok, "entry should live until its ttl elapses")

	b.now = func() time.Time { return written.Add(10 * time.Second) }
	_, ok = b.Get(ctx, "frame")
	assert.False(t, ok, "entry should expire once its ttl elapses")
}

func TestFileBackend_CorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())

	require.NoError(t, b.Set(ctx, "frame", "v", time.Minute))
	require.NoError(t, os.WriteFile(b.EntryPath("frame"), []byte("not gzip"), 0o644))

	_, ok := b.Get(ctx, "frame")
	assert.False(t, ok)
}

func TestFileBackend_Overwrite(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())

	require.NoError(t, b.Set(ctx, "k", "old", time.Minute))
	require.NoError(t, b.Set(ctx, "k", "new", time.Minute))

	got, ok := b.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestFileBackend_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())

	require.NoError(t, b.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, b.Delete(ctx, "k"))
	require.NoError(t, b.Delete(ctx, "k"))

	_, ok := b.Get(ctx, "k")
	assert.False(t, ok)
}

func TestFileBackend_KeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(t.TempDir())

	require.NoError(t, b.Set(ctx, "resource-a", "va", time.Minute))
	require.NoError(t, b.Set(ctx, "url-https://example.com/data.csv?x=1", "vb", time.Minute))

	got, ok := b.Get(ctx, "resource-a")
	require.True(t, ok)
	assert.Equal(t, "va", got)

	got, ok = b.Get(ctx, "url-https://example.com/data.csv?x=1")
	require.True(t, ok)
	assert.Equal(t, "vb", got)
}
