package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"tabula/internal/core/types"
	"tabula/pkg/logger"
)

// fileEntry is the on-disk layout: the TTL is persisted next to the value so
// a read can validate expiry without a second side channel.
type fileEntry struct {
	TTLSeconds int64     `json:"ttl"`
	WrittenAt  time.Time `json:"written_at"`
	Value      any       `json:"value"`
}

// FileBackend stores one gzip-compressed JSON entry per key in a local
// directory. Keys are hashed into hex filenames, so filesystem-unsafe
// characters and path length limits never matter. Writes go through a
// temp-file rename, which keeps concurrent readers from ever seeing a torn
// entry.
type FileBackend struct {
	dir string
	now func() time.Time
}

// NewFileBackend creates a backend rooted at dir. The directory is created
// lazily on first write.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir, now: time.Now}
}

// Get returns the cached value for key. Missing files, unreadable payloads
// and elapsed TTLs all read as a miss.
func (b *FileBackend) Get(ctx context.Context, key string) (any, bool) {
	path := b.entryPath(key)

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debug(ctx, "file cache read failed", "key", key, "path", path, "error", err)
		}
		return nil, false
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		logger.Debug(ctx, "file cache entry corrupt", "key", key, "path", path, "error", err)
		return nil, false
	}
	defer zr.Close()

	var entry fileEntry
	if err := json.NewDecoder(zr).Decode(&entry); err != nil {
		logger.Debug(ctx, "file cache entry corrupt", "key", key, "path", path, "error", err)
		return nil, false
	}

	if b.now().Sub(entry.WrittenAt) >= time.Duration(entry.TTLSeconds)*time.Second {
		return nil, false
	}
	return entry.Value, true
}

// Set stores value under key. The write is atomic per key: the entry is
// staged in a temp file and renamed into place, so a crash mid-write leaves
// either the old entry or none. Caching is an optimization — callers log and
// carry on when this fails.
func (b *FileBackend) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	// Racing first-writers both succeed here.
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(b.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	entry := fileEntry{
		TTLSeconds: int64(ttl / time.Second),
		WrittenAt:  b.now(),
		Value:      types.Serialize(value),
	}

	zw := gzip.NewWriter(tmp)
	if err := json.NewEncoder(zw).Encode(entry); err != nil {
		tmp.Close()
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("compress cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), b.entryPath(key)); err != nil {
		return fmt.Errorf("publish cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key; a missing entry is not an error.
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	if err := os.Remove(b.entryPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache entry: %w", err)
	}
	return nil
}

// EntryPath exposes the file path for a key (useful in tests).
func (b *FileBackend) EntryPath(key string) string {
	return b.entryPath(key)
}

func (b *FileBackend) entryPath(key string) string {
	sum := sha256.Sum256([]byte(namespaced(key)))
	return filepath.Join(b.dir, hex.EncodeToString(sum[:])+".json.gz")
}
