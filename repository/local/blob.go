package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-repository-switch/internal/atomicfile"
)

// BlobStore persists opaque values under fixed keys. Implementations
// overwrite the whole value on every Put.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
}

// FileBlobs stores each key as one file inside a directory.
type FileBlobs struct {
	dir string
}

// NewFileBlobs creates the directory when needed.
func NewFileBlobs(dir string) (*FileBlobs, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir %s: %w", dir, err)
	}
	return &FileBlobs{dir: dir}, nil
}

func (f *FileBlobs) path(key string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, key)
	return filepath.Join(f.dir, name+".json")
}

func (f *FileBlobs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Put replaces the blob atomically, so readers never observe a half written
// collection.
func (f *FileBlobs) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return atomicfile.Write(f.path(key), data, 0o644)
}

// RedisBlobs stores blobs as plain Redis string values.
type RedisBlobs struct {
	client redis.Cmdable
}

// NewRedisBlobs wraps an existing client.
func NewRedisBlobs(client redis.Cmdable) *RedisBlobs {
	return &RedisBlobs{client: client}
}

func (r *RedisBlobs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisBlobs) Put(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, key, data, 0).Err()
}

// MapBlobs is a process local BlobStore, handy for tests and demos.
type MapBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMapBlobs returns an empty MapBlobs.
func NewMapBlobs() *MapBlobs {
	return &MapBlobs{data: map[string][]byte{}}
}

func (m *MapBlobs) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MapBlobs) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}
