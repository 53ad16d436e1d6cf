package cache

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// BytesCache is the narrow contract RedisBacked and the in-process fallback
// both satisfy — enough to persist holder-count snapshot history across a
// restart (internal/providers/holderapi).
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

// RedisBacked stores raw bytes in Redis with a TTL.
type RedisBacked struct {
	client *redis.Client
}

func NewRedisBacked(addr string) *RedisBacked {
	return &RedisBacked{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *RedisBacked) Get(ctx context.Context, key string) ([]byte, bool) {
	cctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	v, err := r.client.Get(cctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

func (r *RedisBacked) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	cctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = r.client.Set(cctx, key, val, ttl).Err()
}

// memoryBytes is the zero-config fallback used when REDIS_ADDR is unset.
type memoryBytes struct {
	inner *TTLCache[[]byte]
}

func newMemoryBytes() *memoryBytes {
	return &memoryBytes{inner: New[[]byte](1000, 5*time.Minute)}
}

func (m *memoryBytes) Get(_ context.Context, key string) ([]byte, bool) { return m.inner.Get(key) }
func (m *memoryBytes) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	m.inner.Put(key, val, ttl)
}

// NewAuto selects a Redis-backed cache when REDIS_ADDR is set in the
// environment, otherwise an in-process one.
func NewAuto() BytesCache {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return NewRedisBacked(addr)
	}
	return newMemoryBytes()
}

// PutJSON and GetJSON are small helpers so holderapi's snapshot history
// doesn't have to hand-roll marshaling at every call site.
func PutJSON(ctx context.Context, c BytesCache, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Set(ctx, key, b, ttl)
	return nil
}

func GetJSON(ctx context.Context, c BytesCache, key string, out any) bool {
	b, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(b, out) == nil
}
