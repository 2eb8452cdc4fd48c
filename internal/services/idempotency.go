package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore caches the serialized response of a side-effecting call
// under a (logical endpoint, client key) pair. A hit short-circuits the
// whole operation and the cached bytes are returned as-is.
//
// The store does not fingerprint request bodies: a client that reuses a key
// with a different payload silently receives the first response.
// Implementations must be safe for concurrent use.
type IdempotencyStore interface {
	// Lookup returns the cached response for (endpoint, key). An empty key
	// is always a miss; idempotency is opt-in per request.
	Lookup(ctx context.Context, endpoint, key string) ([]byte, bool, error)

	// Store caches the finalized response. It is only called after the
	// operation fully succeeded. Empty keys are ignored.
	Store(ctx context.Context, endpoint, key string, response []byte) error
}

const (
	idempotencyKeyPrefix = "idem:"
	idempotencyTTL       = 24 * time.Hour
)

// RedisIdempotencyStore persists idempotency records in Redis so replays
// survive process restarts.
type RedisIdempotencyStore struct {
	client *redis.Client
}

func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func idempotencyKey(endpoint, key string) string {
	return idempotencyKeyPrefix + endpoint + ":" + key
}

func (s *RedisIdempotencyStore) Lookup(ctx context.Context, endpoint, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	data, err := s.client.Get(ctx, idempotencyKey(endpoint, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisIdempotencyStore) Store(ctx context.Context, endpoint, key string, response []byte) error {
	if key == "" {
		return nil
	}
	return s.client.Set(ctx, idempotencyKey(endpoint, key), response, idempotencyTTL).Err()
}

// MemoryIdempotencyStore is the in-process fallback used in tests and when
// no Redis is configured. Records live for the lifetime of the process.
type MemoryIdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: make(map[string][]byte)}
}

func (s *MemoryIdempotencyStore) Lookup(_ context.Context, endpoint, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.entries[idempotencyKey(endpoint, key)]
	return data, ok, nil
}

func (s *MemoryIdempotencyStore) Store(_ context.Context, endpoint, key string, response []byte) error {
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[idempotencyKey(endpoint, key)] = response
	return nil
}

var (
	_ IdempotencyStore = (*RedisIdempotencyStore)(nil)
	_ IdempotencyStore = (*MemoryIdempotencyStore)(nil)
)
