package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "kbcache:"

// RedisStore is the external-cache variant of Store. Expiry is delegated to
// Redis per-key TTLs; capacity management is delegated to the Redis eviction
// policy, so EvictOldest is a no-op here.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing Redis client as a query cache.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get fetches the cached value; redis.Nil maps to a plain miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Put stores the value with the configured TTL.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, redisKeyPrefix+key, value, s.ttl).Err()
}

// EvictOldest is a no-op; Redis owns capacity eviction.
func (s *RedisStore) EvictOldest(context.Context) error {
	return nil
}
