package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyScope = "orders"

// lockTTL bounds how long a crashed request can hold a key.
const lockTTL = 30 * time.Second

// RedisIdempotencyStore maps client supplied idempotency keys to order ids.
type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func lockKey(key string) string {
	return "idemp:lock:" + idempotencyScope + ":" + key
}

func mapKey(key string) string {
	return "idemp:map:" + idempotencyScope + ":" + key
}

// TryLock claims the key for lockTTL. It returns false when another request
// holds it.
func (s *RedisIdempotencyStore) TryLock(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, lockKey(key), "1", lockTTL).Result()
}

func (s *RedisIdempotencyStore) Unlock(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, lockKey(key)).Err()
}

func (s *RedisIdempotencyStore) Remember(ctx context.Context, key, orderID string) error {
	return s.rdb.Set(ctx, mapKey(key), orderID, s.ttl).Err()
}

func (s *RedisIdempotencyStore) Recall(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, mapKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
