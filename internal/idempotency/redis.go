// Package idempotency deduplicates retried order submissions through Redis.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// keyOrderCreate maps a client-supplied idempotency key to the order it
	// created: idem:order:create:{key} -> order_id.
	keyOrderCreate = "idem:order:create:%s"

	ttl = 24 * time.Hour
)

// RedisStore claims idempotency keys with SETNX so each key creates at most
// one order within the TTL window.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to the given Redis address.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// Ping verifies the connection, for readiness checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Claim(ctx context.Context, key, orderID string) (existingID string, claimed bool, err error) {
	k := fmt.Sprintf(keyOrderCreate, key)

	ok, err := s.rdb.SetNX(ctx, k, orderID, ttl).Result()
	if err != nil {
		return "", false, errors.Wrap(err, "claim idempotency key")
	}
	if ok {
		return "", true, nil
	}

	existingID, err = s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Claim expired between SETNX and GET. Treat as fresh.
		return "", true, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "read idempotency key")
	}
	return existingID, false, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	k := fmt.Sprintf(keyOrderCreate, key)
	if err := s.rdb.Del(ctx, k).Err(); err != nil {
		return errors.Wrap(err, "release idempotency key")
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error { return s.rdb.Close() }

// NopStore is used when no Redis address is configured. Every claim
// succeeds, so retries are not deduplicated.
type NopStore struct{}

func (NopStore) Claim(context.Context, string, string) (string, bool, error) {
	return "", true, nil
}

func (NopStore) Release(context.Context, string) error { return nil }
