package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV is the subset of the go-redis client the store uses
type RedisKV interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisIdempotencyStore shares idempotency records between instances.
// Records are stored as JSON under keyPrefix+key.
type RedisIdempotencyStore struct {
	client    RedisKV
	keyPrefix string
}

// NewRedisIdempotencyStore creates a store over an existing client. The
// client is owned by the caller; Close does not close it.
func NewRedisIdempotencyStore(client RedisKV, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "cafe:idem:"
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// Reserve uses SETNX so exactly one request wins a key across instances
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key, fingerprint string, ttl time.Duration) (*IdempotencyRecord, error) {
	pending, err := json.Marshal(IdempotencyRecord{Fingerprint: fingerprint})
	if err != nil {
		return nil, err
	}

	// A record can expire between SETNX and GET; one more round settles it.
	for range 2 {
		ok, err := s.client.SetNX(ctx, s.keyPrefix+key, pending, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		if ok {
			return nil, nil
		}

		raw, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load idempotency record: %w", err)
		}

		var existing IdempotencyRecord
		if err := json.Unmarshal(raw, &existing); err != nil {
			return nil, fmt.Errorf("corrupt idempotency record %q: %w", key, err)
		}
		return &existing, nil
	}
	return nil, fmt.Errorf("idempotency key %q kept expiring during reservation", key)
}

// Complete stores the final response
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, record IdempotencyRecord, ttl time.Duration) error {
	record.Completed = true
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	return nil
}

// Release deletes the key
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner.
func (s *RedisIdempotencyStore) Close() error {
	return nil
}

var _ IdempotencyStore = (*RedisIdempotencyStore)(nil)
