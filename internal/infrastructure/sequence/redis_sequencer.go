// Package sequence provides daily document counters kept outside the primary
// database.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/cafe/backend/internal/domain/numbering"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Counter is the subset of the Redis client the sequencer needs
type Counter interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// Locker serializes seeding of a counter across instances.
// The returned release func must be called once the critical section ends.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// Seeder reports how many documents of a kind already exist for a day, so a
// fresh counter continues after numbers issued before Redis held the key
type Seeder interface {
	CountForDay(ctx context.Context, kind numbering.DocumentKind, date time.Time) (int64, error)
}

// Options configures RedisSequencer
type Options struct {
	KeyPrefix   string
	KeyTTL      time.Duration
	SeedLockTTL time.Duration
}

// RedisSequencer hands out daily sequence values with INCR.
// Values may skip but never repeat while the key lives.
type RedisSequencer struct {
	counter Counter
	locker  Locker
	seeder  Seeder
	opts    Options
	logger  *zap.Logger
}

// NewRedisSequencer creates a RedisSequencer
func NewRedisSequencer(counter Counter, locker Locker, seeder Seeder, opts Options, logger *zap.Logger) *RedisSequencer {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "cafe:seq:"
	}
	if opts.KeyTTL <= 0 {
		opts.KeyTTL = 48 * time.Hour
	}
	if opts.SeedLockTTL <= 0 {
		opts.SeedLockTTL = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSequencer{counter: counter, locker: locker, seeder: seeder, opts: opts, logger: logger}
}

// Next increments and returns the counter of (kind, day)
func (s *RedisSequencer) Next(ctx context.Context, kind numbering.DocumentKind, date time.Time) (int64, error) {
	if !kind.IsValid() {
		return 0, fmt.Errorf("unknown document kind %q", kind)
	}
	key := s.key(kind, date)

	if err := s.ensureSeeded(ctx, key, kind, date); err != nil {
		return 0, err
	}

	value, err := s.counter.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisSequencer) key(kind numbering.DocumentKind, date time.Time) string {
	return s.opts.KeyPrefix + kind.String() + ":" + numbering.SequenceDate(date).Format(numbering.DateLayout)
}

// ensureSeeded initialises a missing key from the store under a lock
func (s *RedisSequencer) ensureSeeded(ctx context.Context, key string, kind numbering.DocumentKind, date time.Time) error {
	exists, err := s.counter.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check %s: %w", key, err)
	}
	if exists > 0 {
		return nil
	}

	release, err := s.locker.Lock(ctx, key+":seed", s.opts.SeedLockTTL)
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.logger.Warn("Failed to release sequence seed lock", zap.String("key", key), zap.Error(err))
		}
	}()

	exists, err = s.counter.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check %s: %w", key, err)
	}
	if exists > 0 {
		return nil
	}

	seed, err := s.seeder.CountForDay(ctx, kind, date)
	if err != nil {
		return fmt.Errorf("seed %s: %w", key, err)
	}
	if _, err := s.counter.SetNX(ctx, key, seed, s.opts.KeyTTL).Result(); err != nil {
		return fmt.Errorf("seed %s: %w", key, err)
	}
	s.logger.Info("Seeded document sequence",
		zap.String("key", key),
		zap.Int64("seed", seed),
	)
	return nil
}

// RedisLocker adapts redislock to Locker
type RedisLocker struct {
	client *redislock.Client
	retry  redislock.RetryStrategy
}

// NewRedisLocker creates a RedisLocker that retries every 50ms until the
// context ends
func NewRedisLocker(client redis.Scripter) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(client),
		retry:  redislock.LinearBackoff(50 * time.Millisecond),
	}
}

// Lock obtains key for ttl
func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("lock %s not obtained: %w", key, err)
	}
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			return nil
		}
		return err
	}, nil
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Ensure RedisSequencer implements Sequencer
var _ numbering.Sequencer = (*RedisSequencer)(nil)
