package cache

import (
	"context"
	"errors"
	"time"

	"repairtrack/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisStore caches in Redis behind a circuit breaker, so an unreachable
// Redis degrades to cache misses instead of per-request timeouts.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	cb  *infra.CircuitBreaker
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, cb: infra.NewCircuitBreaker(infra.DefaultCBConfig())}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	err := s.cb.Execute(func() error {
		b, err := s.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		val = b
		return err
	})
	if err != nil {
		s.logFailure("get", key, err)
		return nil, false
	}
	return val, val != nil
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte) {
	err := s.cb.Execute(func() error {
		return s.rdb.Set(ctx, key, val, s.ttl).Err()
	})
	if err != nil {
		s.logFailure("set", key, err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	// Invalidation is always attempted, even with the breaker open.
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) logFailure(op, key string, err error) {
	if errors.Is(err, infra.ErrCircuitOpen) {
		return
	}
	log.Debug().Err(err).Str("op", op).Str("key", key).Msg("cache unavailable")
}
