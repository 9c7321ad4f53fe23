package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/errors"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/resilience"
)

// Store is a byte-oriented key/value backend. Get returns an error wrapping
// apperrors.ErrCacheMiss when the key is absent or expired.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
	Name() string
}

// MemoryStore keeps entries in a ristretto cache bounded by total bytes.
type MemoryStore struct {
	cache *ristretto.Cache[string, []byte]
}

func NewMemoryStore(maxCost int64) (*MemoryStore, error) {
	if maxCost <= 0 {
		maxCost = 64 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		// roughly ten counters per expected entry at ~1KiB a response
		NumCounters: max(maxCost/100, 1000),
		MaxCost:     maxCost,
		BufferItems: 64,
		Cost:        func(v []byte) int64 { return int64(len(v)) },
	})
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	return &MemoryStore{cache: c}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, apperrors.ErrCacheMiss
	}
	return v, nil
}

// Set waits for the write buffer to drain so the entry is visible to the
// next Get. Ristretto may still reject it under cost pressure.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.SetWithTTL(key, value, 0, ttl)
	s.cache.Wait()
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.cache.Clear()
	return nil
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Close() {
	s.cache.Close()
}

// RedisStore keeps entries under keyPrefix in Redis. Every call goes through
// a circuit breaker so a dead Redis costs one fast rejection per request
// instead of a network timeout.
type RedisStore struct {
	client  *pkgredis.Client
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

func NewRedisStore(client *pkgredis.Client, breaker *resilience.CircuitBreaker) *RedisStore {
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{})
	}
	return &RedisStore{
		client:  client,
		breaker: breaker,
		logger:  slog.Default().With("component", "redis-cache"),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.breaker.Execute(func() error {
		var err error
		data, err = s.client.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			// a miss is a healthy answer and must not trip the breaker
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, apperrors.ErrCacheMiss
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.breaker.Execute(func() error {
		return s.client.Set(ctx, key, value, ttl)
	})
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.breaker.Execute(func() error {
		deleted, err := s.client.FlushByPattern(ctx, keyPrefix+"*")
		if err != nil {
			return err
		}
		s.logger.Info("redis cache cleared", "keys_deleted", deleted)
		return nil
	})
}

func (s *RedisStore) Name() string { return "redis" }

// NewStore builds the backend named by cfg.Backend. A Redis backend needs a
// connected client; without one it falls back to memory.
func NewStore(cfg config.CacheConfig, client *pkgredis.Client, breaker *resilience.CircuitBreaker) (Store, error) {
	if cfg.Backend == "redis" {
		if client != nil {
			return NewRedisStore(client, breaker), nil
		}
		slog.Warn("redis cache requested without a redis connection, using memory")
	}
	return NewMemoryStore(cfg.MemoryMaxCost)
}

func isMiss(err error) bool {
	return errors.Is(err, apperrors.ErrCacheMiss)
}
