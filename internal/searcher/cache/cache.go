// Package cache stores formatted search and answer responses keyed by the
// normalized request, with singleflight so concurrent identical requests
// compute once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/internal/searcher/results"
	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/metrics"
)

const keyPrefix = "quran:"

// Stats is the JSON shape served by the cache stats endpoint.
type Stats struct {
	Backend string  `json:"backend"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

type Cache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New wraps store. m may be nil.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "response-cache", "backend", store.Name()),
	}
}

// Key identifies a response by request kind, language, normalized words and
// limit. Word order is kept because it decides which form of a repeated
// term keeps its weight.
func Key(kind, lang string, words []string, limit int) string {
	raw := fmt.Sprintf("%s|%s|%s|limit=%d", kind, lang, strings.Join(words, " "), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// Get returns the cached response for key. Backend failures count as
// misses.
func (c *Cache) Get(ctx context.Context, key string) (*results.Response, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !isMiss(err) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return nil, false
	}
	var resp results.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Error("cache entry unreadable", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	return &resp, true
}

func (c *Cache) Set(ctx context.Context, key string, resp *results.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response for key or computes, stores and
// returns it. Concurrent callers with the same key share one computation.
// The bool reports a cache hit. Each caller gets its own copy of the
// response struct.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func() (*results.Response, error)) (*results.Response, bool, error) {
	if resp, ok := c.Get(ctx, key); ok {
		return resp, true, nil
	}
	val, err, _ := c.group.Do(key, func() (any, error) {
		resp, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	resp := *val.(*results.Response)
	return &resp, false, nil
}

// Invalidate drops every cached response.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("invalidating %s cache: %w", c.store.Name(), err)
	}
	c.logger.Info("cache invalidated")
	return nil
}

func (c *Cache) Stats() Stats {
	s := Stats{
		Backend: c.store.Name(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

func (c *Cache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *Cache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
