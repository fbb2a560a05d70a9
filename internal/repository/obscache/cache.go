// Package obscache caches observation fetches in a key-value store.
package obscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bioscout/internal/db"
	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
	"github.com/kailas-cloud/bioscout/internal/usecase/mapsync"
)

const cacheKeyPrefix = "bioscout:obs_cache:"

// DefaultTTL bounds how stale a cached listing can be.
const DefaultTTL = time.Minute

// store is the consumer interface for the observation cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSource caches observation listings per filter.
type CachedSource struct {
	inner      mapsync.ObservationSource
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var _ mapsync.ObservationSource = (*CachedSource)(nil)

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner mapsync.ObservationSource,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSource{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// List returns a cached listing or calls the inner source.
// Failed fetches are never cached.
func (c *CachedSource) List(ctx context.Context, f filter.Descriptor) ([]observation.Record, error) {
	key := cacheKey(f)

	if records, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return records, nil
	}

	c.incCache("miss")

	records, err := c.inner.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}

	c.putToCache(ctx, key, records)
	return records, nil
}

func (c *CachedSource) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func cacheKey(f filter.Descriptor) string {
	h := sha256.Sum256([]byte(f.String()))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedSource) getFromCache(ctx context.Context, key string) ([]observation.Record, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached observations", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var records []observation.Record
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.Warn("Failed to parse cached observations", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return records, true
}

func (c *CachedSource) putToCache(ctx context.Context, key string, records []observation.Record) {
	if records == nil {
		records = []observation.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		c.logger.Warn("Failed to encode observations for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache observations", zap.String("key", key), zap.Error(err))
	}
}
