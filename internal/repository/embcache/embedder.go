// Package embcache memoizes embedding vectors by model and text.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/matchdex/internal/db"
	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/vector"
)

// DefaultTTL bounds how long a cached vector survives a model change.
const DefaultTTL = 30 * 24 * time.Hour

// Cache outcomes, used as the "result" label of the cache counter.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultStale = "stale"
)

var cacheKeyPrefix = domain.KeyPrefix + "emb_cache:"

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config scopes cached vectors to one model. Dimensions > 0 treats cached
// vectors of any other length as stale.
type Config struct {
	Model      string
	Dimensions int
	TTL        time.Duration
}

// CachedEmbedder caches embeddings in a key-value store. Concurrent
// misses for the same text share one provider call.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	cfg        Config
	flight     singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. cacheTotal may be nil; when set it is
// labeled by "result".
func New(
	inner domain.Embedder,
	s store,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		cfg:        cfg,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached embedding or calls the inner embedder. Hits
// report zero tokens, so they are never billed against the budget.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.lookup(ctx, key); ok {
		c.count(ResultHit)
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.count(ResultMiss)

	v, err, shared := c.flight.Do(key, func() (any, error) {
		result, err := c.inner.Embed(ctx, text)
		if err != nil {
			return domain.EmbeddingResult{}, err
		}
		c.save(ctx, key, result.Embedding)
		return result, nil
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	result := v.(domain.EmbeddingResult) //nolint:forcetypeassert // only EmbeddingResult is returned above
	if shared {
		// Only the caller that triggered the request pays for it.
		result.PromptTokens, result.TotalTokens = 0, 0
	}
	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *CachedEmbedder) count(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.cfg.Model + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := vector.Decode(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.cfg.Dimensions > 0 && len(vec) != c.cfg.Dimensions {
		c.count(ResultStale)
		c.logger.Debug("Cached embedding has stale dimensions",
			zap.String("key", key), zap.Int("got", len(vec)), zap.Int("want", c.cfg.Dimensions))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) save(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, vector.Encode(vec), c.cfg.TTL); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}
