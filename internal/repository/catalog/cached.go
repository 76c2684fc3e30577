package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/giftwise/giftwise/internal/cache"
	"github.com/giftwise/giftwise/internal/domain"
	"github.com/giftwise/giftwise/internal/metrics"
)

const cacheKeyPrefix = "giftwise:search:"

// CachedSearcher caches per-keyword search results in a key-value store.
// Keys are lower-cased trimmed keywords; an expired entry is treated as
// absent and re-fetched. Only successful searches are cached.
type CachedSearcher struct {
	inner  Searcher
	store  cache.Store
	ttl    time.Duration
	logger *zap.Logger
}

// Compile-time check: CachedSearcher implements Searcher.
var _ Searcher = (*CachedSearcher)(nil)

// NewCached creates a caching decorator around a Searcher.
func NewCached(inner Searcher, store cache.Store, ttl time.Duration, logger *zap.Logger) *CachedSearcher {
	return &CachedSearcher{inner: inner, store: store, ttl: ttl, logger: logger}
}

// Search returns cached results when fresh, otherwise delegates to the
// inner searcher and caches its result.
func (c *CachedSearcher) Search(ctx context.Context, keyword string) ([]domain.Product, error) {
	normalized := strings.ToLower(strings.TrimSpace(keyword))
	if normalized == "" {
		return nil, nil
	}
	key := cacheKeyPrefix + normalized

	if products, ok := c.getFromCache(ctx, key); ok {
		metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
		return products, nil
	}
	metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()

	products, err := c.inner.Search(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", normalized, err)
	}

	c.putToCache(ctx, key, products)
	return products, nil
}

func (c *CachedSearcher) getFromCache(ctx context.Context, key string) ([]domain.Product, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			c.logger.Warn("Failed to read search cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		c.logger.Warn("Failed to parse cached search result", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return products, true
}

func (c *CachedSearcher) putToCache(ctx context.Context, key string, products []domain.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("Failed to encode search result for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache search result", zap.String("key", key), zap.Error(err))
	}
}
