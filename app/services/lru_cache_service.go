package services

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/address-registry/app/models"
)

// LRUCacheService is the in-process ResolveCache used when no Redis is
// configured, and as the default for local development.
type LRUCacheService struct {
	cache  *lru.Cache[string, *models.MatchResult]
	logger *zap.Logger

	hits   int64
	misses int64
}

// NewLRUCacheService creates an in-memory resolve cache of the given size.
func NewLRUCacheService(size int, logger *zap.Logger) (*LRUCacheService, error) {
	cache, err := lru.New[string, *models.MatchResult](size)
	if err != nil {
		return nil, fmt.Errorf("create LRU cache: %w", err)
	}
	return &LRUCacheService{cache: cache, logger: logger}, nil
}

// Get implements ResolveCache.
func (cs *LRUCacheService) Get(ctx context.Context, key string) (*models.MatchResult, bool, error) {
	if result, found := cs.cache.Get(key); found {
		atomic.AddInt64(&cs.hits, 1)
		cs.logger.Debug("resolve cache hit", zap.String("key", key))
		return result, true, nil
	}
	atomic.AddInt64(&cs.misses, 1)
	return nil, false, nil
}

// Set implements ResolveCache.
func (cs *LRUCacheService) Set(ctx context.Context, key string, result *models.MatchResult) error {
	cs.cache.Add(key, result)
	return nil
}

// Delete implements ResolveCache.
func (cs *LRUCacheService) Delete(ctx context.Context, key string) error {
	cs.cache.Remove(key)
	return nil
}

// Clear implements ResolveCache.
func (cs *LRUCacheService) Clear(ctx context.Context) error {
	cs.cache.Purge()
	cs.logger.Info("cleared resolve cache")
	return nil
}

// Stats implements ResolveCache.
func (cs *LRUCacheService) Stats(ctx context.Context) (*CacheStats, error) {
	hits := atomic.LoadInt64(&cs.hits)
	misses := atomic.LoadInt64(&cs.misses)
	total := hits + misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(cs.cache.Len()),
	}, nil
}

// Close implements ResolveCache.
func (cs *LRUCacheService) Close() error { return nil }
