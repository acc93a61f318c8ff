package services

import (
	"context"

	"github.com/address-registry/app/models"
)

// CacheStats summarizes resolve-cache effectiveness.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ResolveCache caches successful Resolve outcomes keyed by the raw input
// string. Only found results are cached: a cached miss would go stale the
// moment CreateOrUpdate registers the address. The optimizer clears the
// cache after any pass that merged records, since merges can move alias
// ownership between ids.
type ResolveCache interface {
	// Get returns the cached result for a raw input, if any.
	Get(ctx context.Context, key string) (*models.MatchResult, bool, error)

	// Set stores a resolve outcome.
	Set(ctx context.Context, key string, result *models.MatchResult) error

	// Delete drops a single key.
	Delete(ctx context.Context, key string) error

	// Clear drops every cached entry.
	Clear(ctx context.Context) error

	// Stats reports hit/miss counters.
	Stats(ctx context.Context) (*CacheStats, error)

	// Close releases any underlying connection.
	Close() error
}
