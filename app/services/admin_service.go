package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/address-registry/app/models"
	"github.com/address-registry/internal/geo"
	"github.com/address-registry/internal/search"
	"github.com/address-registry/internal/similarity"
	"github.com/address-registry/internal/store"
)

// DuplicateCandidate is one read-only duplicate cluster as the optimizer
// would see it, with pairwise diagnostics against the would-be primary so
// an operator can sanity-check a merge before scheduling it.
type DuplicateCandidate struct {
	PrimaryID string            `json:"primary_id"`
	Members   []DuplicateMember `json:"members"`
}

// DuplicateMember describes one absorbable record in a candidate cluster.
type DuplicateMember struct {
	ID               string                 `json:"id"`
	FormattedAddress string                 `json:"formatted_address"`
	DistanceMeters   float64                `json:"distance_meters"`
	Score            float64                `json:"score"`
	Diagnostics      similarity.Diagnostics `json:"diagnostics"`
}

// RegistryStats is the admin-facing health snapshot.
type RegistryStats struct {
	AddressCount int64       `json:"address_count"`
	Cache        *CacheStats `json:"cache,omitempty"`
}

// AdminService backs the operator endpoints: duplicate previews, stats,
// cache invalidation and search reindexing. It never mutates address
// records; the optimizer owns that.
type AdminService struct {
	store     store.Store
	cache     ResolveCache         // optional
	index     *search.AddressIndex // optional
	optimizer *OptimizerService
	logger    *zap.Logger
}

// NewAdminService wires the admin surface.
func NewAdminService(st store.Store, cache ResolveCache, index *search.AddressIndex, optimizer *OptimizerService, logger *zap.Logger) *AdminService {
	return &AdminService{
		store:     st,
		cache:     cache,
		index:     index,
		optimizer: optimizer,
		logger:    logger,
	}
}

// RunOptimization triggers a synchronous optimization pass.
func (s *AdminService) RunOptimization(ctx context.Context) (*models.OptimizationReport, error) {
	return s.optimizer.RunOptimizationPass(ctx)
}

// PreviewDuplicates runs the optimizer's clustering over the current
// snapshot without merging anything, and annotates each absorbable member
// with distance and text diagnostics relative to the primary.
func (s *AdminService) PreviewDuplicates(ctx context.Context) ([]DuplicateCandidate, error) {
	records, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load address snapshot: %w", err)
	}

	candidates := []DuplicateCandidate{}
	for _, cluster := range s.optimizer.clusterRecords(records) {
		if len(cluster) < 2 {
			continue
		}
		primary, losers := pickPrimary(cluster)

		candidate := DuplicateCandidate{PrimaryID: primary.ID}
		for _, m := range losers {
			d := geo.DistanceMeters(primary.Location, m.Location)
			candidate.Members = append(candidate.Members, DuplicateMember{
				ID:               m.ID,
				FormattedAddress: m.FormattedAddress,
				DistanceMeters:   d,
				Score:            similarity.ClusterScore(d, primary.FormattedAddress, m.FormattedAddress),
				Diagnostics:      similarity.Diagnose(primary.FormattedAddress, m.FormattedAddress),
			})
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

// Stats reports collection size and resolve-cache counters.
func (s *AdminService) Stats(ctx context.Context) (*RegistryStats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := &RegistryStats{AddressCount: count}
	if s.cache != nil {
		if cs, err := s.cache.Stats(ctx); err == nil {
			stats.Cache = cs
		}
	}
	return stats, nil
}

// InvalidateCache drops every cached resolve result.
func (s *AdminService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

// Reindex pushes every stored record into the search index. Used after
// index configuration changes or a Meilisearch rebuild.
func (s *AdminService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, fmt.Errorf("search index not configured")
	}
	records, err := s.store.All(ctx)
	if err != nil {
		return 0, err
	}
	for i := range records {
		if err := s.index.Upsert(&records[i]); err != nil {
			return i, fmt.Errorf("index %s: %w", records[i].ID, err)
		}
	}
	s.logger.Info("reindexed addresses", zap.Int("count", len(records)))
	return len(records), nil
}
