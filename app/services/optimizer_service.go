package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/address-registry/app/config"
	"github.com/address-registry/app/models"
	"github.com/address-registry/internal/geo"
	"github.com/address-registry/internal/search"
	"github.com/address-registry/internal/similarity"
	"github.com/address-registry/internal/store"
)

// OptimizerService is the batch job that scans the full address
// collection, clusters near-duplicate records, merges each cluster into
// one canonical record and deletes the absorbed copies.
//
// It runs as a singleton on a schedule, but is safe to invoke out of
// schedule or concurrently with itself: merges are idempotent (a merged
// cluster is a single record next pass) and deleting an already-deleted
// id is a no-op.
type OptimizerService struct {
	store  store.Store
	cache  ResolveCache         // optional; cleared after merges
	index  *search.AddressIndex // optional
	logger *zap.Logger

	clusterDistanceMeters float64
	scoreThreshold        float64
}

// NewOptimizerService wires the optimizer. cache and index may be nil.
func NewOptimizerService(st store.Store, cache ResolveCache, index *search.AddressIndex, logger *zap.Logger) *OptimizerService {
	return &OptimizerService{
		store:                 st,
		cache:                 cache,
		index:                 index,
		logger:                logger,
		clusterDistanceMeters: config.C.Optimizer.ClusterDistanceMeters,
		scoreThreshold:        config.C.Optimizer.ScoreThreshold,
	}
}

// RunOptimizationPass executes one full pass over the collection snapshot
// taken at call time. A single cluster's failure is recorded in the
// report and the pass moves on; only a failure to read the snapshot
// itself aborts the pass.
func (os *OptimizerService) RunOptimizationPass(ctx context.Context) (*models.OptimizationReport, error) {
	report := &models.OptimizationReport{StartedAt: time.Now().UTC()}

	records, err := os.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load address snapshot: %w", err)
	}
	report.RecordsScanned = len(records)

	clusters := os.clusterRecords(records)
	for _, cluster := range clusters {
		if len(cluster) < 2 {
			continue
		}
		report.ClustersFound++

		removed, err := os.mergeCluster(ctx, cluster)
		if err != nil {
			primary, members := pickPrimary(cluster)
			report.Errors = append(report.Errors, models.ClusterError{
				PrimaryID: primary.ID,
				MemberIDs: memberIDs(members),
				Error:     err.Error(),
			})
			os.logger.Error("cluster merge failed",
				zap.String("primary_id", primary.ID),
				zap.Error(err))
			continue
		}
		report.ClustersMerged++
		report.AddressesRemoved += removed
	}

	if report.ClustersMerged > 0 && os.cache != nil {
		// Merges can move alias ownership between ids; drop every cached
		// resolve result rather than track which keys are affected.
		if err := os.cache.Clear(ctx); err != nil {
			os.logger.Warn("resolve cache clear failed after merges", zap.Error(err))
		}
	}

	report.Duration = time.Since(report.StartedAt)
	os.logger.Info("optimization pass complete",
		zap.Int("records_scanned", report.RecordsScanned),
		zap.Int("clusters_found", report.ClustersFound),
		zap.Int("clusters_merged", report.ClustersMerged),
		zap.Int("addresses_removed", report.AddressesRemoved),
		zap.Int("errors", len(report.Errors)),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// clusterRecords groups the snapshot into duplicate clusters with a
// greedy single-link sweep: a record joins a cluster if it is within the
// distance gate of any member and the combined proximity/text score
// clears the threshold. O(n²) pairwise comparison; a known scaling
// limit, not a correctness one.
func (os *OptimizerService) clusterRecords(records []models.CanonicalAddress) [][]models.CanonicalAddress {
	clusters := make([][]models.CanonicalAddress, 0, len(records))
	visited := make([]bool, len(records))

	for i := range records {
		if visited[i] {
			continue
		}
		cluster := []models.CanonicalAddress{records[i]}
		visited[i] = true

		for j := i + 1; j < len(records); j++ {
			if visited[j] {
				continue
			}
			for _, member := range cluster {
				d := geo.DistanceMeters(member.Location, records[j].Location)
				if d > os.clusterDistanceMeters {
					continue
				}
				score := similarity.ClusterScore(d, member.FormattedAddress, records[j].FormattedAddress)
				if score >= os.scoreThreshold {
					cluster = append(cluster, records[j])
					visited[j] = true
					break
				}
			}
		}

		clusters = append(clusters, cluster)
	}
	return clusters
}

// mergeCluster merges one cluster into its primary record, writes the
// audit entry and deletes the absorbed records. Returns how many records
// were removed.
func (os *OptimizerService) mergeCluster(ctx context.Context, cluster []models.CanonicalAddress) (int, error) {
	primary, losers := pickPrimary(cluster)
	merged := mergeRecords(primary, losers, cluster)

	if err := os.store.ReplaceMerged(ctx, merged); err != nil {
		return 0, fmt.Errorf("persist merged primary: %w", err)
	}

	entry := models.MergeLogEntry{
		PrimaryID:        merged.ID,
		AbsorbedIDs:      memberIDs(losers),
		FormattedAddress: merged.FormattedAddress,
		AliasCount:       len(merged.Aliases),
		DescriptionCount: len(merged.Descriptions),
		MergedAt:         time.Now().UTC(),
	}
	if err := os.store.AppendMergeLog(ctx, entry); err != nil {
		return 0, fmt.Errorf("write merge audit entry: %w", err)
	}

	removed := 0
	for _, loser := range losers {
		if err := os.store.Delete(ctx, loser.ID); err != nil {
			return removed, fmt.Errorf("delete absorbed record %s: %w", loser.ID, err)
		}
		removed++
	}

	if os.index != nil {
		if err := os.index.Remove(memberIDs(losers)); err != nil {
			os.logger.Warn("search deindex failed", zap.Error(err))
		}
		if err := os.index.Upsert(merged); err != nil {
			os.logger.Warn("search index upsert failed", zap.Error(err), zap.String("id", merged.ID))
		}
	}

	os.logger.Info("merged duplicate cluster",
		zap.String("primary_id", merged.ID),
		zap.Strings("absorbed_ids", entry.AbsorbedIDs),
		zap.Float64("confidence", merged.Confidence))

	return removed, nil
}

// pickPrimary selects the surviving record: highest completeness score,
// ties broken by earliest creation then id so merges are deterministic
// across passes.
func pickPrimary(cluster []models.CanonicalAddress) (models.CanonicalAddress, []models.CanonicalAddress) {
	best := 0
	for i := 1; i < len(cluster); i++ {
		ci, cb := Completeness(&cluster[i]), Completeness(&cluster[best])
		switch {
		case ci > cb:
			best = i
		case ci == cb && cluster[i].CreatedAt.Before(cluster[best].CreatedAt):
			best = i
		case ci == cb && cluster[i].CreatedAt.Equal(cluster[best].CreatedAt) && cluster[i].ID < cluster[best].ID:
			best = i
		}
	}

	losers := make([]models.CanonicalAddress, 0, len(cluster)-1)
	for i := range cluster {
		if i != best {
			losers = append(losers, cluster[i])
		}
	}
	return cluster[best], losers
}

// mergeRecords unions the cluster's content onto the primary: aliases
// deduplicated by raw text keeping the earliest sighting, descriptions
// deduplicated by exact content, confidence rescored for the merged
// evidence, geohash recomputed. The primary's summary is preferred;
// regenerating it from the merged descriptions is a collaborator's job.
func mergeRecords(primary models.CanonicalAddress, losers []models.CanonicalAddress, cluster []models.CanonicalAddress) *models.CanonicalAddress {
	merged := primary
	merged.Aliases = append([]models.Alias(nil), primary.Aliases...)
	merged.Descriptions = append([]models.Description(nil), primary.Descriptions...)

	// Deterministic absorption order regardless of snapshot order.
	ordered := append([]models.CanonicalAddress(nil), losers...)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	aliasAt := make(map[string]int, len(merged.Aliases))
	for i, a := range merged.Aliases {
		aliasAt[a.RawText] = i
	}
	seenContent := make(map[string]struct{}, len(merged.Descriptions))
	for _, d := range merged.Descriptions {
		seenContent[d.Content] = struct{}{}
	}

	for _, loser := range ordered {
		for _, a := range loser.Aliases {
			if i, ok := aliasAt[a.RawText]; ok {
				if a.MatchedAt.Before(merged.Aliases[i].MatchedAt) {
					merged.Aliases[i].MatchedAt = a.MatchedAt
				}
				continue
			}
			aliasAt[a.RawText] = len(merged.Aliases)
			merged.Aliases = append(merged.Aliases, a)
		}
		for _, d := range loser.Descriptions {
			if _, ok := seenContent[d.Content]; ok {
				continue
			}
			seenContent[d.Content] = struct{}{}
			merged.Descriptions = append(merged.Descriptions, d)
		}
		if merged.Summary == "" && loser.Summary != "" {
			merged.Summary = loser.Summary
		}
	}

	merged.Confidence = MergedConfidence(cluster)
	merged.Geohash = geo.Encode(merged.Location)
	merged.UpdatedAt = time.Now().UTC()
	return &merged
}

func memberIDs(members []models.CanonicalAddress) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}
