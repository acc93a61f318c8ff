package models

import (
	"time"
)

// ClusterError records a single cluster whose merge failed. The pass
// continues past it; the next scheduled pass will re-discover the cluster.
type ClusterError struct {
	PrimaryID string   `json:"primary_id"`
	MemberIDs []string `json:"member_ids"`
	Error     string   `json:"error"`
}

// OptimizationReport summarizes one optimization pass over the full
// address collection.
type OptimizationReport struct {
	RecordsScanned   int            `json:"records_scanned"`
	ClustersFound    int            `json:"clusters_found"`
	ClustersMerged   int            `json:"clusters_merged"`
	AddressesRemoved int            `json:"addresses_removed"`
	Errors           []ClusterError `json:"errors,omitempty"`
	StartedAt        time.Time      `json:"started_at"`
	Duration         time.Duration  `json:"duration"`
}

// HasErrors reports whether any cluster failed during the pass.
func (r *OptimizationReport) HasErrors() bool {
	return len(r.Errors) > 0
}
