package responses

import (
	"github.com/address-registry/app/models"
	"github.com/address-registry/internal/search"
)

// ResolveAddressResponse reports the match outcome for a raw input.
type ResolveAddressResponse struct {
	Found            bool                     `json:"found"`
	Strategy         string                   `json:"strategy,omitempty"`
	Reason           string                   `json:"reason,omitempty"`
	Address          *models.CanonicalAddress `json:"address,omitempty"`
	ProcessingTimeMs int64                    `json:"processing_time_ms"`
}

// ValidateAddressResponse returns the canonical record a raw input was
// attached to.
type ValidateAddressResponse struct {
	Address *models.CanonicalAddress `json:"address"`
}

// SearchAddressResponse wraps search index hits.
type SearchAddressResponse struct {
	Query string            `json:"query"`
	Hits  []search.Document `json:"hits"`
	Total int               `json:"total"`
}

// OptimizationResponse wraps a completed optimization pass report.
type OptimizationResponse struct {
	RecordsScanned   int                  `json:"records_scanned"`
	ClustersFound    int                  `json:"clusters_found"`
	ClustersMerged   int                  `json:"clusters_merged"`
	AddressesRemoved int                  `json:"addresses_removed"`
	Errors           []models.ClusterError `json:"errors,omitempty"`
	DurationMs       int64                `json:"duration_ms"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse is the uniform envelope for operations without a
// dedicated response body.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthCheckResponse reports service liveness.
type HealthCheckResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
