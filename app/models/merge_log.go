package models

import (
	"time"
)

// MergeLogEntry is an append-only audit record of one cluster merge.
// Entries are never mutated after being written.
type MergeLogEntry struct {
	PrimaryID        string    `bson:"primary_id" json:"primary_id"`
	AbsorbedIDs      []string  `bson:"absorbed_ids" json:"absorbed_ids"`
	FormattedAddress string    `bson:"formatted_address" json:"formatted_address"`
	AliasCount       int       `bson:"alias_count" json:"alias_count"`
	DescriptionCount int       `bson:"description_count" json:"description_count"`
	MergedAt         time.Time `bson:"merged_at" json:"merged_at"`
}
