package models

import (
	"time"
)

// LatLng is a WGS84 coordinate pair, street-level precision or better.
type LatLng struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Alias is a raw, as-typed input string that resolved to a canonical address.
type Alias struct {
	RawText   string    `bson:"raw_text" json:"raw_text"`
	MatchedAt time.Time `bson:"matched_at" json:"matched_at"`
}

// Description is a free-text, user-contributed note on how to find a location.
type Description struct {
	Content       string    `bson:"content" json:"content"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	ContributorID string    `bson:"contributor_id,omitempty" json:"contributor_id,omitempty"`
}

// CanonicalAddress is the single deduplicated record for one physical location.
//
// Aliases are append-only and deduplicated by RawText. Descriptions are
// append-only except during merges, which union them by exact content.
// Confidence is a derived score and is recomputed on optimization; it is
// never an independent source of truth.
type CanonicalAddress struct {
	ID               string        `bson:"_id" json:"id"`
	FormattedAddress string        `bson:"formatted_address" json:"formatted_address"`
	Location         LatLng        `bson:"location" json:"location"`
	Geohash          string        `bson:"geohash" json:"geohash"`
	Aliases          []Alias       `bson:"aliases" json:"aliases"`
	Descriptions     []Description `bson:"descriptions" json:"descriptions"`
	Summary          string        `bson:"summary,omitempty" json:"summary,omitempty"`
	Confidence       float64       `bson:"confidence" json:"confidence"`
	CreatedAt        time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at" json:"updated_at"`
}

// HasAlias reports whether rawText is already recorded on this address.
func (ca *CanonicalAddress) HasAlias(rawText string) bool {
	for _, a := range ca.Aliases {
		if a.RawText == rawText {
			return true
		}
	}
	return false
}

// HasDescription reports whether an identical description content exists.
func (ca *CanonicalAddress) HasDescription(content string) bool {
	for _, d := range ca.Descriptions {
		if d.Content == content {
			return true
		}
	}
	return false
}

// AddAlias appends rawText if absent and reports whether it was added.
func (ca *CanonicalAddress) AddAlias(rawText string, at time.Time) bool {
	if ca.HasAlias(rawText) {
		return false
	}
	ca.Aliases = append(ca.Aliases, Alias{RawText: rawText, MatchedAt: at})
	ca.UpdatedAt = at
	return true
}
