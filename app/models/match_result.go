package models

// MatchStrategy identifies which lookup tier produced a match.
type MatchStrategy string

const (
	MatchStrategyExact     MatchStrategy = "exact"
	MatchStrategyAlias     MatchStrategy = "alias"
	MatchStrategyProximity MatchStrategy = "proximity"
)

// Not-found reasons carried on a MatchResult.
const (
	ReasonNoMatch      = "no_match"
	ReasonUngeocodable = "ungeocodable"
)

// MatchResult is the ephemeral outcome of resolving a raw address string.
// It is not persisted; a cached copy may be served for repeat lookups.
type MatchResult struct {
	Found    bool              `json:"found"`
	Address  *CanonicalAddress `json:"address,omitempty"`
	Strategy MatchStrategy     `json:"strategy,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

// FoundResult builds a hit for the given tier.
func FoundResult(addr *CanonicalAddress, strategy MatchStrategy) *MatchResult {
	return &MatchResult{Found: true, Address: addr, Strategy: strategy}
}

// NotFoundResult builds a miss with a reason the caller can act on.
func NotFoundResult(reason string) *MatchResult {
	return &MatchResult{Found: false, Reason: reason}
}
