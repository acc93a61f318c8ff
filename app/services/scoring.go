package services

import (
	"math"
	"regexp"
	"strings"

	"github.com/address-registry/app/models"
)

// postcodeRe matches UK-style postcodes. A deliberate regional assumption:
// swap this predicate to port the registry to another region.
var postcodeRe = regexp.MustCompile(`(?i)[A-Z]{1,2}[0-9][A-Z0-9]? ?[0-9][A-Z]{2}`)

func hasPostcode(formatted string) bool {
	return postcodeRe.MatchString(formatted)
}

func hasComma(formatted string) bool {
	return strings.Contains(formatted, ",")
}

// Completeness ranks how much accumulated evidence a record carries. It is
// uncapped and used only to choose the surviving record of a merge — it is
// never persisted. Not interchangeable with Confidence: the weights and
// the lack of a cap are both load-bearing for ranking.
func Completeness(addr *models.CanonicalAddress) float64 {
	score := 0.2*float64(len(addr.Aliases)) + 0.3*float64(len(addr.Descriptions))
	if hasComma(addr.FormattedAddress) {
		score += 0.2
	}
	if hasPostcode(addr.FormattedAddress) {
		score += 0.3
	}
	return score
}

// Confidence is the persisted [0,1] quality signal, recomputed during
// optimization. Alias and description counts saturate at three so a pile
// of near-identical submissions cannot inflate the score.
func Confidence(addr *models.CanonicalAddress) float64 {
	score := 0.1*math.Min(float64(len(addr.Aliases)), 3) +
		0.1*math.Min(float64(len(addr.Descriptions)), 3)
	if hasComma(addr.FormattedAddress) {
		score += 0.2
	}
	if hasPostcode(addr.FormattedAddress) {
		score += 0.2
	}
	return math.Min(1, score)
}

// MergedConfidence scores the surviving record of a merge: the best
// individual confidence plus 0.1 for every extra corroborating cluster
// member, capped at 1.
func MergedConfidence(members []models.CanonicalAddress) float64 {
	best := 0.0
	for i := range members {
		if c := Confidence(&members[i]); c > best {
			best = c
		}
	}
	return math.Min(1, best+0.1*float64(len(members)-1))
}
