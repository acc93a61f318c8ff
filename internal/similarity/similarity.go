// Package similarity scores how alike two address strings are. The token
// Jaccard measure drives duplicate clustering; the edit-distance measures
// are surfaced only as diagnostics on duplicate previews.
package similarity

import (
	"math"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/mozillazg/go-unidecode"
	"github.com/xrash/smetrics"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Weights of the combined cluster score. Proximity dominates: two records
// 50 m apart with unrelated text should not cluster, but identical text
// alone cannot overcome distance either.
const (
	proximityWeight = 0.7
	textWeight      = 0.3
)

// stripDiacritics removes combining marks so "Café Rd" and "Cafe Rd"
// tokenize identically.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Normalize lowercases, folds accents to ASCII and collapses punctuation
// into spaces.
func Normalize(s string) string {
	s = unidecode.Unidecode(stripDiacritics(s))
	var sb strings.Builder
	prevSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			prevSpace = false
		} else if !prevSpace {
			sb.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(sb.String())
}

// Tokens returns the normalized word set of an address string.
func Tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(s)) {
		set[w] = struct{}{}
	}
	return set
}

// TokenSimilarity is the Jaccard similarity of the two normalized word
// sets, in [0,1]. Two empty strings score 0, not 1: an address with no
// tokens carries no evidence of being anything.
func TokenSimilarity(a, b string) float64 {
	sa, sb := Tokens(a), Tokens(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	intersection := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// ClusterScore combines geographic proximity and text similarity into the
// duplicate-clustering score. distanceMeters is the haversine distance
// between the two records; the proximity term decays linearly to zero at
// one kilometer.
func ClusterScore(distanceMeters float64, a, b string) float64 {
	proximity := math.Max(0, 1-distanceMeters/1000)
	return proximityWeight*proximity + textWeight*TokenSimilarity(a, b)
}

// Diagnostics carries the auxiliary similarity measures reported on
// duplicate previews. None of these feed the merge decision.
type Diagnostics struct {
	TokenJaccard        float64 `json:"token_jaccard"`
	JaroWinkler         float64 `json:"jaro_winkler"`
	LevenshteinDistance int     `json:"levenshtein_distance"`
}

// Diagnose computes the preview diagnostics for a candidate pair.
func Diagnose(a, b string) Diagnostics {
	na, nb := Normalize(a), Normalize(b)
	return Diagnostics{
		TokenJaccard:        TokenSimilarity(a, b),
		JaroWinkler:         smetrics.JaroWinkler(na, nb, 0.7, 4),
		LevenshteinDistance: levenshtein.ComputeDistance(na, nb),
	}
}
