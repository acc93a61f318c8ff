package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"35 W Smithfield, London EC1A, UK", "35 w smithfield london ec1a uk"},
		{"Café Road", "cafe road"},
		{"  FLAT 3 -- 35  West  Smithfield ", "flat 3 35 west smithfield"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(c.in), "input %q", c.in)
	}
}

func TestTokenSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, TokenSimilarity("35 Smithfield, London", "London, 35 Smithfield"))
	assert.Equal(t, 0.0, TokenSimilarity("35 Smithfield", "Baker Street"))
	assert.Equal(t, 0.0, TokenSimilarity("", ""))

	// 3 shared tokens of 5 distinct.
	s := TokenSimilarity("35 W Smithfield London", "35 West Smithfield London")
	assert.InDelta(t, 3.0/5.0, s, 1e-9)
}

func TestTokenSimilarity_AccentFolding(t *testing.T) {
	assert.Equal(t, 1.0, TokenSimilarity("Café Road", "cafe road"))
}

func TestClusterScore(t *testing.T) {
	// Identical text at zero distance maxes out.
	assert.InDelta(t, 1.0, ClusterScore(0, "1 High St", "1 High St"), 1e-9)

	// Proximity decays linearly to zero at 1 km.
	assert.InDelta(t, 0.7*0.95+0.3, ClusterScore(50, "1 High St", "1 High St"), 1e-9)
	assert.InDelta(t, 0.3, ClusterScore(1000, "1 High St", "1 High St"), 1e-9)
	assert.InDelta(t, 0.3, ClusterScore(5000, "1 High St", "1 High St"), 1e-9)

	// At 50 m with no shared text the score stays well under threshold.
	assert.Less(t, ClusterScore(50, "1 High St", "Dock 9"), 0.85)
}

func TestDiagnose(t *testing.T) {
	d := Diagnose("35 West Smithfield", "35 West Smithfield")
	assert.Equal(t, 1.0, d.TokenJaccard)
	assert.Equal(t, 1.0, d.JaroWinkler)
	assert.Equal(t, 0, d.LevenshteinDistance)

	d = Diagnose("35 W Smithfield", "35 West Smithfield")
	assert.Greater(t, d.JaroWinkler, 0.85)
	assert.Equal(t, 3, d.LevenshteinDistance)
}
