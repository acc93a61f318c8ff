package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/address-registry/app/models"
)

func addrWith(formatted string, aliases, descriptions int) *models.CanonicalAddress {
	a := &models.CanonicalAddress{FormattedAddress: formatted}
	for i := 0; i < aliases; i++ {
		a.Aliases = append(a.Aliases, models.Alias{RawText: formatted + string(rune('a'+i))})
	}
	for i := 0; i < descriptions; i++ {
		a.Descriptions = append(a.Descriptions, models.Description{Content: string(rune('a' + i))})
	}
	return a
}

func TestHasPostcode(t *testing.T) {
	assert.True(t, hasPostcode("35 West Smithfield, London EC1A 9HX, UK"))
	assert.True(t, hasPostcode("flat 2, sw1a 1aa"))
	assert.False(t, hasPostcode("35 West Smithfield, London"))
	assert.False(t, hasPostcode(""))
}

func TestCompleteness(t *testing.T) {
	// 2 aliases, 1 description, comma, postcode.
	a := addrWith("35 West Smithfield, London EC1A 9HX, UK", 2, 1)
	assert.InDelta(t, 0.2*2+0.3*1+0.2+0.3, Completeness(a), 1e-9)

	// Uncapped: piles of evidence keep ranking higher.
	b := addrWith("35 West Smithfield, London EC1A 9HX, UK", 10, 10)
	assert.Greater(t, Completeness(b), 5.0)
	assert.Greater(t, Completeness(b), Completeness(a))

	// Bare text with no evidence.
	assert.InDelta(t, 0.0, Completeness(addrWith("plain", 0, 0)), 1e-9)
}

func TestConfidence(t *testing.T) {
	// Counts saturate at 3, total caps at 1.
	a := addrWith("35 West Smithfield, London EC1A 9HX, UK", 2, 1)
	assert.InDelta(t, 0.1*2+0.1*1+0.2+0.2, Confidence(a), 1e-9)

	b := addrWith("35 West Smithfield, London EC1A 9HX, UK", 9, 9)
	assert.InDelta(t, 1.0, Confidence(b), 1e-9)

	c := addrWith("no postcode no comma", 1, 0)
	assert.InDelta(t, 0.1, Confidence(c), 1e-9)
}

func TestConfidence_MonotoneInDescriptions(t *testing.T) {
	a := addrWith("35 West Smithfield, London EC1A 9HX, UK", 1, 0)
	prev := Confidence(a)
	for i := 0; i < 6; i++ {
		a.Descriptions = append(a.Descriptions, models.Description{Content: string(rune('a' + i))})
		cur := Confidence(a)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestMergedConfidence(t *testing.T) {
	members := []models.CanonicalAddress{
		*addrWith("35 West Smithfield, London EC1A 9HX, UK", 1, 0), // 0.1+0.2+0.2 = 0.5
		*addrWith("no evidence", 0, 0),                             // 0.0
		*addrWith("no evidence either", 0, 0),                      // 0.0
	}
	// Best individual 0.5, plus 0.1 per extra member.
	assert.InDelta(t, 0.7, MergedConfidence(members), 1e-9)

	// Capped at 1.
	big := []models.CanonicalAddress{
		*addrWith("35 West Smithfield, London EC1A 9HX, UK", 9, 9),
		*addrWith("x", 0, 0),
		*addrWith("y", 0, 0),
	}
	assert.InDelta(t, 1.0, MergedConfidence(big), 1e-9)
}
