package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/address-registry/app/models"
)

func TestDistanceMeters_ZeroForSamePoint(t *testing.T) {
	p := models.LatLng{Lat: 51.5190, Lng: -0.1005}
	assert.Equal(t, 0.0, DistanceMeters(p, p))
}

func TestDistanceMeters_KnownPairs(t *testing.T) {
	// St Paul's Cathedral to Smithfield Market, roughly 540 m on the ground.
	stPauls := models.LatLng{Lat: 51.5138, Lng: -0.0984}
	smithfield := models.LatLng{Lat: 51.5186, Lng: -0.1005}

	d := DistanceMeters(stPauls, smithfield)
	assert.InDelta(t, 552, d, 30)

	// Symmetry.
	assert.InDelta(t, d, DistanceMeters(smithfield, stPauls), 1e-9)
}

func TestDistanceMeters_SmallOffsets(t *testing.T) {
	// One degree of latitude is ~111.19 km with R=6371000, so 1e-4 degrees
	// is ~11.1 m. These magnitudes are what the matcher thresholds on.
	base := models.LatLng{Lat: 51.5190, Lng: -0.1005}
	shifted := models.LatLng{Lat: base.Lat + 0.0001, Lng: base.Lng}

	d := DistanceMeters(base, shifted)
	assert.InDelta(t, 11.12, d, 0.05)
}

func TestEncode_StableAndPrefixed(t *testing.T) {
	p := models.LatLng{Lat: 51.5190, Lng: -0.1005}

	h := Encode(p)
	assert.Len(t, h, GeohashPrecision)
	assert.Equal(t, h, Encode(p))

	// Nearby points share a long common prefix; far points do not.
	near := Encode(models.LatLng{Lat: 51.51901, Lng: -0.10051})
	assert.Equal(t, h[:6], near[:6])

	far := Encode(models.LatLng{Lat: -33.86, Lng: 151.21})
	assert.NotEqual(t, h[:2], far[:2])
}
