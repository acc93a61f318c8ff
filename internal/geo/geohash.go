package geo

import (
	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/address-registry/app/models"
)

// GeohashPrecision is the number of geohash characters stored on a record.
// Nine characters bound a cell to roughly 5 m, comfortably inside the
// duplicate-distance thresholds.
const GeohashPrecision = 9

// Encode returns the geohash for a coordinate at the registry's precision.
// The hash is a query-efficiency aid for spatial bucketing, never a
// correctness input.
func Encode(p models.LatLng) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lng, GeohashPrecision)
}
