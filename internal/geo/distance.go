// Package geo provides the geospatial primitives the registry is built on:
// great-circle distance and geohash encoding.
package geo

import (
	"math"

	"github.com/address-registry/app/models"
)

// EarthRadiusMeters is the mean Earth radius used for haversine distance.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the haversine distance in meters between two
// points. Ellipsoid correction is ignored; at the 10–50 m thresholds this
// registry works with, the approximation error is irrelevant.
func DistanceMeters(a, b models.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}
