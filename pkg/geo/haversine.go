package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const earthRadiusMeters = 6_371_000.0

// Locator is implemented by node payloads that have a position.
type Locator interface {
	Point() orb.Point
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Distance returns the great-circle distance in meters between two
// [lon, lat] points.
func Distance(a, b orb.Point) float64 {
	return Haversine(a.Lat(), a.Lon(), b.Lat(), b.Lon())
}

// Euclidean returns the straight-line distance between two planar points.
func Euclidean(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// Manhattan returns the taxicab distance between two planar points.
func Manhattan(a, b orb.Point) float64 {
	return math.Abs(a.X()-b.X()) + math.Abs(a.Y()-b.Y())
}
