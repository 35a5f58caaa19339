// Package geo provides postal-code resolution and great-circle distance for
// the proximity matcher.
package geo

import (
	"math"

	"github.com/harborview-living/directory-cli/internal/model"
)

// EarthRadiusMiles is the mean Earth radius used for haversine distances.
const EarthRadiusMiles = 3958.8

// DistanceMiles returns the great-circle distance between two points using
// the haversine formula.
func DistanceMiles(a, b model.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(h)))
}

// RoundMiles rounds a distance to one decimal place for display. Sorting
// always uses the unrounded value.
func RoundMiles(miles float64) float64 {
	return math.Round(miles*10) / 10
}
