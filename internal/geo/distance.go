// Package geo holds the distance helpers shared by ward resolution, hotspot
// detection, and priority scoring.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometres between two
// WGS-84 coordinates using the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLambda/2)*math.Sin(dLambda/2)

	// Rounding can push a a hair outside [0,1] for antipodal points, which
	// would turn sqrt(1-a) into NaN.
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// PlanarDistance returns the Euclidean distance between two points measured
// directly in (longitude, latitude) degree space. It ignores the sphere and is
// only meaningful for ranking nearby candidates.
func PlanarDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Hypot(lon2-lon1, lat2-lat1)
}

// Round rounds v to the given number of decimal digits.
func Round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
