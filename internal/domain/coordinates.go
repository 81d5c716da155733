package domain

import "math"

// Mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0088

// Unreachable is the distance reported when either side of a pair has no
// coordinates. Such pairs cannot be compared and never reach a result list.
var Unreachable = math.Inf(1)

// Immutable geographic coordinates (latitude, longitude) in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// DistanceKm returns the great-circle distance between a and b in kilometers.
// A nil coordinate on either side yields Unreachable.
func DistanceKm(a, b *Coordinates) float64 {
	if a == nil || b == nil {
		return Unreachable
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push h marginally outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
