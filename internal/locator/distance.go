package locator

import (
	"math"

	"github.com/ibrahimansoor/location-bot/internal/domain"
)

// earthRadiusMiles is the mean Earth radius.
const earthRadiusMiles = 3958.8

const metersPerMile = 1609.34

// DistanceMiles returns the great-circle distance between two coordinates
// using the haversine formula.
func DistanceMiles(a, b domain.Coordinates) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
