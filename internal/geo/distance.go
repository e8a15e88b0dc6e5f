package geo

import (
	"math"

	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
	"github.com/mmcloughlin/geohash"
)

// EarthRadiusMeters - средний радиус Земли
const EarthRadiusMeters = 6371000.0

// HaversineMeters возвращает расстояние по большому кругу между двумя точками в метрах
func HaversineMeters(a, b models.GeoPoint) float64 {
	lat1 := toRad(a.Latitude)
	lat2 := toRad(b.Latitude)
	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// sqrt(h) может немного превысить 1 из-за погрешности, asin тогда вернет NaN
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Geohash кодирует точку в geohash заданной точности
func Geohash(p models.GeoPoint, precision uint) string {
	return geohash.EncodeWithPrecision(p.Latitude, p.Longitude, precision)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
