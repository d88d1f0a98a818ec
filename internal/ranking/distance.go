package ranking

import (
	"cmp"
	"fmt"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/paulmach/orb/geo"
	"github.com/tidwall/geodesic"
)

const metersPerMile = 1609.344

// Distance is a length in miles. A Distance that is not Known sorts after
// every known one; it carries no numeric value and must not be used in arithmetic.
type Distance struct {
	Miles float64
	Known bool
}

// Unknown is the distance of a restaurant whose location could not be resolved.
var Unknown = Distance{}

// Miles returns a known distance.
func Miles(miles float64) Distance {
	return Distance{Miles: miles, Known: true}
}

// Compare orders known distances ascending and puts Unknown last.
func (d Distance) Compare(other Distance) int {
	switch {
	case d.Known && other.Known:
		return cmp.Compare(d.Miles, other.Miles)
	case d.Known:
		return -1
	case other.Known:
		return 1
	default:
		return 0
	}
}

func (d Distance) String() string {
	if !d.Known {
		return "unknown"
	}

	return fmt.Sprintf("%.2f mi", d.Miles)
}

// Method names a way of measuring the distance between two points.
type Method string

const (
	// MethodGeodesic measures on the WGS84 ellipsoid.
	MethodGeodesic Method = "geodesic"
	// MethodHaversine measures on a sphere of the WGS84 equatorial radius.
	MethodHaversine Method = "haversine"
)

// Measure returns the distance in miles between two points.
type Measure func(from, to models.Coordinates) float64

// Geodesic is the shortest path on the WGS84 ellipsoid (Karney's algorithm).
func Geodesic(from, to models.Coordinates) float64 {
	var meters float64
	geodesic.WGS84.Inverse(from.Latitude, from.Longitude, to.Latitude, to.Longitude, &meters, nil, nil)

	return meters / metersPerMile
}

// Haversine is the great-circle distance on a sphere.
func Haversine(from, to models.Coordinates) float64 {
	return geo.DistanceHaversine(from.Point(), to.Point()) / metersPerMile
}

// MeasureFor resolves a configured method name.
func MeasureFor(method Method) (Measure, error) {
	switch method {
	case MethodGeodesic:
		return Geodesic, nil
	case MethodHaversine:
		return Haversine, nil
	default:
		return nil, fmt.Errorf("unsupported distance method: %s", method)
	}
}
