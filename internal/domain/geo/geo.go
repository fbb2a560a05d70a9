// Package geo holds map geometry: points in [longitude, latitude] order and the
// bounding boxes the map view is fitted to.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// Point is a WGS84 position. The wire order is [longitude, latitude].
type Point struct {
	Lon float64
	Lat float64
}

// NewPoint validates and creates a Point.
func NewPoint(lon, lat float64) (Point, error) {
	if !ValidateCoordinates(lat, lon) {
		return Point{}, fmt.Errorf("coordinates out of range: lon=%f lat=%f", lon, lat)
	}
	return Point{Lon: lon, Lat: lat}, nil
}

// Pair returns the point in wire order.
func (p Point) Pair() [2]float64 { return [2]float64{p.Lon, p.Lat} }

// Bounds is an axis-aligned box in degrees. The zero value is empty.
type Bounds struct {
	South, West, North, East float64
	set                      bool
}

// BoundsOf returns the smallest box containing every point.
func BoundsOf(points ...Point) Bounds {
	var b Bounds
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool { return !b.set }

// Extend returns a box grown to contain p.
func (b Bounds) Extend(p Point) Bounds {
	if !b.set {
		return Bounds{South: p.Lat, West: p.Lon, North: p.Lat, East: p.Lon, set: true}
	}
	b.South = math.Min(b.South, p.Lat)
	b.North = math.Max(b.North, p.Lat)
	b.West = math.Min(b.West, p.Lon)
	b.East = math.Max(b.East, p.Lon)
	return b
}

// Pad grows each side by ratio of the box span, the way a map widget pads a
// fitted view. Latitudes are clamped to [-90, 90].
func (b Bounds) Pad(ratio float64) Bounds {
	if !b.set || ratio <= 0 {
		return b
	}
	latPad := (b.North - b.South) * ratio
	lonPad := (b.East - b.West) * ratio
	b.South = math.Max(-90, b.South-latPad)
	b.North = math.Min(90, b.North+latPad)
	b.West -= lonPad
	b.East += lonPad
	return b
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p Point) bool {
	if !b.set {
		return false
	}
	return p.Lat >= b.South && p.Lat <= b.North && p.Lon >= b.West && p.Lon <= b.East
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{Lon: (b.West + b.East) / 2, Lat: (b.South + b.North) / 2}
}

// DiagonalMeters returns the great-circle length of the south-west to north-east diagonal.
func (b Bounds) DiagonalMeters() float64 {
	if !b.set {
		return 0
	}
	return Haversine(b.South, b.West, b.North, b.East)
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
