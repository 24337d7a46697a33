// Package geo holds the great-circle math used to rank restaurants by
// distance: haversine distance, the spherical centroid of a set of
// points and the latitude/longitude box used as a cheap prefilter.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// kmPerDegree is the length of one degree of latitude.
const kmPerDegree = 111.32

// ErrNoPoints is returned by Centroid for an empty input.
var ErrNoPoints = errors.New("geo: no points")

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Haversine returns the great-circle distance between a and b in km.
func Haversine(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h a hair above 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// Centroid returns the spherical mean of points: every point is turned
// into a unit vector, the vectors are averaged and the mean is turned
// back into latitude/longitude with atan2.
func Centroid(points []Point) (Point, error) {
	if len(points) == 0 {
		return Point{}, ErrNoPoints
	}
	var x, y, z float64
	for _, p := range points {
		lat, lon := radians(p.Lat), radians(p.Lon)
		x += math.Cos(lat) * math.Cos(lon)
		y += math.Cos(lat) * math.Sin(lon)
		z += math.Sin(lat)
	}
	n := float64(len(points))
	x, y, z = x/n, y/n, z/n

	lon := math.Atan2(y, x)
	lat := math.Atan2(z, math.Sqrt(x*x+y*y))
	return Point{Lat: degrees(lat), Lon: degrees(lon)}, nil
}

// Box is an axis-aligned latitude/longitude rectangle.  When LonOpen
// is set the box spans every longitude and only the latitude bounds
// apply; that happens near the poles or across the antimeridian.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	LonOpen        bool
}

// BoundingBox returns the box that encloses every point within
// radiusKm of center.
func BoundingBox(center Point, radiusKm float64) Box {
	latDeg := radiusKm / kmPerDegree
	lonDeg := radiusKm / (kmPerDegree * math.Max(1e-6, math.Abs(math.Cos(radians(center.Lat)))))

	b := Box{
		MinLat: center.Lat - latDeg,
		MaxLat: center.Lat + latDeg,
		MinLon: center.Lon - lonDeg,
		MaxLon: center.Lon + lonDeg,
	}
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLon < -180 || b.MaxLon > 180 {
		b.LonOpen = true
		b.MinLon, b.MaxLon = -180, 180
	}
	b.MinLat = math.Max(b.MinLat, -90)
	b.MaxLat = math.Min(b.MaxLat, 90)
	return b
}

// Contains reports whether p falls inside the box (bounds inclusive).
func (b Box) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	return b.LonOpen || (p.Lon >= b.MinLon && p.Lon <= b.MaxLon)
}

func radians(deg float64) float64 { return deg * math.Pi / 180.0 }

func degrees(rad float64) float64 { return rad * 180.0 / math.Pi }
