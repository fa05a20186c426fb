package geo

import (
	"errors"
	"math"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

const earthRadiusKm = 6371.0

var ErrDegenerateRing = errors.New("ring is degenerate")

// DistanceKm returns the great-circle (haversine) distance between a and b
// in kilometers. Symmetric, and zero for identical points.
func DistanceKm(a, b Point) float64 {
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dPhi := radians(b.Lat - a.Lat)
	dLambda := radians(b.Lng - a.Lng)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// PointInRing reports whether pt lies inside the closed ring (first vertex
// equal to the last). Boundary points count as inside, so a destination
// exactly on a zone edge does not flap between serviceable and not.
func PointInRing(pt Point, ring []Point) bool {
	n := len(ring)
	if n < 4 {
		return false
	}
	x := pt.Lng
	y := pt.Lat

	inside := false
	for i := 0; i < n-1; i++ {
		x1, y1 := ring[i].Lng, ring[i].Lat
		x2, y2 := ring[i+1].Lng, ring[i+1].Lat

		if onSegment(x, y, x1, y1, x2, y2) {
			return true
		}

		intersects := ((y1 > y) != (y2 > y)) &&
			(x < (x2-x1)*(y-y1)/(y2-y1+1e-12)+x1)
		if intersects {
			inside = !inside
		}
	}
	return inside
}

// RingArea returns the planar shoelace area of the closed ring in squared
// degrees. Zones are city-scale, so planar area is good enough for the
// "smallest zone wins" ordering; it is never shown to users.
func RingArea(ring []Point) float64 {
	n := len(ring)
	if n < 4 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n-1; i++ {
		sum += ring[i].Lng*ring[i+1].Lat - ring[i+1].Lng*ring[i].Lat
	}
	return math.Abs(sum) / 2
}

// NormalizeRing closes an open ring by appending the first vertex, then
// validates it: at least 3 distinct vertices and non-zero area. Collinear
// or tiny rings are rejected.
func NormalizeRing(ring []Point) ([]Point, error) {
	if len(ring) < 3 {
		return nil, ErrDegenerateRing
	}
	closed := ring
	if ring[0] != ring[len(ring)-1] {
		closed = make([]Point, 0, len(ring)+1)
		closed = append(closed, ring...)
		closed = append(closed, ring[0])
	}

	distinct := make(map[Point]struct{}, len(closed)-1)
	for _, p := range closed[:len(closed)-1] {
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return nil, ErrDegenerateRing
	}
	if RingArea(closed) < 1e-12 {
		return nil, ErrDegenerateRing
	}
	return closed, nil
}

// ValidCoordinate reports whether lat/lng are within WGS84 bounds.
func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180 &&
		!math.IsNaN(lat) && !math.IsNaN(lng)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// onSegment reports whether (x,y) lies on the segment (x1,y1)-(x2,y2).
func onSegment(x, y, x1, y1, x2, y2 float64) bool {
	const eps = 1e-9
	cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
	if math.Abs(cross) > eps {
		return false
	}
	return x >= math.Min(x1, x2)-eps && x <= math.Max(x1, x2)+eps &&
		y >= math.Min(y1, y2)-eps && y <= math.Max(y1, y2)+eps
}
