package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Rings in this module are stored open: the closing vertex is implied.

// Normalize drops consecutive duplicate vertices and the closing vertex.
func Normalize(points []orb.Point) orb.Ring {
	ring := make(orb.Ring, 0, len(points))
	for _, p := range points {
		if len(ring) > 0 && ring[len(ring)-1] == p {
			continue
		}
		ring = append(ring, p)
	}
	for len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	return ring
}

// Closed returns a copy of r with the first vertex repeated at the end.
func Closed(r orb.Ring) orb.Ring {
	closed := make(orb.Ring, len(r), len(r)+1)
	copy(closed, r)
	if len(r) > 0 && r[0] != r[len(r)-1] {
		closed = append(closed, r[0])
	}
	return closed
}

// IsDegenerate reports whether r has fewer than 3 distinct vertices.
func IsDegenerate(r orb.Ring) bool {
	return len(Normalize(r)) < 3
}

// Area returns the unsigned planar area of the ring.
func Area(r orb.Ring) float64 {
	if len(r) < 3 {
		return 0
	}
	return math.Abs(planar.Area(Closed(r)))
}

// Centroid returns the area centroid of the ring. Zero-area rings fall back
// to the vertex mean.
func Centroid(r orb.Ring) orb.Point {
	if len(r) < 3 {
		return VertexCentroid(r)
	}
	c, area := planar.CentroidArea(Closed(r))
	if area == 0 {
		return VertexCentroid(r)
	}
	return c
}

// SelfIntersects reports whether the boundary of r touches or crosses
// itself anywhere other than at the closing vertex.
func SelfIntersects(r orb.Ring) bool {
	if len(r) < 4 {
		return false
	}
	return !LineString(Closed(r)).IsSimple()
}

// Equal reports whether two rings have identical vertices in identical order.
func Equal(a, b orb.Ring) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
