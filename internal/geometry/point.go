package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// Distance calculates Euclidean distance between two points
func Distance(a, b orb.Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// VertexCentroid returns the arithmetic mean of the given points.
// This is not the area centroid; it is what the merge distance is measured between.
func VertexCentroid(points []orb.Point) orb.Point {
	if len(points) == 0 {
		return orb.Point{}
	}

	var x, y float64
	for _, p := range points {
		x += p[0]
		y += p[1]
	}
	n := float64(len(points))
	return orb.Point{x / n, y / n}
}

// SortByAngle returns a copy of points ordered by polar angle around center.
// The sort is stable so coincident angles keep their input order.
func SortByAngle(points []orb.Point, center orb.Point) []orb.Point {
	sorted := make([]orb.Point, len(points))
	copy(sorted, points)

	sort.SliceStable(sorted, func(i, j int) bool {
		return polarAngle(center, sorted[i]) < polarAngle(center, sorted[j])
	})
	return sorted
}

// polarAngle calculates the polar angle from pivot to point
func polarAngle(pivot, point orb.Point) float64 {
	return math.Atan2(point[1]-pivot[1], point[0]-pivot[0])
}

// crossProduct calculates the cross product of vectors (b-a) and (c-a)
func crossProduct(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}
