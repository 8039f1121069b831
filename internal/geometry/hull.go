package geometry

import (
	"sort"

	"github.com/paulmach/orb"
)

// ConvexHull computes the convex hull using Graham scan algorithm.
// The result is an open counter-clockwise ring; collinear points are dropped.
func ConvexHull(points []orb.Point) orb.Ring {
	pts := uniquePoints(points)
	if len(pts) < 3 {
		return orb.Ring(pts)
	}

	// Find the point with lowest Y (and lowest X if tied)
	start := 0
	for i := 1; i < len(pts); i++ {
		if pts[i][1] < pts[start][1] ||
			(pts[i][1] == pts[start][1] && pts[i][0] < pts[start][0]) {
			start = i
		}
	}
	pts[0], pts[start] = pts[start], pts[0]
	pivot := pts[0]

	rest := pts[1:]
	sort.Slice(rest, func(i, j int) bool {
		ai, aj := polarAngle(pivot, rest[i]), polarAngle(pivot, rest[j])
		if ai != aj {
			return ai < aj
		}
		return Distance(pivot, rest[i]) < Distance(pivot, rest[j])
	})

	hull := orb.Ring{pivot}
	for _, p := range rest {
		// Remove points that create a right turn
		for len(hull) > 1 && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull
}

func uniquePoints(points []orb.Point) []orb.Point {
	seen := make(map[orb.Point]bool, len(points))
	out := make([]orb.Point, 0, len(points))
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
