package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Projector maps lon/lat coordinates linearly onto a square model of Size
// millimeters. The bounding box of the input features spans the whole model.
type Projector struct {
	Bound orb.Bound
	Size  float64
}

// NewProjector builds a projector over every point in points.
func NewProjector(points []orb.Point, size float64) Projector {
	return Projector{Bound: orb.MultiPoint(points).Bound(), Size: size}
}

// Project transforms a lon/lat point to model space.
func (p Projector) Project(pt orb.Point) orb.Point {
	x, y := 0.5, 0.5
	if span := p.Bound.Max[0] - p.Bound.Min[0]; span != 0 {
		x = (pt[0] - p.Bound.Min[0]) / span
	}
	if span := p.Bound.Max[1] - p.Bound.Min[1]; span != 0 {
		y = (pt[1] - p.Bound.Min[1]) / span
	}
	return orb.Point{x * p.Size, y * p.Size}
}

// ProjectAll transforms every point.
func (p Projector) ProjectAll(points []orb.Point) []orb.Point {
	out := make([]orb.Point, len(points))
	for i, pt := range points {
		out[i] = p.Project(pt)
	}
	return out
}

// AreaSquareMeters approximates the area of a lon/lat ring in m².
func AreaSquareMeters(r orb.Ring) float64 {
	if len(r) < 3 {
		return 0
	}
	a := geo.Area(Closed(r))
	if a < 0 {
		return -a
	}
	return a
}
