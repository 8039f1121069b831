package geometry

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"
)

// quadSegs is the number of segments per quarter circle used for buffers.
const quadSegs = 8

// ErrEmptyGeometry is returned when an operation yields no usable polygon.
var ErrEmptyGeometry = errors.New("empty geometry")

// ctx is shared by every GEOS geometry in the process. A GEOS context is not
// safe for concurrent use and the engine is single threaded.
var ctx = geos.NewContext()

// Polygon converts an open ring into a GEOS polygon.
func Polygon(r orb.Ring) *geos.Geom {
	closed := Closed(r)
	coords := make([][]float64, len(closed))
	for i, p := range closed {
		coords[i] = []float64{p[0], p[1]}
	}
	return ctx.NewPolygon([][][]float64{coords})
}

// LineString converts a point list into a GEOS line string.
func LineString(points []orb.Point) *geos.Geom {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p[0], p[1]}
	}
	return ctx.NewLineString(coords)
}

// Segment returns the straight line from a to b.
func Segment(a, b orb.Point) *geos.Geom {
	return LineString([]orb.Point{a, b})
}

// Rectangle returns the axis-aligned box polygon with the given corners.
func Rectangle(minX, minY, maxX, maxY float64) *geos.Geom {
	return Polygon(orb.Ring{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}})
}

// Collection groups clones of geoms into a single geometry collection.
// The inputs stay usable afterwards.
func Collection(geoms []*geos.Geom) *geos.Geom {
	clones := make([]*geos.Geom, len(geoms))
	for i, g := range geoms {
		clones[i] = g.Clone()
	}
	return ctx.NewCollection(geos.TypeIDGeometryCollection, clones)
}

// UnionAll unions every geometry in geoms into one, repaired if invalid.
// It returns nil when geoms is empty.
func UnionAll(geoms []*geos.Geom) *geos.Geom {
	if len(geoms) == 0 {
		return nil
	}
	union := Collection(geoms).UnaryUnion()
	return Repair(union)
}

// Repair returns g unchanged when valid, otherwise its MakeValid result.
func Repair(g *geos.Geom) *geos.Geom {
	if g == nil || g.IsValid() {
		return g
	}
	return g.MakeValid()
}

// ValidParts returns r as the only part when it forms a valid polygon,
// otherwise the exterior rings of its repaired polygonal parts.
func ValidParts(r orb.Ring) []orb.Ring {
	r = Normalize(r)
	if len(r) < 3 {
		return nil
	}
	g := Polygon(r)
	if g.IsValid() {
		return []orb.Ring{r}
	}
	return Polygons(g.MakeValid())
}

// Polygons returns the exterior ring of every polygonal part of g, in
// order, skipping parts with fewer than 3 distinct vertices.
// Holes are dropped.
func Polygons(g *geos.Geom) []orb.Ring {
	if g == nil || g.IsEmpty() {
		return nil
	}

	switch g.TypeID() {
	case geos.TypeIDPolygon:
		ring := exterior(g)
		if len(ring) < 3 {
			return nil
		}
		return []orb.Ring{ring}
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		var rings []orb.Ring
		for i := 0; i < g.NumGeometries(); i++ {
			rings = append(rings, Polygons(g.Geometry(i))...)
		}
		return rings
	default:
		return nil
	}
}

// LargestPolygon returns the exterior ring of the largest polygonal part of g.
func LargestPolygon(g *geos.Geom) (orb.Ring, error) {
	var best orb.Ring
	bestArea := 0.0
	for _, r := range Polygons(g) {
		if a := Area(r); a > bestArea {
			best, bestArea = r, a
		}
	}
	if best == nil {
		return nil, ErrEmptyGeometry
	}
	return best, nil
}

// IsSinglePolygon reports whether g is exactly one non-empty polygon.
func IsSinglePolygon(g *geos.Geom) bool {
	if g == nil || g.IsEmpty() {
		return false
	}
	if g.TypeID() == geos.TypeIDPolygon {
		return true
	}
	return len(Polygons(g)) == 1
}

// CentroidOf returns the area centroid of g.
func CentroidOf(g *geos.Geom) orb.Point {
	c := g.Centroid()
	return orb.Point{c.X(), c.Y()}
}

// BoundsOf returns the bounding box of g.
func BoundsOf(g *geos.Geom) orb.Bound {
	b := g.Bounds()
	return orb.Bound{Min: orb.Point{b.MinX, b.MinY}, Max: orb.Point{b.MaxX, b.MaxY}}
}

func exterior(polygon *geos.Geom) orb.Ring {
	coords := polygon.ExteriorRing().CoordSeq().ToCoords()
	points := make([]orb.Point, len(coords))
	for i, c := range coords {
		points[i] = orb.Point{c[0], c[1]}
	}
	return Normalize(points)
}
