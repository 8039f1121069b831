package features

import (
	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"

	"github.com/drkpxl/city-shadow/internal/geometry"
)

// coastlineBuffer closes small gaps between coastline segments.
const coastlineBuffer = 1.0

// BuildOcean returns the parts of the [0,size]² model square that are cut
// off by the coastline. It returns nil when there are no coastlines or the
// coastline does not separate anything.
func BuildOcean(coastlines []orb.LineString, size float64) []Area {
	var lines []*geos.Geom
	for _, c := range coastlines {
		if len(c) < 2 {
			continue
		}
		lines = append(lines, geometry.LineString(c))
	}
	if len(lines) == 0 {
		return nil
	}

	coast := geometry.UnionAll(lines).Buffer(coastlineBuffer, 8)
	ocean := geometry.Rectangle(0, 0, size, size).Difference(coast)

	var out []Area
	for _, r := range geometry.Polygons(ocean) {
		out = append(out, Area{Ring: r, Type: "ocean"})
	}
	return out
}
