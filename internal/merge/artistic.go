package merge

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/geometry"
)

// ArtisticHull outlines points by sorting them around their vertex
// centroid. With detail_level above 0.5, edges longer than cluster_size
// get interpolated points pushed sideways by a sine bump, and the result
// is then perturbed according to the artistic style.
func ArtisticHull(points []orb.Point, style config.Style) orb.Ring {
	if len(points) < 3 {
		return append(orb.Ring(nil), points...)
	}

	center := geometry.VertexCentroid(points)
	sorted := geometry.SortByAngle(points, center)

	hull := make(orb.Ring, 0, len(sorted))
	for i, p1 := range sorted {
		p2 := sorted[(i+1)%len(sorted)]
		hull = append(hull, p1)
		if style.DetailLevel > 0.5 {
			hull = appendDetail(hull, p1, p2, style)
		}
	}

	return perturb(hull, style)
}

func appendDetail(hull orb.Ring, p1, p2 orb.Point, style config.Style) orb.Ring {
	if style.ClusterSize <= 0 {
		return hull
	}
	dist := geometry.Distance(p1, p2)
	if dist <= style.ClusterSize {
		return hull
	}

	n := int(style.DetailLevel * dist / style.ClusterSize)
	for j := 0; j < n; j++ {
		t := float64(j+1) / float64(n+1)
		mx := p1[0] + t*(p2[0]-p1[0])
		my := p1[1] + t*(p2[1]-p1[1])
		offset := style.HeightVariance * math.Sin(t*math.Pi)
		hull = append(hull, orb.Point{mx + offset, my - offset})
	}
	return hull
}

// perturb applies the style's per-vertex offset.
func perturb(coords orb.Ring, style config.Style) orb.Ring {
	v := style.HeightVariance
	n := float64(len(coords))

	switch style.ArtisticStyle {
	case config.StyleModern:
		out := make(orb.Ring, len(coords))
		for i, p := range coords {
			o := v * math.Sin(float64(i)*math.Pi/n)
			out[i] = orb.Point{p[0] + o, p[1] + o}
		}
		return out
	case config.StyleClassic:
		out := make(orb.Ring, len(coords))
		for i, p := range coords {
			angle := 2 * math.Pi * float64(i) / n
			out[i] = orb.Point{p[0] + v*math.Cos(angle), p[1] + v*math.Sin(angle)}
		}
		return out
	default:
		return coords
	}
}
