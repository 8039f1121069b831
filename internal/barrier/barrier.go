package barrier

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"

	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/features"
	"github.com/drkpxl/city-shadow/internal/geometry"
	"github.com/drkpxl/city-shadow/internal/logging"
)

// Profile fixes how wide linear features are when they become barriers.
type Profile struct {
	Name string
	// LineFactor scales a road or railway width into its buffer distance.
	LineFactor float64
	// WaterMargin is the buffer applied to every water polygon.
	WaterMargin float64
}

// Thin is used by distance merging, Thick by both block strategies.
var (
	Thin  = Profile{Name: "thin", LineFactor: 0.25, WaterMargin: 1.5}
	Thick = Profile{Name: "thick", LineFactor: 1.0, WaterMargin: 1.5}
)

const quadSegs = 8

// Union is the merged barrier geometry. A nil Union blocks nothing.
type Union struct {
	geom     *geos.Geom
	prepared *geos.PrepGeom
}

// Build buffers roads, railways and water from c according to profile and
// unions them. Features that cannot be buffered are skipped. It returns nil
// when no feature contributes.
func Build(c *features.Collection, style config.Style, profile Profile, logger *zap.Logger) *Union {
	logger = logging.OrNop(logger)
	start := time.Now()

	var parts []*geos.Geom
	skipped := 0
	add := func(kind string, i int, g *geos.Geom) {
		if g == nil || g.IsEmpty() {
			skipped++
			logger.Debug("Skipping barrier feature", zap.String("kind", kind), zap.Int("index", i))
			return
		}
		parts = append(parts, g)
	}

	for i, r := range c.Roads {
		width := r.Width
		if width <= 0 {
			width = style.RoadWidth(r.Type)
		}
		d := width * profile.LineFactor
		if r.Parking {
			add("parking", i, bufferRing(orb.Ring(r.Path), d))
			continue
		}
		add("road", i, bufferLine(r.Path, d))
	}

	for i, r := range c.Railways {
		width := r.Width
		if width <= 0 {
			width = style.Layers.Railways.Width
		}
		add("railway", i, bufferLine(r.Path, width*profile.LineFactor))
	}

	for i, w := range c.Water {
		add("water", i, bufferRing(w.Ring, profile.WaterMargin))
	}

	if len(parts) == 0 {
		logger.Info("No barrier features", zap.String("profile", profile.Name))
		return nil
	}

	g := geometry.UnionAll(parts)
	logger.Info("Built barrier union",
		zap.String("profile", profile.Name),
		zap.Int("parts", len(parts)),
		zap.Int("skipped", skipped),
		zap.Float64("area", g.Area()),
		zap.Duration("duration", time.Since(start)))
	return New(g)
}

// New wraps an existing geometry as a Union.
func New(g *geos.Geom) *Union {
	if g == nil || g.IsEmpty() {
		return nil
	}
	return &Union{geom: g, prepared: g.Prepare()}
}

// Blocks reports whether the straight segment from a to b touches the barrier.
func (u *Union) Blocks(a, b orb.Point) bool {
	if u == nil {
		return false
	}
	return u.prepared.Intersects(geometry.Segment(a, b))
}

// Geom returns the union geometry, nil for a nil Union.
func (u *Union) Geom() *geos.Geom {
	if u == nil {
		return nil
	}
	return u.geom
}

// Bound returns the bounding box of the barrier.
func (u *Union) Bound() (orb.Bound, bool) {
	if u == nil {
		return orb.Bound{}, false
	}
	return geometry.BoundsOf(u.geom), true
}

func bufferLine(path orb.LineString, d float64) *geos.Geom {
	pts := dedupe(path)
	if len(pts) < 2 || d <= 0 {
		return nil
	}
	return geometry.LineString(pts).Buffer(d, quadSegs)
}

func bufferRing(r orb.Ring, d float64) *geos.Geom {
	ring := geometry.Normalize(r)
	if len(ring) < 3 {
		return nil
	}
	g := geometry.Repair(geometry.Polygon(ring))
	if d <= 0 {
		return g
	}
	return g.Buffer(d, quadSegs)
}

func dedupe(path orb.LineString) []orb.Point {
	out := make([]orb.Point, 0, len(path))
	for _, p := range path {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}
