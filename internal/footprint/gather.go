package footprint

import (
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/drkpxl/city-shadow/internal/features"
	"github.com/drkpxl/city-shadow/internal/geometry"
	"github.com/drkpxl/city-shadow/internal/logging"
)

// Kind separates regular buildings from industrial ones.
type Kind int

const (
	KindBuilding Kind = iota
	KindIndustrial
)

func (k Kind) String() string {
	if k == KindIndustrial {
		return "industrial"
	}
	return "building"
}

// Use is the land use a footprint counts towards when blocks are classified.
type Use string

const (
	UseResidential Use = "residential"
	UseIndustrial  Use = "industrial"
	UseCommercial  Use = "commercial"
)

// Uses lists every Use in tie-break order.
var Uses = []Use{UseResidential, UseIndustrial, UseCommercial}

var commercialTags = map[string]bool{
	"commercial":  true,
	"retail":      true,
	"office":      true,
	"supermarket": true,
	"hotel":       true,
	"kiosk":       true,
	"mall":        true,
}

var industrialTags = map[string]bool{
	"industrial":    true,
	"warehouse":     true,
	"factory":       true,
	"manufacturing": true,
	"hangar":        true,
}

// ClassifyUse maps an OSM building tag onto a Use.
func ClassifyUse(tag string) Use {
	switch {
	case industrialTags[tag]:
		return UseIndustrial
	case commercialTags[tag]:
		return UseCommercial
	default:
		return UseResidential
	}
}

// Footprint is one building outline ready for consolidation.
type Footprint struct {
	// Ring is open and has at least 3 distinct vertices.
	Ring   orb.Ring
	Height float64
	// Area is always geometry.Area(Ring).
	Area float64
	Kind Kind
	Use  Use
}

// New builds a Footprint, computing its area.
func New(ring orb.Ring, height float64, kind Kind, use Use) Footprint {
	return Footprint{Ring: ring, Height: height, Area: geometry.Area(ring), Kind: kind, Use: use}
}

// Gather normalizes buildings then industrial features into footprints, in
// input order. Rings with fewer than 3 distinct vertices are dropped and
// invalid rings are repaired, each surviving part becoming its own
// footprint.
func Gather(buildings, industrial []features.Building, logger *zap.Logger) []Footprint {
	logger = logging.OrNop(logger)

	out := make([]Footprint, 0, len(buildings)+len(industrial))
	dropped := 0
	add := func(b features.Building, i int, kind Kind) {
		use := ClassifyUse(b.Tag)
		if kind == KindIndustrial {
			use = UseIndustrial
		}
		parts := normalize(b.Ring)
		if len(parts) == 0 {
			dropped++
			logger.Debug("Dropping footprint",
				zap.Stringer("kind", kind),
				zap.Int("index", i),
				zap.Int("vertices", len(b.Ring)))
			return
		}
		if len(parts) > 1 {
			logger.Debug("Repaired footprint split into parts",
				zap.Stringer("kind", kind),
				zap.Int("index", i),
				zap.Int("parts", len(parts)))
		}
		for _, r := range parts {
			out = append(out, New(r, b.Height, kind, use))
		}
	}

	for i, b := range buildings {
		add(b, i, KindBuilding)
	}
	for i, b := range industrial {
		add(b, i, KindIndustrial)
	}

	logger.Info("Gathered footprints",
		zap.Int("buildings", len(buildings)),
		zap.Int("industrial", len(industrial)),
		zap.Int("footprints", len(out)),
		zap.Int("dropped", dropped))
	return out
}

// normalize returns the usable rings for one input ring.
func normalize(ring orb.Ring) []orb.Ring {
	r := geometry.Normalize(ring)
	if len(r) < 3 {
		return nil
	}

	g := geometry.Polygon(r)
	if g.IsValid() {
		if geometry.Area(r) <= 0 {
			return nil
		}
		return []orb.Ring{r}
	}

	var parts []orb.Ring
	for _, p := range geometry.Polygons(geometry.Repair(g)) {
		if geometry.Area(p) > 0 {
			parts = append(parts, p)
		}
	}
	return parts
}
