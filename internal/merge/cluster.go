package merge

import (
	"fmt"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/drkpxl/city-shadow/internal/barrier"
	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/footprint"
	"github.com/drkpxl/city-shadow/internal/logging"
	"github.com/drkpxl/city-shadow/internal/roof"
)

// Cluster is one consolidated output building.
type Cluster struct {
	// Ring is open with at least 3 vertices.
	Ring   orb.Ring
	Height float64
	// IsCluster is true when two or more footprints were merged.
	IsCluster bool
	// Size is the number of footprints the cluster covers.
	Size int
	// Roof is decoration metadata, nil when none was assigned.
	Roof *roof.Roof

	IsBlock  bool
	BlockUse footprint.Use
}

// Singleton wraps one footprint unchanged.
func Singleton(f footprint.Footprint) Cluster {
	return Cluster{Ring: f.Ring, Height: f.Height, Size: 1}
}

// Strategy consolidates footprints into clusters. A run selects exactly one.
type Strategy interface {
	Name() string
	// Profile is the barrier profile the strategy expects to be given.
	Profile() barrier.Profile
	Merge(footprints []footprint.Footprint, u *barrier.Union) []Cluster
}

// New returns the Strategy selected by style.ArtisticStyle. A nil roofs
// draws from a source seeded with style.Seed.
func New(style config.Style, roofs *roof.Assigner, logger *zap.Logger) (Strategy, error) {
	if err := style.Validate(); err != nil {
		return nil, fmt.Errorf("selecting merge strategy: %w", err)
	}
	logger = logging.OrNop(logger)
	if roofs == nil {
		roofs = roof.NewAssigner(roof.NewSource(style.Seed))
	}

	switch style.Mode() {
	case config.ModeThreshold:
		return &Threshold{style: style, roofs: roofs, logger: logger}, nil
	case config.ModeLegacyBlocks:
		return &LegacyBlocks{style: style, roofs: roofs, logger: logger}, nil
	default:
		return &Distance{style: style, logger: logger}, nil
	}
}

// memberPoints concatenates the vertices of the given footprints.
func memberPoints(fps []footprint.Footprint, members []int) []orb.Point {
	n := 0
	for _, m := range members {
		n += len(fps[m].Ring)
	}
	pts := make([]orb.Point, 0, n)
	for _, m := range members {
		pts = append(pts, fps[m].Ring...)
	}
	return pts
}

// largestArea returns the largest footprint area among members.
func largestArea(fps []footprint.Footprint, members []int) float64 {
	best := 0.0
	for _, m := range members {
		if fps[m].Area > best {
			best = fps[m].Area
		}
	}
	return best
}
