// Package city runs the consolidation pipeline over a classified feature
// collection and renders the result.
package city

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/drkpxl/city-shadow/internal/barrier"
	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/features"
	"github.com/drkpxl/city-shadow/internal/footprint"
	"github.com/drkpxl/city-shadow/internal/logging"
	"github.com/drkpxl/city-shadow/internal/merge"
	"github.com/drkpxl/city-shadow/internal/roof"
)

// ErrNilCollection is returned when Run is given no features.
var ErrNilCollection = errors.New("nil feature collection")

// Model is the consolidated city: merged buildings plus the context layers
// carried through unchanged.
type Model struct {
	Buildings []merge.Cluster
	Roads     []features.Road
	Railways  []features.Railway
	Water     []features.Area
	Bridges   []features.Bridge
	Parks     []features.Area

	// Strategy names the merge strategy that produced Buildings.
	Strategy string
	// Seed is the roof seed actually used.
	Seed uint64
}

// Pipeline consolidates one feature collection per Run.
type Pipeline struct {
	Style  config.Style
	Logger *zap.Logger
	// Roofs overrides the roof assigner. When nil one is seeded from
	// Style.Seed, or from the clock when that is zero.
	Roofs *roof.Assigner
}

// Run gathers footprints, builds the barrier the selected strategy asks
// for, and merges.
func (p *Pipeline) Run(c *features.Collection) (*Model, error) {
	if c == nil {
		return nil, ErrNilCollection
	}
	logger := logging.OrNop(p.Logger)
	start := time.Now()

	style := p.Style
	if style.Seed == 0 {
		style.Seed = uint64(time.Now().UnixNano())
	}
	roofs := p.Roofs
	if roofs == nil {
		roofs = roof.NewAssigner(roof.NewSource(style.Seed))
	}

	strategy, err := merge.New(style, roofs, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Consolidating buildings",
		zap.String("style", style.ArtisticStyle),
		zap.String("strategy", strategy.Name()),
		zap.Uint64("seed", style.Seed),
	)

	fps := footprint.Gather(c.Buildings, c.Industrial, logger)
	u := barrier.Build(c, style, strategy.Profile(), logger)
	clusters := strategy.Merge(fps, u)

	merged := 0
	for _, cl := range clusters {
		if cl.IsCluster {
			merged++
		}
	}
	logger.Info("Consolidation finished",
		zap.Int("footprints", len(fps)),
		zap.Int("outputs", len(clusters)),
		zap.Int("merged", merged),
		zap.Duration("duration", time.Since(start)),
	)

	return &Model{
		Buildings: clusters,
		Roads:     c.Roads,
		Railways:  c.Railways,
		Water:     c.Water,
		Bridges:   c.Bridges,
		Parks:     c.Parks,
		Strategy:  strategy.Name(),
		Seed:      style.Seed,
	}, nil
}

// Convert loads a GeoJSON file, runs the pipeline and writes the model.
func (p *Pipeline) Convert(in, out string, projected bool) (*Model, error) {
	loader := &features.Loader{Style: p.Style, Projected: projected, Logger: p.Logger}
	c, err := loader.Load(in)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", in, err)
	}
	m, err := p.Run(c)
	if err != nil {
		return nil, err
	}
	if err := SaveGeoJSON(out, m); err != nil {
		return nil, fmt.Errorf("writing %s: %w", out, err)
	}
	return m, nil
}
