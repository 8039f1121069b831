package merge

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/drkpxl/city-shadow/internal/barrier"
	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/footprint"
	"github.com/drkpxl/city-shadow/internal/geometry"
	"github.com/drkpxl/city-shadow/internal/roof"
	"github.com/drkpxl/city-shadow/internal/spatial"
)

const (
	// MinBlockArea is the smallest piece Partition keeps.
	MinBlockArea = 5.0
	// BlockSimplifyTolerance is the Douglas-Peucker tolerance for blocks.
	BlockSimplifyTolerance = 0.1

	blockInset = 0.1
	jitterLow  = 0.85
	jitterHigh = 1.15
)

// Block is a piece of open ground between barriers.
type Block struct {
	Ring orb.Ring
}

// Partition carves the bounding rectangle of the barrier union into
// blocks by subtracting the union. Pieces no larger than MinBlockArea are
// discarded. A nil union yields no blocks.
func Partition(u *barrier.Union) []Block {
	b, ok := u.Bound()
	if !ok {
		return nil
	}

	rect := geometry.Rectangle(b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	pieces := geometry.Repair(rect.Difference(u.Geom()))

	var blocks []Block
	for _, r := range geometry.Polygons(pieces) {
		if geometry.Area(r) <= MinBlockArea {
			continue
		}
		blocks = append(blocks, simplifyBlock(r)...)
	}
	return blocks
}

// simplifyBlock simplifies one piece. Douglas-Peucker can fold a narrow
// neck across itself, so invalid results are repaired and every part
// above MinBlockArea becomes its own block.
func simplifyBlock(r orb.Ring) []Block {
	var blocks []Block
	for _, part := range geometry.ValidParts(geometry.SimplifyRing(r, BlockSimplifyTolerance)) {
		if geometry.Area(part) <= MinBlockArea {
			continue
		}
		blocks = append(blocks, Block{Ring: part})
	}
	return blocks
}

// LegacyBlocks fills each block that overlaps any footprint with one
// synthetic building classified by the majority land use inside it.
type LegacyBlocks struct {
	style  config.Style
	roofs  *roof.Assigner
	logger *zap.Logger
}

func (l *LegacyBlocks) Name() string { return "legacy-blocks" }

func (l *LegacyBlocks) Profile() barrier.Profile { return barrier.Thick }

func (l *LegacyBlocks) Merge(fps []footprint.Footprint, u *barrier.Union) []Cluster {
	start := time.Now()
	blocks := Partition(u)

	rings := make([]orb.Ring, len(fps))
	for i, f := range fps {
		rings[i] = f.Ring
	}
	index := spatial.NewIndex(rings)

	var out []Cluster
	for bi, block := range blocks {
		c, ok := l.fill(bi, block, fps, index)
		if ok {
			out = append(out, c)
		}
	}

	l.logger.Info("Block fill complete",
		zap.Int("blocks", len(blocks)),
		zap.Int("filled", len(out)),
		zap.Int("footprints", len(fps)),
		zap.Duration("duration", time.Since(start)))
	return out
}

func (l *LegacyBlocks) fill(bi int, block Block, fps []footprint.Footprint, index *spatial.Index) (Cluster, bool) {
	bg := geometry.Polygon(block.Ring)

	counts := make(map[footprint.Use]int)
	overlaps := 0
	base, bestOverlap := 0.0, 0.0
	for _, j := range index.Query(block.Ring.Bound(), 0) {
		a := bg.Intersection(geometry.Polygon(fps[j].Ring)).Area()
		if a <= 0 {
			continue
		}
		overlaps++
		counts[fps[j].Use]++
		if a > bestOverlap {
			base, bestOverlap = fps[j].Height, a
		}
	}
	if overlaps == 0 {
		return Cluster{}, false
	}

	use := majority(counts)
	height := base * l.roofs.Uniform(jitterLow, jitterHigh)

	var r *roof.Roof
	if bt, ok := l.style.BlockTypes[string(use)]; ok {
		height = math.Min(math.Max(height, bt.MinHeight), bt.MaxHeight)
		r = l.roofs.Pick(bt.RoofStyles)
	}
	if r == nil {
		r = l.roofs.Random()
	}

	ring, err := geometry.LargestPolygon(bg.Buffer(-blockInset, quadSegs))
	if err != nil {
		l.logger.Debug("Block vanished when inset", zap.Int("block", bi), zap.Error(err))
		return Cluster{}, false
	}

	return Cluster{
		Ring:      ring,
		Height:    height,
		IsCluster: overlaps > 1,
		Size:      overlaps,
		Roof:      r,
		IsBlock:   true,
		BlockUse:  use,
	}, true
}

// majority returns the most frequent use; ties go to the earlier entry of
// footprint.Uses.
func majority(counts map[footprint.Use]int) footprint.Use {
	best := footprint.UseResidential
	for _, u := range footprint.Uses {
		if counts[u] > counts[best] {
			best = u
		}
	}
	return best
}
