package merge

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"

	"github.com/drkpxl/city-shadow/internal/barrier"
	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/footprint"
	"github.com/drkpxl/city-shadow/internal/geometry"
	"github.com/drkpxl/city-shadow/internal/roof"
	"github.com/drkpxl/city-shadow/internal/spatial"
)

// minClosingBuffer bounds the buffer round trip used to close multi-part
// accumulations when merge_distance is tiny.
const minClosingBuffer = 0.05

const quadSegs = 8

// Threshold keeps footprints at or above area_threshold as they are and
// grows the smaller ones into clusters until each reaches the threshold or
// runs out of reachable neighbours.
type Threshold struct {
	style  config.Style
	roofs  *roof.Assigner
	logger *zap.Logger
}

func (t *Threshold) Name() string { return "area-threshold" }

func (t *Threshold) Profile() barrier.Profile { return barrier.Thick }

func (t *Threshold) Merge(fps []footprint.Footprint, u *barrier.Union) []Cluster {
	start := time.Now()
	threshold := t.style.AreaThreshold

	var large, small []int
	for i, f := range fps {
		if f.Area >= threshold {
			large = append(large, i)
		} else {
			small = append(small, i)
		}
	}

	out := make([]Cluster, 0, len(fps))
	for _, i := range large {
		out = append(out, Singleton(fps[i]))
	}

	rings := make([]orb.Ring, len(fps))
	isSmall := make([]bool, len(fps))
	for _, i := range small {
		rings[i] = fps[i].Ring
		isSmall[i] = true
	}
	index := spatial.NewIndex(rings)

	visited := make([]bool, len(fps))
	merged := 0
	for _, seed := range small {
		if visited[seed] {
			continue
		}
		visited[seed] = true

		members, acc := t.grow(fps, seed, index, isSmall, visited, u)
		if len(members) == 1 {
			out = append(out, Singleton(fps[seed]))
			continue
		}
		out = append(out, t.build(fps, members, acc))
		merged++
	}

	t.logger.Info("Area threshold merge complete",
		zap.Int("footprints", len(fps)),
		zap.Int("large", len(large)),
		zap.Int("small", len(small)),
		zap.Int("merged_clusters", merged),
		zap.Int("clusters", len(out)),
		zap.Duration("duration", time.Since(start)))
	return out
}

// grow accumulates neighbours around seed with repeated full passes. It
// stops when the accumulated area reaches the threshold or a pass absorbs
// nothing.
func (t *Threshold) grow(fps []footprint.Footprint, seed int, index *spatial.Index, isSmall, visited []bool, u *barrier.Union) ([]int, *geos.Geom) {
	mergeDist := t.style.MergeDistance
	members := []int{seed}
	acc := geometry.Polygon(fps[seed].Ring)

	for acc.Area() < t.style.AreaThreshold {
		absorbed := false
		for _, j := range index.Query(geometry.BoundsOf(acc), math.Max(mergeDist, 0)) {
			if !isSmall[j] || visited[j] {
				continue
			}
			candidate := geometry.Polygon(fps[j].Ring)
			if acc.Distance(candidate) > mergeDist {
				continue
			}
			if u.Blocks(geometry.CentroidOf(acc), geometry.Centroid(fps[j].Ring)) {
				continue
			}

			acc = geometry.Repair(acc.Union(candidate))
			visited[j] = true
			members = append(members, j)
			absorbed = true

			if acc.Area() >= t.style.AreaThreshold {
				break
			}
		}
		if !absorbed {
			break
		}
	}

	if len(members) > 1 {
		t.logger.Debug("Grew cluster",
			zap.Int("seed", seed),
			zap.Int("members", len(members)),
			zap.Float64("area", acc.Area()))
	}
	return members, acc
}

func (t *Threshold) build(fps []footprint.Footprint, members []int, acc *geos.Geom) Cluster {
	return Cluster{
		Ring:      t.reduce(fps, members, acc),
		Height:    weightedHeightOf(fps, members),
		IsCluster: true,
		Size:      len(members),
		Roof:      t.roofs.Random(),
	}
}

// reduce turns the accumulated union into one ring: the union itself when
// single-part, else a closing buffer round trip, else its largest part,
// and the convex hull of all member vertices as the last resort.
func (t *Threshold) reduce(fps []footprint.Footprint, members []int, acc *geos.Geom) orb.Ring {
	floor := largestArea(fps, members)
	usable := func(r orb.Ring, err error) bool {
		return err == nil && len(r) >= 3 && geometry.Area(r) >= floor*(1-1e-9)
	}

	if geometry.IsSinglePolygon(acc) {
		if r, err := geometry.LargestPolygon(acc); usable(r, err) {
			return r
		}
	}

	d := math.Max(t.style.MergeDistance/2, minClosingBuffer)
	closed := geometry.Repair(acc.Buffer(d, quadSegs).Buffer(-d, quadSegs))
	if geometry.IsSinglePolygon(closed) {
		if r, err := geometry.LargestPolygon(closed); usable(r, err) {
			return r
		}
	}

	if r, err := geometry.LargestPolygon(acc); usable(r, err) {
		return r
	}

	t.logger.Debug("Falling back to convex hull", zap.Int("members", len(members)))
	return geometry.ConvexHull(memberPoints(fps, members))
}
