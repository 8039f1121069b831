package merge

import (
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/drkpxl/city-shadow/internal/barrier"
	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/footprint"
	"github.com/drkpxl/city-shadow/internal/geometry"
	"github.com/drkpxl/city-shadow/internal/spatial"
)

// Distance groups footprints whose vertex centroids lie closer than
// merge_distance and are not separated by a barrier.
//
// Growth is a greedy spread: each popped anchor is compared against every
// unvisited footprint, so a footprint joins when it is near any member
// rather than near all of them. Results depend on input order.
type Distance struct {
	style  config.Style
	logger *zap.Logger
}

func (d *Distance) Name() string { return "distance" }

func (d *Distance) Profile() barrier.Profile { return barrier.Thin }

func (d *Distance) Merge(fps []footprint.Footprint, u *barrier.Union) []Cluster {
	start := time.Now()
	mergeDist := d.style.MergeDistance

	if mergeDist <= 0 {
		out := make([]Cluster, len(fps))
		for i, f := range fps {
			out[i] = Singleton(f)
		}
		return out
	}

	centroids := make([]orb.Point, len(fps))
	points := make([]orb.Ring, len(fps))
	for i, f := range fps {
		centroids[i] = geometry.VertexCentroid(f.Ring)
		points[i] = orb.Ring{centroids[i]}
	}
	index := spatial.NewIndex(points)

	visited := make([]bool, len(fps))
	var clusters []Cluster
	edges, rejected := 0, 0

	for i := range fps {
		if visited[i] {
			continue
		}

		visited[i] = true
		stack := []int{i}
		var members []int

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, cur)

			anchor := centroids[cur]
			for _, j := range index.Query(anchor.Bound(), mergeDist) {
				if visited[j] || geometry.Distance(anchor, centroids[j]) >= mergeDist {
					continue
				}
				if u.Blocks(anchor, centroids[j]) {
					rejected++
					continue
				}
				visited[j] = true
				stack = append(stack, j)
				edges++
			}
		}

		clusters = append(clusters, d.build(fps, members))
	}

	d.logger.Info("Distance merge complete",
		zap.Int("footprints", len(fps)),
		zap.Int("clusters", len(clusters)),
		zap.Int("joins", edges),
		zap.Int("blocked", rejected),
		zap.Duration("duration", time.Since(start)))
	return clusters
}

// build turns a member set into a cluster. Singletons pass through.
func (d *Distance) build(fps []footprint.Footprint, members []int) Cluster {
	if len(members) == 1 {
		return Singleton(fps[members[0]])
	}

	pts := memberPoints(fps, members)
	ring := geometry.Normalize(ArtisticHull(pts, d.style))
	if len(ring) < 3 || geometry.SelfIntersects(ring) || geometry.Area(ring) < largestArea(fps, members) {
		d.logger.Debug("Artistic hull rejected, using convex hull",
			zap.Int("members", len(members)),
			zap.Int("vertices", len(ring)))
		ring = geometry.ConvexHull(pts)
	}

	return Cluster{
		Ring:      ring,
		Height:    weightedHeightOf(fps, members),
		IsCluster: true,
		Size:      len(members),
	}
}
