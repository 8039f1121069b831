package spatial

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minExtent pads zero-width bounds; rtreego rejects rectangles with a
// non-positive side length.
const minExtent = 1e-9

// entry wraps a ring's bounding box for R-tree storage
type entry struct {
	id   int
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *entry) Bounds() rtreego.Rect {
	return e.bbox
}

// Index answers bounding-box queries over a fixed list of rings, identified
// by their position in that list.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex creates a new spatial index over rings.
func NewIndex(rings []orb.Ring) *Index {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for i, r := range rings {
		if len(r) == 0 {
			continue
		}
		bbox, err := rect(r.Bound())
		if err != nil {
			continue
		}
		tree.Insert(&entry{id: i, bbox: bbox})
	}

	return &Index{tree: tree, size: len(rings)}
}

// Len returns the number of rings the index was built over.
func (ix *Index) Len() int {
	return ix.size
}

// Query returns, in ascending order, the ids of every ring whose bounding
// box intersects b grown by margin on each side.
func (ix *Index) Query(b orb.Bound, margin float64) []int {
	if ix == nil || ix.tree.Size() == 0 {
		return nil
	}
	bbox, err := rect(b.Pad(margin))
	if err != nil {
		return nil
	}

	results := ix.tree.SearchIntersect(bbox)
	ids := make([]int, 0, len(results))
	for _, item := range results {
		ids = append(ids, item.(*entry).id)
	}
	sort.Ints(ids)
	return ids
}

// QueryRegion returns the ids of rings intersecting the given box, ascending.
func (ix *Index) QueryRegion(minX, minY, maxX, maxY float64) []int {
	return ix.Query(orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}, 0)
}

// rect converts an orb.Bound into an rtreego rectangle.
func rect(b orb.Bound) (rtreego.Rect, error) {
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	if w < minExtent {
		w = minExtent
	}
	if h < minExtent {
		h = minExtent
	}
	return rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{w, h})
}
