package merge

import "github.com/drkpxl/city-shadow/internal/footprint"

// WeightedHeight returns the area-weighted mean height of members, using
// each footprint's own area so overlaps are not discounted. When the total
// area is zero the first member's height is used.
func WeightedHeight(members []footprint.Footprint) float64 {
	if len(members) == 0 {
		return 0
	}

	var total, weighted float64
	for _, m := range members {
		total += m.Area
		weighted += m.Area * m.Height
	}
	if total <= 0 {
		return members[0].Height
	}
	return weighted / total
}

func weightedHeightOf(fps []footprint.Footprint, members []int) float64 {
	sel := make([]footprint.Footprint, len(members))
	for i, m := range members {
		sel[i] = fps[m]
	}
	return WeightedHeight(sel)
}
