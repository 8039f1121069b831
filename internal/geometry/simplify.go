package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyRing reduces ring complexity using Douglas-Peucker.
// The ring is simplified closed and returned open; if simplification would
// leave fewer than 3 vertices the input is returned unchanged.
func SimplifyRing(r orb.Ring, epsilon float64) orb.Ring {
	if len(r) <= 3 || epsilon <= 0 {
		return r
	}

	simplified, ok := simplify.DouglasPeucker(epsilon).Simplify(Closed(r)).(orb.Ring)
	if !ok {
		return r
	}

	open := Normalize(simplified)
	if len(open) < 3 {
		return r // Failed to simplify adequately
	}
	return open
}
