package merge

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/footprint"
	"github.com/drkpxl/city-shadow/internal/roof"
)

const tolerance = 1e-6

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func rect(x, y, w, h float64) orb.Ring {
	return orb.Ring{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
}

func fp(x, y, w, h, height float64) footprint.Footprint {
	return footprint.New(rect(x, y, w, h), height, footprint.KindBuilding, footprint.UseResidential)
}

func styleWith(name string, mutate func(*config.Style)) config.Style {
	s := config.Default()
	s.ArtisticStyle = name
	if mutate != nil {
		mutate(&s)
	}
	return s
}

func assigner() *roof.Assigner {
	return roof.NewAssigner(roof.NewSource(1))
}
