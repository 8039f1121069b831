package roof

import "github.com/MichaelTJones/pcg"

// Source supplies the randomness for roof and height jitter. Tests inject
// fixed sequences; production runs use NewSource.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// pcgSource is a Source backed by a PCG32 generator.
type pcgSource struct {
	r *pcg.PCG32
}

// NewSource returns a deterministic PCG32-backed Source for seed.
func NewSource(seed uint64) Source {
	r := pcg.NewPCG32()
	r.Seed(seed, 0xda3e39cb94b95bdb)
	return &pcgSource{r: r}
}

func (s *pcgSource) Float64() float64 {
	return float64(s.r.Random()) / (1 << 32)
}

func (s *pcgSource) Intn(n int) int {
	if n <= 0 {
		panic("roof: Intn called with non-positive n")
	}
	return int(s.r.Bounded(uint32(n)))
}
