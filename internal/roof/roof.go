package roof

import (
	"fmt"
	"math"

	"github.com/drkpxl/city-shadow/internal/config"
)

// Style is a roof decoration family.
type Style string

const (
	Pitched  Style = "pitched"
	Tiered   Style = "tiered"
	Flat     Style = "flat"
	Sawtooth Style = "sawtooth"
	Modern   Style = "modern"
	Stepped  Style = "stepped"
	// Complex is only reachable through block type roof lists.
	Complex Style = "complex"
)

// General lists the styles Random chooses from.
var General = []Style{Pitched, Tiered, Flat, Sawtooth, Modern, Stepped}

// param describes the single tunable parameter of a style and how far it
// may move from its nominal value.
type param struct {
	name    string
	nominal float64
	// relative spreads are a fraction of the nominal value, absolute ones
	// are in the parameter's own unit.
	relative bool
	spread   float64
	floor    float64
	integer  bool
}

var params = map[Style]param{
	Pitched:  {name: "height_factor", nominal: 0.3, relative: true, spread: 0.2},
	Tiered:   {name: "levels", nominal: 2, spread: 1, floor: 1, integer: true},
	Flat:     {name: "border", nominal: 1.0, relative: true, spread: 0.2},
	Sawtooth: {name: "angle", nominal: 30, spread: 5, floor: 10},
	Modern:   {name: "setback", nominal: 2.0, relative: true, spread: 0.1},
	Stepped:  {name: "levels", nominal: 2, spread: 1, floor: 1, integer: true},
	Complex:  {name: "variations", nominal: 5, spread: 1, floor: 1, integer: true},
}

// Lookup returns the Style named name.
func Lookup(name string) (Style, bool) {
	s := Style(name)
	_, ok := params[s]
	return s, ok
}

// ParamName returns the name of the parameter style carries.
func (s Style) ParamName() string {
	return params[s].name
}

// Roof is the decoration metadata attached to a cluster or block. The
// consolidation engine never reads it back.
type Roof struct {
	Style  Style
	Params map[string]float64

	nominal float64
}

// Bounds returns the range the roof's parameter may take given the nominal
// value it was derived from.
func (r *Roof) Bounds() (lo, hi float64) {
	return bounds(params[r.Style], r.nominal)
}

func bounds(p param, nominal float64) (lo, hi float64) {
	if p.relative {
		lo, hi = nominal*(1-p.spread), nominal*(1+p.spread)
	} else {
		lo, hi = nominal-p.spread, nominal+p.spread
	}
	return math.Max(lo, p.floor), math.Max(hi, p.floor)
}

// Validate reports a parameter outside its style's range.
func (r *Roof) Validate() error {
	p, ok := params[r.Style]
	if !ok {
		return fmt.Errorf("unknown roof style %q", r.Style)
	}
	v, ok := r.Params[p.name]
	if !ok {
		return fmt.Errorf("%s roof: missing %s", r.Style, p.name)
	}
	lo, hi := r.Bounds()
	const eps = 1e-9
	if v < lo-eps || v > hi+eps {
		return fmt.Errorf("%s roof: %s %g outside [%g, %g]", r.Style, p.name, v, lo, hi)
	}
	if p.integer && v != math.Trunc(v) {
		return fmt.Errorf("%s roof: %s %g is not whole", r.Style, p.name, v)
	}
	return nil
}

// Assigner draws roof styles and jitter from a single Source. An Assigner
// belongs to one run.
type Assigner struct {
	src Source
}

// NewAssigner returns an Assigner drawing from src.
func NewAssigner(src Source) *Assigner {
	return &Assigner{src: src}
}

// Random picks uniformly among the General styles and perturbs the
// style's stock nominal value.
func (a *Assigner) Random() *Roof {
	s := General[a.src.Intn(len(General))]
	return a.build(s, params[s].nominal)
}

// Pick chooses uniformly among candidates and perturbs from the chosen
// entry's own nominal value. Unknown style names are ignored; Pick returns
// nil when no candidate is usable.
func (a *Assigner) Pick(candidates []config.RoofSpec) *Roof {
	usable := make([]config.RoofSpec, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := Lookup(c.Name); ok {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return nil
	}

	c := usable[a.src.Intn(len(usable))]
	s := Style(c.Name)
	nominal, ok := c.Params[params[s].name]
	if !ok {
		nominal = params[s].nominal
	}
	return a.build(s, nominal)
}

// Uniform returns a value drawn uniformly from [lo, hi).
func (a *Assigner) Uniform(lo, hi float64) float64 {
	return lo + a.src.Float64()*(hi-lo)
}

func (a *Assigner) build(s Style, nominal float64) *Roof {
	p := params[s]
	var v float64
	switch {
	case p.integer:
		nominal = math.Round(nominal)
		v = nominal + float64(a.src.Intn(2*int(p.spread)+1)) - p.spread
	case p.relative:
		v = nominal * (1 + p.spread*(2*a.src.Float64()-1))
	default:
		v = nominal + p.spread*(2*a.src.Float64()-1)
	}
	v = math.Max(v, p.floor)

	return &Roof{
		Style:   s,
		Params:  map[string]float64{p.name: v},
		nominal: nominal,
	}
}
