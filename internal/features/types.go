package features

import "github.com/paulmach/orb"

// Building is a projected building or industrial footprint.
type Building struct {
	Ring   orb.Ring
	Height float64
	// Tag is the OSM building (or landuse) value, e.g. "house" or "warehouse".
	Tag string
}

// Road is a projected highway centreline or parking outline.
type Road struct {
	Path orb.LineString
	Type string
	// Width overrides the configured width for the road type when positive.
	Width   float64
	Parking bool
}

// Railway is a projected railway centreline.
type Railway struct {
	Path  orb.LineString
	Type  string
	Width float64
}

// Bridge is a projected highway segment tagged as a bridge.
type Bridge struct {
	Path orb.LineString
	Type string
}

// Area is a projected polygonal feature such as water or a park.
type Area struct {
	Ring orb.Ring
	Type string
}

// Collection holds every classified feature of one input, in model units.
type Collection struct {
	Buildings  []Building
	Industrial []Building
	Roads      []Road
	Railways   []Railway
	Water      []Area
	Bridges    []Bridge
	Parks      []Area
}

// Counts returns the number of features per category, for logging.
func (c *Collection) Counts() map[string]int {
	return map[string]int{
		"buildings":  len(c.Buildings),
		"industrial": len(c.Industrial),
		"roads":      len(c.Roads),
		"railways":   len(c.Railways),
		"water":      len(c.Water),
		"bridges":    len(c.Bridges),
		"parks":      len(c.Parks),
	}
}
