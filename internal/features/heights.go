package features

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/drkpxl/city-shadow/internal/config"
)

const (
	// DefaultHeightMeters is assumed for buildings without height tags.
	DefaultHeightMeters = 5.0
	// LevelHeightMeters converts building:levels to meters.
	LevelHeightMeters = 3.0
	// scaleCeilingMeters maps to the maximum model height.
	scaleCeilingMeters = 100.0

	industrialHeightBonus = 1.5
)

// industrialLanduse maps industrial landuse values to a multiple of the
// minimum building height.
var industrialLanduse = map[string]float64{
	"industrial":   2.0,
	"construction": 1.5,
	"depot":        1.5,
	"logistics":    1.8,
	"port":         2.0,
	"warehouse":    1.7,
}

// HeightMeters reads a real-world height from OSM tags: "height" (which
// may carry a unit suffix such as "12 m") or building:levels times 3.
func HeightMeters(props geojson.Properties) (float64, bool) {
	if h, ok := number(props["height"]); ok {
		return h, true
	}
	if l, ok := number(props["building:levels"]); ok {
		return l * LevelHeightMeters, true
	}
	return 0, false
}

// ScaleHeight maps meters onto the model's building height range on a log
// scale, so 0 m lands on min_height and 100 m on max_height. The result is
// rounded to 0.01 mm. Negative heights are treated as 0 m.
func ScaleHeight(meters float64, layer config.BuildingLayer) float64 {
	meters = math.Max(meters, 0)
	scaled := math.Log10(meters+1) / math.Log10(scaleCeilingMeters+1)
	h := layer.MinHeight + scaled*(layer.MaxHeight-layer.MinHeight)
	return math.Round(h*100) / 100
}

// BuildingHeight returns the model height of a regular building.
func BuildingHeight(props geojson.Properties, layer config.BuildingLayer) float64 {
	m, ok := HeightMeters(props)
	if !ok {
		m = DefaultHeightMeters
	}
	return ScaleHeight(m, layer)
}

// IndustrialBuildingHeight boosts tagged industrial heights by half and
// otherwise uses twice the minimum height, capped at the maximum.
func IndustrialBuildingHeight(props geojson.Properties, layer config.BuildingLayer) float64 {
	if m, ok := HeightMeters(props); ok {
		return ScaleHeight(m, layer) * industrialHeightBonus
	}
	return math.Min(layer.MaxHeight, layer.MinHeight*2)
}

// IndustrialAreaHeight returns the block height for an industrial landuse.
func IndustrialAreaHeight(landuse string, layer config.BuildingLayer) float64 {
	m, ok := industrialLanduse[landuse]
	if !ok {
		m = 1.5
	}
	return math.Min(layer.MaxHeight, layer.MinHeight*m)
}

// IsIndustrialLanduse reports whether landuse is treated as industrial.
func IsIndustrialLanduse(landuse string) bool {
	_, ok := industrialLanduse[landuse]
	return ok
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		fields := strings.Fields(n)
		if len(fields) == 0 {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "m"), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
