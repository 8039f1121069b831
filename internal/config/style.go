package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Artistic style names.
const (
	StyleModern       = "modern"
	StyleClassic      = "classic"
	StyleMinimal      = "minimal"
	StyleBlockCombine = "block-combine"
	StyleBlockLegacy  = "block-legacy"
)

// ErrUnknownStyle is wrapped by Validate when artistic_style names no known style.
var ErrUnknownStyle = errors.New("unknown artistic style")

// Mode is the consolidation strategy family an artistic style selects.
type Mode int

const (
	ModeDistance Mode = iota
	ModeThreshold
	ModeLegacyBlocks
)

func (m Mode) String() string {
	switch m {
	case ModeDistance:
		return "distance"
	case ModeThreshold:
		return "area-threshold"
	case ModeLegacyBlocks:
		return "legacy-blocks"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

var styleModes = map[string]Mode{
	StyleModern:       ModeDistance,
	StyleClassic:      ModeDistance,
	StyleMinimal:      ModeDistance,
	StyleBlockCombine: ModeThreshold,
	StyleBlockLegacy:  ModeLegacyBlocks,
}

// Styles returns every accepted artistic style name, sorted.
func Styles() []string {
	names := make([]string, 0, len(styleModes))
	for name := range styleModes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Style is the run configuration. It is built once, validated, and then
// passed by value; nothing downstream writes to it.
type Style struct {
	ArtisticStyle   string  `yaml:"artistic_style"`
	MergeDistance   float64 `yaml:"merge_distance"`
	ClusterSize     float64 `yaml:"cluster_size"`
	HeightVariance  float64 `yaml:"height_variance"`
	DetailLevel     float64 `yaml:"detail_level"`
	MinBuildingArea float64 `yaml:"min_building_area"`
	AreaThreshold   float64 `yaml:"area_threshold"`

	// Seed drives roof style selection; 0 picks a time-based seed.
	Seed uint64 `yaml:"seed"`

	// Size is the edge length of the square model in millimeters.
	Size float64 `yaml:"size"`

	Layers     Layers               `yaml:"layers"`
	BlockTypes map[string]BlockType `yaml:"block_types"`
}

// Layers holds per-layer physical dimensions.
type Layers struct {
	Roads     RoadLayer     `yaml:"roads"`
	Railways  LineLayer     `yaml:"railways"`
	Buildings BuildingLayer `yaml:"buildings"`
}

// RoadLayer sizes roads. A road's width is Width times the multiplier for
// its highway type, 1.0 when the type is not listed.
type RoadLayer struct {
	Width           float64            `yaml:"width"`
	TypeMultipliers map[string]float64 `yaml:"types"`
}

// LineLayer sizes a linear layer of uniform width.
type LineLayer struct {
	Width float64 `yaml:"width"`
}

// BuildingLayer bounds building heights in millimeters.
type BuildingLayer struct {
	MinHeight     float64 `yaml:"min_height"`
	MaxHeight     float64 `yaml:"max_height"`
	DefaultHeight float64 `yaml:"default_height"`
}

// BlockType describes one land use for the legacy block strategy.
type BlockType struct {
	MinHeight  float64    `yaml:"min_height"`
	MaxHeight  float64    `yaml:"max_height"`
	RoofStyles []RoofSpec `yaml:"roof_styles"`
}

// RoofSpec names a roof style and its nominal parameters,
// e.g. {name: sawtooth, angle: 30}.
type RoofSpec struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:",inline"`
}

// Default returns the stock configuration.
func Default() Style {
	return Style{
		ArtisticStyle:   StyleModern,
		MergeDistance:   2.0,
		ClusterSize:     3.0,
		HeightVariance:  0.2,
		DetailLevel:     1.0,
		MinBuildingArea: 200.0,
		AreaThreshold:   1000.0,
		Size:            200.0,
		Layers: Layers{
			Roads: RoadLayer{
				Width: 1.0,
				TypeMultipliers: map[string]float64{
					"motorway":    2.0,
					"trunk":       1.8,
					"primary":     1.5,
					"secondary":   1.2,
					"residential": 1.0,
					"service":     0.8,
				},
			},
			Railways: LineLayer{Width: 1.5},
			Buildings: BuildingLayer{
				MinHeight:     2,
				MaxHeight:     8,
				DefaultHeight: 4,
			},
		},
		BlockTypes: map[string]BlockType{
			"residential": {
				MinHeight: 10, MaxHeight: 25,
				RoofStyles: []RoofSpec{
					{Name: "pitched", Params: map[string]float64{"height_factor": 0.3}},
					{Name: "tiered", Params: map[string]float64{"levels": 2}},
					{Name: "flat", Params: map[string]float64{"border": 1.0}},
				},
			},
			"industrial": {
				MinHeight: 15, MaxHeight: 20,
				RoofStyles: []RoofSpec{
					{Name: "sawtooth", Params: map[string]float64{"angle": 30}},
					{Name: "flat", Params: map[string]float64{"border": 2.0}},
					{Name: "stepped", Params: map[string]float64{"levels": 2}},
				},
			},
			"commercial": {
				MinHeight: 20, MaxHeight: 40,
				RoofStyles: []RoofSpec{
					{Name: "modern", Params: map[string]float64{"setback": 2.0}},
					{Name: "tiered", Params: map[string]float64{"levels": 2}},
					{Name: "complex", Params: map[string]float64{"variations": 5}},
				},
			},
		},
	}
}

// Load reads a style from a YAML file. Keys absent from the file keep
// their Default values. The result is validated.
func Load(path string) (Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("reading style file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML style data over Default and validates it.
func Parse(data []byte) (Style, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Style{}, fmt.Errorf("parsing style YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Style{}, err
	}
	return s, nil
}

// Mode returns the strategy family for s.ArtisticStyle. Validate must
// have succeeded.
func (s Style) Mode() Mode {
	return styleModes[s.ArtisticStyle]
}

// FiltersSmallBuildings reports whether footprints below
// MinBuildingArea are discarded at load time. Block modes keep them.
func (s Style) FiltersSmallBuildings() bool {
	return s.Mode() == ModeDistance
}

// RoadWidth returns the barrier width of a road of the given highway type.
func (s Style) RoadWidth(highway string) float64 {
	m, ok := s.Layers.Roads.TypeMultipliers[highway]
	if !ok {
		m = 1.0
	}
	return s.Layers.Roads.Width * m
}

// Validate reports the first problem with s.
func (s Style) Validate() error {
	if _, ok := styleModes[s.ArtisticStyle]; !ok {
		return fmt.Errorf("%w %q (allowed: %s)", ErrUnknownStyle, s.ArtisticStyle, strings.Join(Styles(), ", "))
	}
	if s.ClusterSize < 0 {
		return fmt.Errorf("cluster_size must be non-negative, got %g", s.ClusterSize)
	}
	if s.AreaThreshold <= 0 {
		return fmt.Errorf("area_threshold must be positive, got %g", s.AreaThreshold)
	}
	if s.DetailLevel < 0 || s.DetailLevel > 2 {
		return fmt.Errorf("detail_level must be in [0, 2], got %g", s.DetailLevel)
	}
	if s.HeightVariance < 0 || s.HeightVariance > 1 {
		return fmt.Errorf("height_variance must be in [0, 1], got %g", s.HeightVariance)
	}
	if s.MinBuildingArea < 0 {
		return fmt.Errorf("min_building_area must be non-negative, got %g", s.MinBuildingArea)
	}
	if s.Size <= 0 {
		return fmt.Errorf("size must be positive, got %g", s.Size)
	}

	b := s.Layers.Buildings
	if b.MinHeight <= 0 || b.MaxHeight < b.MinHeight {
		return fmt.Errorf("building heights must satisfy 0 < min_height <= max_height, got %g..%g", b.MinHeight, b.MaxHeight)
	}

	for name, bt := range s.BlockTypes {
		if bt.MinHeight <= 0 || bt.MaxHeight < bt.MinHeight {
			return fmt.Errorf("block type %s: heights must satisfy 0 < min_height <= max_height", name)
		}
		if len(bt.RoofStyles) == 0 {
			return fmt.Errorf("block type %s: no roof styles", name)
		}
	}
	return nil
}
