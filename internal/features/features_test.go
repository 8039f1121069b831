package features

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/geometry"
)

const sample = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"building": "yes", "height": "20 m"},
     "geometry": {"type": "Polygon", "coordinates": [[[4.900, 52.370], [4.901, 52.370], [4.901, 52.371], [4.900, 52.371], [4.900, 52.370]]]}},
    {"type": "Feature", "properties": {"building": "house"},
     "geometry": {"type": "Polygon", "coordinates": [[[4.9020, 52.3720], [4.90205, 52.3720], [4.90205, 52.37205], [4.9020, 52.37205], [4.9020, 52.3720]]]}},
    {"type": "Feature", "properties": {"highway": "primary", "bridge": "yes"},
     "geometry": {"type": "LineString", "coordinates": [[4.895, 52.365], [4.905, 52.375]]}},
    {"type": "Feature", "properties": {"highway": "secondary", "tunnel": "yes"},
     "geometry": {"type": "LineString", "coordinates": [[4.895, 52.375], [4.905, 52.365]]}},
    {"type": "Feature", "properties": {"railway": "rail"},
     "geometry": {"type": "LineString", "coordinates": [[4.895, 52.368], [4.905, 52.368]]}},
    {"type": "Feature", "properties": {"natural": "water", "water": "pond"},
     "geometry": {"type": "Polygon", "coordinates": [[[4.903, 52.366], [4.904, 52.366], [4.904, 52.367], [4.903, 52.366]]]}},
    {"type": "Feature", "properties": {"landuse": "industrial"},
     "geometry": {"type": "Polygon", "coordinates": [[[4.896, 52.372], [4.898, 52.372], [4.898, 52.374], [4.896, 52.374], [4.896, 52.372]]]}},
    {"type": "Feature", "properties": {"leisure": "park"},
     "geometry": {"type": "Polygon", "coordinates": [[[4.896, 52.366], [4.897, 52.366], [4.897, 52.367], [4.896, 52.366]]]}},
    {"type": "Feature", "properties": {"amenity": "parking"},
     "geometry": {"type": "Polygon", "coordinates": [[[4.899, 52.366], [4.900, 52.366], [4.900, 52.367], [4.899, 52.367], [4.899, 52.366]]]}}
  ]
}`

func loader(style string) *Loader {
	s := config.Default()
	s.ArtisticStyle = style
	return &Loader{Style: s}
}

func TestDecodeClassifies(t *testing.T) {
	c, err := loader(config.StyleModern).Decode([]byte(sample))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := map[string]int{
		"buildings":  1, // the tiny house is filtered
		"industrial": 1,
		"roads":      1, // parking; the bridge and the tunnel are not roads
		"railways":   1,
		"water":      1,
		"bridges":    1,
		"parks":      1,
	}
	for k, n := range c.Counts() {
		if n != want[k] {
			t.Errorf("%s: got %d, want %d", k, n, want[k])
		}
	}

	b := c.Buildings[0]
	if b.Tag != "yes" {
		t.Errorf("building tag = %q", b.Tag)
	}
	if want := ScaleHeight(20, config.Default().Layers.Buildings); b.Height != want {
		t.Errorf("building height = %v, want %v", b.Height, want)
	}
	if c.Industrial[0].Height != 4 || c.Industrial[0].Tag != "industrial" {
		t.Errorf("industrial area = %+v", c.Industrial[0])
	}

	if !c.Roads[0].Parking || c.Roads[0].Type != "parking" {
		t.Errorf("expected the parking lot as the only road, got %+v", c.Roads[0])
	}
	if c.Bridges[0].Type != "primary" {
		t.Errorf("bridge type = %q", c.Bridges[0].Type)
	}
	if c.Water[0].Type != "pond" {
		t.Errorf("water type = %q", c.Water[0].Type)
	}

	for _, r := range c.Roads {
		for _, p := range r.Path {
			if p[0] < 0 || p[0] > 200 || p[1] < 0 || p[1] > 200 {
				t.Errorf("point %v outside model square", p)
			}
		}
	}
}

func TestDecodeParkingNeedsOutline(t *testing.T) {
	data := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {"service": "parking_aisle", "highway": "service"},
	   "geometry": {"type": "LineString", "coordinates": [[0, 0], [10, 0]]}},
	  {"type": "Feature", "properties": {"amenity": "parking"},
	   "geometry": {"type": "LineString", "coordinates": [[0, 5], [10, 5], [10, 10]]}},
	  {"type": "Feature", "properties": {"highway": "residential", "bridge": "yes"},
	   "geometry": {"type": "LineString", "coordinates": [[0, 20], [10, 20]]}}]}`
	l := loader(config.StyleModern)
	l.Projected = true
	c, err := l.Decode([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Roads) != 1 || !c.Roads[0].Parking || len(c.Roads[0].Path) != 3 {
		t.Errorf("expected only the 3-point parking outline as a road, got %+v", c.Roads)
	}
	if len(c.Bridges) != 1 || c.Bridges[0].Type != "residential" {
		t.Errorf("expected one residential bridge, got %+v", c.Bridges)
	}
}

func TestDecodeBlockModeKeepsSmallBuildings(t *testing.T) {
	c, err := loader(config.StyleBlockCombine).Decode([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Buildings) != 2 {
		t.Errorf("expected small buildings kept in block mode, got %d", len(c.Buildings))
	}
}

func TestDecodeProjected(t *testing.T) {
	data := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {"building": "yes"},
	   "geometry": {"type": "Polygon", "coordinates": [[[10, 10], [30, 10], [30, 30], [10, 30], [10, 10]]]}}]}`
	l := loader(config.StyleModern)
	l.Projected = true
	c, err := l.Decode([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Buildings) != 1 {
		t.Fatalf("expected 1 building, got %d", len(c.Buildings))
	}
	if c.Buildings[0].Ring[1] != (orb.Point{30, 10}) {
		t.Errorf("projected input should be used verbatim, got %v", c.Buildings[0].Ring)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := loader(config.StyleModern).Decode([]byte(`{"type": "FeatureCollection", "features": []}`)); !errors.Is(err, ErrNoFeatures) {
		t.Errorf("expected ErrNoFeatures, got %v", err)
	}
	if _, err := loader(config.StyleModern).Decode([]byte(`not json`)); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.geojson")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := loader(config.StyleModern).Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Roads) == 0 {
		t.Error("expected roads from file")
	}
	if _, err := loader(config.StyleModern).Load(filepath.Join(t.TempDir(), "missing.geojson")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractMultiPolygonUsesLargestPart(t *testing.T) {
	mp := orb.MultiPolygon{
		{{{0, 0}, {1, 0}, {0, 1}, {0, 0}}},
		{{{5, 5}, {6, 5}, {6, 6}, {5.5, 6.5}, {5, 6}, {5, 5}}},
	}
	if got := extract(mp); len(got) != 6 {
		t.Errorf("expected the 6-vertex part, got %v", got)
	}
}

func TestHeightMeters(t *testing.T) {
	tests := []struct {
		name  string
		props geojson.Properties
		want  float64
		ok    bool
	}{
		{"with unit", geojson.Properties{"height": "12 m"}, 12, true},
		{"glued unit", geojson.Properties{"height": "12m"}, 12, true},
		{"numeric", geojson.Properties{"height": 15.0}, 15, true},
		{"levels", geojson.Properties{"building:levels": "4"}, 12, true},
		{"garbage height falls to levels", geojson.Properties{"height": "tall", "building:levels": "2"}, 6, true},
		{"not a number", geojson.Properties{"height": "NaN"}, 0, false},
		{"nothing", geojson.Properties{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HeightMeters(tt.props)
			if ok != tt.ok || got != tt.want {
				t.Errorf("got (%v, %v), want (%v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestScaleHeight(t *testing.T) {
	layer := config.Default().Layers.Buildings
	if h := ScaleHeight(0, layer); h != 2 {
		t.Errorf("0 m -> %v, want 2", h)
	}
	if h := ScaleHeight(100, layer); h != 8 {
		t.Errorf("100 m -> %v, want 8", h)
	}
	if h := ScaleHeight(-5, layer); h != 2 {
		t.Errorf("-5 m -> %v, want 2", h)
	}
	if h := BuildingHeight(geojson.Properties{"height": "-5"}, layer); h != 2 {
		t.Errorf("negative height tag -> %v, want 2", h)
	}
	if h := ScaleHeight(5, layer); h != 4.33 {
		t.Errorf("5 m -> %v, want 4.33", h)
	}
	if h := BuildingHeight(geojson.Properties{}, layer); h != 4.33 {
		t.Errorf("default building height = %v, want 4.33", h)
	}
}

func TestIndustrialHeights(t *testing.T) {
	layer := config.Default().Layers.Buildings
	if h := IndustrialBuildingHeight(geojson.Properties{}, layer); h != 4 {
		t.Errorf("untagged industrial = %v, want 4", h)
	}
	tagged := IndustrialBuildingHeight(geojson.Properties{"height": "100"}, layer)
	if math.Abs(tagged-12) > 1e-9 {
		t.Errorf("tagged industrial = %v, want 12", tagged)
	}

	tests := map[string]float64{
		"industrial": 4,
		"logistics":  3.6,
		"warehouse":  3.4,
		"quarry":     3,
	}
	for landuse, want := range tests {
		if h := IndustrialAreaHeight(landuse, layer); math.Abs(h-want) > 1e-9 {
			t.Errorf("%s = %v, want %v", landuse, h, want)
		}
	}
}

func TestBuildOcean(t *testing.T) {
	if BuildOcean(nil, 200) != nil {
		t.Error("expected no ocean without coastlines")
	}

	coast := []orb.LineString{{{100, -10}, {100, 210}}}
	ocean := BuildOcean(coast, 200)
	if len(ocean) != 2 {
		t.Fatalf("expected the coastline to split the square in 2, got %d", len(ocean))
	}
	for _, a := range ocean {
		if a.Type != "ocean" {
			t.Errorf("type = %q", a.Type)
		}
		if area := geometry.Area(a.Ring); math.Abs(area-19800) > 1 {
			t.Errorf("ocean piece area = %f, want ~19800", area)
		}
	}
}
