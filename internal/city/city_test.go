package city

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/features"
	"github.com/drkpxl/city-shadow/internal/merge"
	"github.com/drkpxl/city-shadow/internal/roof"
)

func square(x, y, side float64) orb.Ring {
	return orb.Ring{{x, y}, {x + side, y}, {x + side, y + side}, {x, y + side}}
}

func rowCollection() *features.Collection {
	return &features.Collection{
		Buildings: []features.Building{
			{Ring: square(0, 0, 4), Height: 3, Tag: "yes"},
			{Ring: square(10, 0, 4), Height: 4, Tag: "yes"},
			{Ring: square(20, 0, 4), Height: 5, Tag: "yes"},
		},
	}
}

func pipeline(style string, mutate func(*config.Style)) *Pipeline {
	s := config.Default()
	s.ArtisticStyle = style
	s.Seed = 7
	if mutate != nil {
		mutate(&s)
	}
	return &Pipeline{Style: s}
}

func TestRunDistanceMergesRow(t *testing.T) {
	p := pipeline(config.StyleMinimal, func(s *config.Style) { s.MergeDistance = 15 })
	m, err := p.Run(rowCollection())
	if err != nil {
		t.Fatal(err)
	}
	if m.Strategy != "distance" || m.Seed != 7 {
		t.Errorf("unexpected run metadata: strategy=%q seed=%d", m.Strategy, m.Seed)
	}
	if len(m.Buildings) != 1 || m.Buildings[0].Size != 3 {
		t.Fatalf("expected one cluster of 3, got %+v", m.Buildings)
	}
}

func TestRunRoadSplitsRow(t *testing.T) {
	c := rowCollection()
	c.Roads = []features.Road{{Path: orb.LineString{{17, -10}, {17, 14}}, Type: "primary"}}

	m, err := pipeline(config.StyleMinimal, func(s *config.Style) { s.MergeDistance = 15 }).Run(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Buildings) != 2 {
		t.Fatalf("expected the road to split the row in 2, got %d", len(m.Buildings))
	}
	if m.Buildings[0].Size != 2 || m.Buildings[1].Size != 1 {
		t.Errorf("expected sizes 2 and 1, got %d and %d", m.Buildings[0].Size, m.Buildings[1].Size)
	}
	if len(m.Roads) != 1 {
		t.Error("roads should be carried into the model")
	}
}

func TestRunThresholdKeepsLargeAndLoneSmall(t *testing.T) {
	c := &features.Collection{
		Buildings: []features.Building{
			{Ring: orb.Ring{{0, 0}, {100, 0}, {100, 50}, {0, 50}}, Height: 6, Tag: "yes"},
			{Ring: orb.Ring{{200, 200}, {210, 200}, {210, 205}, {200, 205}}, Height: 3, Tag: "yes"},
		},
	}
	m, err := pipeline(config.StyleBlockCombine, nil).Run(c)
	if err != nil {
		t.Fatal(err)
	}
	if m.Strategy != "area-threshold" {
		t.Errorf("strategy = %q", m.Strategy)
	}
	if len(m.Buildings) != 2 {
		t.Fatalf("expected 2 untouched outputs, got %d", len(m.Buildings))
	}
	for _, b := range m.Buildings {
		if b.IsCluster {
			t.Errorf("unexpected cluster %+v", b)
		}
	}
}

func TestRunLegacyWithoutBarriersProducesNothing(t *testing.T) {
	m, err := pipeline(config.StyleBlockLegacy, nil).Run(rowCollection())
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Buildings) != 0 {
		t.Errorf("expected no blocks without barriers, got %d", len(m.Buildings))
	}
}

func TestRunSeeds(t *testing.T) {
	p := pipeline(config.StyleMinimal, func(s *config.Style) { s.Seed = 0 })
	m, err := p.Run(rowCollection())
	if err != nil {
		t.Fatal(err)
	}
	if m.Seed == 0 {
		t.Error("a zero seed should be replaced by a clock seed")
	}
	if p.Style.Seed != 0 {
		t.Error("Run must not modify the pipeline style")
	}

	p = pipeline(config.StyleBlockCombine, nil)
	p.Roofs = roof.NewAssigner(roof.NewSource(99))
	if _, err := p.Run(rowCollection()); err != nil {
		t.Fatal(err)
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := pipeline(config.StyleModern, nil).Run(nil); !errors.Is(err, ErrNilCollection) {
		t.Errorf("expected ErrNilCollection, got %v", err)
	}
	if _, err := pipeline("gothic", nil).Run(rowCollection()); !errors.Is(err, config.ErrUnknownStyle) {
		t.Errorf("expected ErrUnknownStyle, got %v", err)
	}
}

func TestWriteGeoJSON(t *testing.T) {
	m := &Model{
		Buildings: []merge.Cluster{
			{Ring: square(0, 0, 4), Height: 3, Size: 1},
			{
				Ring: square(10, 0, 4), Height: 4, Size: 2, IsCluster: true,
				Roof: roof.NewAssigner(roof.NewSource(1)).Random(),
			},
		},
		Roads:    []features.Road{{Path: orb.LineString{{0, 10}, {20, 10}}, Type: "primary"}},
		Water:    []features.Area{{Ring: square(30, 30, 5), Type: "ocean"}},
		Parks:    []features.Area{{Ring: square(50, 50, 5), Type: "park"}},
		Strategy: "distance",
		Seed:     3,
	}

	var buf bytes.Buffer
	if err := WriteGeoJSON(&buf, m); err != nil {
		t.Fatal(err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	if err != nil {
		t.Fatalf("output is not GeoJSON: %v", err)
	}
	if len(fc.Features) != 5 {
		t.Fatalf("expected 5 features, got %d", len(fc.Features))
	}

	first := fc.Features[0]
	if first.Properties["layer"] != LayerBuilding || first.Properties["height"] != 3.0 {
		t.Errorf("unexpected building properties %v", first.Properties)
	}
	if _, ok := first.Properties["roof_style"]; ok {
		t.Error("building without roof should have no roof_style")
	}
	poly, ok := first.Geometry.(orb.Polygon)
	if !ok || len(poly[0]) != 5 || poly[0][0] != poly[0][4] {
		t.Errorf("expected closed 5-point ring, got %v", first.Geometry)
	}

	second := fc.Features[1]
	if second.Properties["is_cluster"] != true || second.Properties["size"] != 2.0 {
		t.Errorf("unexpected cluster properties %v", second.Properties)
	}
	if s, _ := second.Properties["roof_style"].(string); s == "" {
		t.Error("expected roof_style on the cluster")
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw["strategy"] != "distance" {
		t.Errorf("expected strategy member, got %v", raw["strategy"])
	}
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.geojson")
	out := filepath.Join(dir, "out.geojson")

	input := `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {"building": "yes"},
	   "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [4, 0], [4, 4], [0, 4], [0, 0]]]}},
	  {"type": "Feature", "properties": {"building": "yes"},
	   "geometry": {"type": "Polygon", "coordinates": [[[10, 0], [14, 0], [14, 4], [10, 4], [10, 0]]]}}]}`
	if err := os.WriteFile(in, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	p := pipeline(config.StyleMinimal, func(s *config.Style) {
		s.MergeDistance = 15
		s.MinBuildingArea = 0
	})
	m, err := p.Convert(in, out, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Buildings) != 1 {
		t.Errorf("expected the two buildings to merge, got %d", len(m.Buildings))
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 1 {
		t.Errorf("expected 1 feature written, got %d", len(fc.Features))
	}

	if _, err := p.Convert(filepath.Join(dir, "missing.geojson"), out, true); err == nil {
		t.Error("expected error for missing input")
	}
}
