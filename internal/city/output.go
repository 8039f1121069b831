package city

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/drkpxl/city-shadow/internal/geometry"
	"github.com/drkpxl/city-shadow/internal/merge"
)

// Layer names written to the "layer" property.
const (
	LayerBuilding = "building"
	LayerRoad     = "road"
	LayerRailway  = "railway"
	LayerWater    = "water"
	LayerBridge   = "bridge"
	LayerPark     = "park"
)

// FeatureCollection renders m as GeoJSON in model coordinates. Rings are
// closed on output.
func FeatureCollection(m *Model) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, c := range m.Buildings {
		fc.Append(buildingFeature(c))
	}
	for _, r := range m.Roads {
		f := feature(r.Path, LayerRoad, r.Type)
		f.Properties["parking"] = r.Parking
		if r.Width > 0 {
			f.Properties["width"] = r.Width
		}
		fc.Append(f)
	}
	for _, r := range m.Railways {
		fc.Append(feature(r.Path, LayerRailway, r.Type))
	}
	for _, w := range m.Water {
		fc.Append(feature(orb.Polygon{geometry.Closed(w.Ring)}, LayerWater, w.Type))
	}
	for _, b := range m.Bridges {
		fc.Append(feature(b.Path, LayerBridge, b.Type))
	}
	for _, p := range m.Parks {
		fc.Append(feature(orb.Polygon{geometry.Closed(p.Ring)}, LayerPark, p.Type))
	}

	fc.ExtraMembers = geojson.Properties{
		"strategy": m.Strategy,
		"seed":     m.Seed,
	}
	return fc
}

func buildingFeature(c merge.Cluster) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{geometry.Closed(c.Ring)})
	f.Properties["layer"] = LayerBuilding
	f.Properties["height"] = c.Height
	f.Properties["is_cluster"] = c.IsCluster
	f.Properties["size"] = c.Size
	if c.Roof != nil {
		f.Properties["roof_style"] = string(c.Roof.Style)
		f.Properties["roof_params"] = c.Roof.Params
	}
	if c.IsBlock {
		f.Properties["is_block"] = true
		f.Properties["block_use"] = string(c.BlockUse)
	}
	return f
}

func feature(g orb.Geometry, layer, kind string) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties["layer"] = layer
	f.Properties["type"] = kind
	return f
}

// WriteGeoJSON encodes m to w as an indented feature collection.
func WriteGeoJSON(w io.Writer, m *Model) error {
	data, err := json.MarshalIndent(FeatureCollection(m), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// SaveGeoJSON writes m to filename.
func SaveGeoJSON(filename string, m *Model) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteGeoJSON(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
