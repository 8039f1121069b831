package features

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/drkpxl/city-shadow/internal/config"
	"github.com/drkpxl/city-shadow/internal/geometry"
	"github.com/drkpxl/city-shadow/internal/logging"
)

// ErrNoFeatures is returned when the input has no features at all.
var ErrNoFeatures = errors.New("no features in input")

var greenLanduse = map[string]bool{
	"grass":         true,
	"forest":        true,
	"meadow":        true,
	"village_green": true,
	"farmland":      true,
	"orchard":       true,
}

var greenLeisure = map[string]bool{
	"park":              true,
	"garden":            true,
	"golf_course":       true,
	"recreation_ground": true,
	"pitch":             true,
	"playground":        true,
}

// Loader classifies OSM-tagged GeoJSON into a Collection.
type Loader struct {
	Style config.Style
	// Projected input is already in model units and is used verbatim.
	Projected bool
	Logger    *zap.Logger
}

// Load reads and classifies a GeoJSON file.
func (l *Loader) Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return l.Decode(data)
}

// Decode classifies GeoJSON feature collection data.
func (l *Loader) Decode(data []byte) (*Collection, error) {
	logger := logging.OrNop(l.Logger)
	start := time.Now()

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing GeoJSON: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, ErrNoFeatures
	}

	coords := make([][]orb.Point, len(fc.Features))
	var all []orb.Point
	for i, f := range fc.Features {
		coords[i] = extract(f.Geometry)
		all = append(all, coords[i]...)
	}

	project := l.projection(all, logger)

	c := &Collection{}
	var coastlines []orb.LineString
	skipped := 0

	for i, f := range fc.Features {
		props := f.Properties
		raw := coords[i]
		if len(raw) == 0 {
			skipped++
			continue
		}
		pts := make([]orb.Point, len(raw))
		for k, p := range raw {
			pts[k] = project(p)
		}

		switch {
		case tag(props, "natural") == "coastline":
			if len(pts) >= 2 {
				coastlines = append(coastlines, orb.LineString(pts))
			}

		case tag(props, "natural") == "water":
			if len(pts) >= 3 {
				c.Water = append(c.Water, Area{Ring: orb.Ring(pts), Type: tagOr(props, "water", "unknown")})
			}

		case tag(props, "building") == "industrial":
			if l.tooSmall(raw) {
				logger.Debug("Skipping small industrial building", zap.Int("feature", i))
				skipped++
				continue
			}
			c.Industrial = append(c.Industrial, Building{
				Ring:   orb.Ring(pts),
				Height: IndustrialBuildingHeight(props, l.Style.Layers.Buildings),
				Tag:    "industrial",
			})

		case has(props, "building"):
			if l.tooSmall(raw) {
				logger.Debug("Skipping small building", zap.Int("feature", i))
				skipped++
				continue
			}
			c.Buildings = append(c.Buildings, Building{
				Ring:   orb.Ring(pts),
				Height: BuildingHeight(props, l.Style.Layers.Buildings),
				Tag:    tag(props, "building"),
			})

		case isParking(props):
			// Parking without an outline is dropped.
			if len(pts) < 3 {
				skipped++
				continue
			}
			c.Roads = append(c.Roads, Road{Path: orb.LineString(pts), Type: "parking", Parking: true})

		case has(props, "highway"):
			if isTunnel(props) || len(pts) < 2 {
				skipped++
				continue
			}
			// Bridges stay out of Roads and never become barriers.
			if isYes(tag(props, "bridge")) {
				c.Bridges = append(c.Bridges, Bridge{Path: orb.LineString(pts), Type: tagOr(props, "highway", "bridge")})
				continue
			}
			c.Roads = append(c.Roads, Road{Path: orb.LineString(pts), Type: tagOr(props, "highway", "unknown")})

		case has(props, "railway"):
			if isTunnel(props) || len(pts) < 2 {
				skipped++
				continue
			}
			c.Railways = append(c.Railways, Railway{Path: orb.LineString(pts), Type: tagOr(props, "railway", "unknown")})

		case greenLanduse[tag(props, "landuse")] || greenLeisure[tag(props, "leisure")]:
			if polygonal(f.Geometry) && len(pts) >= 3 {
				c.Parks = append(c.Parks, Area{Ring: orb.Ring(pts), Type: "park"})
			}
		}
	}

	// Industrial landuse is collected after everything else so buildings
	// always precede it.
	for i, f := range fc.Features {
		landuse := tag(f.Properties, "landuse")
		if !IsIndustrialLanduse(landuse) || len(coords[i]) < 3 || has(f.Properties, "building") {
			continue
		}
		if l.tooSmall(coords[i]) {
			logger.Debug("Skipping small industrial area", zap.Int("feature", i))
			skipped++
			continue
		}
		ring := make(orb.Ring, len(coords[i]))
		for k, p := range coords[i] {
			ring[k] = project(p)
		}
		c.Industrial = append(c.Industrial, Building{
			Ring:   ring,
			Height: IndustrialAreaHeight(landuse, l.Style.Layers.Buildings),
			Tag:    landuse,
		})
	}

	c.Water = append(c.Water, BuildOcean(coastlines, l.Style.Size)...)

	fields := []zap.Field{zap.Int("features", len(fc.Features)), zap.Int("skipped", skipped)}
	for k, n := range c.Counts() {
		fields = append(fields, zap.Int(k, n))
	}
	fields = append(fields, zap.Duration("duration", time.Since(start)))
	logger.Info("Loaded features", fields...)
	return c, nil
}

// projection returns the lon/lat to model transform for the input.
func (l *Loader) projection(all []orb.Point, logger *zap.Logger) func(orb.Point) orb.Point {
	if l.Projected {
		return func(p orb.Point) orb.Point { return p }
	}
	if len(all) == 0 {
		logger.Warn("No coordinates found in features")
		center := orb.Point{l.Style.Size / 2, l.Style.Size / 2}
		return func(orb.Point) orb.Point { return center }
	}
	return geometry.NewProjector(all, l.Style.Size).Project
}

// tooSmall reports whether a building outline falls under min_building_area.
func (l *Loader) tooSmall(raw []orb.Point) bool {
	if !l.Style.FiltersSmallBuildings() || len(raw) < 3 {
		return false
	}
	var area float64
	if l.Projected {
		area = geometry.Area(orb.Ring(raw))
	} else {
		area = geometry.AreaSquareMeters(orb.Ring(raw))
	}
	return area < l.Style.MinBuildingArea
}

// extract returns the coordinates a feature contributes. For multipolygons
// only the part with the most vertices is used.
func extract(g orb.Geometry) []orb.Point {
	switch g := g.(type) {
	case orb.Point:
		return []orb.Point{g}
	case orb.LineString:
		return g
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		return g[0]
	case orb.MultiPolygon:
		var best orb.Ring
		for _, p := range g {
			if len(p) > 0 && len(p[0]) > len(best) {
				best = p[0]
			}
		}
		return best
	default:
		return nil
	}
}

func polygonal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	}
	return false
}

func has(props geojson.Properties, key string) bool {
	_, ok := props[key]
	return ok
}

func tag(props geojson.Properties, key string) string {
	s, _ := props[key].(string)
	return s
}

func tagOr(props geojson.Properties, key, def string) string {
	if s := tag(props, key); s != "" {
		return s
	}
	return def
}

func isYes(v string) bool {
	return v == "yes" || v == "true" || v == "1"
}

func isTunnel(props geojson.Properties) bool {
	return isYes(tag(props, "tunnel"))
}

func isParking(props geojson.Properties) bool {
	return tag(props, "amenity") == "parking" ||
		tag(props, "parking") == "surface" ||
		tag(props, "service") == "parking_aisle"
}
