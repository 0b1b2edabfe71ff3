package ward

import (
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DefaultNameProperty is the feature property read as the ward code.
const DefaultNameProperty = "name"

// ExtractGeoJSON reads a FeatureCollection and returns one region per
// Polygon or MultiPolygon feature, in collection order. The ward code is
// taken from the nameProp property. Vertices are the outer rings of every
// polygon part. Other geometry types are skipped.
func ExtractGeoJSON(data []byte, nameProp string, logger *slog.Logger) ([]Region, error) {
	if nameProp == "" {
		nameProp = DefaultNameProperty
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	c := newCollector(logger)
	for _, f := range fc.Features {
		name, _ := f.Properties[nameProp].(string)
		c.add(name, outerVertices(f.Geometry))
	}
	return c.result(), nil
}

func outerVertices(g orb.Geometry) []LatLon {
	var polys []orb.Polygon
	switch v := g.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{v}
	case orb.MultiPolygon:
		polys = v
	default:
		return nil
	}

	var out []LatLon
	for _, p := range polys {
		if len(p) == 0 {
			continue
		}
		for _, pt := range p[0] {
			if !validVertex(pt.Lat(), pt.Lon()) {
				continue
			}
			out = append(out, LatLon{Latitude: pt.Lat(), Longitude: pt.Lon()})
		}
	}
	return out
}
