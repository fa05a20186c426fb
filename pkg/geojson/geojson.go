package geojson

import (
	"errors"
	"fmt"

	"zonepilot-backend/pkg/geo"
)

// GeoJSON carries coordinates as [lng,lat]; everything internal is [lat,lng].

var ErrNotFeatureCollection = errors.New("not a GeoJSON FeatureCollection")

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Geometry   Geometry               `json:"geometry"`
}

type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// PolygonFeature is a decoded Polygon feature: the exterior ring in
// internal [lat,lng] order plus the display properties we care about.
type PolygonFeature struct {
	Name  string
	Color string
	Ring  []geo.Point
}

// DecodePolygons extracts the exterior ring of every feature. Every feature
// must be a Polygon with a non-empty exterior ring; anything else fails the
// whole collection.
func DecodePolygons(fc FeatureCollection) ([]PolygonFeature, error) {
	if fc.Type != "FeatureCollection" {
		return nil, ErrNotFeatureCollection
	}
	out := make([]PolygonFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry.Type != "Polygon" {
			return nil, fmt.Errorf("feature %d: geometry type %q is not Polygon", i, f.Geometry.Type)
		}
		if len(f.Geometry.Coordinates) == 0 || len(f.Geometry.Coordinates[0]) == 0 {
			return nil, fmt.Errorf("feature %d: empty polygon", i)
		}
		exterior := f.Geometry.Coordinates[0]
		ring := make([]geo.Point, len(exterior))
		for j, c := range exterior {
			ring[j] = geo.Point{Lat: c[1], Lng: c[0]}
		}
		out = append(out, PolygonFeature{
			Name:  stringProp(f.Properties, "name"),
			Color: stringProp(f.Properties, "color"),
			Ring:  ring,
		})
	}
	return out, nil
}

// EncodePolygon builds a Polygon feature from an internal [lat,lng] ring.
func EncodePolygon(ring []geo.Point, properties map[string]interface{}) Feature {
	coords := make([][2]float64, len(ring))
	for i, p := range ring {
		coords[i] = [2]float64{p.Lng, p.Lat}
	}
	return Feature{
		Type:       "Feature",
		Properties: properties,
		Geometry: Geometry{
			Type:        "Polygon",
			Coordinates: [][][2]float64{coords},
		},
	}
}

// NewFeatureCollection wraps features in a FeatureCollection envelope.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

func stringProp(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}
