// Package geometry turns the shapes found on catalog records and in filter
// literals into orb values and answers intersection questions about them.
//
// Candidate geometries are plain Go values whose dynamic type acts as the
// GeoJSON "type" discriminant: orb.Point, orb.MultiPoint, orb.LineString,
// orb.MultiLineString, orb.Polygon, orb.MultiPolygon, orb.Collection,
// *geojson.Feature, *geojson.FeatureCollection and *geojson.Geometry.
// Parse produces these from WKT text, GeoJSON text or decoded JSON maps.
//
// Reference shapes are unions of polygons (see Reference). They come from
// WKT literals, from a point plus radius (Circle) or from a buffered line
// (BufferLine).
package geometry

import (
	"encoding/json"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedGeometry is returned when a value cannot be used as a geometry.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
)

// Parse normalizes v into one of the candidate types listed in the package
// documentation. Strings are read as GeoJSON when they start with '{' and as
// WKT otherwise. Maps are treated as decoded GeoJSON objects.
func Parse(v any) (any, error) {
	switch g := v.(type) {
	case nil:
		return nil, errors.Wrap(ErrUnsupportedGeometry, "nil value")
	case orb.Geometry:
		return g, nil
	case *geojson.Feature, *geojson.FeatureCollection:
		return g, nil
	case *geojson.Geometry:
		if g == nil {
			return nil, errors.Wrap(ErrUnsupportedGeometry, "nil geojson geometry")
		}
		return g, nil
	case string:
		return parseText(g)
	case []byte:
		return parseGeoJSON(g)
	case map[string]any:
		data, err := json.Marshal(g)
		if err != nil {
			return nil, errors.Wrap(err, "encoding geojson object")
		}
		return parseGeoJSON(data)
	}
	return nil, errors.Wrapf(ErrUnsupportedGeometry, "%T", v)
}

// ParseWKT parses a WKT literal.
func ParseWKT(s string) (orb.Geometry, error) {
	g, err := wkt.Unmarshal(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing wkt %q", truncate(s))
	}
	return g, nil
}

func parseText(s string) (any, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") {
		return parseGeoJSON([]byte(trimmed))
	}
	return ParseWKT(trimmed)
}

func parseGeoJSON(data []byte) (any, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, errors.Wrap(err, "parsing geojson")
	}

	switch head.Type {
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errors.Wrap(err, "parsing geojson feature")
		}
		return f, nil
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errors.Wrap(err, "parsing geojson feature collection")
		}
		return fc, nil
	case "":
		return nil, errors.Wrap(ErrUnsupportedGeometry, "geojson object without type")
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing geojson %s", head.Type)
	}
	if g.Geometry() == nil {
		return nil, errors.Wrapf(ErrUnsupportedGeometry, "geojson type %s", head.Type)
	}
	return g.Geometry(), nil
}

func truncate(s string) string {
	if len(s) > 64 {
		return s[:64] + "..."
	}
	return s
}
