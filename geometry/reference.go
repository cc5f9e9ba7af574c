package geometry

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"
)

// CircleSides is the number of edges used to approximate a radius circle.
const CircleSides = 64

// Reference is the shape a candidate geometry is tested against. It is the
// union of its polygons.
type Reference struct {
	polygons []orb.Polygon
	bound    orb.Bound
}

// NewReference builds a reference from one or more polygons.
func NewReference(polygons ...orb.Polygon) *Reference {
	ref := &Reference{}
	for _, p := range polygons {
		if len(p) == 0 || len(p[0]) == 0 {
			continue
		}
		if len(ref.polygons) == 0 {
			ref.bound = p.Bound()
		} else {
			ref.bound = ref.bound.Union(p.Bound())
		}
		ref.polygons = append(ref.polygons, p)
	}
	return ref
}

// ReferenceFromWKT parses a POLYGON or MULTIPOLYGON literal.
func ReferenceFromWKT(s string) (*Reference, error) {
	g, err := ParseWKT(s)
	if err != nil {
		return nil, err
	}
	switch g := g.(type) {
	case orb.Polygon:
		return NewReference(g), nil
	case orb.MultiPolygon:
		return NewReference(g...), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedGeometry, "reference must be polygonal, got %s", g.GeoJSONType())
}

// Polygons returns the polygons making up the reference.
func (r *Reference) Polygons() []orb.Polygon {
	return r.polygons
}

// Empty reports whether the reference covers nothing.
func (r *Reference) Empty() bool {
	return r == nil || len(r.polygons) == 0
}

// Circle approximates the circle of radius meters around center with a
// CircleSides-sided polygon. The polygon circumscribes the circle: its edges
// touch the circle at their midpoints, so every point within meters of
// center is inside.
func Circle(center orb.Point, meters float64) orb.Polygon {
	vertex := meters / math.Cos(math.Pi/CircleSides)
	ring := make(orb.Ring, 0, CircleSides+1)
	for i := 0; i < CircleSides; i++ {
		bearing := 360 * float64(i) / CircleSides
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, vertex))
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// BufferLine returns polygons covering every point within meters of line:
// one rectangle per segment and one circle per vertex.
func BufferLine(line orb.LineString, meters float64) []orb.Polygon {
	if len(line) == 0 || meters <= 0 {
		return nil
	}

	polygons := make([]orb.Polygon, 0, 2*len(line))
	for _, p := range line {
		polygons = append(polygons, Circle(p, meters))
	}
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		if a.Equal(b) {
			continue
		}
		bearing := geo.Bearing(a, b)
		left, right := bearing-90, bearing+90
		ring := orb.Ring{
			geo.PointAtBearingAndDistance(a, left, meters),
			geo.PointAtBearingAndDistance(b, left, meters),
			geo.PointAtBearingAndDistance(b, right, meters),
			geo.PointAtBearingAndDistance(a, right, meters),
		}
		ring = append(ring, ring[0])
		polygons = append(polygons, orb.Polygon{ring})
	}
	return polygons
}

// BufferReference builds the reference for a "within distance" test around g.
// Points become circles, lines become buffered corridors and polygons are
// kept whole with their outline buffered.
func BufferReference(g orb.Geometry, meters float64) (*Reference, error) {
	if meters <= 0 {
		return NewReference(), nil
	}

	var polygons []orb.Polygon
	switch g := g.(type) {
	case orb.Point:
		polygons = append(polygons, Circle(g, meters))
	case orb.MultiPoint:
		for _, p := range g {
			polygons = append(polygons, Circle(p, meters))
		}
	case orb.LineString:
		polygons = BufferLine(g, meters)
	case orb.MultiLineString:
		for _, ls := range g {
			polygons = append(polygons, BufferLine(ls, meters)...)
		}
	case orb.Polygon:
		polygons = append(polygons, g)
		if len(g) > 0 {
			polygons = append(polygons, BufferLine(orb.LineString(g[0]), meters)...)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			polygons = append(polygons, p)
			if len(p) > 0 {
				polygons = append(polygons, BufferLine(orb.LineString(p[0]), meters)...)
			}
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedGeometry, "cannot buffer %T", g)
	}
	return NewReference(polygons...), nil
}

// IsPointRadius reports whether a spatial literal is a single point, which
// together with a distance describes a circle.
func IsPointRadius(literal string) bool {
	return wktKeyword(literal) == "POINT"
}

// IsPolygon reports whether a spatial literal is polygonal.
func IsPolygon(literal string) bool {
	switch wktKeyword(literal) {
	case "POLYGON", "MULTIPOLYGON":
		return true
	}
	return false
}

// IsLine reports whether a spatial literal is a line or set of lines.
func IsLine(literal string) bool {
	switch wktKeyword(literal) {
	case "LINESTRING", "MULTILINESTRING":
		return true
	}
	return false
}

func wktKeyword(literal string) string {
	s := strings.TrimSpace(literal)
	end := strings.IndexAny(s, " (")
	if end < 0 {
		end = len(s)
	}
	return strings.ToUpper(s[:end])
}
