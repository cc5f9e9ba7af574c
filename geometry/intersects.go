package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Intersects reports whether candidate shares any point with ref.
//
// Points, lines and single polygons are tested directly. Multi-part shapes,
// features and collections are decomposed and match when any part does.
// Values of any other type never intersect.
func Intersects(ref *Reference, candidate any) bool {
	if ref.Empty() {
		return false
	}

	switch g := candidate.(type) {
	case orb.Point:
		return ref.containsPoint(g)
	case orb.MultiPoint:
		for _, p := range g {
			if Intersects(ref, p) {
				return true
			}
		}
		return false
	case orb.LineString:
		return ref.intersectsLine(g)
	case orb.MultiLineString:
		for _, ls := range g {
			if ref.intersectsLine(ls) {
				return true
			}
		}
		return false
	case orb.Ring:
		return ref.intersectsPolygon(orb.Polygon{g})
	case orb.Polygon:
		return ref.intersectsPolygon(g)
	case orb.MultiPolygon:
		for _, p := range g {
			if Intersects(ref, p) {
				return true
			}
		}
		return false
	case orb.Collection:
		for _, member := range g {
			if Intersects(ref, member) {
				return true
			}
		}
		return false
	case *geojson.Feature:
		if g == nil {
			return false
		}
		return Intersects(ref, g.Geometry)
	case *geojson.FeatureCollection:
		if g == nil {
			return false
		}
		for _, f := range g.Features {
			if Intersects(ref, f) {
				return true
			}
		}
		return false
	case *geojson.Geometry:
		if g == nil {
			return false
		}
		return Intersects(ref, g.Geometry())
	}
	return false
}

func (r *Reference) containsPoint(p orb.Point) bool {
	if !r.bound.Contains(p) {
		return false
	}
	for _, poly := range r.polygons {
		if planar.PolygonContains(poly, p) {
			return true
		}
	}
	return false
}

func (r *Reference) intersectsLine(ls orb.LineString) bool {
	if len(ls) == 0 || !r.bound.Intersects(ls.Bound()) {
		return false
	}
	for _, poly := range r.polygons {
		if polygonIntersectsLine(poly, ls) {
			return true
		}
	}
	return false
}

func (r *Reference) intersectsPolygon(p orb.Polygon) bool {
	if len(p) == 0 || len(p[0]) == 0 || !r.bound.Intersects(p.Bound()) {
		return false
	}
	for _, poly := range r.polygons {
		if polygonsIntersect(poly, p) {
			return true
		}
	}
	return false
}

func polygonIntersectsLine(poly orb.Polygon, ls orb.LineString) bool {
	if !poly.Bound().Intersects(ls.Bound()) {
		return false
	}
	for _, p := range ls {
		if planar.PolygonContains(poly, p) {
			return true
		}
	}
	for _, ring := range poly {
		if pathsCross(orb.LineString(ring), ls) {
			return true
		}
	}
	return false
}

func polygonsIntersect(a, b orb.Polygon) bool {
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}
	for _, p := range b[0] {
		if planar.PolygonContains(a, p) {
			return true
		}
	}
	for _, p := range a[0] {
		if planar.PolygonContains(b, p) {
			return true
		}
	}
	for _, ra := range a {
		for _, rb := range b {
			if pathsCross(orb.LineString(ra), orb.LineString(rb)) {
				return true
			}
		}
	}
	return false
}

// pathsCross reports whether any segment of a touches any segment of b.
func pathsCross(a, b orb.LineString) bool {
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if segmentsIntersect(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// collinear and touching
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return p[0] >= min(a[0], b[0]) && p[0] <= max(a[0], b[0]) &&
		p[1] >= min(a[1], b[1]) && p[1] <= max(a[1], b[1])
}
