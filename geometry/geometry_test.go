package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}}
}

func TestParse(t *testing.T) {
	t.Run("wkt point", func(t *testing.T) {
		g, err := Parse("POINT(1 2)")
		require.NoError(t, err)
		assert.Equal(t, orb.Point{1, 2}, g)
	})

	t.Run("wkt polygon", func(t *testing.T) {
		g, err := Parse("POLYGON((0 0,10 0,10 10,0 10,0 0))")
		require.NoError(t, err)
		assert.Equal(t, square(0, 0, 10, 10), g)
	})

	t.Run("geojson map", func(t *testing.T) {
		g, err := Parse(map[string]any{
			"type":        "LineString",
			"coordinates": []any{[]any{0.0, 0.0}, []any{1.0, 1.0}},
		})
		require.NoError(t, err)
		assert.Equal(t, orb.LineString{{0, 0}, {1, 1}}, g)
	})

	t.Run("geojson feature text", func(t *testing.T) {
		g, err := Parse(`{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [3, 4]}}`)
		require.NoError(t, err)
		f, ok := g.(*geojson.Feature)
		require.True(t, ok)
		assert.Equal(t, orb.Point{3, 4}, f.Geometry)
	})

	t.Run("geojson feature collection", func(t *testing.T) {
		g, err := Parse(`{"type": "FeatureCollection", "features": []}`)
		require.NoError(t, err)
		assert.IsType(t, &geojson.FeatureCollection{}, g)
	})

	t.Run("geometry collection", func(t *testing.T) {
		g, err := Parse(`{"type": "GeometryCollection", "geometries": [{"type": "Point", "coordinates": [1, 1]}]}`)
		require.NoError(t, err)
		assert.Equal(t, orb.Collection{orb.Point{1, 1}}, g)
	})

	t.Run("orb passthrough", func(t *testing.T) {
		g, err := Parse(orb.Point{7, 8})
		require.NoError(t, err)
		assert.Equal(t, orb.Point{7, 8}, g)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := Parse(nil)
		require.ErrorIs(t, err, ErrUnsupportedGeometry)

		_, err = Parse(42)
		require.ErrorIs(t, err, ErrUnsupportedGeometry)

		_, err = Parse("POLYGON((0 0,")
		require.Error(t, err)

		_, err = Parse(`{"coordinates": [1, 2]}`)
		require.ErrorIs(t, err, ErrUnsupportedGeometry)
	})
}

func TestReferenceFromWKT(t *testing.T) {
	ref, err := ReferenceFromWKT("MULTIPOLYGON(((0 0,1 0,1 1,0 0)),((5 5,6 5,6 6,5 5)))")
	require.NoError(t, err)
	assert.Len(t, ref.Polygons(), 2)

	_, err = ReferenceFromWKT("POINT(1 2)")
	require.ErrorIs(t, err, ErrUnsupportedGeometry)

	assert.True(t, NewReference().Empty())
}

func TestIntersects(t *testing.T) {
	ref := NewReference(square(0, 0, 10, 10))

	tests := []struct {
		name      string
		candidate any
		expected  bool
	}{
		{"point inside", orb.Point{5, 5}, true},
		{"point on boundary", orb.Point{10, 5}, true},
		{"point outside", orb.Point{20, 20}, false},
		{"multipoint with one inside", orb.MultiPoint{{20, 20}, {5, 5}}, true},
		{"multipoint outside", orb.MultiPoint{{20, 20}, {-1, -1}}, false},
		{"line crossing", orb.LineString{{-5, 5}, {15, 5}}, true},
		{"line outside", orb.LineString{{20, 0}, {20, 10}}, false},
		{"multiline with one crossing", orb.MultiLineString{{{20, 0}, {20, 10}}, {{5, -5}, {5, 15}}}, true},
		{"overlapping polygon", square(5, 5, 15, 15), true},
		{"enclosing polygon", square(-5, -5, 15, 15), true},
		{"crossing polygon without shared vertices", square(-5, 4, 15, 6), true},
		{"disjoint polygon", square(20, 20, 30, 30), false},
		{"multipolygon with one intersecting part", orb.MultiPolygon{square(20, 20, 30, 30), square(5, 5, 15, 15)}, true},
		{"multipolygon disjoint", orb.MultiPolygon{square(20, 20, 30, 30), square(-30, -30, -20, -20)}, false},
		{"feature", geojson.NewFeature(orb.Point{5, 5}), true},
		{"feature without geometry", &geojson.Feature{}, false},
		{"feature collection", &geojson.FeatureCollection{Features: []*geojson.Feature{
			geojson.NewFeature(orb.Point{50, 50}),
			geojson.NewFeature(orb.Point{1, 1}),
		}}, true},
		{"geometry collection", orb.Collection{orb.Point{50, 50}, orb.LineString{{-1, 1}, {1, 1}}}, true},
		{"geojson geometry", geojson.NewGeometry(orb.Point{5, 5}), true},
		{"unknown type", "POINT(5 5)", false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Intersects(ref, tt.candidate))
		})
	}
}

func TestIntersectsPolygonWithHole(t *testing.T) {
	donut := orb.Polygon{
		square(0, 0, 10, 10)[0],
		square(2, 2, 8, 8)[0],
	}
	ref := NewReference(donut)

	assert.False(t, Intersects(ref, square(4, 4, 6, 6)), "inside the hole")
	assert.False(t, Intersects(ref, orb.Point{5, 5}), "point in the hole")
	assert.True(t, Intersects(ref, square(1, 1, 3, 3)), "straddles the hole edge")
}

func TestIntersectsEmptyReference(t *testing.T) {
	assert.False(t, Intersects(NewReference(), orb.Point{0, 0}))
	assert.False(t, Intersects(nil, orb.Point{0, 0}))
}

func TestCircle(t *testing.T) {
	c := Circle(orb.Point{0, 0}, 1000)
	require.Len(t, c[0], CircleSides+1)
	assert.Equal(t, c[0][0], c[0][CircleSides])

	ref := NewReference(c)
	assert.True(t, Intersects(ref, orb.Point{0.005, 0}), "about 556m east")
	assert.False(t, Intersects(ref, orb.Point{0.02, 0}), "about 2.2km east")
}

func TestCircleCoversRadius(t *testing.T) {
	center := orb.Point{0, 0}
	ref := NewReference(Circle(center, 1000))

	// Halfway between two vertices, where an inscribed polygon is narrowest.
	between := 180.0 / CircleSides
	assert.True(t, Intersects(ref, geo.PointAtBearingAndDistance(center, between, 999)))
	assert.True(t, Intersects(ref, geo.PointAtBearingAndDistance(center, 90+between, 999.5)))

	assert.False(t, Intersects(ref, geo.PointAtBearingAndDistance(center, 0, 1010)))
	assert.False(t, Intersects(ref, geo.PointAtBearingAndDistance(center, between, 1005)))
}

func TestBufferLine(t *testing.T) {
	line := orb.LineString{{0, 0}, {0.1, 0}}
	ref := NewReference(BufferLine(line, 1000)...)

	assert.True(t, Intersects(ref, orb.Point{0.05, 0.005}), "beside the middle of the line")
	assert.False(t, Intersects(ref, orb.Point{0.05, 0.02}), "too far from the line")
	assert.True(t, Intersects(ref, orb.Point{0.105, 0}), "past the end cap")

	assert.Empty(t, BufferLine(line, 0))
	assert.Empty(t, BufferLine(nil, 10))
}

func TestBufferReference(t *testing.T) {
	ref, err := BufferReference(orb.Point{0, 0}, 1000)
	require.NoError(t, err)
	assert.True(t, Intersects(ref, orb.Point{0.005, 0}))

	ref, err = BufferReference(square(0, 0, 0.01, 0.01), 1000)
	require.NoError(t, err)
	assert.True(t, Intersects(ref, orb.Point{0.005, 0.005}), "inside the polygon")
	assert.True(t, Intersects(ref, orb.Point{0.015, 0.005}), "within the buffered outline")

	ref, err = BufferReference(orb.Point{0, 0}, 0)
	require.NoError(t, err)
	assert.True(t, ref.Empty())

	_, err = BufferReference(orb.Collection{}, 10)
	require.ErrorIs(t, err, ErrUnsupportedGeometry)
}

func TestLiteralClassification(t *testing.T) {
	assert.True(t, IsPointRadius("POINT(1 2)"))
	assert.True(t, IsPointRadius("  point (1 2)"))
	assert.False(t, IsPointRadius("MULTIPOINT((1 2))"))
	assert.True(t, IsPolygon("POLYGON((0 0,1 0,1 1,0 0))"))
	assert.True(t, IsPolygon("MULTIPOLYGON(((0 0,1 0,1 1,0 0)))"))
	assert.False(t, IsPolygon("LINESTRING(0 0,1 1)"))
	assert.True(t, IsLine("LINESTRING(0 0,1 1)"))
	assert.False(t, IsLine(""))
}
