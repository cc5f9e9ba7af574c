package cqlmatch

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smhanov/cqlmatch/filter"
	"github.com/smhanov/cqlmatch/metacard"
	"github.com/smhanov/cqlmatch/query"
)

func testRegistry() metacard.Registry {
	return metacard.Registry{
		"title":         {ID: "title", Type: metacard.TypeString},
		"metacard-tags": {ID: "metacard-tags", Type: metacard.TypeString, Multivalued: true},
		"location":      {ID: "location", Type: metacard.TypeGeometry},
		"created":       {ID: "created", Type: metacard.TypeDate},
	}
}

func testRecords() []*metacard.Record {
	return []*metacard.Record{
		metacard.NewRecord(map[string]any{
			"id":            "bridge",
			"title":         "Golden Gate Bridge",
			"metacard-tags": []any{"resource"},
			"location":      "POINT(-122.4783 37.8199)",
		}),
		metacard.NewRecord(map[string]any{
			"id":            "workspace",
			"title":         "Golden workspace",
			"metacard-tags": []any{"workspace"},
		}),
		metacard.NewRecord(map[string]any{
			"id":            "broken",
			"title":         "Broken geometry",
			"metacard-tags": []any{"resource"},
			"location":      "POLYGON((0 0,",
		}),
	}
}

func TestMatcherFilter(t *testing.T) {
	reg := prometheus.NewRegistry()
	var logs bytes.Buffer
	logger, err := NewLogger(&logs, "logfmt", "info")
	require.NoError(t, err)

	m, err := NewMatcher(testRegistry(), MatcherOptions{Logger: logger, Registerer: reg})
	require.NoError(t, err)

	f, err := m.Compile(`"anyText" ILIKE 'golden' AND "metacard-tags" ILIKE 'resource'`, nil)
	require.NoError(t, err)

	matched := m.Filter(testRecords(), f)
	require.Len(t, matched, 1)
	assert.Equal(t, "bridge", matched[0].ID())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations.WithLabelValues(resultMatch)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.evaluations.WithLabelValues(resultNoMatch)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.evaluations.WithLabelValues(resultError)))
	assert.Empty(t, logs.String())
}

func TestMatcherContainsErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	var logs bytes.Buffer
	logger, err := NewLogger(&logs, "logfmt", "warn")
	require.NoError(t, err)

	m, err := NewMatcher(testRegistry(), MatcherOptions{Logger: logger, Registerer: reg})
	require.NoError(t, err)

	f, err := m.Compile("INTERSECTS(anyGeo, POLYGON((-123 37, -122 37, -122 38, -123 38, -123 37)))", nil)
	require.NoError(t, err)

	records := testRecords()
	assert.True(t, m.Match(records[0], f))
	assert.False(t, m.Match(records[1], f))
	assert.False(t, m.Match(records[2], f))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations.WithLabelValues(resultError)))
	assert.Contains(t, logs.String(), "level=warn")
	assert.Contains(t, logs.String(), "record=broken")

	count, err := testutil.GatherAndCount(reg, "cqlmatch_evaluation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMatcherCount(t *testing.T) {
	m, err := NewMatcher(testRegistry(), MatcherOptions{})
	require.NoError(t, err)

	f, err := m.Compile(`"metacard-tags" = :tag`, query.Parameters{"tag": "resource"})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count(testRecords(), f))

	assert.Equal(t, 0, m.Count(nil, f))
}

func TestMatcherCompileError(t *testing.T) {
	m, err := NewMatcher(nil, MatcherOptions{})
	require.NoError(t, err)

	_, err = m.Compile("title ==", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, query.ErrUnexpectedToken)
}

func TestMatcherCapabilities(t *testing.T) {
	m, err := NewMatcher(nil, MatcherOptions{})
	require.NoError(t, err)
	assert.Equal(t, filter.DefaultCapabilities, m.Capabilities())

	legacy, err := NewMatcher(nil, MatcherOptions{Capabilities: []string{"legacy"}})
	require.NoError(t, err)
	assert.Equal(t, filter.LegacyModelCapabilities, legacy.Capabilities())

	f, err := legacy.Compile("NOT title = 'x'", nil)
	require.NoError(t, err)
	assert.False(t, legacy.Match(metacard.NewRecord(map[string]any{"title": "y"}), f))

	_, err = NewMatcher(nil, MatcherOptions{Capabilities: []string{"time-travel"}})
	require.Error(t, err)
}

func TestMatcherClock(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	m, err := NewMatcher(testRegistry(), MatcherOptions{Clock: func() time.Time { return now }})
	require.NoError(t, err)

	f, err := m.Compile("created = RELATIVE(P1D)", nil)
	require.NoError(t, err)

	recent := metacard.NewRecord(map[string]any{"created": "2024-03-10T06:00:00Z"})
	old := metacard.NewRecord(map[string]any{"created": "2024-03-01T06:00:00Z"})
	assert.True(t, m.Match(recent, f))
	assert.False(t, m.Match(old, f))
}

func TestMatcherBlacklist(t *testing.T) {
	m, err := NewMatcher(testRegistry(), MatcherOptions{Blacklist: []string{"title"}})
	require.NoError(t, err)

	f, err := m.Compile(`"anyText" ILIKE 'golden'`, nil)
	require.NoError(t, err)
	assert.Empty(t, m.Filter(testRecords(), f))
}
