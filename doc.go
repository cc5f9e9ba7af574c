/*
Package cqlmatch tests catalog records ("metacards") against CQL filters on
the client, the same way a catalog search would select them on the server.

# What is matched?

A record is a bag of named attribute values plus an optional geometry. An
attribute registry says which attributes are text, numbers, dates or
geometries. A filter is a tree of AND, OR, NOT AND and NOT OR nodes whose
leaves compare one attribute with a literal:

	"anyText" ILIKE 'golden*' AND "metacard-tags" ILIKE 'resource'
	INTERSECTS(anyGeo, POLYGON((-122.5 37.7, -122.3 37.7, -122.3 37.9, -122.5 37.9, -122.5 37.7)))
	created DURING 2024-01-01T00:00:00Z/2024-02-01T00:00:00Z

# Usage

Load the registry, build a Matcher, compile the filter and match records:

	registry, err := metacard.LoadRegistryFile("attributes.yaml")
	if err != nil {
	    return err
	}

	m, err := cqlmatch.NewMatcher(registry, cqlmatch.MatcherOptions{
	    Logger:     logger,
	    Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
	    return err
	}

	f, err := m.Compile(`"anyText" ILIKE :term`, query.Parameters{"term": "golden*"})
	if err != nil {
	    return err
	}

	records, err := metacard.ReadRecordFile("records.ndjson")
	if err != nil {
	    return err
	}
	for _, rec := range m.Filter(records, f) {
	    fmt.Println(rec.ID())
	}

Match never fails: a record whose geometry cannot be parsed is logged and
treated as not matching. Use filter.Evaluator directly to see the errors.

# Capabilities

Two historical evaluators differed in which operators and node types they
understood. Both are available through capability sets: the default enables
everything except treating "=" on dates as a relative comparison, and
"legacy" reproduces the reduced evaluator. See filter.Capability.

# Packages

  - metacard: records, the attribute registry and record file codecs.
  - geometry: WKT and GeoJSON parsing, reference shapes and intersection.
  - filter: the filter tree and its evaluator.
  - query: the CQL reader.
*/
package cqlmatch
