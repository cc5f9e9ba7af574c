// Package query reads CQL filter text into filter trees.
//
// The accepted language is the subset of OGC CQL produced by catalog search
// forms:
//
//	"anyText" ILIKE 'golden*' AND created DURING 2020-01-01T00:00:00Z/2021-01-01T00:00:00Z
//	INTERSECTS(anyGeo, POLYGON((0 0, 10 0, 10 10, 0 10, 0 0)))
//	DWITHIN(anyGeo, POINT(1 2), 5, kilometers) OR NOT (count > :limit)
//
// Chains of AND or OR become a single node, and NOT is folded into the node
// it negates, so the trees produced here are the ones filter.Filter.String
// writes back.
package query

import "github.com/smhanov/cqlmatch/filter"

// Parse reads a filter expression that has no parameters.
func Parse(query string) (*filter.Filter, error) {
	return ParseWithParameters(query, nil)
}

// ParseWithParameters reads a filter expression, replacing every :name
// placeholder with params[name]. A placeholder without a value is an error.
func ParseWithParameters(query string, params Parameters) (*filter.Filter, error) {
	lexer := NewLexer(query)
	parser := NewParser(lexer, params)
	return parser.Parse()
}
