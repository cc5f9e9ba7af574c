/*
Package filter evaluates catalog filter trees against metacards.

A filter tree is built from Filter nodes. Branches combine their children
with AND, OR, "NOT AND" or "NOT OR"; leaves compare one attribute of a record
with a literal:

	f := filter.And(
	    filter.Clause(`"anyText"`, filter.OpILike, "golden*"),
	    filter.Clause("metacard-tags", filter.OpILike, "resource"),
	)

	e := filter.NewEvaluator(registry)
	ok, err := e.Evaluate(record, f)

# Values

For every clause the evaluator first collects the record values to test:

  - "anyText" collects every STRING attribute of the record.
  - "anyGeo", or any attribute the registry declares GEOMETRY, collects every
    GEOMETRY attribute plus the record's own geometry, parsed into shapes.
  - Anything else is a single attribute lookup; surrounding quotes are ignored.

Multivalued attributes are flattened one level, and the clause matches when
any one value does.

# Operators

ILIKE and LIKE compare space separated tokens with '*' as a wildcard (ILIKE
ignores case). "=" and "!=" compare text. The ordering operators compare
numbers when either side is numeric. INTERSECTS and DWITHIN are spatial;
AFTER, BEFORE, DURING and RELATIVE compare dates.

# Capabilities

Optional behaviour is controlled with a Capability set (see
DefaultCapabilities and LegacyModelCapabilities), so that one evaluator
serves every caller.
*/
package filter
