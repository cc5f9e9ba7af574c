package filter

import (
	"github.com/spf13/cast"
)

// Operator is the comparison performed by a leaf clause.
type Operator string

const (
	OpILike        Operator = "ILIKE"
	OpLike         Operator = "LIKE"
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpIntersects   Operator = "INTERSECTS"
	OpDWithin      Operator = "DWITHIN"
	OpAfter        Operator = "AFTER"
	OpBefore       Operator = "BEFORE"
	OpDuring       Operator = "DURING"
	OpRelative     Operator = "RELATIVE"
)

// NodeType is the boolean combinator of a branch node.
type NodeType string

const (
	NodeAnd    NodeType = "AND"
	NodeOr     NodeType = "OR"
	NodeNotAnd NodeType = "NOT AND"
	NodeNotOr  NodeType = "NOT OR"
)

// Pseudo-attributes that search across many attributes at once.
const (
	AnyText = "anyText"
	AnyGeo  = "anyGeo"
)

// Filter is a node of a filter tree. Branch nodes carry Filters and a
// NodeType in Type; leaf clauses carry an Operator in Type together with the
// property and literal they test. A node is a branch exactly when Filters is
// non-nil, whatever its Type says.
type Filter struct {
	Type     string    `json:"type"`
	Property string    `json:"property,omitempty"`
	Value    any       `json:"value,omitempty"`
	Distance float64   `json:"distance,omitempty"`
	From     any       `json:"from,omitempty"`
	To       any       `json:"to,omitempty"`
	Filters  []*Filter `json:"filters,omitempty"`
}

// IsLeaf reports whether f is a comparison clause rather than a branch.
func (f *Filter) IsLeaf() bool {
	return f.Filters == nil
}

// Operator returns Type as a clause operator.
func (f *Filter) Operator() Operator {
	return Operator(f.Type)
}

// NodeType returns Type as a branch combinator.
func (f *Filter) NodeType() NodeType {
	return NodeType(f.Type)
}

// Literal returns the clause value as text. A {"value": ...} wrapper is
// unwrapped first.
func (f *Filter) Literal() string {
	return cast.ToString(unwrapValue(f.Value))
}

// RawValue returns the clause value with any {"value": ...} wrapper removed.
func (f *Filter) RawValue() any {
	return unwrapValue(f.Value)
}

// hasEmptyLiteral reports whether the clause compares against "".
func (f *Filter) hasEmptyLiteral() bool {
	s, ok := unwrapValue(f.Value).(string)
	return ok && s == ""
}

func unwrapValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			return inner
		}
	}
	return v
}

// And combines filters into an AND node.
func And(filters ...*Filter) *Filter {
	return &Filter{Type: string(NodeAnd), Filters: nonNil(filters)}
}

// Or combines filters into an OR node.
func Or(filters ...*Filter) *Filter {
	return &Filter{Type: string(NodeOr), Filters: nonNil(filters)}
}

// NotAnd is true when any of filters is false.
func NotAnd(filters ...*Filter) *Filter {
	return &Filter{Type: string(NodeNotAnd), Filters: nonNil(filters)}
}

// NotOr is true when every one of filters is false.
func NotOr(filters ...*Filter) *Filter {
	return &Filter{Type: string(NodeNotOr), Filters: nonNil(filters)}
}

// Clause builds a leaf comparing property against value with op.
func Clause(property string, op Operator, value any) *Filter {
	return &Filter{Type: string(op), Property: property, Value: value}
}

func nonNil(filters []*Filter) []*Filter {
	if filters == nil {
		return []*Filter{}
	}
	return filters
}
