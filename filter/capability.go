package filter

import (
	"strings"

	"github.com/pkg/errors"
)

// Capability switches optional evaluator behaviour on.
type Capability uint

const (
	// During enables the DURING operator.
	During Capability = 1 << iota
	// NegatedNodes enables the "NOT AND" and "NOT OR" combinators.
	NegatedNodes
	// BufferedLine lets DWITHIN buffer non-point literals.
	BufferedLine
	// RelativeDateEquals evaluates "=" on DATE attributes as RELATIVE.
	RelativeDateEquals
	// EmptyStringMatchesAbsent makes a clause with an empty-string literal
	// match records that have no value for the attribute.
	EmptyStringMatchesAbsent
)

const (
	// DefaultCapabilities is the full evaluator without the "=" date overload.
	DefaultCapabilities = During | NegatedNodes | BufferedLine | EmptyStringMatchesAbsent
	// LegacyModelCapabilities reproduces the reduced model-level evaluator.
	LegacyModelCapabilities Capability = 0
)

var capabilityNames = map[string]Capability{
	"during":                      During,
	"negated-nodes":               NegatedNodes,
	"buffered-line":               BufferedLine,
	"relative-date-equals":        RelativeDateEquals,
	"empty-string-matches-absent": EmptyStringMatchesAbsent,
}

// Has reports whether every capability in o is set.
func (c Capability) Has(o Capability) bool {
	return c&o == o
}

func (c Capability) String() string {
	var names []string
	for _, name := range []string{"during", "negated-nodes", "buffered-line", "relative-date-equals", "empty-string-matches-absent"} {
		if c.Has(capabilityNames[name]) {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}

// ParseCapabilities builds a capability set from names such as "during" or
// "negated-nodes". "default" and "legacy" expand to the predefined sets.
func ParseCapabilities(names []string) (Capability, error) {
	var c Capability
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "":
			continue
		case "default":
			c |= DefaultCapabilities
			continue
		case "legacy":
			c |= LegacyModelCapabilities
			continue
		}
		bit, ok := capabilityNames[name]
		if !ok {
			return 0, errors.Errorf("unknown capability %q", name)
		}
		c |= bit
	}
	return c, nil
}
