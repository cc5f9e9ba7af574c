package filter

import (
	"time"

	"github.com/smhanov/cqlmatch/metacard"
)

// Evaluator tests records against filter trees. It only reads the registry
// and never modifies records or filters, so one Evaluator may be shared by
// any number of goroutines.
type Evaluator struct {
	registry     metacard.Registry
	capabilities Capability
	blacklist    map[string]struct{}
	now          func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCapabilities replaces the evaluator's capability set.
func WithCapabilities(c Capability) Option {
	return func(e *Evaluator) {
		e.capabilities = c
	}
}

// WithBlacklist excludes attributes from anyText searches.
func WithBlacklist(names ...string) Option {
	return func(e *Evaluator) {
		for _, name := range names {
			e.blacklist[name] = struct{}{}
		}
	}
}

// WithClock sets the time source used by relative date comparisons.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEvaluator creates an evaluator reading attribute types from reg.
func NewEvaluator(reg metacard.Registry, opts ...Option) *Evaluator {
	if reg == nil {
		reg = metacard.Registry{}
	}
	e := &Evaluator{
		registry:     reg,
		capabilities: DefaultCapabilities,
		blacklist:    map[string]struct{}{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Capabilities returns the active capability set.
func (e *Evaluator) Capabilities() Capability {
	return e.capabilities
}

// Evaluate reports whether rec satisfies f.
//
// The only errors are failures to parse geometries, either a spatial
// literal in the filter or a geometry value on the record. Unknown
// attributes, operators and values that cannot be compared evaluate to
// false.
func (e *Evaluator) Evaluate(rec *metacard.Record, f *Filter) (bool, error) {
	if f == nil || rec == nil {
		return false, nil
	}
	if f.IsLeaf() {
		return e.evaluateClause(rec, f)
	}

	switch f.NodeType() {
	case NodeAnd:
		return e.evaluateAnd(rec, f.Filters)
	case NodeOr:
		return e.evaluateOr(rec, f.Filters)
	case NodeNotAnd:
		if !e.capabilities.Has(NegatedNodes) {
			break
		}
		ok, err := e.evaluateAnd(rec, f.Filters)
		return !ok && err == nil, err
	case NodeNotOr:
		if !e.capabilities.Has(NegatedNodes) {
			break
		}
		ok, err := e.evaluateOr(rec, f.Filters)
		return !ok && err == nil, err
	}
	return e.evaluateClause(rec, f)
}

// evaluateAnd is true when every child is true; an empty list is true.
func (e *Evaluator) evaluateAnd(rec *metacard.Record, children []*Filter) (bool, error) {
	for _, child := range children {
		ok, err := e.Evaluate(rec, child)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// evaluateOr is true when any child is true; an empty list is false.
func (e *Evaluator) evaluateOr(rec *metacard.Record, children []*Filter) (bool, error) {
	for _, child := range children {
		ok, err := e.Evaluate(rec, child)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// evaluateClause tests each extracted value in turn and stops at the first
// match.
func (e *Evaluator) evaluateClause(rec *metacard.Record, f *Filter) (bool, error) {
	values, attrType, err := e.extractValues(rec, f)
	if err != nil {
		return false, err
	}
	if len(values) == 0 {
		return e.capabilities.Has(EmptyStringMatchesAbsent) && f.hasEmptyLiteral(), nil
	}

	op := f.Operator()
	if op == OpEqual && attrType == metacard.TypeDate && e.capabilities.Has(RelativeDateEquals) {
		op = OpRelative
	}
	match, ok := matchers[op]
	if !ok || !e.supports(op) {
		return false, nil
	}

	c := &clause{Filter: f, now: e.now, caps: e.capabilities}
	for _, v := range values {
		ok, err := match(v, c)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) supports(op Operator) bool {
	switch op {
	case OpDuring:
		return e.capabilities.Has(During)
	}
	return true
}
