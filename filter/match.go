package filter

import (
	"strings"
	"time"

	"github.com/grafana/regexp"
	"github.com/pkg/errors"
	"github.com/sosodev/duration"
	"github.com/spf13/cast"

	"github.com/smhanov/cqlmatch/geometry"
)

// clause is the per-evaluation view of a leaf filter handed to matchers.
type clause struct {
	*Filter
	now  func() time.Time
	caps Capability

	ref     *geometry.Reference
	refErr  error
	refDone bool
}

type matchFunc func(value any, c *clause) (bool, error)

var matchers = map[Operator]matchFunc{
	OpILike:        matchILike,
	OpLike:         matchLike,
	OpEqual:        matchEqual,
	OpNotEqual:     matchNotEqual,
	OpGreater:      ordered(func(c int) bool { return c > 0 }),
	OpGreaterEqual: ordered(func(c int) bool { return c >= 0 }),
	OpLess:         ordered(func(c int) bool { return c < 0 }),
	OpLessEqual:    ordered(func(c int) bool { return c <= 0 }),
	OpIntersects:   matchIntersects,
	OpDWithin:      matchDWithin,
	OpAfter:        matchAfter,
	OpBefore:       matchBefore,
	OpDuring:       matchDuring,
	OpRelative:     matchRelative,
}

func matchILike(value any, c *clause) (bool, error) {
	return matchTokens(strings.ToLower(cast.ToString(value)), strings.ToLower(c.Literal())), nil
}

func matchLike(value any, c *clause) (bool, error) {
	return matchTokens(cast.ToString(value), c.Literal()), nil
}

// matchTokens is true when any space separated token of value matches any
// token of pattern.
func matchTokens(value, pattern string) bool {
	patterns := strings.Split(pattern, " ")
	for _, token := range strings.Split(value, " ") {
		for _, p := range patterns {
			if checkToken(token, p) {
				return true
			}
		}
	}
	return false
}

// checkToken compares a token with a pattern in which '*' matches any run of
// characters. Patterns without '*' must be equal to the token.
func checkToken(token, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return token == pattern
	}
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return false
	}
	return re.MatchString(token)
}

func matchEqual(value any, c *clause) (bool, error) {
	return cast.ToString(value) == c.Literal(), nil
}

func matchNotEqual(value any, c *clause) (bool, error) {
	return cast.ToString(value) != c.Literal(), nil
}

// ordered builds an ordering matcher. Values compare as numbers when either
// side is numeric and as strings otherwise.
func ordered(accept func(int) bool) matchFunc {
	return func(value any, c *clause) (bool, error) {
		cmp, ok := compare(value, c.RawValue())
		return ok && accept(cmp), nil
	}
}

func compare(a, b any) (int, bool) {
	if isNumber(a) || isNumber(b) {
		x, err := cast.ToFloat64E(a)
		if err != nil {
			return 0, false
		}
		y, err := cast.ToFloat64E(b)
		if err != nil {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	return strings.Compare(cast.ToString(a), cast.ToString(b)), true
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func matchIntersects(value any, c *clause) (bool, error) {
	ref, err := c.reference(func() (*geometry.Reference, error) {
		return geometry.ReferenceFromWKT(c.Literal())
	})
	if err != nil {
		return false, err
	}
	return intersectsCandidate(ref, value)
}

// matchDWithin tests against a circle around a point literal or, when
// buffered lines are enabled, a corridor around any other literal.
func matchDWithin(value any, c *clause) (bool, error) {
	if c.Distance <= 0 {
		return false, nil
	}
	literal := c.Literal()
	if !geometry.IsPointRadius(literal) && !c.caps.Has(BufferedLine) {
		return false, nil
	}

	ref, err := c.reference(func() (*geometry.Reference, error) {
		g, err := geometry.ParseWKT(literal)
		if err != nil {
			return nil, err
		}
		return geometry.BufferReference(g, c.Distance)
	})
	if err != nil {
		return false, err
	}
	return intersectsCandidate(ref, value)
}

func intersectsCandidate(ref *geometry.Reference, value any) (bool, error) {
	g, err := geometry.Parse(value)
	if err != nil {
		return false, err
	}
	return geometry.Intersects(ref, g), nil
}

// reference builds the clause's spatial reference once per evaluation.
func (c *clause) reference(build func() (*geometry.Reference, error)) (*geometry.Reference, error) {
	if !c.refDone {
		c.ref, c.refErr = build()
		c.refDone = true
	}
	return c.ref, c.refErr
}

func matchAfter(value any, c *clause) (bool, error) {
	d, ok := parseDate(value)
	if !ok {
		return false, nil
	}
	limit, ok := parseDate(c.RawValue())
	return ok && !d.Before(limit), nil
}

func matchBefore(value any, c *clause) (bool, error) {
	d, ok := parseDate(value)
	if !ok {
		return false, nil
	}
	limit, ok := parseDate(c.RawValue())
	return ok && !d.After(limit), nil
}

// matchDuring accepts dates from From up to, but excluding, To. A literal of
// the form "start/end" supplies the bounds when From and To are unset.
func matchDuring(value any, c *clause) (bool, error) {
	d, ok := parseDate(value)
	if !ok {
		return false, nil
	}

	from, to := c.From, c.To
	if from == nil && to == nil {
		if start, end, found := strings.Cut(c.Literal(), "/"); found {
			from, to = start, end
		}
	}
	start, ok := parseDate(from)
	if !ok {
		return false, nil
	}
	end, ok := parseDate(to)
	if !ok {
		return false, nil
	}
	return !d.Before(start) && d.Before(end), nil
}

const relativePrefix = "RELATIVE("

// matchRelative accepts dates no older than the duration in a
// RELATIVE(<ISO-8601 duration>) literal.
func matchRelative(value any, c *clause) (bool, error) {
	d, ok := parseDate(value)
	if !ok {
		return false, nil
	}
	window, err := parseRelative(c.Literal())
	if err != nil {
		return false, nil
	}
	return !d.Before(c.now().Add(-window)), nil
}

func parseRelative(literal string) (time.Duration, error) {
	s := strings.TrimSpace(literal)
	if len(s) > len(relativePrefix) && strings.EqualFold(s[:len(relativePrefix)], relativePrefix) {
		s = strings.TrimSuffix(s[len(relativePrefix):], ")")
	}
	d, err := duration.Parse(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "parsing relative duration %q", literal)
	}
	return d.ToTimeDuration(), nil
}

func parseDate(v any) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
