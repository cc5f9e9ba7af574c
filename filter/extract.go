package filter

import (
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/smhanov/cqlmatch/geometry"
	"github.com/smhanov/cqlmatch/metacard"
)

// effectiveProperty resolves the attribute a clause really targets.
// Attributes declared GEOMETRY are searched like anyGeo. The full-text
// search needs the quoted form "anyText"; unquoted, anyText is an ordinary
// attribute name.
func (e *Evaluator) effectiveProperty(property string) (name string, fullText bool) {
	name = unquote(property)
	if name == AnyText {
		return name, property == `"`+AnyText+`"`
	}
	if e.registry.TypeOf(name) == metacard.TypeGeometry {
		return AnyGeo, false
	}
	return name, false
}

// extractValues collects the candidate values a clause is tested against,
// with multivalued attributes flattened one level.
func (e *Evaluator) extractValues(rec *metacard.Record, f *Filter) ([]any, metacard.AttributeType, error) {
	name, fullText := e.effectiveProperty(f.Property)
	if fullText {
		return flatten(e.anyTextValues(rec)), metacard.TypeString, nil
	}

	switch name {
	case AnyGeo:
		values, err := e.anyGeoValues(rec)
		return values, metacard.TypeGeometry, err
	default:
		v, ok := rec.Get(name)
		if !ok || v == nil {
			return nil, e.registry.TypeOf(name), nil
		}
		return flatten([]any{v}), e.registry.TypeOf(name), nil
	}
}

func (e *Evaluator) anyTextValues(rec *metacard.Record) []any {
	var values []any
	for _, name := range sortedKeys(rec.Properties) {
		if e.registry.TypeOf(name) != metacard.TypeString {
			continue
		}
		if _, skip := e.blacklist[name]; skip {
			continue
		}
		if v := rec.Properties[name]; v != nil {
			values = append(values, v)
		}
	}
	return values
}

func (e *Evaluator) anyGeoValues(rec *metacard.Record) ([]any, error) {
	var raw []any
	for _, name := range sortedKeys(rec.Properties) {
		if e.registry.TypeOf(name) != metacard.TypeGeometry {
			continue
		}
		if v := rec.Properties[name]; v != nil {
			raw = append(raw, v)
		}
	}
	if rec.Geometry != nil {
		raw = append(raw, rec.Geometry)
	}

	var values []any
	for _, v := range flatten(raw) {
		if v == nil {
			continue
		}
		g, err := geometry.Parse(v)
		if err != nil {
			return nil, errors.Wrapf(err, "record %q", rec.ID())
		}
		values = append(values, g)
	}
	return values, nil
}

// flatten expands slice values one level. Nested slices stay intact.
func flatten(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		switch s := v.(type) {
		case []any:
			out = append(out, s...)
			continue
		case string, []byte:
			out = append(out, v)
			continue
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice && !isGeometryValue(v) {
			for i := 0; i < rv.Len(); i++ {
				out = append(out, rv.Index(i).Interface())
			}
			continue
		}
		out = append(out, v)
	}
	return out
}

// isGeometryValue reports whether v is already a parsed geometry, whose
// slice representation must not be expanded.
func isGeometryValue(v any) bool {
	pkg := reflect.TypeOf(v).PkgPath()
	return strings.HasPrefix(pkg, "github.com/paulmach/orb")
}

func unquote(property string) string {
	return strings.Trim(property, `"'`)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
