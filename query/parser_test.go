package query

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/smhanov/cqlmatch/filter"
	"github.com/smhanov/cqlmatch/metacard"
)

func TestParser(t *testing.T) {
	testCases := []struct {
		input    string
		expected string // the filter written back as CQL
	}{
		{
			input:    `"anyText" ILIKE 'golden' AND "metacard-tags" ILIKE 'resource'`,
			expected: `("anyText" ILIKE 'golden' AND "metacard-tags" ILIKE 'resource')`,
		},
		{
			input:    "a = 'x' OR b = 'y' OR c = 'z'",
			expected: "(a = 'x' OR b = 'y' OR c = 'z')",
		},
		{
			input:    "a = 'x' AND b = 'y' OR c = 'z'",
			expected: "((a = 'x' AND b = 'y') OR c = 'z')",
		},
		{
			input:    "a = 'x' AND (b = 'y' OR c = 'z')",
			expected: "(a = 'x' AND (b = 'y' OR c = 'z'))",
		},
		{
			input:    "NOT (a = 'x' OR b = 'y')",
			expected: "NOT (a = 'x' OR b = 'y')",
		},
		{
			input:    "NOT a = 'x'",
			expected: "NOT (a = 'x')",
		},
		{
			input:    "a = 'x' and not b ilike 'y'",
			expected: "(a = 'x' AND NOT (b ILIKE 'y'))",
		},
		{
			input:    "(a = 'x')",
			expected: "a = 'x'",
		},
		{
			input:    "count >= 5 AND count < 10.5",
			expected: "(count >= 5 AND count < 10.5)",
		},
		{
			input:    "count <> 3",
			expected: "count != 3",
		},
		{
			input:    "flag = true",
			expected: "flag = true",
		},
		{
			input:    "title LIKE 'it''s'",
			expected: "title LIKE 'it''s'",
		},
		{
			input:    "created DURING 2020-01-01T00:00:00Z/2020-02-01T00:00:00Z",
			expected: "created DURING 2020-01-01T00:00:00Z/2020-02-01T00:00:00Z",
		},
		{
			input:    "created BEFORE '2020-01-01T00:00:00Z'",
			expected: "created BEFORE 2020-01-01T00:00:00Z",
		},
		{
			input:    "created = RELATIVE(P1D)",
			expected: "created = RELATIVE(P1D)",
		},
		{
			input:    "INTERSECTS(anyGeo, POLYGON((0 0, 1 0, 1 1, 0 0)))",
			expected: "INTERSECTS(anyGeo, POLYGON((0 0, 1 0, 1 1, 0 0)))",
		},
		{
			input:    "DWITHIN(anyGeo, POINT(1 2), 2, kilometers)",
			expected: "DWITHIN(anyGeo, POINT(1 2), 2000, meters)",
		},
		{
			input:    "DWITHIN(\"location\", POINT(1 2), 1, nautical miles)",
			expected: "DWITHIN(\"location\", POINT(1 2), 1852, meters)",
		},
		{
			input:    "INCLUDE",
			expected: "INCLUDE",
		},
		{
			input:    "EXCLUDE",
			expected: "EXCLUDE",
		},
		{
			input:    "NOT INCLUDE",
			expected: "NOT INCLUDE",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			f, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parser error: %v", err)
			}
			result := f.String()
			if result != tc.expected {
				t.Errorf("Expected filter %s, got %s", tc.expected, result)
			}

			again, err := Parse(result)
			if err != nil {
				t.Fatalf("Parser error on %s: %v", result, err)
			}
			if again.String() != result {
				t.Errorf("Round trip changed %s into %s", result, again.String())
			}
		})
	}
}

func TestParserNodeTypes(t *testing.T) {
	f, err := Parse("NOT (a = 'x' AND b = 'y')")
	if err != nil {
		t.Fatalf("Parser error: %v", err)
	}
	if f.NodeType() != filter.NodeNotAnd || len(f.Filters) != 2 {
		t.Fatalf("expected NOT AND with two children, got %s with %d", f.Type, len(f.Filters))
	}

	f, err = Parse("created DURING 2020-01-01T00:00:00Z/2020-02-01T00:00:00Z")
	if err != nil {
		t.Fatalf("Parser error: %v", err)
	}
	if f.From != "2020-01-01T00:00:00Z" || f.To != "2020-02-01T00:00:00Z" {
		t.Errorf("period not split: from=%v to=%v", f.From, f.To)
	}

	f, err = Parse("created = RELATIVE(PT1H)")
	if err != nil {
		t.Fatalf("Parser error: %v", err)
	}
	if f.Operator() != filter.OpRelative {
		t.Errorf("expected RELATIVE operator, got %s", f.Type)
	}
}

func TestParserRoundTripTree(t *testing.T) {
	input := `("anyText" ILIKE 'bridge' OR NOT (count > 2 AND flag = false)) AND DWITHIN(anyGeo, POINT(0 0), 10, meters)`

	f, err := Parse(input)
	if err != nil {
		t.Fatalf("Parser error: %v", err)
	}
	again, err := Parse(f.String())
	if err != nil {
		t.Fatalf("Parser error: %v", err)
	}
	if !reflect.DeepEqual(f, again) {
		t.Errorf("round trip changed the tree:\n%s\n%s", f, again)
	}
}

func TestParameters(t *testing.T) {
	params := Parameters{
		"min":   5,
		"title": "x",
		"since": time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		"area":  "POLYGON((0 0, 1 0, 1 1, 0 0))",
	}

	f, err := ParseWithParameters("count > :min AND title = :title AND created AFTER :since AND INTERSECTS(anyGeo, :area)", params)
	if err != nil {
		t.Fatalf("Parser error: %v", err)
	}
	expected := "(count > 5 AND title = 'x' AND created AFTER 2020-01-01T00:00:00Z AND INTERSECTS(anyGeo, POLYGON((0 0, 1 0, 1 1, 0 0))))"
	if f.String() != expected {
		t.Errorf("Expected filter %s, got %s", expected, f.String())
	}

	_, err = Parse("count > :min")
	if err == nil || !strings.Contains(err.Error(), "missing parameter: min") {
		t.Errorf("expected missing parameter error, got %v", err)
	}
}

func TestParserErrors(t *testing.T) {
	testCases := []string{
		"",
		"a =",
		"a ILIKE",
		"(a = 'x'",
		"a = 'x' b",
		"a 'x'",
		"AND",
		"INTERSECTS(anyGeo, 'x')",
		"INTERSECTS(anyGeo POINT(1 2))",
		"DWITHIN(anyGeo, POINT(1 2), 5, parsecs)",
		"DWITHIN(anyGeo, POINT(1 2), 'far', meters)",
		"a = 'unterminated",
	}

	for _, input := range testCases {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if !errors.Is(err, ErrUnexpectedToken) {
				t.Errorf("expected ErrUnexpectedToken, got %v", err)
			}
		})
	}
}

func TestParseAndEvaluate(t *testing.T) {
	rec := metacard.NewRecord(map[string]interface{}{
		"title":         "Golden Gate Bridge",
		"metacard-tags": []interface{}{"resource"},
	})
	registry := metacard.Registry{
		"title":         {ID: "title", Type: metacard.TypeString},
		"metacard-tags": {ID: "metacard-tags", Type: metacard.TypeString, Multivalued: true},
	}
	e := filter.NewEvaluator(registry)

	testCases := []struct {
		input    string
		expected bool
	}{
		{`"anyText" ILIKE 'golden' AND "metacard-tags" ILIKE 'resource'`, true},
		{`"anyText" ILIKE 'golden' AND "metacard-tags" ILIKE 'workspace'`, false},
		{`NOT "metacard-tags" ILIKE 'workspace'`, true},
		{`title LIKE 'Gold*'`, true},
		{`EXCLUDE OR INCLUDE`, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			f, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parser error: %v", err)
			}
			ok, err := e.Evaluate(rec, f)
			if err != nil {
				t.Fatalf("Evaluate error: %v", err)
			}
			if ok != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, ok)
			}
		})
	}
}
