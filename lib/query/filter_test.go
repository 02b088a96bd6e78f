package query

import (
	"errors"
	"testing"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

func testDoc() document.Document {
	return document.Document{
		"id":     "u-1",
		"name":   "alice",
		"age":    30,
		"email":  "alice@example.com",
		"admin":  true,
		"scores": []any{1, 2, 3},
		"note":   nil,
	}
}

func mustMatch(t *testing.T, f Filter, want bool) {
	t.Helper()
	got, err := Match(testDoc(), f)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if got != want {
		t.Errorf("Expected match=%v for filter %v, got %v", want, f, got)
	}
}

func TestMatchLiteralEquality(t *testing.T) {
	mustMatch(t, Filter{"name": "alice"}, true)
	mustMatch(t, Filter{"name": "bob"}, false)
	mustMatch(t, Filter{"missing": "x"}, false)

	// Numbers compare by value regardless of Go type
	mustMatch(t, Filter{"age": 30}, true)
	mustMatch(t, Filter{"age": float64(30)}, true)
	mustMatch(t, Filter{"age": int64(30)}, true)
}

func TestMatchEmptyFilter(t *testing.T) {
	mustMatch(t, Filter{}, true)
	mustMatch(t, nil, true)
}

func TestMatchComparisonOperators(t *testing.T) {
	mustMatch(t, Filter{"age": Filter{OpGt: 25}}, true)
	mustMatch(t, Filter{"age": Filter{OpGt: 30}}, false)
	mustMatch(t, Filter{"age": Filter{OpGte: 30}}, true)
	mustMatch(t, Filter{"age": Filter{OpLt: 35}}, true)
	mustMatch(t, Filter{"age": Filter{OpLte: 29}}, false)
	mustMatch(t, Filter{"age": Filter{OpNe: 31}}, true)
	mustMatch(t, Filter{"age": Filter{OpEq: 30}}, true)

	// Multiple operators on one field combine with AND
	mustMatch(t, Filter{"age": Filter{OpGte: 18, OpLt: 65}}, true)
	mustMatch(t, Filter{"age": Filter{OpGte: 18, OpLt: 30}}, false)
}

func TestMatchMissingFieldSemantics(t *testing.T) {
	// Missing fields fail positive operators but satisfy the negated ones
	mustMatch(t, Filter{"missing": Filter{OpGt: 0}}, false)
	mustMatch(t, Filter{"missing": Filter{OpEq: nil}}, false)
	mustMatch(t, Filter{"missing": Filter{OpNe: "anything"}}, true)
	mustMatch(t, Filter{"missing": Filter{OpIn: []any{1, 2}}}, false)
	mustMatch(t, Filter{"missing": Filter{OpNin: []any{1, 2}}}, true)

	// An explicit nil value is present
	mustMatch(t, Filter{"note": Filter{OpExists: true}}, true)
	mustMatch(t, Filter{"note": Filter{OpEq: nil}}, true)
	mustMatch(t, Filter{"missing": Filter{OpExists: false}}, true)
	mustMatch(t, Filter{"missing": Filter{OpExists: true}}, false)
}

func TestMatchIncomparableKindsNeverMatchRanges(t *testing.T) {
	mustMatch(t, Filter{"name": Filter{OpGt: 5}}, false)
	mustMatch(t, Filter{"admin": Filter{OpLt: "z"}}, false)
}

func TestMatchMembership(t *testing.T) {
	mustMatch(t, Filter{"name": Filter{OpIn: []any{"alice", "bob"}}}, true)
	mustMatch(t, Filter{"name": Filter{OpIn: []any{"carol"}}}, false)
	mustMatch(t, Filter{"name": Filter{OpNin: []any{"carol"}}}, true)
	mustMatch(t, Filter{"name": Filter{OpNin: []any{"alice"}}}, false)

	// Typed argument slices work like []any
	mustMatch(t, Filter{"age": Filter{OpIn: []int{29, 30}}}, true)
	mustMatch(t, Filter{"age": Filter{OpIn: []float64{30}}}, true)
}

func TestMatchRegex(t *testing.T) {
	mustMatch(t, Filter{"email": Filter{OpRegex: "@example\\.com$"}}, true)
	mustMatch(t, Filter{"email": Filter{OpRegex: "^bob"}}, false)

	// Regex against a non-string field never matches
	mustMatch(t, Filter{"age": Filter{OpRegex: "3"}}, false)
}

func TestMatchCombinators(t *testing.T) {
	mustMatch(t, Filter{OpAnd: []Filter{{"name": "alice"}, {"age": Filter{OpGte: 18}}}}, true)
	mustMatch(t, Filter{OpAnd: []Filter{{"name": "alice"}, {"age": Filter{OpGt: 99}}}}, false)

	mustMatch(t, Filter{OpOr: []Filter{{"name": "bob"}, {"admin": true}}}, true)
	mustMatch(t, Filter{OpOr: []Filter{{"name": "bob"}, {"admin": false}}}, false)

	mustMatch(t, Filter{OpNot: Filter{"name": "bob"}}, true)
	mustMatch(t, Filter{OpNot: Filter{"name": "alice"}}, false)

	// Nested combinators
	mustMatch(t, Filter{
		OpAnd: []Filter{
			{OpOr: []Filter{{"name": "bob"}, {"age": 30}}},
			{OpNot: Filter{"admin": false}},
		},
	}, true)
}

func TestMatchCombinatorsFromJSONShapes(t *testing.T) {
	// encoding/json decodes combinator arguments as []any of map[string]any
	f := Filter{OpOr: []any{
		map[string]any{"name": "bob"},
		map[string]any{"age": map[string]any{OpGte: float64(30)}},
	}}
	mustMatch(t, f, true)
}

func TestMatchUnknownOperator(t *testing.T) {
	_, err := Match(testDoc(), Filter{"age": Filter{"$between": []any{1, 2}}})
	if err == nil {
		t.Fatal("Expected unknown operator to error")
	}
	var opErr *UnknownOperatorError
	if !errors.As(err, &opErr) {
		t.Fatalf("Expected *UnknownOperatorError, got %T", err)
	}
	if opErr.Operator != "$between" {
		t.Errorf("Expected operator $between in error, got %q", opErr.Operator)
	}

	// Non-dollar keys inside an operator map are unknown operators too
	_, err = Match(testDoc(), Filter{"age": Filter{"gt": 5}})
	if !errors.As(err, &opErr) {
		t.Fatalf("Expected *UnknownOperatorError for bare operator name, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := []Filter{
		{},
		{"name": "alice"},
		{"age": Filter{OpGte: 18, OpLt: 65}},
		{"name": Filter{OpRegex: "^a"}},
		{OpAnd: []Filter{{"a": 1}, {OpNot: Filter{"b": 2}}}},
		{"tags": Filter{OpIn: []string{"a", "b"}}},
		{"note": Filter{OpExists: false}},
	}
	for _, f := range valid {
		if err := Validate(f); err != nil {
			t.Errorf("Expected filter %v to validate, got %v", f, err)
		}
	}

	invalid := []Filter{
		{"age": Filter{"$typo": 1}},
		{"name": Filter{OpRegex: "("}},
		{"name": Filter{OpRegex: 42}},
		{"tags": Filter{OpIn: "not-an-array"}},
		{"note": Filter{OpExists: "yes"}},
		{OpAnd: "not-a-list"},
		{OpOr: []any{"not-an-object"}},
		{OpNot: []any{}},
		{OpAnd: []Filter{{"a": Filter{"$nope": 1}}}},
	}
	for _, f := range invalid {
		if err := Validate(f); err == nil {
			t.Errorf("Expected filter %v to fail validation", f)
		}
	}
}

func TestValidateSurfacesUnknownOperatorBeforeEvaluation(t *testing.T) {
	// Validation alone must catch the unknown operator, no documents needed
	err := Validate(Filter{"x": Filter{"$frob": 1}})
	var opErr *UnknownOperatorError
	if !errors.As(err, &opErr) {
		t.Fatalf("Expected *UnknownOperatorError from Validate, got %v", err)
	}
}
