package query

import (
	"fmt"
	"regexp"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
)

// Filter is a declarative predicate over documents. Each entry is either a
// field clause (field name mapped to a literal value or an operator map) or
// one of the logical combinators $and, $or and $not. All clauses of a
// filter must match, so the top level behaves like an implicit $and.
type Filter map[string]any

// --------------------------------------------------------------------------
// Operators
// --------------------------------------------------------------------------

// Comparison and logical operator names. The vocabulary follows the common
// dollar-prefixed convention so filters survive JSON transport unchanged.
const (
	OpEq     = "$eq"
	OpNe     = "$ne"
	OpGt     = "$gt"
	OpGte    = "$gte"
	OpLt     = "$lt"
	OpLte    = "$lte"
	OpIn     = "$in"
	OpNin    = "$nin"
	OpRegex  = "$regex"
	OpExists = "$exists"
	OpAnd    = "$and"
	OpOr     = "$or"
	OpNot    = "$not"
)

// UnknownOperatorError reports an operator name the engine does not
// implement. Unknown operators are a hard error rather than a silent
// non-match so that typos in filters cannot masquerade as empty results.
type UnknownOperatorError struct {
	Operator string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown query operator %q", e.Operator)
}

// --------------------------------------------------------------------------
// Validation
// --------------------------------------------------------------------------

// Validate checks a filter for structural soundness without evaluating it:
// unknown operators, malformed combinator arguments, non-array $in/$nin
// arguments, non-boolean $exists arguments and uncompilable $regex patterns
// are all rejected. A store runs this once per query so that a bad filter
// fails loudly even on an empty collection.
func Validate(f Filter) error {
	for key, cond := range f {
		switch key {
		case OpAnd, OpOr:
			subs, err := asFilterList(key, cond)
			if err != nil {
				return err
			}
			for _, sub := range subs {
				if err := Validate(sub); err != nil {
					return err
				}
			}
		case OpNot:
			sub, ok := asOperatorMap(cond)
			if !ok {
				return fmt.Errorf("%s requires an object argument, got %s", OpNot, document.KindOf(cond))
			}
			if err := Validate(Filter(sub)); err != nil {
				return err
			}
		default:
			opMap, ok := asOperatorMap(cond)
			if !ok {
				continue // literal equality, nothing to check
			}
			for op, arg := range opMap {
				if err := validateOperator(op, arg); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func validateOperator(op string, arg any) error {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte:
		return nil
	case OpIn, OpNin:
		if _, ok := document.AsSequence(arg); !ok {
			return fmt.Errorf("%s requires an array argument, got %s", op, document.KindOf(arg))
		}
		return nil
	case OpRegex:
		pattern, ok := arg.(string)
		if !ok {
			return fmt.Errorf("%s requires a string pattern, got %s", OpRegex, document.KindOf(arg))
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%s has invalid pattern %q: %w", OpRegex, pattern, err)
		}
		return nil
	case OpExists:
		if _, ok := arg.(bool); !ok {
			return fmt.Errorf("%s requires a boolean argument, got %s", OpExists, document.KindOf(arg))
		}
		return nil
	default:
		return &UnknownOperatorError{Operator: op}
	}
}

// --------------------------------------------------------------------------
// Evaluation
// --------------------------------------------------------------------------

// Match evaluates the filter against a single document. A map-valued
// condition is always interpreted as an operator map; anything else is a
// literal equality check via document.Equals. Errors are only returned for
// malformed filters, never for mismatching documents, so a filter that
// passed Validate evaluates without error.
func Match(doc document.Document, f Filter) (bool, error) {
	for key, cond := range f {
		switch key {
		case OpAnd:
			subs, err := asFilterList(key, cond)
			if err != nil {
				return false, err
			}
			for _, sub := range subs {
				ok, err := Match(doc, sub)
				if err != nil {
					return false, err
				}
				if !ok {
					return false, nil
				}
			}
		case OpOr:
			subs, err := asFilterList(key, cond)
			if err != nil {
				return false, err
			}
			matched := false
			for _, sub := range subs {
				ok, err := Match(doc, sub)
				if err != nil {
					return false, err
				}
				if ok {
					matched = true
					break
				}
			}
			if !matched {
				return false, nil
			}
		case OpNot:
			sub, ok := asOperatorMap(cond)
			if !ok {
				return false, fmt.Errorf("%s requires an object argument, got %s", OpNot, document.KindOf(cond))
			}
			matched, err := Match(doc, Filter(sub))
			if err != nil {
				return false, err
			}
			if matched {
				return false, nil
			}
		default:
			value, present := doc[key]
			if opMap, ok := asOperatorMap(cond); ok {
				for op, arg := range opMap {
					ok, err := matchOperator(value, present, op, arg)
					if err != nil {
						return false, err
					}
					if !ok {
						return false, nil
					}
				}
			} else if !present || !document.Equals(value, cond) {
				return false, nil
			}
		}
	}
	return true, nil
}

// matchOperator evaluates a single operator against a field value. The
// present flag distinguishes a missing field from an explicit nil: missing
// fields fail every positive operator but satisfy $ne and $nin, and are
// reported by $exists.
func matchOperator(value any, present bool, op string, arg any) (bool, error) {
	switch op {
	case OpEq:
		return present && document.Equals(value, arg), nil
	case OpNe:
		return !present || !document.Equals(value, arg), nil
	case OpGt:
		result, ok := rangeCompare(value, present, arg)
		return ok && result > 0, nil
	case OpGte:
		result, ok := rangeCompare(value, present, arg)
		return ok && result >= 0, nil
	case OpLt:
		result, ok := rangeCompare(value, present, arg)
		return ok && result < 0, nil
	case OpLte:
		result, ok := rangeCompare(value, present, arg)
		return ok && result <= 0, nil
	case OpIn:
		seq, ok := document.AsSequence(arg)
		if !ok {
			return false, fmt.Errorf("%s requires an array argument, got %s", op, document.KindOf(arg))
		}
		if !present {
			return false, nil
		}
		for _, candidate := range seq {
			if document.Equals(value, candidate) {
				return true, nil
			}
		}
		return false, nil
	case OpNin:
		seq, ok := document.AsSequence(arg)
		if !ok {
			return false, fmt.Errorf("%s requires an array argument, got %s", op, document.KindOf(arg))
		}
		if !present {
			return true, nil
		}
		for _, candidate := range seq {
			if document.Equals(value, candidate) {
				return false, nil
			}
		}
		return true, nil
	case OpRegex:
		pattern, ok := arg.(string)
		if !ok {
			return false, fmt.Errorf("%s requires a string pattern, got %s", OpRegex, document.KindOf(arg))
		}
		str, isString := value.(string)
		if !present || !isString {
			return false, nil
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("%s has invalid pattern %q: %w", OpRegex, pattern, err)
		}
		return re.MatchString(str), nil
	case OpExists:
		want, ok := arg.(bool)
		if !ok {
			return false, fmt.Errorf("%s requires a boolean argument, got %s", OpExists, document.KindOf(arg))
		}
		return present == want, nil
	default:
		return false, &UnknownOperatorError{Operator: op}
	}
}

// rangeCompare compares a field value against an operator argument. Range
// operators only ever match when the field is present and both values are
// of a comparable kind.
func rangeCompare(value any, present bool, arg any) (int, bool) {
	if !present {
		return 0, false
	}
	return document.Compare(value, arg)
}

// --------------------------------------------------------------------------
// Condition Shapes
// --------------------------------------------------------------------------

// asOperatorMap returns a map-shaped condition. Both the named Filter type
// and plain maps (as produced by encoding/json) are accepted.
func asOperatorMap(cond any) (map[string]any, bool) {
	switch m := cond.(type) {
	case Filter:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

// asFilterList coerces a combinator argument into a list of sub-filters.
func asFilterList(op string, cond any) ([]Filter, error) {
	switch list := cond.(type) {
	case []Filter:
		return list, nil
	case []map[string]any:
		subs := make([]Filter, len(list))
		for i, m := range list {
			subs[i] = Filter(m)
		}
		return subs, nil
	case []any:
		subs := make([]Filter, len(list))
		for i, e := range list {
			m, ok := asOperatorMap(e)
			if !ok {
				return nil, fmt.Errorf("%s requires an array of objects, element %d is %s", op, i, document.KindOf(e))
			}
			subs[i] = Filter(m)
		}
		return subs, nil
	default:
		return nil, fmt.Errorf("%s requires an array of objects, got %s", op, document.KindOf(cond))
	}
}
