package document

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Value Comparison
// --------------------------------------------------------------------------

// AsNumber returns the float64 representation of any numeric field value.
// All integer and float widths a decoded document may carry are unified, so
// callers can treat "a number" as one kind the way Equals and Compare do.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Compare orders two field values of the same kind. It returns a negative,
// zero or positive result like cmp.Compare, plus a flag reporting whether
// the two values were comparable at all. Numbers of different widths
// compare by numeric value, so int(5) and float64(5) are equal. Values of
// different kinds (and values of unordered kinds such as objects) report
// ok=false.
func Compare(a, b any) (result int, ok bool) {
	if na, aok := AsNumber(a); aok {
		if nb, bok := AsNumber(b); bok {
			return cmp.Compare(na, nb), true
		}
		return 0, false
	}
	switch av := a.(type) {
	case string:
		if bv, bok := b.(string); bok {
			return strings.Compare(av, bv), true
		}
	case bool:
		bv, bok := b.(bool)
		if !bok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	case time.Time:
		if bv, bok := b.(time.Time); bok {
			return cmp.Compare(av.UnixNano(), bv.UnixNano()), true
		}
	case []byte:
		if bv, bok := b.([]byte); bok {
			return bytes.Compare(av, bv), true
		}
	}
	return 0, false
}

// kindRank maps a kind to its position in the cross-kind sort order. The
// order itself is arbitrary but fixed, so that sorting a mixed-kind field
// is deterministic.
func kindRank(k Kind) int {
	return int(k)
}

// Order is a total order over arbitrary field values, intended for sorting.
// Comparable values (see Compare) order naturally. Nil orders before
// everything else, so documents missing a sort field group at the front of
// an ascending sort. Values of different kinds order by kind; equal-kind
// values with no natural order fall back to their string rendering.
func Order(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if result, ok := Compare(a, b); ok {
		return result
	}
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return cmp.Compare(kindRank(ka), kindRank(kb))
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Equals reports deep equality of two field values. Numbers compare by
// value regardless of their Go type, sequences compare element-wise and
// objects compare key-wise, so a document compares equal to its own
// JSON-round-tripped form.
func Equals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if result, ok := Compare(a, b); ok {
		return result == 0
	}
	if sa, ok := AsSequence(a); ok {
		sb, ok := AsSequence(b)
		if !ok || len(sa) != len(sb) {
			return false
		}
		for i := range sa {
			if !Equals(sa[i], sb[i]) {
				return false
			}
		}
		return true
	}
	if ma, ok := AsMap(a); ok {
		mb, ok := AsMap(b)
		if !ok || len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, present := mb[k]
			if !present || !Equals(va, vb) {
				return false
			}
		}
		return true
	}
	return fmt.Sprint(a) == fmt.Sprint(b) && KindOf(a) == KindOf(b)
}
