package document

import (
	"time"
)

// Document is the unit of storage of the database: a flat or nested set of
// named fields with dynamically typed values. Values are restricted to the
// kinds enumerated by Kind; nested objects are map[string]any (or Document)
// and nested sequences are []any, mirroring what encoding/json produces.
//
// A Document is a plain map and therefore NOT safe for concurrent use. The
// store hands out deep copies at its API boundary so that callers can never
// alias kernel-owned state (see Clone).
type Document map[string]any

// --------------------------------------------------------------------------
// Value Kinds
// --------------------------------------------------------------------------

// Kind classifies a field value into one of the value categories the
// database understands. It drives schema checking, comparison and the
// cache's memory cost heuristic.
type Kind uint8

const (
	// KindNull represents an explicit nil value
	KindNull Kind = iota
	// KindBool represents a boolean value
	KindBool
	// KindNumber represents any integer or floating point value
	KindNumber
	// KindTime represents a time.Time value
	KindTime
	// KindString represents a string value
	KindString
	// KindBytes represents a raw []byte value
	KindBytes
	// KindSequence represents an ordered list of values
	KindSequence
	// KindMap represents a nested object
	KindMap
	// KindOther represents any value outside the supported categories
	KindOther
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindTime:
		return "date"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindSequence:
		return "array"
	case KindMap:
		return "object"
	default:
		return "other"
	}
}

// KindOf classifies an arbitrary field value. Integer and floating point
// types of any width all classify as KindNumber so that documents behave
// identically before and after a JSON round trip (where every number comes
// back as float64).
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return KindNumber
	case time.Time:
		return KindTime
	case string:
		return KindString
	case []byte:
		return KindBytes
	case []any, []string, []int, []int64, []float64, []bool:
		return KindSequence
	case Document, map[string]any:
		return KindMap
	default:
		return KindOther
	}
}

// --------------------------------------------------------------------------
// Conversion Helpers
// --------------------------------------------------------------------------

// AsSequence returns the value as a []any if it is of sequence kind. Typed
// slices of the common scalar types are widened element by element.
func AsSequence(v any) ([]any, bool) {
	switch seq := v.(type) {
	case []any:
		return seq, true
	case []string:
		out := make([]any, len(seq))
		for i, e := range seq {
			out[i] = e
		}
		return out, true
	case []int:
		out := make([]any, len(seq))
		for i, e := range seq {
			out[i] = e
		}
		return out, true
	case []int64:
		out := make([]any, len(seq))
		for i, e := range seq {
			out[i] = e
		}
		return out, true
	case []float64:
		out := make([]any, len(seq))
		for i, e := range seq {
			out[i] = e
		}
		return out, true
	case []bool:
		out := make([]any, len(seq))
		for i, e := range seq {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

// AsMap returns the value as a map[string]any if it is of object kind.
func AsMap(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case Document:
		return obj, true
	case map[string]any:
		return obj, true
	default:
		return nil, false
	}
}

// --------------------------------------------------------------------------
// Copying and Merging
// --------------------------------------------------------------------------

// Clone returns a deep copy of the document. Nested objects, sequences and
// byte slices are copied recursively; scalar values are immutable and
// shared. Clone(nil) returns nil.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a single field value.
func CloneValue(v any) any {
	switch val := v.(type) {
	case Document:
		return Clone(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = CloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = CloneValue(e)
		}
		return out
	case []byte:
		return append([]byte(nil), val...)
	case []string:
		return append([]string(nil), val...)
	case []int:
		return append([]int(nil), val...)
	case []int64:
		return append([]int64(nil), val...)
	case []float64:
		return append([]float64(nil), val...)
	case []bool:
		return append([]bool(nil), val...)
	default:
		return v
	}
}

// Merged returns a new document containing all fields of base overlaid with
// all fields of patch. The merge is shallow: a field present in patch
// replaces the base field wholesale, nested objects are not merged
// recursively. Neither input is modified.
func Merged(base, patch Document) Document {
	out := Clone(base)
	if out == nil {
		out = make(Document, len(patch))
	}
	for k, v := range patch {
		out[k] = CloneValue(v)
	}
	return out
}
