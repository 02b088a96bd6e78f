package document

import (
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Schema Validation
// --------------------------------------------------------------------------

// FieldType names the value kind a schema rule expects. The names follow
// the JSON type vocabulary rather than Go type names since schemas are
// typically declared in configuration or over the wire.
type FieldType string

const (
	// TypeAny accepts any value kind (only Required is checked)
	TypeAny FieldType = "any"
	// TypeString accepts string values
	TypeString FieldType = "string"
	// TypeNumber accepts integer and floating point values
	TypeNumber FieldType = "number"
	// TypeBool accepts boolean values
	TypeBool FieldType = "boolean"
	// TypeDate accepts time.Time values and RFC3339 strings
	TypeDate FieldType = "date"
	// TypeBytes accepts raw []byte values
	TypeBytes FieldType = "bytes"
	// TypeArray accepts sequence values, optionally checking each element
	TypeArray FieldType = "array"
	// TypeObject accepts nested objects, optionally checking nested fields
	TypeObject FieldType = "object"
)

// Rule constrains a single document field. An empty Type behaves like
// TypeAny. Fields is only consulted for TypeObject, Elem only for
// TypeArray.
type Rule struct {
	Type     FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Required bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Fields   Schema    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Elem     *Rule     `json:"elem,omitempty" yaml:"elem,omitempty"`
}

// Schema maps field names to their rules. Document fields without a rule
// are accepted unchecked, so a schema constrains only what it declares.
// A nil Schema accepts every document.
type Schema map[string]Rule

// SchemaError reports the first field that failed validation. Field is the
// dotted path of the offending field, including the index for array
// elements (e.g. "address.tags[2]").
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema validation failed for field %q: %s", e.Field, e.Reason)
}

// Validate checks a document against the schema and returns a *SchemaError
// describing the first violation found, or nil if the document conforms.
// Kernel-managed fields (see IsSystemField) are never validated.
func (s Schema) Validate(doc Document) error {
	if s == nil {
		return nil
	}
	return s.validate(doc, "")
}

func (s Schema) validate(doc Document, prefix string) error {
	for name, rule := range s {
		if prefix == "" && IsSystemField(name) {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		value, present := doc[name]
		if !present || value == nil {
			if rule.Required {
				return &SchemaError{Field: path, Reason: "required field is missing"}
			}
			continue
		}
		if err := rule.check(value, path); err != nil {
			return err
		}
	}
	return nil
}

// check validates a single value against the rule.
func (r Rule) check(value any, path string) error {
	kind := KindOf(value)
	switch r.Type {
	case "", TypeAny:
		return nil
	case TypeString:
		if kind != KindString {
			return typeMismatch(path, TypeString, kind)
		}
	case TypeNumber:
		if kind != KindNumber {
			return typeMismatch(path, TypeNumber, kind)
		}
	case TypeBool:
		if kind != KindBool {
			return typeMismatch(path, TypeBool, kind)
		}
	case TypeDate:
		if kind == KindTime {
			return nil
		}
		str, ok := value.(string)
		if !ok {
			return typeMismatch(path, TypeDate, kind)
		}
		if _, err := time.Parse(time.RFC3339Nano, str); err != nil {
			return &SchemaError{Field: path, Reason: fmt.Sprintf("expected date, got unparsable string %q", str)}
		}
	case TypeBytes:
		if kind != KindBytes {
			return typeMismatch(path, TypeBytes, kind)
		}
	case TypeArray:
		seq, ok := AsSequence(value)
		if !ok {
			return typeMismatch(path, TypeArray, kind)
		}
		if r.Elem != nil {
			for i, item := range seq {
				if item == nil {
					continue
				}
				if err := r.Elem.check(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
	case TypeObject:
		obj, ok := AsMap(value)
		if !ok {
			return typeMismatch(path, TypeObject, kind)
		}
		if r.Fields != nil {
			return r.Fields.validate(Document(obj), path)
		}
	default:
		return &SchemaError{Field: path, Reason: fmt.Sprintf("schema declares unknown field type %q", r.Type)}
	}
	return nil
}

func typeMismatch(path string, want FieldType, got Kind) error {
	return &SchemaError{Field: path, Reason: fmt.Sprintf("expected %s, got %s", want, got)}
}
