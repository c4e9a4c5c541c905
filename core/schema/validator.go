package schema

import (
	"fmt"
	"reflect"
)

// ValidationError reports the first schema violation found in a candidate
// document.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Reason)
}

// MatchCounter counts the stored documents whose field equals a value. The
// query engine implements it; the validator uses it for uniqueness checks
// and never mutates anything through it.
type MatchCounter interface {
	CountMatches(field string, value any) int
}

// Validator checks candidate documents against a schema. It is read-only
// with respect to the caches it consults.
type Validator struct {
	schema  *Schema
	matches MatchCounter
}

// NewValidator creates a Validator for a schema. The matches counter backs
// uniqueness checks; it may be nil, in which case unique fields are not
// enforced (useful for tests that exercise only type rules).
func NewValidator(schema *Schema, matches MatchCounter) *Validator {
	return &Validator{schema: schema, matches: matches}
}

// Validate checks a document against the schema, iterating fields in
// declaration order and returning the first violation found. For each field
// the checks run in the order: required, type, enum, uniqueness. In update
// mode a unique field may match exactly one stored document, which is
// expected to be the document being updated; on insert it may match none.
func (v *Validator) Validate(doc Document, isUpdate bool) error {
	for _, field := range v.schema.Fields {
		value, exists := doc[field.Name]

		if field.Required && (!exists || Stringify(value) == "") {
			return &ValidationError{Field: field.Name, Reason: "required field is missing or empty"}
		}

		if !exists || value == nil {
			continue
		}

		if !matchesType(value, field.Type) {
			return &ValidationError{
				Field:  field.Name,
				Reason: fmt.Sprintf("expected %s, got %T", field.Type, value),
			}
		}

		if field.Type == FieldTypeString && len(field.Enum) > 0 {
			if !enumContains(field.Enum, value.(string)) {
				return &ValidationError{
					Field:  field.Name,
					Reason: fmt.Sprintf("value '%v' is not one of %v", value, field.Enum),
				}
			}
		}

		if field.Unique && v.matches != nil {
			limit := 0
			if isUpdate {
				limit = 1
			}
			if count := v.matches.CountMatches(field.Name, value); count > limit {
				return &ValidationError{
					Field:  field.Name,
					Reason: fmt.Sprintf("value '%v' already exists", value),
				}
			}
		}
	}
	return nil
}

// matchesType checks a runtime value against a declared field type.
func matchesType(value any, expected FieldType) bool {
	switch expected {
	case FieldTypeString:
		_, ok := value.(string)
		return ok
	case FieldTypeNumber:
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return true
		}
		return false
	case FieldTypeBoolean:
		_, ok := value.(bool)
		return ok
	case FieldTypeArray:
		kind := reflect.ValueOf(value).Kind()
		return kind == reflect.Slice || kind == reflect.Array
	}
	return false
}

func enumContains(allowed []string, value string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
