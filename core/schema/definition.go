// Package schema defines the collection schema model: per-field type,
// required, unique, indexed and enum declarations, plus the Validator that
// checks candidate documents against them.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FieldType represents the scalar and array types supported by the schema
// system. Types are compared by tag, never by runtime type identity.
type FieldType string

const (
	FieldTypeString  FieldType = "string"  // Text data
	FieldTypeNumber  FieldType = "number"  // Numeric data, integer or floating point
	FieldTypeBoolean FieldType = "boolean" // True/false values
	FieldTypeArray   FieldType = "array"   // Ordered list of items
)

// Document is a single record in a collection: an open map of field name to
// scalar or array value. The engine owns three fields on every stored
// document: "id", "createdAt" and "updatedAt".
type Document map[string]any

// Engine-owned field names. They are stamped by the persistence layer and
// skipped during index maintenance.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Reserved reports whether a field name is owned by the engine.
func Reserved(name string) bool {
	return name == FieldID || name == FieldCreatedAt || name == FieldUpdatedAt
}

// FieldDefinition describes a single schema field.
type FieldDefinition struct {
	// Name is the document key this definition applies to.
	Name string `json:"name"`
	// Type is the declared field type.
	Type FieldType `json:"type"`
	// Required marks the field as mandatory on insert and after merge on update.
	Required bool `json:"required,omitempty"`
	// Unique enforces at most one document per value, and implies an index.
	Unique bool `json:"unique,omitempty"`
	// Indexed maintains a secondary index for the field without uniqueness.
	Indexed bool `json:"indexed,omitempty"`
	// Enum restricts a string field to the listed values.
	Enum []string `json:"enum,omitempty"`
}

// Searchable reports whether the field participates in the secondary index.
func (f *FieldDefinition) Searchable() bool {
	return f.Unique || f.Indexed
}

// Schema declares the fields of a collection. Field order is declaration
// order and drives validation order. A Schema is immutable for the lifetime
// of the collection that uses it.
type Schema struct {
	// Name is the collection name, used to derive the on-disk file names.
	Name string `json:"name"`
	// Fields lists the field definitions in declaration order.
	Fields []*FieldDefinition `json:"fields"`
}

// Field returns the definition for a field name, or nil if undeclared.
func (s *Schema) Field(name string) *FieldDefinition {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Searchable returns the declared fields that carry a secondary index.
func (s *Schema) Searchable() []*FieldDefinition {
	fields := make([]*FieldDefinition, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Searchable() {
			fields = append(fields, f)
		}
	}
	return fields
}

// ParseSchema decodes a JSON schema declaration, as used by the demos and
// tests. Declaration order of the "fields" array is preserved.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("schema is missing a collection name")
	}
	for _, f := range s.Fields {
		switch f.Type {
		case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeArray:
		default:
			return nil, fmt.Errorf("field '%s' has unknown type '%s'", f.Name, f.Type)
		}
	}
	return &s, nil
}

// Stringify renders a field value the way the index stores it. Numeric
// values are normalized so that an int written by a caller and the float64
// produced by a JSON reload stringify identically.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
