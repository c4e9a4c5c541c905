// Package utils provides conversion helpers between plain Go structs and
// the document maps the collection layer stores.
package utils

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/asaidimu/go-hifadhi/core/schema"
)

// StructToDocument converts a struct (or pointer to struct) into a Document
// by a marshal/unmarshal round trip, so json tags and omitempty behave the
// same way they do on disk.
func StructToDocument[T any](record T) (schema.Document, error) {
	val := reflect.ValueOf(record)
	if !val.IsValid() {
		return nil, fmt.Errorf("input record cannot be nil")
	}
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("input record cannot be a nil pointer")
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input record must be a struct or a pointer to a struct, got %s", val.Kind())
	}

	content, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	var doc schema.Document
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record into document: %w", err)
	}
	return doc, nil
}

// DocumentToStruct converts a stored Document back into a struct of type T.
// Engine-owned fields map onto struct fields tagged "id", "createdAt" and
// "updatedAt" when present, and are dropped otherwise.
func DocumentToStruct[T any](doc schema.Document) (T, error) {
	var zero T
	if doc == nil {
		return zero, fmt.Errorf("input document cannot be nil")
	}

	typ := reflect.TypeOf(zero)
	if typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("target type must be a struct")
	}

	content, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal document: %w", err)
	}

	var result T
	if err := json.Unmarshal(content, &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal document into struct: %w", err)
	}
	return result, nil
}
