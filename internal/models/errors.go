package models

import "fmt"

// SchemaError marks a document node that failed required-field validation
// during mapping, e.g. a restaurant entry without a name. Mapping skips the
// offending subtree and keeps going.
type SchemaError struct {
	Path  string // slash-joined position in the document tree, "" for a root doc
	Field string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("document is missing required field %q", e.Field)
	}
	return fmt.Sprintf("node %q is missing required field %q", e.Path, e.Field)
}

// NotFoundError is returned when a lookup or write targets a node that does
// not exist and cannot be auto-created.
type NotFoundError struct {
	Kind string // "canteen", "restaurant", "category", "item"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// StoreError wraps a failed call to the external document or history store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ValidationError rejects user-supplied input before it ever reaches mapping
// or persistence.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
