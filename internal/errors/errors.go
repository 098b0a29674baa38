// Package errors provides the error taxonomy shared by the r2x packages.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// DetailError captures structured error information for CLI rendering.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the file path or descriptor name (optional).
	Location string

	// Field is the column, key or attribute involved (optional).
	Field string

	// Context contains additional key-value context (optional).
	Context map[string]string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(e.Type)
	b.WriteString("\n")

	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}
	if e.Field != "" {
		b.WriteString("  Field: ")
		b.WriteString(e.Field)
		b.WriteString("\n")
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("  ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e.Context[k])
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// SchemaMismatchError reports a processing-spec or descriptor problem.
// Operation names the proc_spec step (e.g. "filter_by") that required Field.
type SchemaMismatchError struct {
	File      string
	Operation string
	Field     string
	Message   string
}

func (e *SchemaMismatchError) Error() string {
	var b strings.Builder
	b.WriteString("schema mismatch")
	if e.File != "" {
		fmt.Fprintf(&b, " in %q", e.File)
	}
	if e.Operation != "" {
		fmt.Fprintf(&b, " at %s", e.Operation)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// NewSchemaMismatch creates a SchemaMismatchError.
func NewSchemaMismatch(operation, field, message string) *SchemaMismatchError {
	return &SchemaMismatchError{Operation: operation, Field: field, Message: message}
}

// WithFile returns a copy of err attributed to the named file.
func (e *SchemaMismatchError) WithFile(file string) *SchemaMismatchError {
	c := *e
	c.File = file
	return &c
}

// DuplicateComponentError indicates a component identity collision within a kind.
type DuplicateComponentError struct {
	Kind string
	Name string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("duplicate component %s %q", e.Kind, e.Name)
}

func (e *DuplicateComponentError) Unwrap() error { return ErrDuplicateComponent }

// DanglingReferenceError indicates a relationship whose target is missing.
type DanglingReferenceError struct {
	SourceKind string
	SourceName string
	Relation   string
	TargetKind string
	TargetName string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s %q %s missing %s %q",
		e.SourceKind, e.SourceName, e.Relation, e.TargetKind, e.TargetName)
}

func (e *DanglingReferenceError) Unwrap() error { return ErrDanglingReference }

// MissingAuxiliaryDataError indicates a pass could not obtain a required table.
type MissingAuxiliaryDataError struct {
	Pass  string
	Table string
}

func (e *MissingAuxiliaryDataError) Error() string {
	return fmt.Sprintf("pass %q requires table %q which is not available", e.Pass, e.Table)
}

func (e *MissingAuxiliaryDataError) Unwrap() error { return ErrMissingAuxiliaryData }

// FieldError indicates a row or record failed field-level validation.
type FieldError struct {
	File  string
	Row   int
	Field string
	Cause error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s row %d field %q: %v", e.File, e.Row, e.Field, e.Cause)
}

func (e *FieldError) Unwrap() []error { return []error{ErrValidation, e.Cause} }

// Wrap wraps a sentinel error with a message.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}

// Wrapf wraps a sentinel error with a formatted message.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
