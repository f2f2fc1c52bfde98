// Package parsererror defines the error types surfaced by the price-list importer.
//
// Configuration problems abort an import before any row is read and are
// reported as *ConfigValidationError. Problems with a single data row are
// *RowError values; they are collected into the parse result, never returned.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

// FieldViolation is one failed constraint of a parser configuration.
type FieldViolation struct {
	Path    string
	Message string
}

func (v FieldViolation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// ConfigValidationError lists every violation found in a parser configuration.
type ConfigValidationError struct {
	Violations []FieldViolation
}

// Add records a violation at path.
func (e *ConfigValidationError) Add(path, format string, args ...interface{}) {
	e.Violations = append(e.Violations, FieldViolation{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Merge appends the violations of other, if any.
func (e *ConfigValidationError) Merge(other *ConfigValidationError) {
	if other != nil {
		e.Violations = append(e.Violations, other.Violations...)
	}
}

// HasViolations reports whether anything was recorded.
func (e *ConfigValidationError) HasViolations() bool {
	return e != nil && len(e.Violations) > 0
}

// OrNil returns e as an error when it holds violations, nil otherwise.
func (e *ConfigValidationError) OrNil() error {
	if e.HasViolations() {
		return e
	}
	return nil
}

// Paths returns the offending field paths in report order.
func (e *ConfigValidationError) Paths() []string {
	paths := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		paths = append(paths, v.Path)
	}
	return paths
}

func (e *ConfigValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "invalid parser configuration: " + strings.Join(parts, "; ")
}

// RowError is a failure confined to one data row.
type RowError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("failed to parse %s='%s': %v", e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// NewRowError builds a RowError without a field.
func NewRowError(row int, format string, args ...interface{}) *RowError {
	return &RowError{Row: row, Err: fmt.Errorf(format, args...)}
}

// InvalidFormatError means the payload does not fit the configured layout at all,
// e.g. the header lacks the cost price column.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s", e.FilePath, e.Msg, e.ExpectedFormat)
	}
	return fmt.Sprintf("invalid format: %s. Expected: %s", e.Msg, e.ExpectedFormat)
}

// TemplateNotFoundError is returned when a named parser template is unknown.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("parser template %q not found", e.Name)
}

// ErrNumberFormat is wrapped by numeric coercion failures.
var ErrNumberFormat = errors.New("not a number")
