// Package errors defines the pipeline error taxonomy and its HTTP mapping.
//
// Fatal conditions (missing schema columns, insufficient data, predicting
// before training, misaligned evaluation inputs) are typed errors that
// propagate to the caller. Per-row coercion failures are never errors; the
// cleaner downgrades them to warning logs and keeps the row.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from an input table.
// The pipeline run cannot proceed; there is no partial recovery.
type SchemaError struct {
	Missing []string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// NewSchemaError creates a SchemaError for the given missing columns
func NewSchemaError(missing []string) *SchemaError {
	return &SchemaError{Missing: missing}
}

// InsufficientDataError reports that a stage received fewer rows or days
// than its configured minimum. Rows carries the observed count so callers
// can surface actionable guidance.
type InsufficientDataError struct {
	Rows int
	Min  int
}

// Error implements the error interface
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: have %d rows, need at least %d", e.Rows, e.Min)
}

// NewInsufficientDataError creates an InsufficientDataError
func NewInsufficientDataError(rows, min int) *InsufficientDataError {
	return &InsufficientDataError{Rows: rows, Min: min}
}

// NotTrainedError reports Predict being called before Train. This is a
// usage bug in the caller, not a data condition.
type NotTrainedError struct{}

// Error implements the error interface
func (e *NotTrainedError) Error() string {
	return "model is not trained: call Train before Predict"
}

// ShapeMismatchError reports evaluation inputs that are not equal-length
// non-empty sequences.
type ShapeMismatchError struct {
	ActualLen    int
	PredictedLen int
}

// Error implements the error interface
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: actual has %d values, predicted has %d", e.ActualLen, e.PredictedLen)
}

// IsSchemaError reports whether err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

// IsInsufficientData reports whether err is or wraps an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}

// IsNotTrained reports whether err is or wraps a NotTrainedError.
func IsNotTrained(err error) bool {
	var target *NotTrainedError
	return errors.As(err, &target)
}

// IsShapeMismatch reports whether err is or wraps a ShapeMismatchError.
func IsShapeMismatch(err error) bool {
	var target *ShapeMismatchError
	return errors.As(err, &target)
}
