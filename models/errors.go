package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InvalidDateError reports a date outside its allowed window.
// It matches ErrInvalidDate with errors.Is.
type InvalidDateError struct {
	Field  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}

// ValidationError carries field-level messages for malformed or missing input.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
