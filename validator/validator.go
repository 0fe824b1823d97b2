// Package validator accumulates field-level validation errors for request payloads.
package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/coreybb/locallibrary/models"
)

// EmailRX matches a plausible email address.
var EmailRX = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid.
type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with message. The first failure for a
// field wins.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error for key only when ok is false.
//
//	v.Check(validator.NotBlank(title), "title", "must be provided")
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Err returns a *models.ValidationError describing every failed field, or nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	fields := make(map[string]string, len(v.Errors))
	for k, msg := range v.Errors {
		fields[k] = msg
	}
	return &models.ValidationError{Fields: fields}
}

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MaxChars reports whether value has at most n characters.
func MaxChars(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

func MinChars(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// ExactChars reports whether value has exactly n characters.
func ExactChars(value string, n int) bool {
	return utf8.RuneCountInString(value) == n
}

// Unique returns true if every value is distinct.
func Unique[T comparable](values []T) bool {
	seen := make(map[T]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
