package config

import (
	"errors"
	"fmt"
)

// ParseError indicates the YAML file could not be parsed.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError indicates a semantic validation failure.
// The file parses correctly but values are invalid.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidationResult holds all errors from validation.
type ValidationResult struct {
	Errors []error
}

func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Err returns a combined error if there are any validation errors, nil otherwise.
func (r *ValidationResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return errors.Join(r.Errors...)
}

func (r *ValidationResult) AddError(err error) {
	r.Errors = append(r.Errors, err)
}
