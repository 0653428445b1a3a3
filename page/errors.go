package page

import (
	"errors"
	"fmt"
)

// InjectionError indicates a page cannot be scripted, either because its URL
// is restricted or because evaluation in the page failed.
type InjectionError struct {
	URL    string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *InjectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot script page %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot script page %s: %s", e.URL, e.Reason)
}

// Unwrap returns the underlying error.
func (e *InjectionError) Unwrap() error {
	return e.Err
}

// NewInjectionError creates a new injection error.
func NewInjectionError(url, reason string, err error) *InjectionError {
	return &InjectionError{URL: url, Reason: reason, Err: err}
}

// IsInjectionError checks if an error is an injection error.
func IsInjectionError(err error) bool {
	var injErr *InjectionError
	return errors.As(err, &injErr)
}
