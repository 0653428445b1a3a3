package session

import "errors"

// CreateError wraps a session-creation failure: a missing creation operation
// or a host-side rejection. Callers surface it as a retryable state.
type CreateError struct {
	err error
}

func (e *CreateError) Error() string {
	return "create session: " + e.err.Error()
}

func (e *CreateError) Unwrap() error {
	return e.err
}

// NewCreateError wraps an error as a session-creation failure.
func NewCreateError(err error) error {
	return &CreateError{err: err}
}

// IsCreateError reports whether err is a session-creation failure.
func IsCreateError(err error) bool {
	var ce *CreateError
	return errors.As(err, &ce)
}
