package form

import "errors"

// ErrValidation is the sentinel every ValidationError matches
var ErrValidation = errors.New("validation failed")

// ValidationError is a client-side check that failed before any request.
// Message is shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Message returns the user-facing text of a validation failure
func Message(err error) (string, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message, true
	}
	return "", false
}
