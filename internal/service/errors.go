package service

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a reference to an id the store does not have.
var ErrNotFound = errors.New("not found")

// ErrAlreadyRunning marks a start request for a timer that is already
// running. Callers must stop the active window first; silently resetting
// it would discard elapsed time.
var ErrAlreadyRunning = errors.New("timer already running")

// ValidationError marks input the caller can fix: missing title,
// malformed date, missing recurrence fields.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...interface{}) error {
	return ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError anywhere in its
// chain.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
