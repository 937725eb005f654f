package store

import (
	"errors"
	"fmt"
)

// ErrUnavailable matches any *UnavailableError via errors.Is.
var ErrUnavailable = errors.New("candidate store unavailable")

// UnavailableError reports a connectivity, timeout or circuit-open failure of a
// store read. It is surfaced to callers verbatim and never retried by the engine.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	if e == nil {
		return ErrUnavailable.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (op=%s): %v", ErrUnavailable, e.Op, e.Err)
	}
	return fmt.Sprintf("%s (op=%s)", ErrUnavailable, e.Op)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func Unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}
