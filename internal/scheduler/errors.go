package scheduler

import (
	"errors"
	"fmt"
)

// Sentinels matched by *Error through errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrNoAvailability = errors.New("no availability")
	ErrInvalidRequest = errors.New("invalid request")
)

// Kind classifies a structural failure that aborts a whole scheduling call.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindNoAvailability Kind = "no_availability"
	KindInvalidRequest Kind = "invalid_request"
)

// Error is returned when a scheduling call cannot run at all.
// Per-task placement problems are never errors; they are reported as Skips.
type Error struct {
	Kind     Kind
	Message  string
	Feedback []string
	Err      error
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: kind, Message: msg, Feedback: []string{msg}, Err: err}
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindNoAvailability:
		return target == ErrNoAvailability
	case KindInvalidRequest:
		return target == ErrInvalidRequest
	}
	return false
}
