package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Match with errors.Is.
var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not_found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDependency   = errors.New("dependency")
)

// Error carries a stable kind, a message safe to show to callers and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) error {
	return &Error{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Dependency wraps a persistence or renderer failure.
func Dependency(msg string, err error) error {
	return &Error{Kind: ErrDependency, Message: msg, Err: err}
}

// KindOf returns the stable kind name of err, "internal" when err carries none.
func KindOf(err error) string {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrUnauthorized, ErrDependency} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}

	return "internal"
}

// Message returns the caller-facing message of err. Causes are never included.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}

	return "internal error"
}
