package models

import (
	"errors"
	"fmt"
)

// 错误类别，配合 errors.Is 使用
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	// ErrForbidden is a Conflict raised when the acting user has no rights on the target.
	ErrForbidden = fmt.Errorf("%w: forbidden", ErrConflict)
)

// Error carries a human-readable reason together with its kind.
type Error struct {
	kind   error
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Kind returns one of ErrValidation, ErrNotFound, ErrConflict or ErrForbidden.
func (e *Error) Kind() error {
	return e.kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func Conflictf(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func Forbiddenf(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

// IsKnown reports whether err carries one of the model error kinds.
func IsKnown(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}
