package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrTemporary          = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

func NotFound(operation, format string, args ...any) error {
	return WrapError(ErrNotFound, operation, fmt.Errorf(format, args...))
}

func Invalid(operation, format string, args ...any) error {
	return WrapError(ErrInvalidInput, operation, fmt.Errorf(format, args...))
}

func Precondition(operation, format string, args ...any) error {
	return WrapError(ErrPreconditionFailed, operation, fmt.Errorf(format, args...))
}

func Temporary(operation, format string, args ...any) error {
	return WrapError(ErrTemporary, operation, fmt.Errorf(format, args...))
}
