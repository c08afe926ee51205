// Package apperr is the error taxonomy shared by every CRM service. Callers
// match on the sentinels with errors.Is; the constructors attach a message
// while keeping the sentinel in the chain.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means tenant setup is incomplete, e.g. the default
	// pipeline was never bootstrapped.
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrPermission    = errors.New("permission denied")
	// ErrNotFound is also returned when an entity exists but is invisible to
	// the acting user.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a unique-constraint violation. Sequence generators
	// retry on it before surfacing it.
	ErrConflict = errors.New("conflict")
	// ErrAutomation is logged, never returned from a stage move.
	ErrAutomation = errors.New("automation error")
)

func Configuration(format string, args ...any) error { return wrap(ErrConfiguration, format, args...) }
func Validation(format string, args ...any) error    { return wrap(ErrValidation, format, args...) }
func Permission(format string, args ...any) error    { return wrap(ErrPermission, format, args...) }
func NotFound(format string, args ...any) error      { return wrap(ErrNotFound, format, args...) }
func Conflict(format string, args ...any) error      { return wrap(ErrConflict, format, args...) }

func wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
