package assessment

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidState means the operation is not allowed from the
	// assessment's current status.
	ErrInvalidState = errors.New("invalid assessment state")

	// ErrNotFound means the assessment or skill does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the principal does not own the assessment.
	ErrForbidden = errors.New("forbidden")

	// ErrCooldown means a failed attempt is too recent to retake.
	ErrCooldown = errors.New("retake cooldown active")

	// ErrInvalidInput means the request itself is malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// StateError records a rejected transition.
type StateError struct {
	Op   string
	From Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s assessment in status %q", e.Op, e.From)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// CooldownError carries when a new attempt becomes possible.
type CooldownError struct {
	Until time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("retake available after %s", e.Until.UTC().Format(time.RFC3339))
}

func (e *CooldownError) Unwrap() error { return ErrCooldown }
