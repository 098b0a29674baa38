package pipeline

import (
	"fmt"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
)

// PassError is a failure inside one pass. It unwraps to the cause so
// errors.Is matches the underlying sentinel.
type PassError interface {
	error

	// Pass returns the name of the pass where the error occurred.
	Pass() string
}

// PassOrderError indicates a pass consumes an effect that a later pass
// produces, or a non-idempotent pass is listed twice.
type PassOrderError struct {
	// Name is the offending pass.
	Name string
	// Effect is the effect consumed too early. Empty for duplicates.
	Effect string
	// Producer is the later pass producing Effect.
	Producer string
}

func (e *PassOrderError) Error() string {
	if e.Effect == "" {
		return fmt.Sprintf("pass %q is listed more than once and is not idempotent", e.Name)
	}
	return fmt.Sprintf("pass %q consumes %q, which %q produces later; move %q before %q",
		e.Name, e.Effect, e.Producer, e.Producer, e.Name)
}

func (e *PassOrderError) Unwrap() error { return oerrors.ErrPassOrder }

func (e *PassOrderError) Pass() string { return e.Name }

// ApplyError wraps an error returned by a pass or by rewiring after it.
type ApplyError struct {
	Index int
	Name  string
	// Stage is "aux", "apply", "wire" or "check".
	Stage string
	Err   error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("pass %d (%s) %s: %v", e.Index+1, e.Name, e.Stage, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

func (e *ApplyError) Pass() string { return e.Name }
