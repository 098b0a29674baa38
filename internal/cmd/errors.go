package cmd

import (
	"errors"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
)

// NewExitError wraps err with the exit code derived from it.
func NewExitError(err error) *oerrors.ExitError {
	return &oerrors.ExitError{Err: err, Code: ExitCodeFromError(err)}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *oerrors.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, oerrors.ErrPassOrder):
		return ExitPassOrderError
	case errors.Is(err, oerrors.ErrValidation),
		errors.Is(err, oerrors.ErrSchemaMismatch),
		errors.Is(err, oerrors.ErrDuplicateName),
		errors.Is(err, oerrors.ErrNotRegistered):
		return ExitValidationError
	case errors.Is(err, oerrors.ErrNotFound),
		errors.Is(err, oerrors.ErrMissingRequiredFile):
		return ExitNotFound
	case errors.Is(err, oerrors.ErrRead),
		errors.Is(err, oerrors.ErrDuplicateComponent),
		errors.Is(err, oerrors.ErrDanglingReference),
		errors.Is(err, oerrors.ErrMissingAuxiliaryData),
		errors.Is(err, oerrors.ErrInvariant):
		return ExitDataError
	default:
		return ExitGeneralError
	}
}
