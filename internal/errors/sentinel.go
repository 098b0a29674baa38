package errors

import "errors"

// Sentinel errors for known conditions. Every typed error in this package
// unwraps to exactly one of these so callers can use errors.Is.
var (
	// ErrDuplicateName indicates a file descriptor name was registered twice.
	ErrDuplicateName = errors.New("duplicate descriptor name")

	// ErrNotRegistered indicates a read of a name no descriptor was registered for.
	ErrNotRegistered = errors.New("descriptor not registered")

	// ErrMissingRequiredFile indicates a required input file could not be located.
	ErrMissingRequiredFile = errors.New("missing required file")

	// ErrSchemaMismatch indicates a processing spec references a field that does
	// not exist, or a spec/descriptor is structurally invalid.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrDuplicateComponent indicates two components of one kind share a name.
	ErrDuplicateComponent = errors.New("duplicate component")

	// ErrDanglingReference indicates a relationship target does not exist in the graph.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrMissingAuxiliaryData indicates a modifier pass could not find a table it requires.
	ErrMissingAuxiliaryData = errors.New("missing auxiliary data")

	// ErrPassOrder indicates the configured pass order violates a declared dependency.
	ErrPassOrder = errors.New("invalid pass order")

	// ErrInvariant indicates a finalize check on the graph failed.
	ErrInvariant = errors.New("graph invariant violated")

	// ErrValidation indicates a value failed field-level validation.
	ErrValidation = errors.New("validation error")

	// ErrRead indicates a reader failed to decode a file that exists.
	ErrRead = errors.New("read error")

	// ErrNotFound indicates a file or directory was not found.
	ErrNotFound = errors.New("not found")
)
