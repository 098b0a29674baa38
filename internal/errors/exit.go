package errors

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Err  error
	Code int

	// Printed is set when the command layer already rendered the error.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}
