// Package cmd provides CLI command implementations.
package cmd

// Exit codes returned by r2x.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates a config, catalogue or parameter failed validation.
	ExitValidationError = 2

	// ExitPassOrderError indicates the configured passes violate a declared dependency.
	ExitPassOrderError = 3

	// ExitDataError indicates input data could not be read or produced an invalid graph.
	ExitDataError = 4

	// ExitNotFound indicates a run folder, config or required file was not found.
	ExitNotFound = 5
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitPassOrderError:
		return "Pass Order Error"
	case ExitDataError:
		return "Data Error"
	case ExitNotFound:
		return "Not Found"
	default:
		return "Unknown"
	}
}
