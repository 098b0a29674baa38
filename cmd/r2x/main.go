// Package main is the entry point for the r2x CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/NatLabRockies/r2x-reeds/internal/cmd"
	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		var exitErr *oerrors.ExitError
		if errors.As(err, &exitErr) {
			// Only print if the command layer hasn't already printed it
			if !exitErr.Printed {
				fmt.Fprintln(os.Stderr, err)
			}
			output.Debug("exiting", "code", exitErr.Code, "reason", cmd.ExitCodeName(exitErr.Code))
			os.Exit(exitErr.Code)
		}
		// Flag and argument errors from cobra land here
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmd.ExitCodeFromError(err))
	}
}
