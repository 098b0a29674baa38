package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show the r2x version, commit and build date, the Go toolchain, and the
versions of the CUE and SQLite modules linked into the binary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format: table, yaml, json")
	return cmd
}

func runVersion(format string) error {
	f, err := output.ParseOutputFormat(format)
	if err != nil {
		return NewExitError(oerrors.Wrap(oerrors.ErrValidation, err.Error()))
	}
	info := version.Get()

	switch f {
	case output.FormatJSON:
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		output.Println(string(data))
	case output.FormatYAML:
		data, err := yaml.Marshal(info)
		if err != nil {
			return err
		}
		output.Println(string(data))
	default:
		output.Println(info.String())
	}
	return nil
}
