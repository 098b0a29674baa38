package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NatLabRockies/r2x-reeds/internal/descriptor"
	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
)

// NewMigrateCmd creates the migrate command.
func NewMigrateCmd() *cobra.Command {
	var (
		showDiff bool
		outFile  string
	)

	cmd := &cobra.Command{
		Use:   "migrate <catalogue>",
		Short: "Convert a flat file catalogue to the nested layout",
		Long: `Convert a legacy flat file catalogue (fpath, reader_function,
index_columns, ...) to nested descriptors. Nested entries are kept as they are.

Examples:
  # Print the migrated catalogue
  r2x migrate file_mapping.json

  # Show what changes
  r2x migrate file_mapping.json --diff

  # Write the result to a file
  r2x migrate file_mapping.json -o catalogue.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(args[0], showDiff, outFile)
		},
	}

	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show the difference instead of the result")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Write the migrated catalogue to this file")

	return cmd
}

func runMigrate(path string, showDiff bool, outFile string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewExitError(&oerrors.DetailError{
				Type:     "not found",
				Message:  "catalogue file not found",
				Location: path,
				Cause:    oerrors.ErrNotFound,
			})
		}
		return NewExitError(err)
	}

	migrated, err := descriptor.MigrateCatalogue(data)
	if err != nil {
		return NewExitError(err)
	}
	// The result must load as a catalogue.
	if _, err := descriptor.Load(migrated, nil); err != nil {
		return NewExitError(fmt.Errorf("migrated catalogue is invalid: %w", err))
	}

	if showDiff {
		diff, err := output.DiffYAML(path, data, "migrated", migrated, output.IsTTY())
		if err != nil {
			return NewExitError(err)
		}
		if diff == "" {
			output.Println(output.FormatCheckmark("Catalogue is already nested"))
			return nil
		}
		output.Println(diff)
		return nil
	}

	if outFile != "" {
		if err := os.WriteFile(outFile, migrated, 0o644); err != nil {
			return NewExitError(fmt.Errorf("writing %s: %w", outFile, err))
		}
		output.Println(output.FormatCheckmark("Migrated catalogue written to " + outFile))
		return nil
	}

	output.Println(string(migrated))
	return nil
}
