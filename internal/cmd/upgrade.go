package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/upgrader"
)

// NewUpgradeCmd creates the upgrade command.
func NewUpgradeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "upgrade [run-folder]",
		Short: "Bring an older run folder to the current layout",
		Long: `Detect the model version of a run folder from meta.csv and move files
written by older versions to where the catalogue expects them.

Steps are idempotent: running upgrade twice changes nothing the second time.
Without an argument the run folder comes from --config or R2X_RUN_FOLDER.

Examples:
  r2x upgrade ./runs/base
  r2x upgrade ./runs/base --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := GetConfig().RunFolder
			if len(args) == 1 {
				folder = args[0]
			}
			return runUpgrade(folder, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report pending steps without moving files")

	return cmd
}

func runUpgrade(folder string, dryRun bool) error {
	if folder == "" {
		return NewExitError(&oerrors.DetailError{
			Type:    "validation",
			Message: "no run folder given",
			Hint:    "Pass the run folder as an argument or set run_folder in the config file",
			Cause:   oerrors.ErrValidation,
		})
	}

	report, err := upgrader.New(folder, upgrader.WithDryRun(dryRun)).Upgrade()
	if err != nil {
		return NewExitError(err)
	}

	pending := output.StatusApplied
	if dryRun {
		pending = "pending"
	}
	for _, name := range report.Applied {
		output.Println(output.FormatStatusLine("step", name, pending))
	}
	for _, name := range report.Skipped {
		output.Println(output.FormatStatusLine("step", name, output.StatusUnchanged))
	}
	output.Println(output.StyleSummary.Render(fmt.Sprintf("Run version %s: %d step(s) %s, %d unchanged",
		report.Version, len(report.Applied), pending, len(report.Skipped))))
	return nil
}
