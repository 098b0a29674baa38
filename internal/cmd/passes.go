package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/sysmod"
)

// NewPassesCmd creates the passes command.
func NewPassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passes",
		Short: "List available modifier passes",
		Long: `List every modifier pass with the tables it reads and the effects it
produces or consumes. A pass consuming an effect must be listed after
every pass producing it.`,
		Args: cobra.NoArgs,
		RunE: runPasses,
	}
}

func runPasses(cmd *cobra.Command, args []string) error {
	output.Println(passTable(sysmod.Catalogue()).String())
	return nil
}

func passTable(infos []sysmod.Info) *output.Table {
	tbl := output.NewTable("PASS", "REQUIRES", "OPTIONAL", "PRODUCES", "CONSUMES", "DESCRIPTION")
	for _, info := range infos {
		tbl.Row(
			info.Name,
			joinOrDash(info.Requires),
			joinOrDash(info.Optional),
			joinOrDash(info.Produces),
			joinOrDash(info.Consumes),
			info.Description,
		)
	}
	return tbl
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
