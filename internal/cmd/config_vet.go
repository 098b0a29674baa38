package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NatLabRockies/r2x-reeds/internal/config"
	"github.com/NatLabRockies/r2x-reeds/internal/descriptor"
	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/pipeline"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate an r2x run configuration file.

Checks performed:
  1. Config file exists at resolved path
  2. Config matches the schema and names solve and weather years
  3. Passes exist, accept their parameters and are correctly ordered
  4. The file catalogue is valid (embedded or configured)
  5. defaults.json loads (embedded or configured)

The config path is resolved using precedence:
  --config flag > R2X_CONFIG env > ~/.r2x/config.yaml

Examples:
  # Validate default configuration
  r2x config vet

  # Validate custom config path
  r2x config vet --config /path/to/config.yaml`,
		Args: cobra.NoArgs,
		RunE: runConfigVet,
	}

	return cmd
}

func runConfigVet(cmd *cobra.Command, args []string) error {
	path := GetConfigPath()
	if path == "" {
		resolved, err := config.ResolveConfigPath("")
		if err != nil {
			return NewExitError(oerrors.Wrap(oerrors.ErrNotFound, "could not resolve config path"))
		}
		path = resolved.Value
	}

	output.Debug("validating config", "path", path)

	// Check 1: Config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(&oerrors.DetailError{
			Type:     "not found",
			Message:  "configuration file not found",
			Location: path,
			Hint:     "Create the file or pass --config",
			Cause:    oerrors.ErrNotFound,
		})
	}
	output.Println(output.FormatVetCheck("Config file found", path))

	// Check 2: Schema and required settings
	validator, err := config.NewValidator()
	if err != nil {
		return NewExitError(err)
	}
	if err := validator.ValidateFile(path); err != nil {
		return NewExitError(fmt.Errorf("%w: %w", oerrors.ErrValidation, err))
	}
	output.Println(output.FormatVetCheck("Config is valid", ""))

	cfg, err := config.NewLoader().LoadWithDefaults(path)
	if err != nil {
		return NewExitError(err)
	}

	// Check 3: Passes
	pipe, err := pipeline.FromConfig(cfg.Passes)
	if err != nil {
		return NewExitError(err)
	}
	output.Println(output.FormatVetCheck("Passes are ordered", fmt.Sprintf("%d pass(es)", len(pipe.Names()))))

	// Check 4: Catalogue
	source := "embedded"
	data := descriptor.DefaultCatalogue()
	if cfg.Catalogue != "" {
		source = cfg.Catalogue
		expanded, err := config.ExpandPath(cfg.Catalogue)
		if err != nil {
			return NewExitError(err)
		}
		if data, err = os.ReadFile(expanded); err != nil {
			return NewExitError(&oerrors.DetailError{
				Type:     "not found",
				Message:  "catalogue not readable",
				Location: expanded,
				Cause:    oerrors.ErrNotFound,
			})
		}
	}
	records, err := descriptor.Records(data)
	if err != nil {
		return NewExitError(err)
	}
	if err := descriptor.Vet(records); err != nil {
		return NewExitError(err)
	}
	output.Println(output.FormatVetCheck("Catalogue is valid", fmt.Sprintf("%s, %d file(s)", source, len(records))))

	// Check 5: Defaults
	if _, err := loadDefaults(cfg); err != nil {
		return NewExitError(err)
	}
	output.Println(output.FormatVetCheck("Defaults load", cfg.Defaults))

	output.Println("Configuration is valid: " + path)
	return nil
}
