// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/NatLabRockies/r2x-reeds/internal/config"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
)

var (
	// Global flags
	configFlag     string
	verboseFlag    bool
	timestampsFlag bool
	envFileFlag    string

	// Loaded configuration (set during PersistentPreRunE)
	runConfig  *config.Config
	configPath config.ResolvedValue
)

// NewRootCmd creates the root command for the r2x CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "r2x",
		Short: "ReEDS run folder translator",
		Long: `r2x reads a ReEDS run folder, assembles a power system graph and applies
modifier passes to it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: R2X_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", ".env", "Load environment variables from this file when present")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewPassesCmd())
	rootCmd.AddCommand(NewMigrateCmd())
	rootCmd.AddCommand(NewUpgradeCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals sets up logging and loads configuration.
func initializeGlobals(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(envFileFlag); err != nil {
		return err
	}

	resolved, err := config.ResolveConfigPath(configFlag)
	if err != nil {
		return err
	}
	configPath = resolved

	loadedConfig, err := config.NewLoader().LoadWithDefaults(configPath.Value)
	if err != nil {
		output.Debug("config load error", "error", err)
		// Don't fail here: commands that need the config report it themselves
	}
	runConfig = loadedConfig

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: verboseFlag}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if runConfig != nil && runConfig.Log.Timestamps != nil {
		logCfg.Timestamps = runConfig.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if verboseFlag {
		config.LogResolvedValues([]config.ResolvedValue{configPath})
	}
	return nil
}

// GetConfig returns the loaded run configuration, or defaults when no file
// could be loaded.
func GetConfig() *config.Config {
	if runConfig != nil {
		return runConfig
	}
	return config.DefaultConfig()
}

// GetConfigPath returns the resolved config path value.
func GetConfigPath() string {
	if configPath.Value != "" {
		return configPath.Value
	}
	return configFlag
}
