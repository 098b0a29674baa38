package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/NatLabRockies/r2x-reeds/internal/config"
	"github.com/NatLabRockies/r2x-reeds/internal/descriptor"
	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/output"
	"github.com/NatLabRockies/r2x-reeds/internal/parser"
	"github.com/NatLabRockies/r2x-reeds/internal/pipeline"
	"github.com/NatLabRockies/r2x-reeds/internal/registry"
	"github.com/NatLabRockies/r2x-reeds/internal/sysmod"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

type runFlags struct {
	runFolder   string
	solveYear   []int
	weatherYear []int
	caseName    string
	scenario    string
	catalogue   string
	defaults    string
	passes      []string
	output      string
	concurrency int
}

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var rf runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Translate a run folder into a system graph",
		Long: `Read a ReEDS run folder, assemble the system graph and apply the
configured modifier passes in order.

Flags override values from the config file and R2X_* environment variables.

Examples:
  # Use run settings from ~/.r2x/config.yaml
  r2x run

  # Override the run folder and years
  r2x run --run-folder ./runs/base --solve-year 2030 --weather-year 2012

  # Apply passes in order, ignoring the configured list
  r2x run --pass break_gens --pass ccs_credit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, &rf)
		},
	}

	cmd.Flags().StringVar(&rf.runFolder, "run-folder", "", "ReEDS run folder (env: R2X_RUN_FOLDER)")
	cmd.Flags().IntSliceVar(&rf.solveYear, "solve-year", nil, "Solve year; the first is primary (env: R2X_SOLVE_YEAR)")
	cmd.Flags().IntSliceVar(&rf.weatherYear, "weather-year", nil, "Weather year; the first is primary (env: R2X_WEATHER_YEAR)")
	cmd.Flags().StringVar(&rf.caseName, "case-name", "", "Case name")
	cmd.Flags().StringVar(&rf.scenario, "scenario", "", "Scenario name (default \"base\")")
	cmd.Flags().StringVar(&rf.catalogue, "catalogue", "", "File catalogue (default: embedded)")
	cmd.Flags().StringVar(&rf.defaults, "defaults", "", "defaults.json file or folder (default: embedded)")
	cmd.Flags().StringSliceVar(&rf.passes, "pass", nil, "Modifier pass to apply, repeatable; replaces configured passes")
	cmd.Flags().StringVarP(&rf.output, "output", "o", "table", "Output format: table, yaml, json")
	cmd.Flags().IntVar(&rf.concurrency, "concurrency", 0, "Parallel file reads (default: number of CPUs)")

	return cmd
}

// applyFlags returns a copy of cfg with every explicitly set flag applied.
func (rf *runFlags) applyFlags(cmd *cobra.Command, cfg *config.Config) *config.Config {
	out := *cfg
	flags := cmd.Flags()
	if flags.Changed("run-folder") {
		out.RunFolder = rf.runFolder
	}
	if flags.Changed("solve-year") {
		out.SolveYear = config.Years(rf.solveYear)
	}
	if flags.Changed("weather-year") {
		out.WeatherYear = config.Years(rf.weatherYear)
	}
	if flags.Changed("case-name") {
		out.CaseName = rf.caseName
	}
	if flags.Changed("scenario") {
		out.Scenario = rf.scenario
	}
	if flags.Changed("catalogue") {
		out.Catalogue = rf.catalogue
	}
	if flags.Changed("defaults") {
		out.Defaults = rf.defaults
	}
	if flags.Changed("pass") {
		out.Passes = make([]config.PassConfig, 0, len(rf.passes))
		for _, name := range rf.passes {
			out.Passes = append(out.Passes, config.PassConfig{Name: name})
		}
	}
	return out.WithDefaults()
}

func runRun(cmd *cobra.Command, rf *runFlags) error {
	format, err := output.ParseOutputFormat(rf.output)
	if err != nil {
		return NewExitError(oerrors.Wrap(oerrors.ErrValidation, err.Error()))
	}

	cfg := rf.applyFlags(cmd, GetConfig())
	if cfg.RunFolder == "" {
		return NewExitError(&oerrors.DetailError{
			Type:    "validation",
			Message: "no run folder given",
			Hint:    "Pass --run-folder or set run_folder in the config file",
			Cause:   oerrors.ErrValidation,
		})
	}
	// Without a home directory only the embedded catalogue and defaults apply.
	paths, err := config.DefaultPaths()
	if err != nil {
		paths = nil
	}
	if cfg, err = cfg.ResolvePaths(paths); err != nil {
		return NewExitError(err)
	}
	validator, err := config.NewValidator()
	if err != nil {
		return NewExitError(err)
	}
	if err := validator.Validate(cfg); err != nil {
		return NewExitError(fmt.Errorf("%w: %w", oerrors.ErrValidation, err))
	}

	// Pass order is checked before any file is read.
	pipe, err := pipeline.FromConfig(cfg.Passes)
	if err != nil {
		return NewExitError(err)
	}

	defaults, err := loadDefaults(cfg)
	if err != nil {
		return NewExitError(err)
	}
	reg, err := openRegistry(cfg, rf.concurrency)
	if err != nil {
		return NewExitError(err)
	}

	output.Info("translating run folder",
		"folder", cfg.RunFolder,
		"solve_year", cfg.PrimarySolveYear(),
		"weather_year", cfg.PrimaryWeatherYear(),
		"passes", len(cfg.Passes),
	)

	var result *pipeline.Result
	start := time.Now()
	err = output.RunWithSpinner(cmd.Context(), func() error {
		var names []string
		for _, name := range parser.Tables() {
			if reg.Has(name) {
				names = append(names, name)
			}
		}
		if err := reg.Preload(cmd.Context(), names...); err != nil {
			return err
		}

		p, err := parser.New(reg, parser.Options{
			Name:        cfg.CaseName,
			WeatherYear: cfg.PrimaryWeatherYear(),
			Defaults:    defaults,
		})
		if err != nil {
			return err
		}
		sys, err := p.Build()
		if err != nil {
			return err
		}
		result, err = pipe.Run(sys, reg, &sysmod.Env{
			SolveYear:   cfg.PrimarySolveYear(),
			WeatherYear: cfg.PrimaryWeatherYear(),
			Defaults:    defaults,
		})
		return err
	}, output.WithTitle("Translating "+cfg.RunFolder))
	if err != nil {
		return NewExitError(err)
	}
	output.Debug("run complete", "took", time.Since(start), "state", pipe.State())

	return printResult(result, format)
}

func loadDefaults(cfg *config.Config) (*config.Defaults, error) {
	raw, err := config.LoadDefaults(cfg.Defaults, nil)
	if err != nil {
		return nil, err
	}
	return config.DecodeDefaults(raw)
}

// openRegistry loads the catalogue and registers every descriptor.
func openRegistry(cfg *config.Config, concurrency int) (*registry.Registry, error) {
	var (
		list []*descriptor.Descriptor
		err  error
	)
	if cfg.Catalogue != "" {
		list, err = descriptor.LoadFile(cfg.Catalogue, cfg.FileOverrides)
	} else {
		list, err = descriptor.Load(descriptor.DefaultCatalogue(), cfg.FileOverrides)
	}
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}

	opts := []registry.Option{registry.WithVars(cfg.Vars())}
	if concurrency > 0 {
		opts = append(opts, registry.WithConcurrency(concurrency))
	}
	reg, err := registry.New(cfg.RunFolder, opts...)
	if err != nil {
		return nil, err
	}
	if err := reg.RegisterAll(list); err != nil {
		return nil, err
	}
	return reg, nil
}

// runSummary is the structured form of a run result.
type runSummary struct {
	System       string         `json:"system"`
	Components   map[string]int `json:"components"`
	CapacityMW   float64        `json:"capacity_mw"`
	PeakDemandMW float64        `json:"peak_demand_mw"`
	Passes       []passSummary  `json:"passes"`
}

type passSummary struct {
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Duration string   `json:"duration"`
	Missing  []string `json:"missing,omitempty"`
}

func summarize(res *pipeline.Result) runSummary {
	s := runSummary{
		System:     res.System.Name,
		Components: map[string]int{},
		Passes:     make([]passSummary, 0, len(res.Passes)),
	}
	for kind, n := range res.System.Summary() {
		s.Components[string(kind)] = n
	}
	for _, g := range res.System.Generators() {
		s.CapacityMW += g.Capacity
	}
	for _, d := range res.System.Demands() {
		s.PeakDemandMW += d.PeakDemand
	}
	for _, p := range res.Passes {
		s.Passes = append(s.Passes, passSummary{
			Name:     p.Name,
			Status:   string(p.Status),
			Duration: p.Duration.Round(time.Millisecond).String(),
			Missing:  p.Missing,
		})
	}
	return s
}

func printResult(res *pipeline.Result, format output.OutputFormat) error {
	summary := summarize(res)
	switch format {
	case output.FormatJSON:
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		output.Println(string(data))
	case output.FormatYAML:
		data, err := yaml.Marshal(summary)
		if err != nil {
			return err
		}
		output.Println(string(data))
	default:
		components := output.NewTable("KIND", "COUNT")
		for _, kind := range system.Kinds() {
			components.Row(string(kind), strconv.Itoa(summary.Components[string(kind)]))
		}
		output.Println(components.String())

		if len(summary.Passes) > 0 {
			passes := output.NewTable("PASS", "STATUS", "DURATION").StatusColumn("STATUS")
			for _, p := range summary.Passes {
				passes.Row(p.Name, p.Status, p.Duration)
			}
			output.Println(passes.String())
		}
		output.Println(output.FormatCheckmark(fmt.Sprintf("System %s finalized with %d components",
			output.StyleNoun.Render(summary.System), res.System.Len())))
	}
	return nil
}
