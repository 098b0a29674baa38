package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLabRockies/r2x-reeds/internal/config"
	"github.com/NatLabRockies/r2x-reeds/internal/pipeline"
	"github.com/NatLabRockies/r2x-reeds/internal/system"
)

func TestNewRunCmd(t *testing.T) {
	cmd := NewRunCmd()

	assert.Equal(t, "run", cmd.Use)
	for _, name := range []string{"run-folder", "solve-year", "weather-year", "pass", "output", "catalogue", "defaults"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	var rf runFlags
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&rf.runFolder, "run-folder", "", "")
	cmd.Flags().IntSliceVar(&rf.solveYear, "solve-year", nil, "")
	cmd.Flags().StringSliceVar(&rf.passes, "pass", nil, "")
	cmd.Flags().StringVar(&rf.scenario, "scenario", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--solve-year", "2040,2050", "--pass", "break_gens", "--pass", "ccs_credit"}))

	base := &config.Config{
		RunFolder: "/from/config",
		SolveYear: config.Years{2030},
		Passes:    []config.PassConfig{{Name: "hurdle_rate"}},
	}
	got := rf.applyFlags(cmd, base)

	assert.Equal(t, "/from/config", got.RunFolder)
	assert.Equal(t, config.Years{2040, 2050}, got.SolveYear)
	assert.Equal(t, config.DefaultScenario, got.Scenario)
	assert.Equal(t, []config.PassConfig{{Name: "break_gens"}, {Name: "ccs_credit"}}, got.Passes)
	// the loaded config is not modified
	assert.Equal(t, config.Years{2030}, base.SolveYear)
}

func TestRunCmd(t *testing.T) {
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		wantCode int
	}{
		{
			name: "assembles without passes",
			args: func(t *testing.T) []string {
				return []string{"--run-folder", runFolder(t), "--solve-year", "2030", "--weather-year", "2012", "-o", "json"}
			},
			wantCode: ExitSuccess,
		},
		{
			name: "skips a pass with missing tables",
			args: func(t *testing.T) []string {
				return []string{"--run-folder", runFolder(t), "--solve-year", "2030", "--weather-year", "2012", "--pass", "break_gens"}
			},
			wantCode: ExitSuccess,
		},
		{
			name: "config file supplies settings",
			args: func(t *testing.T) []string {
				path := writeConfig(t, "run_folder: "+runFolder(t)+"\nsolve_year: 2030\nweather_year: 2012\n")
				return []string{"--config", path, "-o", "yaml"}
			},
			wantCode: ExitSuccess,
		},
		{
			name: "missing run folder",
			args: func(t *testing.T) []string {
				return []string{"--solve-year", "2030", "--weather-year", "2012"}
			},
			wantCode: ExitValidationError,
		},
		{
			name: "missing weather year",
			args: func(t *testing.T) []string {
				return []string{"--run-folder", runFolder(t), "--solve-year", "2030"}
			},
			wantCode: ExitValidationError,
		},
		{
			name: "unknown output format",
			args: func(t *testing.T) []string {
				return []string{"--run-folder", runFolder(t), "--solve-year", "2030", "--weather-year", "2012", "-o", "xml"}
			},
			wantCode: ExitValidationError,
		},
		{
			name: "pass order violation",
			args: func(t *testing.T) []string {
				return []string{"--run-folder", runFolder(t), "--solve-year", "2030", "--weather-year", "2012",
					"--pass", "ccs_credit", "--pass", "break_gens"}
			},
			wantCode: ExitPassOrderError,
		},
		{
			name: "repeated idempotent pass",
			args: func(t *testing.T) []string {
				path := writeConfig(t, "run_folder: "+runFolder(t)+"\nsolve_year: 2030\nweather_year: 2012\n"+
					"passes:\n  - name: hurdle_rate\n    params: {hurdle_rate: 1.0}\n"+
					"  - name: hurdle_rate\n    params: {hurdle_rate: 2.0}\n")
				return []string{"--config", path, "-o", "json"}
			},
			wantCode: ExitSuccess,
		},
		{
			name: "repeated pass that is not idempotent",
			args: func(t *testing.T) []string {
				return []string{"--run-folder", runFolder(t), "--solve-year", "2030", "--weather-year", "2012",
					"--pass", "break_gens", "--pass", "break_gens"}
			},
			wantCode: ExitPassOrderError,
		},
		{
			name: "unknown pass",
			args: func(t *testing.T) []string {
				return []string{"--run-folder", runFolder(t), "--solve-year", "2030", "--weather-year", "2012", "--pass", "nope"}
			},
			wantCode: ExitValidationError,
		},
		{
			name: "required file missing",
			args: func(t *testing.T) []string {
				return []string{"--run-folder", t.TempDir(), "--solve-year", "2030", "--weather-year", "2012"}
			},
			wantCode: ExitNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, append([]string{"run"}, tt.args(t)...)...)
			assert.Equal(t, tt.wantCode, ExitCodeFromError(err), "error: %v", err)
		})
	}
}

func TestSummarize(t *testing.T) {
	sys := system.New("case")
	require.NoError(t, sys.Add(&system.Region{Name: "p1"}))
	require.NoError(t, sys.Add(&system.Generator{Name: "gas-cc_p1", Region: "p1", Capacity: 250}))
	require.NoError(t, sys.Add(&system.Demand{Name: "p1", Region: "p1", PeakDemand: 180}))

	got := summarize(&pipeline.Result{
		System: sys,
		Passes: []pipeline.PassReport{
			{Name: "break_gens", Status: pipeline.StatusSkipped, Duration: 1500 * time.Microsecond, Missing: []string{"pcm_defaults"}},
		},
	})

	assert.Equal(t, "case", got.System)
	assert.Equal(t, 1, got.Components[string(system.KindRegion)])
	assert.InDelta(t, 250.0, got.CapacityMW, 1e-9)
	assert.InDelta(t, 180.0, got.PeakDemandMW, 1e-9)
	require.Len(t, got.Passes, 1)
	assert.Equal(t, passSummary{Name: "break_gens", Status: "skipped", Duration: "2ms", Missing: []string{"pcm_defaults"}}, got.Passes[0])
}
