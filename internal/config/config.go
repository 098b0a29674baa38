// Package config provides run configuration loading and management.
package config

import (
	"strconv"
)

// DefaultScenario is used when a run does not name one.
const DefaultScenario = "base"

// Years is a single year or a list of years. The first entry is the
// primary year.
type Years []int

// Primary returns the first year, or 0 when empty.
func (y Years) Primary() int {
	if len(y) == 0 {
		return 0
	}
	return y[0]
}

// PassConfig enables one modifier pass with its parameters.
type PassConfig struct {
	Name   string         `mapstructure:"name" json:"name"`
	Params map[string]any `mapstructure:"params" json:"params,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" json:"timestamps,omitempty"`
}

// Config describes one translation run.
type Config struct {
	// RunFolder is the ReEDS run folder.
	// Env: R2X_RUN_FOLDER
	RunFolder string `mapstructure:"run_folder" json:"run_folder,omitempty"`

	// SolveYear selects the model year. A list is accepted; the first entry
	// is used for filtering.
	// Env: R2X_SOLVE_YEAR (comma separated)
	SolveYear Years `mapstructure:"solve_year" json:"solve_year,omitempty"`

	// WeatherYear selects profile data.
	// Env: R2X_WEATHER_YEAR (comma separated)
	WeatherYear Years `mapstructure:"weather_year" json:"weather_year,omitempty"`

	CaseName string `mapstructure:"case_name" json:"case_name,omitempty"`

	// Scenario defaults to "base".
	Scenario string `mapstructure:"scenario" json:"scenario,omitempty"`

	// Catalogue is a file catalogue path. Empty uses the embedded catalogue.
	Catalogue string `mapstructure:"catalogue" json:"catalogue,omitempty"`

	// Defaults is a defaults.json path (file or folder). Empty uses the
	// embedded defaults.
	Defaults string `mapstructure:"defaults" json:"defaults,omitempty"`

	// FileOverrides replaces the location of named catalogue entries.
	FileOverrides map[string]string `mapstructure:"file_overrides" json:"file_overrides,omitempty"`

	// Passes run in the listed order.
	Passes []PassConfig `mapstructure:"passes" json:"passes,omitempty"`

	Log LogConfig `mapstructure:"log" json:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return &Config{Scenario: DefaultScenario}
}

// WithDefaults fills unset fields.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Scenario == "" {
		out.Scenario = DefaultScenario
	}
	return &out
}

// PrimarySolveYear is the first solve year.
func (c *Config) PrimarySolveYear() int {
	return c.SolveYear.Primary()
}

// PrimaryWeatherYear is the first weather year.
func (c *Config) PrimaryWeatherYear() int {
	return c.WeatherYear.Primary()
}

// Vars returns the placeholder values available to file locations and
// filters.
func (c *Config) Vars() map[string]string {
	vars := map[string]string{
		"scenario": c.Scenario,
	}
	if y := c.PrimarySolveYear(); y != 0 {
		vars["solve_year"] = strconv.Itoa(y)
	}
	if y := c.PrimaryWeatherYear(); y != 0 {
		vars["weather_year"] = strconv.Itoa(y)
	}
	if c.CaseName != "" {
		vars["case_name"] = c.CaseName
	}
	return vars
}
