package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		path := writeConfig(t, `
run_folder: /data/run
solve_year: 2030
weather_year: [2012, 2013]
scenario: high-re
case_name: case-a
file_overrides:
  pcm_defaults: /data/pcm.json
passes:
  - name: break_gens
    params:
      capacity_threshold: 10
  - name: hurdle_rate
`)

		cfg, err := NewLoader().Load(path)
		require.NoError(t, err)

		assert.Equal(t, "/data/run", cfg.RunFolder)
		assert.Equal(t, Years{2030}, cfg.SolveYear)
		assert.Equal(t, Years{2012, 2013}, cfg.WeatherYear)
		assert.Equal(t, 2012, cfg.PrimaryWeatherYear())
		assert.Equal(t, "high-re", cfg.Scenario)
		assert.Equal(t, "case-a", cfg.CaseName)
		assert.Equal(t, "/data/pcm.json", cfg.FileOverrides["pcm_defaults"])
		require.Len(t, cfg.Passes, 2)
		assert.Equal(t, "break_gens", cfg.Passes[0].Name)
		assert.EqualValues(t, 10, cfg.Passes[0].Params["capacity_threshold"])
		assert.Equal(t, "hurdle_rate", cfg.Passes[1].Name)
	})

	t.Run("returns empty config for missing file", func(t *testing.T) {
		cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		require.NoError(t, err)
		assert.Empty(t, cfg.RunFolder)
		assert.Empty(t, cfg.SolveYear)
	})

	t.Run("loads from environment variables", func(t *testing.T) {
		t.Setenv("R2X_RUN_FOLDER", "/env/run")
		t.Setenv("R2X_SOLVE_YEAR", "2030,2040")
		t.Setenv("R2X_WEATHER_YEAR", "2012")

		cfg, err := NewLoader().Load(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Equal(t, "/env/run", cfg.RunFolder)
		assert.Equal(t, Years{2030, 2040}, cfg.SolveYear)
		assert.Equal(t, Years{2012}, cfg.WeatherYear)
	})

	t.Run("env vars override file values", func(t *testing.T) {
		t.Setenv("R2X_SCENARIO", "env-scenario")

		cfg, err := NewLoader().Load(writeConfig(t, "scenario: file-scenario\n"))
		require.NoError(t, err)
		assert.Equal(t, "env-scenario", cfg.Scenario)
	})

	t.Run("set values override env and file", func(t *testing.T) {
		t.Setenv("R2X_SCENARIO", "env-scenario")

		loader := NewLoader()
		loader.Set("scenario", "flag-scenario")
		cfg, err := loader.Load(writeConfig(t, "scenario: file-scenario\n"))
		require.NoError(t, err)
		assert.Equal(t, "flag-scenario", cfg.Scenario)
	})

	t.Run("rejects an invalid year", func(t *testing.T) {
		t.Setenv("R2X_SOLVE_YEAR", "twenty")

		_, err := NewLoader().Load(writeConfig(t, ""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid year")
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := NewLoader().Load(writeConfig(t, "solve_year: [2030\n"))
		require.Error(t, err)
	})
}

func TestLoaderLoadWithDefaults(t *testing.T) {
	cfg, err := NewLoader().LoadWithDefaults(writeConfig(t, "solve_year: 2030\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultScenario, cfg.Scenario)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("R2X_TEST_DOTENV=from-file\n"), 0o644))
	t.Setenv("R2X_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("R2X_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "from-file", os.Getenv("R2X_TEST_DOTENV"))
}

func TestConfigFileExists(t *testing.T) {
	exists, err := ConfigFileExists(writeConfig(t, ""))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = ConfigFileExists(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, exists)
}
