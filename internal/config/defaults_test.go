package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Run("embedded", func(t *testing.T) {
		raw, err := LoadDefaults("", nil)
		require.NoError(t, err)
		assert.Equal(t, []any{"can-imports", "electrolyzer"}, raw["excluded_techs"])
	})

	t.Run("list overrides are merged without duplicates", func(t *testing.T) {
		raw, err := LoadDefaults("", map[string]any{
			"excluded_techs": []string{"coal", "can-imports"},
		})
		require.NoError(t, err)
		assert.Equal(t, []any{"can-imports", "electrolyzer", "coal"}, raw["excluded_techs"])
	})

	t.Run("scalar overrides replace", func(t *testing.T) {
		raw, err := LoadDefaults("", map[string]any{"capacity_threshold": 12})
		require.NoError(t, err)
		assert.Equal(t, 12, raw["capacity_threshold"])
	})

	t.Run("missing file yields overrides only", func(t *testing.T) {
		raw, err := LoadDefaults(filepath.Join(t.TempDir(), "none.json"), map[string]any{"a": 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1}, raw)
	})

	t.Run("folder reads defaults.json", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultsFileName), []byte(`{"capacity_threshold": 7}`), 0o644))
		raw, err := LoadDefaults(dir, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"capacity_threshold": float64(7)}, raw)
	})

	t.Run("non-dict file is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "d.json")
		require.NoError(t, os.WriteFile(path, []byte(`[1, 2]`), 0o644))
		_, err := LoadDefaults(path, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must contain a dict")
	})

	t.Run("invalid json is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "d.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
		_, err := LoadDefaults(path, nil)
		require.Error(t, err)
	})

	t.Run("overrides do not alias caller values", func(t *testing.T) {
		override := map[string]any{"nested": map[string]any{"k": 1}}
		raw, err := LoadDefaults("", override)
		require.NoError(t, err)
		raw["nested"].(map[string]any)["k"] = 2
		assert.Equal(t, 1, override["nested"].(map[string]any)["k"])
	})
}

func TestDecodeDefaults(t *testing.T) {
	raw, err := LoadDefaults("", nil)
	require.NoError(t, err)
	d, err := DecodeDefaults(raw)
	require.NoError(t, err)

	assert.Equal(t, 5.0, d.CapacityThreshold)
	assert.Equal(t, "tonne", d.EmissionDefaultUnit)
	assert.Equal(t, 30.0, d.H2PriceScalar)
	assert.Contains(t, d.NonBreakTechs, "upv")
	assert.Equal(t, []string{"upv", "dupv", "distpv", "csp"}, d.TechCategories["solar"])
	assert.Equal(t, raw, d.Raw)
}

func TestDefaultsLookups(t *testing.T) {
	raw, err := LoadDefaults("", nil)
	require.NoError(t, err)
	d, err := DecodeDefaults(raw)
	require.NoError(t, err)

	tests := []struct {
		tech      string
		category  string
		excluded  bool
		breakable bool
	}{
		{tech: "gas-cc", category: "gas-cc", breakable: true},
		{tech: "gas-ct_2", category: "gas-ct", breakable: true},
		{tech: "upv_3", category: "solar"},
		{tech: "can-imports", category: "imports", excluded: true, breakable: true},
		{tech: "electrolyzer", excluded: true, breakable: true},
		{tech: "h2-ct", category: "hydrogen", breakable: true},
		{tech: "Battery_4", category: "storage"},
		{tech: "mystery", breakable: true},
	}
	for _, tt := range tests {
		t.Run(tt.tech, func(t *testing.T) {
			assert.Equal(t, tt.category, d.Category(tt.tech))
			assert.Equal(t, tt.excluded, d.Excluded(tt.tech))
			assert.Equal(t, tt.breakable, d.Breakable(tt.tech))
		})
	}
}
