package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLabRockies/r2x-reeds/internal/testutil"
)

func TestDefaultPaths(t *testing.T) {
	paths, err := DefaultPaths()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".r2x"), paths.HomeDir)
	assert.Equal(t, filepath.Join(home, ".r2x", "config.yaml"), paths.ConfigFile)
	assert.Equal(t, filepath.Join(home, ".r2x", "catalogue.yaml"), paths.CatalogueFile)
	assert.Equal(t, filepath.Join(home, ".r2x", "defaults.json"), paths.DefaultsFile)
}

func TestResolvePathsUserFiles(t *testing.T) {
	dir := t.TempDir()
	p := pathsUnder(dir)

	cfg := &Config{RunFolder: "/runs/case"}
	got, err := cfg.ResolvePaths(p)
	require.NoError(t, err)
	assert.Empty(t, got.Catalogue, "no user catalogue yet")
	assert.Empty(t, got.Defaults)

	testutil.WriteFile(t, dir, "catalogue.yaml", "[]\n")
	testutil.WriteFile(t, dir, "defaults.json", "{}\n")
	got, err = cfg.ResolvePaths(p)
	require.NoError(t, err)
	assert.Equal(t, p.CatalogueFile, got.Catalogue)
	assert.Equal(t, p.DefaultsFile, got.Defaults)
	assert.Empty(t, cfg.Catalogue, "receiver is not modified")
}

func TestResolvePathsConfiguredWins(t *testing.T) {
	dir := t.TempDir()
	p := pathsUnder(dir)
	testutil.WriteFile(t, dir, "catalogue.yaml", "[]\n")

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := (&Config{RunFolder: "~/runs/case", Catalogue: "/etc/r2x/catalogue.yaml"}).ResolvePaths(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "runs/case"), got.RunFolder)
	assert.Equal(t, "/etc/r2x/catalogue.yaml", got.Catalogue)

	got, err = (&Config{Defaults: "~/defaults.json"}).ResolvePaths(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "defaults.json"), got.Defaults)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"~", home},
		{"~/runs/case", filepath.Join(home, "runs/case")},
		{"~other/x", "~other/x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
