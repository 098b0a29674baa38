package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NatLabRockies/r2x-reeds/internal/testutil"
)

func legacyRun(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"meta.csv":                    "computer,repo,branch,commit,description\nh,/p,main,abc,d\n",
		"inputs_case/hmap_allyrs.csv": "content",
	})
	return dir
}

func TestUpgradeCmd(t *testing.T) {
	dir := legacyRun(t)

	require.NoError(t, execute(t, "upgrade", dir))
	assert.FileExists(t, filepath.Join(dir, "inputs_case/rep/hmap_allyrs.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "inputs_case/hmap_allyrs.csv"))

	require.NoError(t, execute(t, "upgrade", dir))
}

func TestUpgradeCmdDryRun(t *testing.T) {
	dir := legacyRun(t)

	require.NoError(t, execute(t, "upgrade", dir, "--dry-run"))
	assert.FileExists(t, filepath.Join(dir, "inputs_case/hmap_allyrs.csv"))
}

func TestUpgradeCmdRunFolderFromConfig(t *testing.T) {
	dir := legacyRun(t)
	path := writeConfig(t, "run_folder: "+dir+"\n")

	require.NoError(t, execute(t, "upgrade", "--config", path))
	assert.FileExists(t, filepath.Join(dir, "inputs_case/rep/hmap_allyrs.csv"))
}

func TestUpgradeCmdErrors(t *testing.T) {
	t.Run("no run folder", func(t *testing.T) {
		err := execute(t, "upgrade")
		assert.Equal(t, ExitValidationError, ExitCodeFromError(err))
	})

	t.Run("no metadata", func(t *testing.T) {
		err := execute(t, "upgrade", t.TempDir())
		assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
	})
}
