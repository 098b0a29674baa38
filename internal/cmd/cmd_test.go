package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/NatLabRockies/r2x-reeds/internal/testutil"
)

// execute runs the root command with args in an isolated home directory.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("R2X_CONFIG", "")
	t.Setenv("R2X_RUN_FOLDER", "")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "absent.env")))
	return root.Execute()
}

// writeConfig writes a config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), "config.yaml", content)
}

// runFolder writes a minimal run folder the assembler accepts.
func runFolder(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"inputs_case/hierarchy.csv": "*r,transreg,st\np1,west,CA\np2,west,OR\n",
		"outputs/cap.csv":           "i,v,r,t,Value\ngas-cc,new1,p1,2030,500\nupv,init-1,p2,2030,120\n",
		"outputs/emit_rate.csv":     "etype,e,i,v,r,t,Value\nCOMBUSTION,CO2,gas-cc,new1,p1,2030,0.4\n",
		"outputs/tran_out.csv":      "r,rr,trtype,t,Value\np1,p2,AC,2030,100\n",
		"inputs_case/load_2012.csv": "h,r,MW\n1,p1,10\n1,p2,5\n2,p1,12\n2,p2,7\n",
	})
	return dir
}
