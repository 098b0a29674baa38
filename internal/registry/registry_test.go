package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/NatLabRockies/r2x-reeds/internal/descriptor"
	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
	"github.com/NatLabRockies/r2x-reeds/internal/procspec"
	"github.com/NatLabRockies/r2x-reeds/internal/reader"
	"github.com/NatLabRockies/r2x-reeds/internal/testutil"
)

const catalogue = `
- name: gens
  location: outputs/cap_{solve_year}.csv
  proc_spec:
    column_mapping: {i: technology, r: region, Value: capacity}
    filter_by:
      t: "{solve_year}"
    select_columns: [technology, region, capacity]
    group_by: [technology, region]
    aggregate_on: {capacity: sum}
- name: hurdle
  location: inputs/hurdle.csv
  info: {is_optional: true}
- name: hierarchy
  location: inputs/hierarchy.csv
- name: defaults
  location: inputs/defaults.json
  proc_spec:
    key_mapping: {gas_cc: gas-cc}
`

func newRegistry(t *testing.T, root string) *Registry {
	t.Helper()
	list, err := descriptor.Load([]byte(catalogue), nil)
	require.NoError(t, err)
	r, err := New(root, WithVars(map[string]string{"solve_year": "2030"}))
	require.NoError(t, err)
	require.NoError(t, r.RegisterAll(list))
	return r
}

func mustSpec(t *testing.T, src string) *procspec.Spec {
	t.Helper()
	var s procspec.Spec
	require.NoError(t, yaml.Unmarshal([]byte(src), &s))
	return &s
}

func writeRun(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"outputs/cap_2030.csv": "i,r,t,Value\ngas-cc,p1,2030,100\ngas-cc,p1,2030,50\ncoal,p2,2030,300\ncoal,p2,2040,999\n",
		"inputs/defaults.json": `{"gas_cc": {"avg_capacity_MW": 150}}`,
	})
	return dir
}

func TestRegistryRead(t *testing.T) {
	r := newRegistry(t, writeRun(t))

	ds, err := r.Read("gens")
	require.NoError(t, err)
	require.Equal(t, frame.Tabular, ds.Kind())
	assert.Equal(t, "gens", ds.Name)
	assert.Equal(t, []string{"technology", "region", "capacity"}, ds.Table.Columns)
	assert.Equal(t, [][]any{
		{"gas-cc", "p1", int64(150)},
		{"coal", "p2", int64(300)},
	}, ds.Table.Rows)

	defaults, err := r.Read("defaults")
	require.NoError(t, err)
	require.Equal(t, frame.Structured, defaults.Kind())
	assert.Contains(t, defaults.Record, "gas-cc")
}

func TestRegistryReadErrors(t *testing.T) {
	r := newRegistry(t, writeRun(t))

	_, err := r.Read("unknown")
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrNotRegistered)
	assert.NotErrorIs(t, err, oerrors.ErrMissingRequiredFile)

	ds, err := r.Read("hurdle")
	require.NoError(t, err)
	assert.True(t, ds.IsAbsent())

	_, err = r.Read("hierarchy")
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrMissingRequiredFile)
	assert.NotErrorIs(t, err, oerrors.ErrNotRegistered)
}

func TestRegistryReadSchemaMismatchNamesFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "gens.csv", "tech,MW\ncoal,1\n")

	r, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, r.Register(&descriptor.Descriptor{
		Name:     "gens",
		Location: "gens.csv",
		ProcSpec: mustSpec(t, "select_columns: [technology]"),
	}))

	_, err = r.Read("gens")
	var sm *oerrors.SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "gens", sm.File)
	assert.Equal(t, "select_columns", sm.Operation)
	assert.Equal(t, "technology", sm.Field)
}

func TestRegistryRegister(t *testing.T) {
	r, err := New(t.TempDir())
	require.NoError(t, err)

	d := &descriptor.Descriptor{Name: "gens", Location: "gens.csv"}
	require.NoError(t, r.Register(d))
	assert.ErrorIs(t, r.Register(d), oerrors.ErrDuplicateName)

	err = r.Register(&descriptor.Descriptor{
		Name:     "settings",
		Location: "settings.json",
		ProcSpec: mustSpec(t, "select_columns: [a]"),
	})
	var sm *oerrors.SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, "settings", sm.File)

	err = r.Register(&descriptor.Descriptor{Name: "x", Location: "x.parquet"})
	assert.ErrorIs(t, err, oerrors.ErrSchemaMismatch, "unknown reader function")

	assert.Equal(t, []string{"gens"}, r.Names())
	assert.True(t, r.Has("gens"))
	assert.False(t, r.Has("settings"))
}

func TestRegistryDescriptorsAreImmutable(t *testing.T) {
	r, err := New(t.TempDir())
	require.NoError(t, err)

	d := &descriptor.Descriptor{
		Name:     "gens",
		Location: "gens.csv",
		ProcSpec: &procspec.Spec{ColumnMapping: map[string]string{"cap_mw": "capacity"}},
	}
	require.NoError(t, r.Register(d))
	d.Location = "other.csv"
	d.ProcSpec.ColumnMapping["cap_mw"] = "changed"

	got, err := r.Descriptor("gens")
	require.NoError(t, err)
	assert.Equal(t, "gens.csv", got.Location)
	assert.Equal(t, map[string]string{"cap_mw": "capacity"}, got.ProcSpec.ColumnMapping)

	got.Location = "changed.csv"
	got.ProcSpec.ColumnMapping["x"] = "y"
	again, err := r.Descriptor("gens")
	require.NoError(t, err)
	assert.Equal(t, "gens.csv", again.Location)
	assert.Equal(t, map[string]string{"cap_mw": "capacity"}, again.ProcSpec.ColumnMapping)
}

func TestRegistryCache(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "hierarchy.csv", "r,st\np1,TX\n")

	adapter, err := reader.NewAdapter(nil, 0)
	require.NoError(t, err)
	r, err := New(dir, WithAdapter(adapter))
	require.NoError(t, err)
	require.NoError(t, r.Register(&descriptor.Descriptor{Name: "hierarchy", Location: "hierarchy.csv"}))

	first, err := r.Read("hierarchy")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Table.Len())
	assert.Equal(t, []string{"hierarchy"}, r.Cached())

	// callers own their copy
	first.Table.Rows[0][0] = "mutated"

	require.NoError(t, os.WriteFile(path, []byte("r,st\np1,TX\np2,CA\n"), 0o644))
	adapter.Purge()

	cached, err := r.Read("hierarchy")
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Table.Len(), "cached result is served")
	assert.Equal(t, "p1", cached.Table.Value(0, "r"))

	fresh, err := r.Read("hierarchy", WithoutCache())
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Table.Len())

	stillCached, err := r.Read("hierarchy")
	require.NoError(t, err)
	assert.Equal(t, 1, stillCached.Table.Len(), "bypass does not store")

	r.Invalidate("hierarchy")
	assert.Empty(t, r.Cached())
	reloaded, err := r.Read("hierarchy")
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Table.Len())
}

func TestRegistryPreload(t *testing.T) {
	dir := writeRun(t)
	testutil.WriteFile(t, dir, "inputs/hierarchy.csv", "r,st\np1,TX\n")
	r := newRegistry(t, dir)

	require.NoError(t, r.Preload(context.Background()))
	assert.Equal(t, []string{"defaults", "gens", "hierarchy", "hurdle"}, r.Cached())

	require.NoError(t, os.Remove(filepath.Join(dir, "inputs", "hierarchy.csv")))
	ds, err := r.Read("hierarchy")
	require.NoError(t, err, "preloaded result is cached")
	assert.Equal(t, 1, ds.Table.Len())
}

func TestRegistryPreloadFails(t *testing.T) {
	r := newRegistry(t, writeRun(t))
	err := r.Preload(context.Background(), "gens", "hierarchy")
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrMissingRequiredFile)
}

func TestRegistryVarsAreCopied(t *testing.T) {
	vars := map[string]string{"solve_year": "2030"}
	r, err := New(t.TempDir(), WithVars(vars))
	require.NoError(t, err)
	vars["solve_year"] = "2050"

	got := r.Vars()
	assert.Equal(t, "2030", got["solve_year"])
	got["solve_year"] = "2040"
	assert.Equal(t, "2030", r.Vars()["solve_year"])
}
