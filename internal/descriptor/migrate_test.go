package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
)

func TestMigrateFlatRecord(t *testing.T) {
	flat := map[string]any{
		"name":               "online_capacity",
		"fpath":              "outputs/cap.csv",
		"description":        "capacity",
		"optional":           true,
		"units":              "MW",
		"reader_function":    "csv",
		"reader_kwargs":      map[string]any{"comment": "#"},
		"column_mapping":     map[string]any{"i": "technology", "Value": "capacity"},
		"index_columns":      []any{"technology"},
		"value_columns":      []any{"capacity"},
		"aggregate_function": "sum",
	}

	got, err := Migrate(flat)
	require.NoError(t, err)

	assert.Equal(t, "outputs/cap.csv", got["location"])
	assert.Equal(t, map[string]any{"description": "capacity", "is_optional": true, "units": "MW"}, got["info"])
	assert.Equal(t, map[string]any{"function": "csv", "kwargs": map[string]any{"comment": "#"}}, got["reader"])

	proc := got["proc_spec"].(map[string]any)
	assert.Equal(t, "technology", proc["set_index"])
	assert.Equal(t, []any{"technology", "capacity"}, proc["select_columns"])
	assert.Equal(t, map[string]any{"capacity": "sum"}, proc["aggregate_on"])
	assert.Equal(t, map[string]any{"i": "technology", "Value": "capacity"}, proc["column_mapping"])

	v, err := NewValidator()
	require.NoError(t, err)
	assert.NoError(t, v.Validate(got))

	// input is not modified
	assert.Equal(t, "outputs/cap.csv", flat["fpath"])
	_, hasLocation := flat["location"]
	assert.False(t, hasLocation)
}

func TestMigrateNestedIsUnchanged(t *testing.T) {
	nested := map[string]any{
		"name":      "gens",
		"location":  "gens.csv",
		"proc_spec": map[string]any{"drop_columns": "x"},
	}
	got, err := Migrate(nested)
	require.NoError(t, err)
	assert.Equal(t, nested, got)

	again, err := Migrate(got)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestMigrateErrors(t *testing.T) {
	tests := []struct {
		name     string
		record   map[string]any
		contains string
	}{
		{
			name:     "no name",
			record:   map[string]any{"fpath": "a.csv"},
			contains: "no name",
		},
		{
			name:     "mixed layouts",
			record:   map[string]any{"name": "gens", "location": "a.csv", "fpath": "a.csv"},
			contains: "mixes nested fields",
		},
		{
			name:     "unknown field",
			record:   map[string]any{"name": "gens", "fpath": "a.csv", "colour": "red"},
			contains: "colour",
		},
		{
			name:     "multi-column index",
			record:   map[string]any{"name": "gens", "fpath": "a.csv", "index_columns": []any{"r", "t"}},
			contains: "only a single index",
		},
		{
			name:     "aggregate without values",
			record:   map[string]any{"name": "gens", "fpath": "a.csv", "aggregate_function": "sum"},
			contains: "no value_columns",
		},
		{
			name: "set_index given twice",
			record: map[string]any{
				"name": "gens", "fpath": "a.csv", "index_columns": "r", "set_index": "t",
			},
			contains: "both directly",
		},
		{
			name:     "missing fpath",
			record:   map[string]any{"name": "gens", "description": "x"},
			contains: "fpath",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Migrate(tt.record)
			require.Error(t, err)
			assert.ErrorIs(t, err, oerrors.ErrSchemaMismatch)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestMigrateCatalogue(t *testing.T) {
	in := []byte(`
- name: gens
  fpath: outputs/cap.csv
  index_columns: [r]
  value_columns: [capacity]
  aggregate_function: sum
- name: load
  location: inputs/load.csv
`)

	out, err := MigrateCatalogue(in)
	require.NoError(t, err)

	list, err := Load(out, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)

	gens := list[0]
	assert.Equal(t, "outputs/cap.csv", gens.Location)
	assert.Equal(t, "r", gens.ProcSpec.SetIndex)
	assert.Equal(t, []string{"r", "capacity"}, gens.ProcSpec.SelectColumns)
	require.Len(t, gens.ProcSpec.AggregateOn, 1)
	assert.Equal(t, "sum", gens.ProcSpec.AggregateOn[0].Function)

	assert.Equal(t, "inputs/load.csv", list[1].Location)
	assert.Nil(t, list[1].ProcSpec)
}

func TestMigrateCatalogueRejectsBadRecord(t *testing.T) {
	_, err := MigrateCatalogue([]byte("- name: gens\n  fpath: a.csv\n  location: a.csv\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrSchemaMismatch)
}
