package descriptor

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

var nestedKeys = map[string]bool{
	"location":  true,
	"info":      true,
	"reader":    true,
	"proc_spec": true,
}

// flat info fields and their nested names
var flatInfo = map[string]string{
	"description":   "description",
	"is_input":      "is_input",
	"optional":      "is_optional",
	"is_timeseries": "is_timeseries",
	"units":         "units",
}

var flatStructural = map[string]bool{
	"fpath":              true,
	"reader_function":    true,
	"reader_kwargs":      true,
	"index_columns":      true,
	"value_columns":      true,
	"aggregate_function": true,
}

// processing keys that move unchanged into proc_spec
var procKeys = map[string]bool{
	"column_mapping": true,
	"key_mapping":    true,
	"strict_mapping": true,
	"drop_columns":   true,
	"filter_by":      true,
	"select_columns": true,
	"set_index":      true,
	"reset_index":    true,
	"rename_index":   true,
	"pivot_on":       true,
	"unpivot":        true,
	"group_by":       true,
	"aggregate_on":   true,
	"sort_by":        true,
	"distinct_on":    true,
	"replace_values": true,
	"fill_null":      true,
}

func isFlatKey(k string) bool {
	_, info := flatInfo[k]
	return info || flatStructural[k] || procKeys[k]
}

func migrateError(name, format string, args ...any) error {
	return &oerrors.SchemaMismatchError{File: name, Operation: "migrate", Message: fmt.Sprintf(format, args...)}
}

// Migrate rewrites a flat legacy descriptor record into the nested schema.
//
//	fpath                      -> location
//	description, is_input, optional, is_timeseries, units -> info
//	reader_function/kwargs     -> reader.function/kwargs
//	index_columns: [c]         -> proc_spec.set_index: c
//	value_columns: [...]       -> proc_spec.select_columns: [c, ...]
//	aggregate_function: f      -> proc_spec.aggregate_on: {v: f} for every value column
//
// A record that is already nested is returned unchanged. A record mixing both
// layouts is rejected.
func Migrate(record map[string]any) (map[string]any, error) {
	name, _ := record["name"].(string)
	if name == "" {
		return nil, migrateError("", "record has no name")
	}

	var flat, nested, unknown []string
	for k := range record {
		switch {
		case k == "name":
		case nestedKeys[k]:
			nested = append(nested, k)
		case isFlatKey(k):
			flat = append(flat, k)
		default:
			unknown = append(unknown, k)
		}
	}
	sort.Strings(flat)
	sort.Strings(nested)
	sort.Strings(unknown)

	if len(unknown) > 0 {
		return nil, migrateError(name, "unknown field(s) %s", strings.Join(unknown, ", "))
	}
	if len(flat) > 0 && len(nested) > 0 {
		return nil, migrateError(name, "mixes nested fields (%s) with flat fields (%s)",
			strings.Join(nested, ", "), strings.Join(flat, ", "))
	}
	if len(flat) == 0 {
		return frame.DeepCopy(record).(map[string]any), nil
	}

	out := map[string]any{"name": name}
	loc, ok := record["fpath"].(string)
	if !ok || loc == "" {
		return nil, migrateError(name, "flat record needs a string fpath")
	}
	out["location"] = loc

	info := map[string]any{}
	for old, n := range flatInfo {
		if v, ok := record[old]; ok {
			info[n] = v
		}
	}
	if len(info) > 0 {
		out["info"] = info
	}

	rd := map[string]any{}
	if v, ok := record["reader_function"]; ok {
		rd["function"] = v
	}
	if v, ok := record["reader_kwargs"]; ok {
		rd["kwargs"] = frame.DeepCopy(v)
	}
	if len(rd) > 0 {
		out["reader"] = rd
	}

	proc := map[string]any{}
	for k := range procKeys {
		if v, ok := record[k]; ok {
			proc[k] = frame.DeepCopy(v)
		}
	}
	set := func(key string, v any) error {
		if _, dup := proc[key]; dup {
			return migrateError(name, "%s is given both directly and through a legacy field", key)
		}
		proc[key] = v
		return nil
	}

	index, err := indexColumn(name, record["index_columns"])
	if err != nil {
		return nil, err
	}
	if index != "" {
		if err := set("set_index", index); err != nil {
			return nil, err
		}
	}

	values, err := stringList(name, "value_columns", record["value_columns"])
	if err != nil {
		return nil, err
	}
	if len(values) > 0 {
		sel := make([]any, 0, len(values)+1)
		if index != "" && !slices.Contains(values, index) {
			sel = append(sel, index)
		}
		for _, v := range values {
			sel = append(sel, v)
		}
		if err := set("select_columns", sel); err != nil {
			return nil, err
		}
	}

	if fn, ok := record["aggregate_function"]; ok {
		s, ok := fn.(string)
		if !ok || s == "" {
			return nil, migrateError(name, "aggregate_function must be a string")
		}
		if len(values) == 0 {
			return nil, migrateError(name, "aggregate_function %q has no value_columns to apply to", s)
		}
		agg := make(map[string]any, len(values))
		for _, v := range values {
			agg[v] = s
		}
		if err := set("aggregate_on", agg); err != nil {
			return nil, err
		}
	}

	if len(proc) > 0 {
		out["proc_spec"] = proc
	}
	return out, nil
}

func indexColumn(name string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	}
	list, err := stringList(name, "index_columns", v)
	if err != nil {
		return "", err
	}
	switch len(list) {
	case 0:
		return "", nil
	case 1:
		return list[0], nil
	default:
		return "", migrateError(name, "index_columns has %d columns, only a single index is supported", len(list))
	}
}

func stringList(name, field string, v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{x}, nil
	case []string:
		return x, nil
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, migrateError(name, "%s[%d] is %T, not a string", field, i, e)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, migrateError(name, "%s must be a list of strings", field)
	}
}

// orderedRecord fixes the key order of migrated output.
type orderedRecord struct {
	Name     string         `yaml:"name"`
	Location string         `yaml:"location"`
	Info     map[string]any `yaml:"info,omitempty"`
	Reader   map[string]any `yaml:"reader,omitempty"`
	ProcSpec map[string]any `yaml:"proc_spec,omitempty"`
}

// MigrateCatalogue migrates every record of a catalogue and renders the
// result as YAML.
func MigrateCatalogue(data []byte) ([]byte, error) {
	records, err := Records(data)
	if err != nil {
		return nil, err
	}
	out := make([]orderedRecord, 0, len(records))
	for _, rec := range records {
		m, err := Migrate(rec)
		if err != nil {
			return nil, err
		}
		r := orderedRecord{Name: m["name"].(string)}
		r.Location, _ = m["location"].(string)
		r.Info, _ = m["info"].(map[string]any)
		r.Reader, _ = m["reader"].(map[string]any)
		r.ProcSpec, _ = m["proc_spec"].(map[string]any)
		out = append(out, r)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encoding migrated catalogue: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
