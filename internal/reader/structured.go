package reader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"sigs.k8s.io/yaml"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

// decodeDocument reads a JSON or YAML file into generic values. Integral
// numbers become int64, others float64.
func decodeDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return convertNumbers(v), nil
}

func convertNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = convertNumbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = convertNumbers(e)
		}
		return x
	default:
		return frame.Normalize(v)
	}
}

type structuredOptions struct {
	// Key selects a nested mapping as the record root.
	Key string `mapstructure:"key"`
}

func readStructured(path string, kwargs map[string]any) (*frame.Dataset, error) {
	var opts structuredOptions
	if err := decodeKwargs(kwargs, &opts); err != nil {
		return nil, err
	}
	doc, err := decodeDocument(path)
	if err != nil {
		return nil, readError(path, err)
	}
	if opts.Key != "" {
		m, ok := doc.(map[string]any)
		if !ok {
			return nil, readError(path, fmt.Errorf("key %q requires a mapping document", opts.Key))
		}
		if doc, ok = m[opts.Key]; !ok {
			return nil, readError(path, fmt.Errorf("key %q not found", opts.Key))
		}
	}
	switch m := doc.(type) {
	case map[string]any:
		return frame.FromRecord("", m), nil
	case nil:
		return frame.FromRecord("", nil), nil
	default:
		return nil, readError(path, fmt.Errorf("expected a mapping document, got %T (use json_records for lists)", doc))
	}
}

type recordsOptions struct {
	Columns []string `mapstructure:"columns"`
}

func readJSONRecords(path string, kwargs map[string]any) (*frame.Dataset, error) {
	var opts recordsOptions
	if err := decodeKwargs(kwargs, &opts); err != nil {
		return nil, err
	}
	doc, err := decodeDocument(path)
	if err != nil {
		return nil, readError(path, err)
	}
	list, ok := doc.([]any)
	if !ok && doc != nil {
		return nil, readError(path, fmt.Errorf("expected a list of records, got %T", doc))
	}

	records := make([]map[string]any, 0, len(list))
	keys := make(map[string]bool)
	for i, e := range list {
		rec, ok := e.(map[string]any)
		if !ok {
			return nil, readError(path, fmt.Errorf("record %d is %T, not a mapping", i, e))
		}
		for k := range rec {
			keys[k] = true
		}
		records = append(records, rec)
	}

	columns := opts.Columns
	if len(columns) == 0 {
		for k := range keys {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}
	return frame.FromTable("", frame.FromRecords(columns, records)), nil
}
