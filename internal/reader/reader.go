// Package reader turns file locations into canonical datasets. Read functions
// are registered by format id; the Adapter resolves locations, dispatches to
// the function and caches raw reads.
package reader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

// Func reads the file at path with format-specific keyword options.
type Func func(path string, kwargs map[string]any) (*frame.Dataset, error)

type entry struct {
	fn   Func
	kind frame.Kind
}

// Functions maps format ids to read functions.
type Functions struct {
	mu    sync.RWMutex
	funcs map[string]entry
}

// NewFunctions returns an empty function registry.
func NewFunctions() *Functions {
	return &Functions{funcs: make(map[string]entry)}
}

// DefaultFunctions returns a registry with the built-in formats:
// csv, tsv, json, yaml, json_records and sqlite.
func DefaultFunctions() *Functions {
	f := NewFunctions()
	f.mustRegister("csv", frame.Tabular, readCSV)
	f.mustRegister("tsv", frame.Tabular, readTSV)
	f.mustRegister("json", frame.Structured, readStructured)
	f.mustRegister("yaml", frame.Structured, readStructured)
	f.mustRegister("json_records", frame.Tabular, readJSONRecords)
	f.mustRegister("sqlite", frame.Tabular, readSQLite)
	return f
}

// Register adds a read function. Ids are unique.
func (f *Functions) Register(id string, kind frame.Kind, fn Func) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.funcs[id]; ok {
		return fmt.Errorf("read function %q already registered", id)
	}
	f.funcs[id] = entry{fn: fn, kind: kind}
	return nil
}

func (f *Functions) mustRegister(id string, kind frame.Kind, fn Func) {
	if err := f.Register(id, kind, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the function and the kind of dataset it produces.
func (f *Functions) Lookup(id string) (Func, frame.Kind, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.funcs[id]
	if !ok {
		return nil, 0, oerrors.NewSchemaMismatch("reader", id,
			fmt.Sprintf("unknown read function (known: %s)", strings.Join(f.idsLocked(), ", ")))
	}
	return e.fn, e.kind, nil
}

// IDs returns the registered ids, sorted.
func (f *Functions) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.idsLocked()
}

func (f *Functions) idsLocked() []string {
	ids := make([]string, 0, len(f.funcs))
	for id := range f.funcs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var extFunctions = map[string]string{
	".csv":     "csv",
	".tsv":     "tsv",
	".json":    "json",
	".yaml":    "yaml",
	".yml":     "yaml",
	".db":      "sqlite",
	".sqlite":  "sqlite",
	".sqlite3": "sqlite",
}

// InferFunction picks a read function id from a location's extension.
// Returns "" when the extension is unknown.
func InferFunction(location string) string {
	return extFunctions[strings.ToLower(filepath.Ext(location))]
}

// decodeKwargs decodes reader kwargs into opts, rejecting unknown keys.
func decodeKwargs(kwargs map[string]any, opts any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           opts,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(kwargs); err != nil {
		return oerrors.NewSchemaMismatch("reader.kwargs", "", err.Error())
	}
	return nil
}

func readError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", oerrors.ErrRead, path, err)
}
