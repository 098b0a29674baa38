package descriptor

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
)

//go:embed catalogue.yaml
var defaultCatalogue []byte

// DefaultCatalogue returns the embedded catalogue of ReEDS run files.
func DefaultCatalogue() []byte {
	return append([]byte(nil), defaultCatalogue...)
}

func withName(err error, name string) error {
	var sm *oerrors.SchemaMismatchError
	if errors.As(err, &sm) && sm.File == "" {
		return sm.WithFile(name)
	}
	return err
}

// LoadFile reads a catalogue from path. See Load.
func LoadFile(path string, overrides map[string]string) ([]*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: catalogue %s", oerrors.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading catalogue: %w", err)
	}
	return Load(data, overrides)
}

// Load decodes a YAML or JSON catalogue: a list of nested descriptors.
// Loading fails closed: every record is checked against the schema and
// decoded with unknown fields rejected. overrides replaces the location of
// the named descriptors.
func Load(data []byte, overrides map[string]string) ([]*Descriptor, error) {
	records, err := Records(data)
	if err != nil {
		return nil, err
	}
	if err := Vet(records); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var list []*Descriptor
	if err := dec.Decode(&list); err != nil {
		return nil, oerrors.NewSchemaMismatch("", "", err.Error())
	}

	seen := make(map[string]bool, len(overrides))
	for _, d := range list {
		if loc, ok := overrides[d.Name]; ok {
			d.Location = loc
			seen[d.Name] = true
		}
	}
	for name := range overrides {
		if !seen[name] {
			return nil, fmt.Errorf("%w: location override for unknown descriptor %q", oerrors.ErrNotRegistered, name)
		}
	}
	return list, nil
}

// Records decodes a catalogue into raw records without schema checks.
func Records(data []byte) ([]map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, oerrors.NewSchemaMismatch("", "", fmt.Sprintf("decoding catalogue: %v", err))
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, oerrors.NewSchemaMismatch("", "", fmt.Sprintf("catalogue must contain a list, got %T", doc))
	}
	records := make([]map[string]any, len(list))
	for i, e := range list {
		rec, ok := e.(map[string]any)
		if !ok {
			return nil, oerrors.NewSchemaMismatch("", "", fmt.Sprintf("catalogue entry %d is %T, not a mapping", i, e))
		}
		records[i] = rec
	}
	return records, nil
}

// Vet checks every record against the schema and reports all violations at
// once, including duplicate names.
func Vet(records []map[string]any) error {
	v, err := NewValidator()
	if err != nil {
		return err
	}
	var errs []error
	names := make(map[string]int, len(records))
	for i, rec := range records {
		if err := v.Validate(rec); err != nil {
			errs = append(errs, fmt.Errorf("%w: entry %d: %w", oerrors.ErrSchemaMismatch, i, err))
			continue
		}
		name := nameOf(rec)
		if prev, ok := names[name]; ok {
			errs = append(errs, fmt.Errorf("%w: %q at entries %d and %d", oerrors.ErrDuplicateName, name, prev, i))
			continue
		}
		names[name] = i
	}
	return utilerrors.NewAggregate(errs)
}
