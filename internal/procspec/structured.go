package procspec

import (
	"sort"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
)

// applyRecord runs the structured subset of spec: key rename, drop, filter,
// replace and fill. rec is owned by the caller and modified in place.
func applyRecord(rec map[string]any, spec *Spec) (map[string]any, error) {
	if len(spec.KeyMapping) > 0 {
		olds := make([]string, 0, len(spec.KeyMapping))
		for o := range spec.KeyMapping {
			olds = append(olds, o)
		}
		sort.Strings(olds)
		renamed := make(map[string]any, len(rec))
		for k, v := range rec {
			if _, ok := spec.KeyMapping[k]; !ok {
				renamed[k] = v
			}
		}
		for _, o := range olds {
			v, ok := rec[o]
			if !ok {
				if spec.StrictMapping {
					return nil, oerrors.NewSchemaMismatch("key_mapping", o, "key not found")
				}
				continue
			}
			n := spec.KeyMapping[o]
			if _, dup := renamed[n]; dup {
				return nil, oerrors.NewSchemaMismatch("key_mapping", n, "rename produces a duplicate key")
			}
			renamed[n] = v
		}
		rec = renamed
	}

	for _, k := range spec.DropColumns {
		if _, ok := rec[k]; !ok {
			return nil, oerrors.NewSchemaMismatch("drop_columns", k, "key not found")
		}
		delete(rec, k)
	}

	if len(spec.FilterBy) > 0 {
		if err := filterRecord(rec, spec.FilterBy); err != nil {
			return nil, err
		}
	}

	if r := spec.ReplaceValues; r != nil {
		if len(r.Global) > 0 {
			for k, v := range rec {
				rec[k] = mapNested(v, func(x any) any { return substitute(x, r.Global) })
			}
		}
		for _, cs := range r.Columns {
			if err := updateField(rec, "replace_values", cs.Column, func(x any) any {
				return substitute(x, cs.Pairs)
			}); err != nil {
				return nil, err
			}
		}
	}

	if f := spec.FillNull; f != nil {
		for _, cf := range f.Columns {
			if err := updateField(rec, "fill_null", cf.Column, func(x any) any {
				if x == nil {
					return cf.Value
				}
				return x
			}); err != nil {
				return nil, err
			}
		}
		if f.HasGlobal {
			for k, v := range rec {
				rec[k] = mapNested(v, func(x any) any {
					if x == nil {
						return f.Global
					}
					return x
				})
			}
		}
	}
	return rec, nil
}

// entryView exposes a top-level entry to filter constraints: mappings are seen
// with an added "key" field, scalars as {key, value}.
func entryView(key string, v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		view := make(map[string]any, len(m)+1)
		for k, e := range m {
			view[k] = e
		}
		if _, ok := view["key"]; !ok {
			view["key"] = key
		}
		return view
	}
	return map[string]any{"key": key, "value": v}
}

func filterRecord(rec map[string]any, filters Filters) error {
	if len(rec) == 0 {
		return nil
	}
	views := make(map[string]map[string]any, len(rec))
	for k, v := range rec {
		views[k] = entryView(k, v)
	}
	for _, c := range filters {
		found := false
		for _, view := range views {
			if _, ok := view[c.Field]; ok {
				found = true
				break
			}
		}
		if !found {
			return oerrors.NewSchemaMismatch("filter_by", c.Field, "no entry has this field")
		}
	}
	for k, view := range views {
		if !filters.matchAll(func(field string) any { return view[field] }) {
			delete(rec, k)
		}
	}
	return nil
}

// mapNested applies fn to a scalar, or to the values of a mapping or list
// one level down.
func mapNested(v any, fn func(any) any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			if isContainer(e) {
				continue
			}
			x[k] = fn(e)
		}
		return x
	case []any:
		for i, e := range x {
			if isContainer(e) {
				continue
			}
			x[i] = fn(e)
		}
		return x
	default:
		return fn(v)
	}
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// updateField applies fn to the top-level scalar named field and to field
// inside every mapping entry. The field must appear somewhere.
func updateField(rec map[string]any, op, field string, fn func(any) any) error {
	found := false
	if v, ok := rec[field]; ok && !isContainer(v) {
		rec[field] = fn(v)
		found = true
	}
	for _, v := range rec {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if e, ok := m[field]; ok && !isContainer(e) {
			m[field] = fn(e)
			found = true
		}
	}
	if !found {
		return oerrors.NewSchemaMismatch(op, field, "key not found")
	}
	return nil
}
