package procspec

import (
	"fmt"
	"slices"
	"strings"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

var tabularOnly = map[string]bool{
	"column_mapping": true,
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
}

var structuredOnly = map[string]bool{
	"key_mapping": true,
}

// Validate checks s against the kind of source it will be applied to. It
// catches every error that can be detected without data: operations invalid
// for the kind, conflicting shape transforms, unknown functions or operators
// and inconsistent aggregation settings.
func (s *Spec) Validate(kind frame.Kind) error {
	if s == nil {
		return nil
	}

	for _, op := range s.present() {
		if kind == frame.Structured && tabularOnly[op] {
			return oerrors.NewSchemaMismatch(op, "", "operation is not valid for structured sources")
		}
		if kind == frame.Tabular && structuredOnly[op] {
			return oerrors.NewSchemaMismatch(op, "", "operation is not valid for tabular sources")
		}
	}

	var shapes []string
	if s.PivotOn != nil {
		shapes = append(shapes, "pivot_on")
	}
	if s.Unpivot != nil {
		shapes = append(shapes, "unpivot")
	}
	if len(s.GroupBy) > 0 || len(s.AggregateOn) > 0 {
		shapes = append(shapes, "group_by")
	}
	if len(shapes) > 1 {
		return oerrors.NewSchemaMismatch(shapes[1], "",
			fmt.Sprintf("at most one shape transform is allowed, got %s", strings.Join(shapes, ", ")))
	}

	if len(s.GroupBy) > 0 && len(s.AggregateOn) == 0 {
		return oerrors.NewSchemaMismatch("group_by", "", "group_by requires aggregate_on")
	}
	for _, a := range s.AggregateOn {
		if _, ok := aggregators[a.Function]; !ok {
			return oerrors.NewSchemaMismatch("aggregate_on", a.Column,
				fmt.Sprintf("unknown aggregation function %q", a.Function))
		}
		if len(s.SelectColumns) > 0 && !slices.Contains(s.SelectColumns, a.Column) {
			return oerrors.NewSchemaMismatch("aggregate_on", a.Column, "column is not in select_columns")
		}
	}
	if p := s.PivotOn; p != nil {
		if p.On == "" || p.Values == "" {
			return oerrors.NewSchemaMismatch("pivot_on", "", "pivot_on requires on and values")
		}
		if p.Aggregate != "" {
			if _, ok := aggregators[p.Aggregate]; !ok {
				return oerrors.NewSchemaMismatch("pivot_on", p.Values,
					fmt.Sprintf("unknown aggregation function %q", p.Aggregate))
			}
		}
	}

	for _, f := range s.FilterBy {
		if !validOps[f.Op] {
			return oerrors.NewSchemaMismatch("filter_by", f.Field, fmt.Sprintf("unknown operator %q", f.Op))
		}
		if f.Op == OpIn || f.Op == OpNotIn {
			if _, ok := f.Value.([]any); !ok {
				return oerrors.NewSchemaMismatch("filter_by", f.Field, fmt.Sprintf("operator %q requires a list", f.Op))
			}
		}
	}

	if s.ReplaceValues != nil && len(s.ReplaceValues.Global) > 0 && len(s.ReplaceValues.Columns) > 0 {
		return oerrors.NewSchemaMismatch("replace_values", "", "mixes global and per-column substitutions")
	}
	return nil
}
