// Package procspec implements the declarative per-file transformation recipe
// and its executor.
//
// A Spec is a fixed set of optional operations. Regardless of the order keys
// appear in a catalogue, Apply runs them in this order:
//
//	rename, drop, filter, select, index, shape, sort, distinct, replace, fill
//
// where shape is at most one of pivot_on, unpivot or group_by/aggregate_on.
package procspec

import (
	"fmt"
	"strings"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

// Op is a filter comparison operator.
type Op string

// Filter operators.
const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpGt       Op = "gt"
	OpGe       Op = "ge"
	OpLt       Op = "lt"
	OpLe       Op = "le"
	OpIn       Op = "in"
	OpNotIn    Op = "not_in"
	OpContains Op = "contains"
)

var validOps = map[Op]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGe: true, OpLt: true,
	OpLe: true, OpIn: true, OpNotIn: true, OpContains: true,
}

// Names is a list of column names. In YAML it may be written as a single
// string or a sequence.
type Names []string

// Constraint is one field/operator/value predicate. Constraints in a Filters
// list are AND-ed.
type Constraint struct {
	Field string
	Op    Op
	Value any
}

// Filters is an ordered list of constraints.
type Filters []Constraint

// ColumnAgg pairs a column with an aggregation function name.
type ColumnAgg struct {
	Column   string
	Function string
}

// Aggregations is an ordered column → function mapping.
type Aggregations []ColumnAgg

// SortKey is one sort column with direction.
type SortKey struct {
	Column     string
	Descending bool
}

// SortKeys is an ordered list of sort keys; the first is the primary key.
type SortKeys []SortKey

// Pivot reshapes long to wide: one output column per distinct value of On.
type Pivot struct {
	Index     string `yaml:"index"`
	On        string `yaml:"on"`
	Values    string `yaml:"values"`
	Aggregate string `yaml:"aggregate"`
}

// Unpivot reshapes wide to long.
type Unpivot struct {
	Index        Names  `yaml:"index"`
	On           Names  `yaml:"on"`
	VariableName string `yaml:"variable_name"`
	ValueName    string `yaml:"value_name"`
}

// Substitution is one literal replacement.
type Substitution struct {
	Old any
	New any
}

// ColumnSubstitutions scopes replacements to one column.
type ColumnSubstitutions struct {
	Column string
	Pairs  []Substitution
}

// Replace holds either global or per-column literal substitutions.
type Replace struct {
	Global  []Substitution
	Columns []ColumnSubstitutions
}

// ColumnFill is a per-column missing-value default.
type ColumnFill struct {
	Column string
	Value  any
}

// Fill holds either a global default or per-column defaults.
type Fill struct {
	Global    any
	HasGlobal bool
	Columns   []ColumnFill
}

// Spec is the processing recipe for one file. The zero value is a no-op.
type Spec struct {
	ColumnMapping map[string]string `yaml:"column_mapping"`
	KeyMapping    map[string]string `yaml:"key_mapping"`
	StrictMapping bool              `yaml:"strict_mapping"`
	DropColumns   Names             `yaml:"drop_columns"`
	FilterBy      Filters           `yaml:"filter_by"`
	SelectColumns []string          `yaml:"select_columns"`
	SetIndex      string            `yaml:"set_index"`
	ResetIndex    bool              `yaml:"reset_index"`
	RenameIndex   string            `yaml:"rename_index"`
	PivotOn       *Pivot            `yaml:"pivot_on"`
	Unpivot       *Unpivot          `yaml:"unpivot"`
	GroupBy       Names             `yaml:"group_by"`
	AggregateOn   Aggregations      `yaml:"aggregate_on"`
	SortBy        SortKeys          `yaml:"sort_by"`
	DistinctOn    Names             `yaml:"distinct_on"`
	ReplaceValues *Replace          `yaml:"replace_values"`
	FillNull      *Fill             `yaml:"fill_null"`
}

// Clone returns a deep copy of s. Literal values in filters, replacements
// and fills are copied with frame.DeepCopy.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	c := *s
	c.ColumnMapping = cloneStrings(s.ColumnMapping)
	c.KeyMapping = cloneStrings(s.KeyMapping)
	c.DropColumns = cloneSlice(s.DropColumns)
	c.SelectColumns = cloneSlice(s.SelectColumns)
	c.GroupBy = cloneSlice(s.GroupBy)
	c.AggregateOn = cloneSlice(s.AggregateOn)
	c.SortBy = cloneSlice(s.SortBy)
	c.DistinctOn = cloneSlice(s.DistinctOn)
	if s.FilterBy != nil {
		c.FilterBy = make(Filters, len(s.FilterBy))
		for i, f := range s.FilterBy {
			f.Value = frame.DeepCopy(f.Value)
			c.FilterBy[i] = f
		}
	}
	if s.PivotOn != nil {
		p := *s.PivotOn
		c.PivotOn = &p
	}
	if s.Unpivot != nil {
		u := *s.Unpivot
		u.Index = cloneSlice(u.Index)
		u.On = cloneSlice(u.On)
		c.Unpivot = &u
	}
	if s.ReplaceValues != nil {
		r := Replace{Global: cloneSubstitutions(s.ReplaceValues.Global)}
		if s.ReplaceValues.Columns != nil {
			r.Columns = make([]ColumnSubstitutions, len(s.ReplaceValues.Columns))
			for i, cs := range s.ReplaceValues.Columns {
				r.Columns[i] = ColumnSubstitutions{Column: cs.Column, Pairs: cloneSubstitutions(cs.Pairs)}
			}
		}
		c.ReplaceValues = &r
	}
	if s.FillNull != nil {
		f := Fill{Global: frame.DeepCopy(s.FillNull.Global), HasGlobal: s.FillNull.HasGlobal}
		if s.FillNull.Columns != nil {
			f.Columns = make([]ColumnFill, len(s.FillNull.Columns))
			for i, cf := range s.FillNull.Columns {
				f.Columns[i] = ColumnFill{Column: cf.Column, Value: frame.DeepCopy(cf.Value)}
			}
		}
		c.FillNull = &f
	}
	return &c
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSlice[S ~[]E, E any](s S) S {
	if s == nil {
		return nil
	}
	return append(S(nil), s...)
}

func cloneSubstitutions(subs []Substitution) []Substitution {
	if subs == nil {
		return nil
	}
	out := make([]Substitution, len(subs))
	for i, sub := range subs {
		out[i] = Substitution{Old: frame.DeepCopy(sub.Old), New: frame.DeepCopy(sub.New)}
	}
	return out
}

// IsZero reports whether the spec has no operations.
func (s *Spec) IsZero() bool {
	return s == nil || len(s.present()) == 0
}

// present lists the operation keys set on s, in execution order.
func (s *Spec) present() []string {
	var ops []string
	add := func(ok bool, name string) {
		if ok {
			ops = append(ops, name)
		}
	}
	add(len(s.ColumnMapping) > 0, "column_mapping")
	add(len(s.KeyMapping) > 0, "key_mapping")
	add(len(s.DropColumns) > 0, "drop_columns")
	add(len(s.FilterBy) > 0, "filter_by")
	add(len(s.SelectColumns) > 0, "select_columns")
	add(s.SetIndex != "", "set_index")
	add(s.ResetIndex, "reset_index")
	add(s.RenameIndex != "", "rename_index")
	add(s.PivotOn != nil, "pivot_on")
	add(s.Unpivot != nil, "unpivot")
	add(len(s.GroupBy) > 0, "group_by")
	add(len(s.AggregateOn) > 0, "aggregate_on")
	add(len(s.SortBy) > 0, "sort_by")
	add(len(s.DistinctOn) > 0, "distinct_on")
	add(s.ReplaceValues != nil, "replace_values")
	add(s.FillNull != nil, "fill_null")
	return ops
}

// Operations lists the operation keys set on s, in execution order.
func (s *Spec) Operations() []string {
	if s == nil {
		return nil
	}
	return s.present()
}

// Resolve returns a copy of s with {placeholder} tokens in filter values
// substituted from vars. A value that was entirely a placeholder is re-typed,
// so "{solve_year}" compares as a number.
func (s *Spec) Resolve(vars map[string]string) *Spec {
	if s == nil {
		return nil
	}
	c := *s
	if len(s.FilterBy) == 0 || len(vars) == 0 {
		return &c
	}
	c.FilterBy = make(Filters, len(s.FilterBy))
	for i, f := range s.FilterBy {
		f.Value = resolveValue(f.Value, vars)
		c.FilterBy[i] = f
	}
	return &c
}

func resolveValue(v any, vars map[string]string) any {
	switch x := v.(type) {
	case string:
		if !strings.Contains(x, "{") {
			return x
		}
		out := x
		for k, val := range vars {
			out = strings.ReplaceAll(out, "{"+k+"}", val)
		}
		if out == x {
			return x
		}
		return frame.Infer(out)
	case []any:
		res := make([]any, len(x))
		for i, e := range x {
			res[i] = resolveValue(e, vars)
		}
		return res
	default:
		return v
	}
}

// String renders a compact summary for log lines.
func (s *Spec) String() string {
	if s.IsZero() {
		return "{}"
	}
	return fmt.Sprintf("{%s}", strings.Join(s.present(), ","))
}
