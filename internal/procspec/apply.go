package procspec

import (
	"slices"
	"sort"
	"strings"

	oerrors "github.com/NatLabRockies/r2x-reeds/internal/errors"
	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

// Apply runs spec against ds and returns a new dataset. ds is never modified.
// A nil or empty spec returns a copy of ds. Absent datasets pass through.
//
// Every referenced column or key must exist at the point its operation runs,
// otherwise Apply fails with a *errors.SchemaMismatchError naming the field
// and the operation.
func Apply(ds *frame.Dataset, spec *Spec) (*frame.Dataset, error) {
	if ds.IsAbsent() {
		return ds, nil
	}
	out := ds.Clone()
	if spec.IsZero() {
		return out, nil
	}
	if err := spec.Validate(ds.Kind()); err != nil {
		return nil, withFile(err, ds.Name)
	}

	var err error
	if out.Kind() == frame.Structured {
		out.Record, err = applyRecord(out.Record, spec)
	} else {
		out.Table, err = applyTable(out.Table, spec)
	}
	if err != nil {
		return nil, withFile(err, ds.Name)
	}
	return out, nil
}

func withFile(err error, file string) error {
	if sm, ok := err.(*oerrors.SchemaMismatchError); ok && sm.File == "" {
		return sm.WithFile(file)
	}
	return err
}

type tableStep func(*frame.Table, *Spec) (*frame.Table, error)

// tableSteps is the fixed execution order.
var tableSteps = []tableStep{
	renameColumns,
	dropColumns,
	filterRows,
	selectColumns,
	assignIndex,
	reshape,
	sortRows,
	distinctRows,
	replaceValues,
	fillNull,
}

func applyTable(t *frame.Table, spec *Spec) (*frame.Table, error) {
	if t == nil {
		t = frame.NewTable()
	}
	var err error
	for _, step := range tableSteps {
		if t, err = step(t, spec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func requireColumn(t *frame.Table, op, col string) (int, error) {
	j := t.ColumnIndex(col)
	if j < 0 {
		return -1, oerrors.NewSchemaMismatch(op, col, "column not found")
	}
	return j, nil
}

func renameColumns(t *frame.Table, spec *Spec) (*frame.Table, error) {
	if len(spec.ColumnMapping) == 0 {
		return t, nil
	}
	olds := make([]string, 0, len(spec.ColumnMapping))
	for o := range spec.ColumnMapping {
		olds = append(olds, o)
	}
	sort.Strings(olds)
	for _, o := range olds {
		if spec.StrictMapping && !t.HasColumn(o) {
			return nil, oerrors.NewSchemaMismatch("column_mapping", o, "column not found")
		}
	}
	cols := make([]string, len(t.Columns))
	seen := make(map[string]bool, len(cols))
	for j, c := range t.Columns {
		if n, ok := spec.ColumnMapping[c]; ok {
			c = n
		}
		if seen[c] {
			return nil, oerrors.NewSchemaMismatch("column_mapping", c, "rename produces a duplicate column")
		}
		seen[c] = true
		cols[j] = c
	}
	if n, ok := spec.ColumnMapping[t.Index]; ok {
		t.Index = n
	}
	t.Columns = cols
	return t, nil
}

func dropColumns(t *frame.Table, spec *Spec) (*frame.Table, error) {
	if len(spec.DropColumns) == 0 {
		return t, nil
	}
	drop := make(map[string]bool, len(spec.DropColumns))
	for _, c := range spec.DropColumns {
		if _, err := requireColumn(t, "drop_columns", c); err != nil {
			return nil, err
		}
		drop[c] = true
	}
	var keep []string
	for _, c := range t.Columns {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	if drop[t.Index] {
		t.Index = ""
	}
	return project(t, keep), nil
}

// project returns t restricted to cols in the given order. cols must exist.
func project(t *frame.Table, cols []string) *frame.Table {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.ColumnIndex(c)
	}
	out := &frame.Table{Columns: append([]string(nil), cols...), Rows: make([][]any, len(t.Rows))}
	for r, row := range t.Rows {
		nr := make([]any, len(idx))
		for i, j := range idx {
			nr[i] = row[j]
		}
		out.Rows[r] = nr
	}
	if out.HasColumn(t.Index) {
		out.Index = t.Index
	}
	return out
}

func filterRows(t *frame.Table, spec *Spec) (*frame.Table, error) {
	if len(spec.FilterBy) == 0 {
		return t, nil
	}
	for _, c := range spec.FilterBy {
		if _, err := requireColumn(t, "filter_by", c.Field); err != nil {
			return nil, err
		}
	}
	rows := t.Rows[:0:0]
	for _, row := range t.Rows {
		ok := spec.FilterBy.matchAll(func(field string) any {
			return row[t.ColumnIndex(field)]
		})
		if ok {
			rows = append(rows, row)
		}
	}
	t.Rows = rows
	return t, nil
}

func selectColumns(t *frame.Table, spec *Spec) (*frame.Table, error) {
	if len(spec.SelectColumns) == 0 {
		return t, nil
	}
	for _, c := range spec.SelectColumns {
		if _, err := requireColumn(t, "select_columns", c); err != nil {
			return nil, err
		}
	}
	return project(t, spec.SelectColumns), nil
}

func assignIndex(t *frame.Table, spec *Spec) (*frame.Table, error) {
	if spec.ResetIndex {
		t.Index = ""
	}
	if spec.SetIndex != "" {
		if _, err := requireColumn(t, "set_index", spec.SetIndex); err != nil {
			return nil, err
		}
		t.Index = spec.SetIndex
	}
	if spec.RenameIndex != "" {
		if t.Index == "" {
			return nil, oerrors.NewSchemaMismatch("rename_index", "", "table has no index")
		}
		if spec.RenameIndex != t.Index && t.HasColumn(spec.RenameIndex) {
			return nil, oerrors.NewSchemaMismatch("rename_index", spec.RenameIndex, "rename produces a duplicate column")
		}
		t.Columns[t.ColumnIndex(t.Index)] = spec.RenameIndex
		t.Index = spec.RenameIndex
	}
	return t, nil
}

func reshape(t *frame.Table, spec *Spec) (*frame.Table, error) {
	switch {
	case spec.PivotOn != nil:
		return pivot(t, spec.PivotOn)
	case spec.Unpivot != nil:
		return unpivot(t, spec.Unpivot)
	case len(spec.AggregateOn) > 0:
		return groupBy(t, spec.GroupBy, spec.AggregateOn)
	}
	return t, nil
}

// groupKey renders the values at cols as a map key. Missing is distinct from "".
func groupKey(row []any, cols []int) string {
	var b strings.Builder
	for _, j := range cols {
		if row[j] == nil {
			b.WriteString("\x01")
		} else {
			b.WriteString(frame.String(row[j]))
		}
		b.WriteByte(0)
	}
	return b.String()
}

type group struct {
	first []any
	rows  [][]any
}

// partition groups rows by key columns, keeping first-appearance order.
func partition(rows [][]any, keys []int) []*group {
	var order []*group
	byKey := make(map[string]*group)
	for _, row := range rows {
		k := groupKey(row, keys)
		g, ok := byKey[k]
		if !ok {
			g = &group{first: row}
			byKey[k] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, row)
	}
	return order
}

func groupBy(t *frame.Table, by []string, aggs Aggregations) (*frame.Table, error) {
	keys := by
	if len(keys) == 0 && t.Index != "" {
		keys = []string{t.Index}
	}
	keyIdx := make([]int, len(keys))
	for i, k := range keys {
		j, err := requireColumn(t, "group_by", k)
		if err != nil {
			return nil, err
		}
		keyIdx[i] = j
	}
	aggIdx := make([]int, len(aggs))
	for i, a := range aggs {
		j, err := requireColumn(t, "aggregate_on", a.Column)
		if err != nil {
			return nil, err
		}
		aggIdx[i] = j
	}

	cols := append([]string(nil), keys...)
	for _, a := range aggs {
		cols = append(cols, a.Column)
	}
	out := frame.NewTable(cols...)

	// with no keys every row lands in one group
	for _, g := range partition(t.Rows, keyIdx) {
		row := make([]any, 0, len(cols))
		for _, j := range keyIdx {
			row = append(row, g.first[j])
		}
		for i, a := range aggs {
			vals := make([]any, len(g.rows))
			for r, gr := range g.rows {
				vals[r] = gr[aggIdx[i]]
			}
			v, err := aggregate(a.Function, vals)
			if err != nil {
				return nil, oerrors.NewSchemaMismatch("aggregate_on", a.Column, err.Error())
			}
			row = append(row, v)
		}
		out.Rows = append(out.Rows, row)
	}
	if len(keys) == 1 {
		out.Index = keys[0]
	}
	return out, nil
}

func pivot(t *frame.Table, p *Pivot) (*frame.Table, error) {
	index := p.Index
	if index == "" {
		index = t.Index
	}
	fn := p.Aggregate
	if fn == "" {
		fn = "sum"
	}
	var ii int
	var err error
	if index != "" {
		if ii, err = requireColumn(t, "pivot_on", index); err != nil {
			return nil, err
		}
	}
	oi, err := requireColumn(t, "pivot_on", p.On)
	if err != nil {
		return nil, err
	}
	vi, err := requireColumn(t, "pivot_on", p.Values)
	if err != nil {
		return nil, err
	}

	var wide []string
	pos := make(map[string]int)
	for _, row := range t.Rows {
		name := frame.String(row[oi])
		if row[oi] == nil {
			continue
		}
		if _, ok := pos[name]; !ok {
			pos[name] = len(wide)
			wide = append(wide, name)
		}
	}

	var keyIdx []int
	var cols []string
	if index != "" {
		keyIdx = []int{ii}
		cols = append(cols, index)
	}
	cols = append(cols, wide...)
	out := frame.NewTable(cols...)
	if index != "" && !slices.Contains(wide, index) {
		out.Index = index
	}

	groups := partition(t.Rows, keyIdx)
	for _, g := range groups {
		cells := make([][]any, len(wide))
		for _, row := range g.rows {
			if row[oi] == nil {
				continue
			}
			k := pos[frame.String(row[oi])]
			cells[k] = append(cells[k], row[vi])
		}
		nr := make([]any, 0, len(cols))
		if index != "" {
			nr = append(nr, g.first[ii])
		}
		for k := range wide {
			v, err := aggregate(fn, cells[k])
			if err != nil {
				return nil, oerrors.NewSchemaMismatch("pivot_on", p.Values, err.Error())
			}
			nr = append(nr, v)
		}
		out.Rows = append(out.Rows, nr)
	}
	if len(wide) > 0 && len(out.Columns) != len(uniq(out.Columns)) {
		return nil, oerrors.NewSchemaMismatch("pivot_on", index, "pivoted column collides with the index")
	}
	return out, nil
}

func unpivot(t *frame.Table, u *Unpivot) (*frame.Table, error) {
	index := []string(u.Index)
	if len(index) == 0 && t.Index != "" {
		index = []string{t.Index}
	}
	for _, c := range index {
		if _, err := requireColumn(t, "unpivot", c); err != nil {
			return nil, err
		}
	}
	on := []string(u.On)
	if len(on) == 0 {
		for _, c := range t.Columns {
			if !slices.Contains(index, c) {
				on = append(on, c)
			}
		}
	}
	for _, c := range on {
		if _, err := requireColumn(t, "unpivot", c); err != nil {
			return nil, err
		}
	}
	varName, valName := u.VariableName, u.ValueName
	if varName == "" {
		varName = "variable"
	}
	if valName == "" {
		valName = "value"
	}
	cols := append(append([]string(nil), index...), varName, valName)
	if len(uniq(cols)) != len(cols) {
		return nil, oerrors.NewSchemaMismatch("unpivot", varName, "output column collides with an index column")
	}
	out := frame.NewTable(cols...)
	// column-major: all rows of the first melted column, then the next
	for _, c := range on {
		j := t.ColumnIndex(c)
		for _, row := range t.Rows {
			nr := make([]any, 0, len(cols))
			for _, ic := range index {
				nr = append(nr, row[t.ColumnIndex(ic)])
			}
			nr = append(nr, c, row[j])
			out.Rows = append(out.Rows, nr)
		}
	}
	if slices.Contains(index, t.Index) {
		out.Index = t.Index
	}
	return out, nil
}

func sortRows(t *frame.Table, spec *Spec) (*frame.Table, error) {
	if len(spec.SortBy) == 0 {
		return t, nil
	}
	idx := make([]int, len(spec.SortBy))
	for i, k := range spec.SortBy {
		j, err := requireColumn(t, "sort_by", k.Column)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	sort.SliceStable(t.Rows, func(a, b int) bool {
		ra, rb := t.Rows[a], t.Rows[b]
		for i, k := range spec.SortBy {
			va, vb := ra[idx[i]], rb[idx[i]]
			switch {
			case va == nil && vb == nil:
				continue
			case va == nil:
				return false
			case vb == nil:
				return true
			}
			c := frame.Compare(va, vb)
			if c == 0 {
				continue
			}
			if k.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return t, nil
}

func distinctRows(t *frame.Table, spec *Spec) (*frame.Table, error) {
	if len(spec.DistinctOn) == 0 {
		return t, nil
	}
	idx := make([]int, len(spec.DistinctOn))
	for i, c := range spec.DistinctOn {
		j, err := requireColumn(t, "distinct_on", c)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	seen := make(map[string]bool)
	rows := t.Rows[:0:0]
	for _, row := range t.Rows {
		k := groupKey(row, idx)
		if seen[k] {
			continue
		}
		seen[k] = true
		rows = append(rows, row)
	}
	t.Rows = rows
	return t, nil
}

func substitute(v any, pairs []Substitution) any {
	if v == nil {
		return nil
	}
	for _, p := range pairs {
		if p.Old != nil && frame.IsNumeric(v) == frame.IsNumeric(p.Old) && frame.Equal(v, p.Old) {
			return p.New
		}
	}
	return v
}

func replaceValues(t *frame.Table, spec *Spec) (*frame.Table, error) {
	r := spec.ReplaceValues
	if r == nil {
		return t, nil
	}
	for _, row := range t.Rows {
		for j := range row {
			row[j] = substitute(row[j], r.Global)
		}
	}
	for _, cs := range r.Columns {
		j, err := requireColumn(t, "replace_values", cs.Column)
		if err != nil {
			return nil, err
		}
		for _, row := range t.Rows {
			row[j] = substitute(row[j], cs.Pairs)
		}
	}
	return t, nil
}

func fillNull(t *frame.Table, spec *Spec) (*frame.Table, error) {
	f := spec.FillNull
	if f == nil {
		return t, nil
	}
	for _, cf := range f.Columns {
		j, err := requireColumn(t, "fill_null", cf.Column)
		if err != nil {
			return nil, err
		}
		for _, row := range t.Rows {
			if row[j] == nil {
				row[j] = cf.Value
			}
		}
	}
	if f.HasGlobal {
		for _, row := range t.Rows {
			for j := range row {
				if row[j] == nil {
					row[j] = f.Global
				}
			}
		}
	}
	return t, nil
}

func uniq(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, e := range list {
		m[e] = struct{}{}
	}
	return m
}
