package frame

// Dataset is the result of reading one named file: a table, a structured
// record, or an explicit absent marker for optional files that do not exist.
type Dataset struct {
	Name   string
	Table  *Table
	Record map[string]any

	absent bool
}

// FromTable wraps a table.
func FromTable(name string, t *Table) *Dataset {
	return &Dataset{Name: name, Table: t}
}

// FromRecord wraps a structured record.
func FromRecord(name string, r map[string]any) *Dataset {
	if r == nil {
		r = map[string]any{}
	}
	return &Dataset{Name: name, Record: r}
}

// Absent returns the marker for an optional file that is not present.
func Absent(name string) *Dataset {
	return &Dataset{Name: name, absent: true}
}

// IsAbsent reports whether d stands for a missing optional file. A nil
// dataset is absent.
func (d *Dataset) IsAbsent() bool {
	return d == nil || d.absent
}

// Kind reports whether the dataset is tabular or structured.
func (d *Dataset) Kind() Kind {
	if d != nil && d.Record != nil {
		return Structured
	}
	return Tabular
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	c := &Dataset{Name: d.Name, absent: d.absent, Table: d.Table.Clone()}
	if d.Record != nil {
		c.Record = DeepCopy(d.Record).(map[string]any)
	}
	return c
}
