package model

import "math"

// ScoreRow holds one subject's flattened scores keyed by column name.
type ScoreRow struct {
	SubjectID string
	Values    map[string]float64
}

// Get returns the value of column, or NaN when the subject has no such column.
func (r ScoreRow) Get(column string) float64 {
	v, ok := r.Values[column]
	if !ok {
		return math.NaN()
	}
	return v
}

// Clone returns a deep copy of r.
func (r ScoreRow) Clone() ScoreRow {
	values := make(map[string]float64, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return ScoreRow{SubjectID: r.SubjectID, Values: values}
}

// ScoreTable is an ordered set of columns over rows sorted by subject id.
type ScoreTable struct {
	Columns []string
	Rows    []ScoreRow
}

// Clone returns a deep copy of t.
func (t ScoreTable) Clone() ScoreTable {
	out := ScoreTable{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]ScoreRow, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// HasColumn reports whether name is one of t's columns.
func (t ScoreTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// WithColumns returns a copy of t with names appended to the column list
// when not already present.
func (t ScoreTable) WithColumns(names ...string) ScoreTable {
	out := t.Clone()
	for _, n := range names {
		if !out.HasColumn(n) {
			out.Columns = append(out.Columns, n)
		}
	}
	return out
}
