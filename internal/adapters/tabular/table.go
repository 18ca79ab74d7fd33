// Package tabular reads and writes the delimited and spreadsheet files that
// enter and leave the scoring pipeline.
package tabular

import (
	"fmt"
	"math"
	"strconv"

	"github.com/okian/axcpt/internal/domain/model"
)

// Table is a header plus string rows, each row as wide as the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// MustIndex returns the position of column name or an ErrMissingColumn error.
func (t *Table) MustIndex(name string) (int, error) {
	i := t.Index(name)
	if i < 0 {
		return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return i, nil
}

// Column returns every value of column name.
func (t *Table) Column(name string) ([]string, error) {
	i, err := t.MustIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Where returns the rows for which keep returns true. keep receives a lookup
// function resolving a column name to the row's value ("" if absent).
func (t *Table) Where(keep func(get func(string) string) bool) *Table {
	out := &Table{Header: append([]string(nil), t.Header...)}
	for _, row := range t.Rows {
		get := func(name string) string {
			if i := t.Index(name); i >= 0 {
				return row[i]
			}
			return ""
		}
		if keep(get) {
			out.Rows = append(out.Rows, append([]string(nil), row...))
		}
	}
	return out
}

// FromScores renders a score table with the subject id under index as the
// first column. NaN becomes an empty cell.
func FromScores(scores model.ScoreTable, index string) *Table {
	out := &Table{Header: append([]string{index}, scores.Columns...)}
	for _, r := range scores.Rows {
		row := make([]string, 0, len(out.Header))
		row = append(row, r.SubjectID)
		for _, c := range scores.Columns {
			row = append(row, FormatFloat(r.Get(c)))
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// FormatFloat writes v in the shortest exact form; NaN is empty and
// infinities are "inf" and "-inf".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
