package app

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/okian/axcpt/internal/adapters/tabular"
)

// Recode blanks the cells of column whose numeric value is one of codes,
// e.g. 9 or 99 used as "missing" in questionnaire data.
func Recode(t *tabular.Table, column string, codes []float64) (*tabular.Table, error) {
	i, err := t.MustIndex(column)
	if err != nil {
		return nil, err
	}
	out := &tabular.Table{Header: append([]string(nil), t.Header...)}
	for _, row := range t.Rows {
		row = append([]string(nil), row...)
		v := cellFloat(row[i])
		for _, c := range codes {
			if v == c {
				row[i] = ""
				break
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Quartiles appends column name holding the quartile (1 to 4) of each row's
// value in column. Edges are the 0, 25, 50, 75 and 100th percentiles with
// linear interpolation; a value on an edge belongs to the lower bin and the
// minimum to bin 1. Blank or non-numeric cells get a blank label.
func Quartiles(t *tabular.Table, column, name string) (*tabular.Table, error) {
	i, err := t.MustIndex(column)
	if err != nil {
		return nil, err
	}
	if t.Index(name) >= 0 {
		return nil, fmt.Errorf("%w: %q", tabular.ErrColumnConflict, name)
	}

	var values []float64
	for _, row := range t.Rows {
		if v := cellFloat(row[i]); !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	edges, err := quartileEdges(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", column, err)
	}

	out := &tabular.Table{Header: append(append([]string(nil), t.Header...), name)}
	for _, row := range t.Rows {
		label := ""
		if v := cellFloat(row[i]); !math.IsNaN(v) {
			label = strconv.Itoa(bin(edges, v))
		}
		out.Rows = append(out.Rows, append(append([]string(nil), row...), label))
	}
	return out, nil
}

func quartileEdges(values []float64) ([5]float64, error) {
	var edges [5]float64
	if len(values) == 0 {
		return edges, fmt.Errorf("%w: no numeric values", ErrBinEdges)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	for q := range edges {
		pos := float64(q) / 4 * float64(len(sorted)-1)
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		edges[q] = sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
	}
	for q := 1; q < len(edges); q++ {
		if edges[q] == edges[q-1] {
			return edges, fmt.Errorf("%w: %v", ErrBinEdges, edges)
		}
	}
	return edges, nil
}

func bin(edges [5]float64, v float64) int {
	for q := 1; q < len(edges); q++ {
		if v <= edges[q] {
			return q
		}
	}
	return len(edges) - 1
}
