package tabular

import "fmt"

// LeftJoin appends columns of right to every row of left whose key matches.
// Rows of left without a match get empty cells. When columns is empty every
// right column except the key is taken. The first right row wins for a
// repeated key.
func LeftJoin(left, right *Table, key string, columns []string) (*Table, error) {
	j, err := newJoin(left, right, key, columns)
	if err != nil {
		return nil, err
	}

	first := make(map[string][]string, len(right.Rows))
	for _, row := range right.Rows {
		if _, dup := first[row[j.rk]]; !dup {
			first[row[j.rk]] = row
		}
	}

	out := j.table()
	for _, row := range left.Rows {
		out.Rows = append(out.Rows, j.row(row, first[row[j.lk]]))
	}
	return out, nil
}

// InnerJoin emits one row per matching pair: a left row repeated for every
// right row sharing its key, in right-table order. Left rows without a match
// are dropped. Columns are chosen as in LeftJoin.
func InnerJoin(left, right *Table, key string, columns []string) (*Table, error) {
	j, err := newJoin(left, right, key, columns)
	if err != nil {
		return nil, err
	}

	all := make(map[string][][]string, len(right.Rows))
	for _, row := range right.Rows {
		all[row[j.rk]] = append(all[row[j.rk]], row)
	}

	out := j.table()
	for _, row := range left.Rows {
		for _, match := range all[row[j.lk]] {
			out.Rows = append(out.Rows, j.row(row, match))
		}
	}
	return out, nil
}

type join struct {
	left, right *Table
	lk, rk      int
	idx         []int
}

func newJoin(left, right *Table, key string, columns []string) (*join, error) {
	lk, err := left.MustIndex(key)
	if err != nil {
		return nil, fmt.Errorf("left table: %w", err)
	}
	rk, err := right.MustIndex(key)
	if err != nil {
		return nil, fmt.Errorf("right table: %w", err)
	}

	if len(columns) == 0 {
		for _, h := range right.Header {
			if h != key {
				columns = append(columns, h)
			}
		}
	}
	idx := make([]int, 0, len(columns))
	for _, c := range columns {
		if c == key {
			continue
		}
		if left.Index(c) >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrColumnConflict, c)
		}
		i, err := right.MustIndex(c)
		if err != nil {
			return nil, fmt.Errorf("right table: %w", err)
		}
		idx = append(idx, i)
	}
	return &join{left: left, right: right, lk: lk, rk: rk, idx: idx}, nil
}

func (j *join) table() *Table {
	out := &Table{Header: append([]string(nil), j.left.Header...)}
	for _, i := range j.idx {
		out.Header = append(out.Header, j.right.Header[i])
	}
	return out
}

// row joins l with match; a nil match yields empty cells.
func (j *join) row(l, match []string) []string {
	joined := append(make([]string, 0, len(l)+len(j.idx)), l...)
	for _, i := range j.idx {
		if match != nil {
			joined = append(joined, match[i])
		} else {
			joined = append(joined, "")
		}
	}
	return joined
}
