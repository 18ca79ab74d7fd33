package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/axcpt/internal/adapters/tabular"
)

// Render turns the kept score table into output rows keyed by index.
func (r Result) Render(index string) *tabular.Table {
	return tabular.FromScores(r.Kept, index)
}

// JoinMetadata left-joins columns of meta onto scores. meta's subject column
// is metaKey; it is renamed to the scores' index before joining.
func JoinMetadata(scores, meta *tabular.Table, metaKey string, columns []string) (*tabular.Table, error) {
	index := scores.Header[0]
	if metaKey != index {
		k, err := meta.MustIndex(metaKey)
		if err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
		renamed := *meta
		renamed.Header = append([]string(nil), meta.Header...)
		renamed.Header[k] = index
		meta = &renamed
	}
	return tabular.LeftJoin(scores, meta, index, columns)
}

// JoinNew left-joins every column of right that left does not already have.
func JoinNew(left, right *tabular.Table, key string) (*tabular.Table, error) {
	cols := newColumns(left, right, key)
	if len(cols) == 0 {
		out := *left
		return &out, nil
	}
	return tabular.LeftJoin(left, right, key, cols)
}

// JoinInner inner-joins every column of right that left does not already
// have, keeping one row per matching right row. It turns a per-subject table
// into the long format of a per-observation right table.
func JoinInner(left, right *tabular.Table, key string) (*tabular.Table, error) {
	cols := newColumns(left, right, key)
	if len(cols) == 0 {
		// Only the key is shared; the join still filters and repeats rows.
		keyOnly := &tabular.Table{Header: []string{key}}
		k, err := right.MustIndex(key)
		if err != nil {
			return nil, fmt.Errorf("right table: %w", err)
		}
		for _, row := range right.Rows {
			keyOnly.Rows = append(keyOnly.Rows, []string{row[k]})
		}
		right = keyOnly
	}
	return tabular.InnerJoin(left, right, key, cols)
}

func newColumns(left, right *tabular.Table, key string) []string {
	var cols []string
	for _, h := range right.Header {
		if h != key && left.Index(h) < 0 {
			cols = append(cols, h)
		}
	}
	return cols
}

// QCRules selects the subjects fit for analysis.
type QCRules struct {
	RaterZColumn   string
	RejectRaterZ   float64
	CompleteColumn string
	CompleteValue  float64
}

// QC keeps rows whose rater Z score differs from RejectRaterZ and whose
// completion code equals CompleteValue. A blank Z score passes; a blank
// completion code does not.
func QC(t *tabular.Table, rules QCRules) (*tabular.Table, error) {
	for _, c := range []string{rules.RaterZColumn, rules.CompleteColumn} {
		if _, err := t.MustIndex(c); err != nil {
			return nil, err
		}
	}
	return t.Where(func(get func(string) string) bool {
		return cellFloat(get(rules.RaterZColumn)) != rules.RejectRaterZ &&
			cellFloat(get(rules.CompleteColumn)) == rules.CompleteValue
	}), nil
}

// cellFloat reads a numeric cell; blank or non-numeric is NaN.
func cellFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
