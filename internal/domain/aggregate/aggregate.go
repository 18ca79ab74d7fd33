// Package aggregate pivots per-trial-type scores into one row per subject.
//
// Columns are named <trialtype><metric>, lowercased, e.g. "axhits" or
// "bxmeanrt", followed by ColumnTrials. Unflatten reverses the naming.
package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/okian/axcpt/internal/domain/model"
	"github.com/okian/axcpt/internal/domain/scoring"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ColumnTrials holds the number of trials a subject kept after filtering.
const ColumnTrials = "ntrials"

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithScorer sets the scorer applied to each subject x trial type group.
func WithScorer(s *scoring.Scorer) Option {
	return func(a *Aggregator) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithTypeOrder sets the order of trial-type column blocks. Types seen in the
// data but not listed follow in lexical order.
func WithTypeOrder(types []model.TrialType) Option {
	return func(a *Aggregator) {
		if len(types) > 0 {
			a.order = append([]model.TrialType(nil), types...)
		}
	}
}

// Aggregator groups trials and scores them.
type Aggregator struct {
	scorer *scoring.Scorer
	order  []model.TrialType
}

// New creates an Aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		scorer: scoring.NewScorer(),
		order:  model.DefaultTrialTypes,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Column returns the flattened column name for a trial type and metric.
func Column(t model.TrialType, metric string) string {
	return cases.Lower(language.Und).String(string(t) + metric)
}

// Aggregate scores trials per subject and trial type. Rows are sorted by
// subject id. A subject with no trials of a type seen elsewhere gets NaN in
// that type's columns.
func (a *Aggregator) Aggregate(trials []model.Trial) model.ScoreTable {
	bySubject := make(map[string]map[model.TrialType][]model.Trial)
	counts := make(map[string]int)
	seen := make(map[model.TrialType]bool)
	for _, t := range trials {
		g, ok := bySubject[t.SubjectID]
		if !ok {
			g = make(map[model.TrialType][]model.Trial)
			bySubject[t.SubjectID] = g
		}
		g[t.Type] = append(g[t.Type], t)
		counts[t.SubjectID]++
		seen[t.Type] = true
	}

	types := a.orderTypes(seen)
	tbl := model.ScoreTable{Columns: make([]string, 0, len(types)*len(scoring.Metrics)+1)}
	for _, tt := range types {
		for _, m := range scoring.Metrics {
			tbl.Columns = append(tbl.Columns, Column(tt, m))
		}
	}
	tbl.Columns = append(tbl.Columns, ColumnTrials)

	ids := make([]string, 0, len(bySubject))
	for id := range bySubject {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		row := model.ScoreRow{SubjectID: id, Values: make(map[string]float64, len(tbl.Columns))}
		for _, tt := range types {
			group, ok := bySubject[id][tt]
			if !ok {
				for _, m := range scoring.Metrics {
					row.Values[Column(tt, m)] = math.NaN()
				}
				continue
			}
			for m, v := range a.scorer.Score(group).Values() {
				row.Values[Column(tt, m)] = v
			}
		}
		row.Values[ColumnTrials] = float64(counts[id])
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl
}

func (a *Aggregator) orderTypes(seen map[model.TrialType]bool) []model.TrialType {
	out := make([]model.TrialType, 0, len(seen))
	listed := make(map[model.TrialType]bool, len(a.order))
	for _, t := range a.order {
		listed[t] = true
		if seen[t] {
			out = append(out, t)
		}
	}
	var extra []model.TrialType
	for t := range seen {
		if !listed[t] {
			extra = append(extra, t)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// Types lists the trial types with a column block in tbl, in column order.
func Types(tbl model.ScoreTable) []model.TrialType {
	upper := cases.Upper(language.Und)
	var out []model.TrialType
	for _, c := range tbl.Columns {
		if p, ok := strings.CutSuffix(c, scoring.MetricHits); ok && p != "" {
			out = append(out, model.TrialType(upper.String(p)))
		}
	}
	return out
}

// Unflatten recovers per-subject, per-trial-type scores from a table built by
// Aggregate. Trial types are read back from the "<type>hits" columns; a type
// whose hit count is NaN for a subject is omitted for that subject.
func Unflatten(tbl model.ScoreTable) map[string]map[model.TrialType]scoring.Scores {
	types := Types(tbl)

	out := make(map[string]map[model.TrialType]scoring.Scores, len(tbl.Rows))
	for _, row := range tbl.Rows {
		per := make(map[model.TrialType]scoring.Scores, len(types))
		for _, t := range types {
			values := make(map[string]float64, len(scoring.Metrics))
			for _, m := range scoring.Metrics {
				if v, ok := row.Values[Column(t, m)]; ok {
					values[m] = v
				}
			}
			if s, ok := scoring.FromValues(values); ok {
				per[t] = s
			}
		}
		out[row.SubjectID] = per
	}
	return out
}
