// Package sdt derives signal-detection rates and the d' sensitivity index
// from aggregated hit, error and miss counts.
//
// Rates use the Corwin (1994) correction, adding 0.5 to the numerator and 1
// to the denominator, which keeps them strictly inside (0, 1) for finite
// counts.
package sdt

import (
	"math"

	"github.com/okian/axcpt/internal/domain/aggregate"
	"github.com/okian/axcpt/internal/domain/model"
	"github.com/okian/axcpt/internal/domain/scoring"
)

// Rate metric and output column names.
const (
	MetricHitRate  = "hitrate"
	MetricMissRate = "missrate"
	MetricFARate   = "farate"
	ColumnDPrime   = "dprime"
)

// Rates holds the corrected rates for one trial type.
type Rates struct {
	Hit        float64
	FalseAlarm float64
	Miss       float64
}

// CalcRates returns corrected rates from hit, error and miss counts.
// Errors are responses made when none was correct, so they serve as false
// alarms; misses include both errors and non-responses.
func CalcRates(hits, errors, misses float64) Rates {
	denom := hits + misses + 1
	hit := (hits + 0.5) / denom
	return Rates{
		Hit:        hit,
		FalseAlarm: (errors + 0.5) / denom,
		Miss:       1 - hit,
	}
}

// DPrime returns ln[(h*(1-f)) / ((1-h)*f)] for hit rate h and false-alarm
// rate f. Rates of exactly 0 or 1 produce an infinite or NaN result.
func DPrime(hitRate, faRate float64) float64 {
	return math.Log((hitRate * (1 - faRate)) / ((1 - hitRate) * faRate))
}

// WithRates returns a copy of tbl with <type>hitrate, <type>missrate and
// <type>farate columns for each of types. Missing counts propagate as NaN.
func WithRates(tbl model.ScoreTable, types []model.TrialType) model.ScoreTable {
	cols := make([]string, 0, 3*len(types))
	for _, t := range types {
		cols = append(cols,
			aggregate.Column(t, MetricHitRate),
			aggregate.Column(t, MetricMissRate),
			aggregate.Column(t, MetricFARate),
		)
	}
	out := tbl.WithColumns(cols...)
	for i := range out.Rows {
		row := out.Rows[i]
		for _, t := range types {
			r := CalcRates(
				row.Get(aggregate.Column(t, scoring.MetricHits)),
				row.Get(aggregate.Column(t, scoring.MetricErrors)),
				row.Get(aggregate.Column(t, scoring.MetricMisses)),
			)
			row.Values[aggregate.Column(t, MetricHitRate)] = r.Hit
			row.Values[aggregate.Column(t, MetricMissRate)] = r.Miss
			row.Values[aggregate.Column(t, MetricFARate)] = r.FalseAlarm
		}
	}
	return out
}

// WithDPrime returns a copy of tbl with a dprime column computed from the AX
// hit rate and the BX false-alarm rate. Subjects lacking either rate get NaN.
func WithDPrime(tbl model.ScoreTable) model.ScoreTable {
	out := tbl.WithColumns(ColumnDPrime)
	for i := range out.Rows {
		row := out.Rows[i]
		row.Values[ColumnDPrime] = DPrime(
			row.Get(aggregate.Column(model.TypeAX, MetricHitRate)),
			row.Get(aggregate.Column(model.TypeBX, MetricFARate)),
		)
	}
	return out
}
