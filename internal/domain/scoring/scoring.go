// Package scoring computes per-trial-type summary scores for one subject.
package scoring

import (
	"math"

	"github.com/okian/axcpt/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultTrimSD = 3.0
)

// Metric names as they appear, prefixed by trial type, in flattened tables.
const (
	MetricHits       = "hits"
	MetricMisses     = "misses"
	MetricErrors     = "errors"
	MetricNR         = "nr"
	MetricMeanRT     = "meanrt"
	MetricTrimMeanRT = "trim_meanrt"
	MetricMedianRT   = "medianrt"
	MetricStdRT      = "stdrt"
	MetricCVRT       = "cvrt"
)

// Metrics lists every metric in output column order.
var Metrics = []string{
	MetricHits, MetricMisses, MetricErrors, MetricNR,
	MetricMeanRT, MetricTrimMeanRT, MetricMedianRT, MetricStdRT, MetricCVRT,
}

// Scores summarises one subject's trials of one trial type.
// RT statistics are NaN when they are undefined for the input.
type Scores struct {
	Hits       int
	Misses     int // Errors + NR
	Errors     int // inaccurate with a response
	NR         int // inaccurate with no response
	MeanRT     float64
	TrimMeanRT float64
	MedianRT   float64
	StdRT      float64
	CVRT       float64
}

// Values returns s keyed by metric name.
func (s Scores) Values() map[string]float64 {
	return map[string]float64{
		MetricHits:       float64(s.Hits),
		MetricMisses:     float64(s.Misses),
		MetricErrors:     float64(s.Errors),
		MetricNR:         float64(s.NR),
		MetricMeanRT:     s.MeanRT,
		MetricTrimMeanRT: s.TrimMeanRT,
		MetricMedianRT:   s.MedianRT,
		MetricStdRT:      s.StdRT,
		MetricCVRT:       s.CVRT,
	}
}

// FromValues rebuilds Scores from metric-keyed values. ok is false when the
// hit count is absent or NaN, meaning the trial type was never scored.
func FromValues(v map[string]float64) (Scores, bool) {
	hits, present := v[MetricHits]
	if !present || math.IsNaN(hits) {
		return Scores{}, false
	}
	return Scores{
		Hits:       int(hits),
		Misses:     int(v[MetricMisses]),
		Errors:     int(v[MetricErrors]),
		NR:         int(v[MetricNR]),
		MeanRT:     v[MetricMeanRT],
		TrimMeanRT: v[MetricTrimMeanRT],
		MedianRT:   v[MetricMedianRT],
		StdRT:      v[MetricStdRT],
		CVRT:       v[MetricCVRT],
	}, true
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithTrimSD sets how many standard deviations around the mean are kept
// for the trimmed mean.
func WithTrimSD(k float64) Option {
	return func(s *Scorer) {
		if k > 0 {
			s.trimSD = k
		}
	}
}

// Scorer computes Scores for a group of trials.
type Scorer struct {
	trimSD float64
}

// NewScorer creates a Scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{trimSD: defaultTrimSD}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score summarises trials, which are expected to belong to one subject and
// one trial type and to have passed through the filter stage.
func (s *Scorer) Score(trials []model.Trial) Scores {
	var out Scores
	rts := make([]float64, 0, len(trials))
	for _, t := range trials {
		switch {
		case t.Correct():
			out.Hits++
			if t.RT != nil {
				rts = append(rts, *t.RT)
			}
		case t.Accuracy == 0 && t.Response != nil:
			out.Errors++
		case t.Accuracy == 0:
			out.NR++
		}
	}
	out.Misses = out.Errors + out.NR

	out.MeanRT = mean(rts)
	out.MedianRT = median(rts)
	out.StdRT = sampleStdDev(rts)
	out.TrimMeanRT = s.trimmedMean(rts, out.MeanRT, out.StdRT)
	out.CVRT = cv(out.MeanRT, out.StdRT)
	return out
}

// trimmedMean averages the RTs strictly inside m +- trimSD*sd. A NaN sd
// excludes everything and yields NaN.
func (s *Scorer) trimmedMean(rts []float64, m, sd float64) float64 {
	lo := m - s.trimSD*sd
	hi := m + s.trimSD*sd
	kept := make([]float64, 0, len(rts))
	for _, rt := range rts {
		if rt > lo && rt < hi {
			kept = append(kept, rt)
		}
	}
	return mean(kept)
}

// cv returns sd/m, NaN when m or sd is zero or either input is undefined.
func cv(m, sd float64) float64 {
	if m == 0 || sd == 0 || math.IsNaN(m) || math.IsNaN(sd) {
		return math.NaN()
	}
	return sd / m
}
