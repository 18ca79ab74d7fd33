// Package filter removes non-task and practice trials and reclassifies
// implausible reaction times before scoring.
package filter

import (
	"github.com/okian/axcpt/internal/domain/model"
)

// Default filter configuration constants.
const (
	DefaultProcedure     = "TrialProc"
	DefaultPracticeBlock = 1
	DefaultMinRT         = 200.0
	DefaultMaxRT         = 1300.0
)

// Stats counts what each step did to the trial table.
type Stats struct {
	Read         int // rows in
	NotTask      int // dropped: procedure label was not the main procedure
	Practice     int // dropped: practice block
	OutOfRange   int // kept but reclassified: RT outside the window
	MissRTNulled int // RTs nulled because accuracy was 0
	Kept         int // rows out
}

// Filter holds the trial selection rules.
type Filter struct {
	procedure     string
	practiceBlock int
	minRT         float64
	maxRT         float64
}

// New creates a Filter with the protocol defaults, adjusted by opts.
func New(opts ...Option) *Filter {
	f := &Filter{
		procedure:     DefaultProcedure,
		practiceBlock: DefaultPracticeBlock,
		minRT:         DefaultMinRT,
		maxRT:         DefaultMaxRT,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Apply drops non-task and practice rows, then reclassifies trials whose RT
// lies outside [minRT, maxRT] as inaccurate with no response. Reclassified
// rows are kept. The input slice is not modified.
func (f *Filter) Apply(trials []model.Trial) ([]model.Trial, Stats) {
	st := Stats{Read: len(trials)}
	out := make([]model.Trial, 0, len(trials))
	for _, t := range trials {
		if t.Procedure != f.procedure {
			st.NotTask++
			continue
		}
		if t.Block == f.practiceBlock {
			st.Practice++
			continue
		}
		if t.RT != nil && (*t.RT < f.minRT || *t.RT > f.maxRT) {
			t.Accuracy = 0
			t.Response = nil
			st.OutOfRange++
		}
		out = append(out, t)
	}
	st.Kept = len(out)
	return out, st
}

// SetMissRT nulls the reaction time of every inaccurate trial and returns
// how many RTs were nulled.
func SetMissRT(trials []model.Trial) ([]model.Trial, int) {
	out := make([]model.Trial, len(trials))
	nulled := 0
	for i, t := range trials {
		if t.Accuracy == 0 && t.RT != nil {
			t.RT = nil
			nulled++
		}
		out[i] = t
	}
	return out, nulled
}

// Run applies the filter and then SetMissRT. The order matters: a trial
// reclassified by the RT window must also lose its RT.
func (f *Filter) Run(trials []model.Trial) ([]model.Trial, Stats) {
	kept, st := f.Apply(trials)
	out, nulled := SetMissRT(kept)
	st.MissRTNulled = nulled
	return out, st
}
