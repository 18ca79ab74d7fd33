package filter

// Option applies a configuration option to a Filter.
type Option func(*Filter)

// WithProcedure sets the procedure label that marks main-task rows.
func WithProcedure(label string) Option {
	return func(f *Filter) {
		if label != "" {
			f.procedure = label
		}
	}
}

// WithPracticeBlock sets the block index dropped as practice.
func WithPracticeBlock(block int) Option {
	return func(f *Filter) {
		f.practiceBlock = block
	}
}

// WithRTWindow sets the plausible reaction-time window in milliseconds.
func WithRTWindow(minRT, maxRT float64) Option {
	return func(f *Filter) {
		if minRT >= 0 && maxRT > minRT {
			f.minRT = minRT
			f.maxRT = maxRT
		}
	}
}
