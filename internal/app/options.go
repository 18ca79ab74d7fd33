package app

import (
	"github.com/okian/axcpt/internal/domain/aggregate"
	"github.com/okian/axcpt/internal/domain/exclude"
	"github.com/okian/axcpt/internal/domain/filter"
	"github.com/okian/axcpt/internal/domain/model"
	"github.com/okian/axcpt/pkg/logger"
	"github.com/okian/axcpt/pkg/metrics"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records run metrics on m instead of the process-wide manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithFilter sets the trial filter.
func WithFilter(f *filter.Filter) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.filter = f
		}
	}
}

// WithTrialTypes orders the per-type column blocks.
func WithTrialTypes(types []model.TrialType) Option {
	return func(p *Pipeline) {
		if len(types) > 0 {
			p.types = append([]model.TrialType(nil), types...)
		}
	}
}

// WithAggregateOptions passes options through to the aggregator.
func WithAggregateOptions(opts ...aggregate.Option) Option {
	return func(p *Pipeline) {
		p.aggOpts = append(p.aggOpts, opts...)
	}
}

// WithRules replaces the exclusion rule set.
func WithRules(rules []exclude.Rule) Option {
	return func(p *Pipeline) {
		if rules != nil {
			p.rules = rules
		}
	}
}

// WithRunID sets the id attached to every log record of a run.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.runID = id
		}
	}
}
