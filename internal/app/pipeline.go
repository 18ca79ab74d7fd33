// Package app wires the scoring stages into one run over a merged export.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/okian/axcpt/internal/domain/aggregate"
	"github.com/okian/axcpt/internal/domain/exclude"
	"github.com/okian/axcpt/internal/domain/filter"
	"github.com/okian/axcpt/internal/domain/model"
	"github.com/okian/axcpt/internal/domain/sdt"
	"github.com/okian/axcpt/pkg/logger"
	"github.com/okian/axcpt/pkg/metrics"
)

// Pipeline runs filter, aggregation, rates, d' and exclusion in order.
type Pipeline struct {
	filter  *filter.Filter
	types   []model.TrialType
	aggOpts []aggregate.Option
	rules   []exclude.Rule
	runID   string

	logger  logger.Logger
	metrics *metrics.Manager
	now     func() time.Time
}

// Result is everything a run produced.
type Result struct {
	RunID  string
	Filter filter.Stats
	// Scored has every subject, before exclusion.
	Scored model.ScoreTable
	// Kept is Scored without the excluded subjects.
	Kept     model.ScoreTable
	Excluded []exclude.Excluded
}

// New constructs a Pipeline with protocol defaults.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		filter:  filter.New(),
		types:   model.DefaultTrialTypes,
		rules:   exclude.Protocol,
		runID:   uuid.NewString(),
		metrics: metrics.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get()
	}
	p.logger = p.logger.With(logger.String("run_id", p.runID))
	return p
}

// RunID identifies this pipeline's runs in logs and output.
func (p *Pipeline) RunID() string { return p.runID }

// Run scores trials. It fails only when ctx is done or no trial survives
// filtering; undefined statistics are carried as NaN.
func (p *Pipeline) Run(ctx context.Context, trials []model.Trial) (Result, error) {
	res := Result{RunID: p.runID}

	start := p.now()
	kept, st := p.filter.Run(trials)
	p.metrics.ObserveStage(metrics.StageFilter, p.now().Sub(start))
	p.metrics.RecordTrialsRead(st.Read)
	p.metrics.RecordTrialsDropped(metrics.ReasonNotTask, st.NotTask)
	p.metrics.RecordTrialsDropped(metrics.ReasonPractice, st.Practice)
	p.metrics.RecordTrialsReclassified(st.OutOfRange)
	res.Filter = st
	p.logger.Info(ctx, "filtered trials",
		logger.Int("read", st.Read),
		logger.Int("not_task", st.NotTask),
		logger.Int("practice", st.Practice),
		logger.Int("out_of_range", st.OutOfRange),
		logger.Int("miss_rt_nulled", st.MissRTNulled),
		logger.Int("kept", st.Kept),
	)
	if len(kept) == 0 {
		return res, ErrNoTrials
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	start = p.now()
	agg := aggregate.New(append([]aggregate.Option{aggregate.WithTypeOrder(p.types)}, p.aggOpts...)...)
	tbl := agg.Aggregate(kept)
	p.metrics.ObserveStage(metrics.StageAggregate, p.now().Sub(start))
	p.metrics.RecordSubjectsScored(len(tbl.Rows))
	p.logger.Debug(ctx, "aggregated subjects",
		logger.Int("subjects", len(tbl.Rows)),
		logger.Int("columns", len(tbl.Columns)),
	)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	start = p.now()
	tbl = sdt.WithRates(tbl, p.types)
	tbl = sdt.WithDPrime(tbl)
	p.metrics.ObserveStage(metrics.StageSDT, p.now().Sub(start))
	res.Scored = tbl

	start = p.now()
	res.Kept, res.Excluded = exclude.ApplyRules(tbl, p.rules)
	p.metrics.ObserveStage(metrics.StageExclude, p.now().Sub(start))
	for _, e := range res.Excluded {
		for _, rule := range e.Rules {
			p.metrics.RecordSubjectExcluded(rule)
		}
		p.logger.Debug(ctx, "excluded subject",
			logger.String("subject", e.SubjectID),
			logger.Any("rules", e.Rules),
		)
	}

	p.metrics.RecordRunCompleted(p.now())
	p.logger.Info(ctx, "scored subjects",
		logger.Int("scored", len(res.Scored.Rows)),
		logger.Int("excluded", len(res.Excluded)),
		logger.Int("kept", len(res.Kept.Rows)),
	)
	return res, nil
}
