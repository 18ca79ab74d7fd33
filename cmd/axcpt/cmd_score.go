package main

import (
	"fmt"
	"io"
	"time"

	"github.com/okian/axcpt/internal/adapters/tabular"
	"github.com/okian/axcpt/internal/app"
	"github.com/okian/axcpt/internal/config"
	"github.com/okian/axcpt/internal/domain/aggregate"
	"github.com/okian/axcpt/internal/domain/filter"
	"github.com/okian/axcpt/internal/domain/model"
	"github.com/okian/axcpt/internal/domain/scoring"
	"github.com/okian/axcpt/pkg/logger"
	"github.com/okian/axcpt/pkg/metrics"
	"github.com/spf13/cobra"
)

const stdio = "-"

type scoreOptions struct {
	in          string
	out         string
	meta        string
	metricsFile string
}

func newScoreCommand(c *cli) *cobra.Command {
	o := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a merged trial export",
		Long: `Score reads a merged E-Prime export (CSV or XLSX), scores every subject and
writes one row per retained subject as CSV.

Metadata columns from --meta are left-joined on the subject id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, c, o)
		},
	}

	cmd.Flags().StringVarP(&o.in, "in", "i", "", "Merged trial export (.csv or .xlsx)")
	cmd.Flags().StringVarP(&o.out, "out", "o", stdio, "Output CSV path, - for stdout")
	cmd.Flags().StringVar(&o.meta, "meta", "", "Per-subject metadata file to join (.csv or .xlsx)")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "Write run metrics in Prometheus textfile format")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func runScore(cmd *cobra.Command, c *cli, o *scoreOptions) error {
	ctx := cmd.Context()
	m := metrics.Default()

	start := time.Now()
	raw, err := tabular.ReadFile(o.in)
	if err != nil {
		return err
	}
	trials, err := tabular.Trials(raw, trialColumns(c.cfg), c.cfg.Procedure)
	if err != nil {
		return fmt.Errorf("%s: %w", o.in, err)
	}
	m.ObserveStage(metrics.StageRead, time.Since(start))
	c.log.Info(ctx, "read trials", logger.String("file", o.in), logger.Int("rows", len(trials)))

	p := app.New(
		app.WithLogger(c.log),
		app.WithMetrics(m),
		app.WithFilter(filter.New(
			filter.WithProcedure(c.cfg.Procedure),
			filter.WithPracticeBlock(c.cfg.PracticeBlock),
			filter.WithRTWindow(c.cfg.MinRTms, c.cfg.MaxRTms),
		)),
		app.WithTrialTypes(trialTypes(c.cfg)),
		app.WithAggregateOptions(aggregate.WithScorer(scoring.NewScorer(scoring.WithTrimSD(c.cfg.TrimSD)))),
	)
	res, err := p.Run(ctx, trials)
	if err != nil {
		return err
	}

	start = time.Now()
	out := res.Render(c.cfg.IndexColumn)
	if o.meta != "" {
		meta, err := tabular.ReadFile(o.meta)
		if err != nil {
			return err
		}
		if out, err = app.JoinMetadata(out, meta, c.cfg.MetadataKey(), c.cfg.Metadata.Columns); err != nil {
			return fmt.Errorf("join %s: %w", o.meta, err)
		}
	}
	if err := writeTable(cmd.OutOrStdout(), o.out, out); err != nil {
		return err
	}
	m.ObserveStage(metrics.StageWrite, time.Since(start))
	c.log.Info(ctx, "wrote scores",
		logger.String("file", o.out),
		logger.Int("subjects", len(out.Rows)),
		logger.String("run_id", res.RunID),
	)

	path := o.metricsFile
	if path == "" {
		path = c.cfg.MetricsFile
	}
	if path != "" {
		if err := m.WriteTextfile(path); err != nil {
			return err
		}
	}
	return nil
}

func trialColumns(cfg *config.Config) tabular.TrialColumns {
	return tabular.TrialColumns{
		Subject:   cfg.Columns.Subject,
		Procedure: cfg.Columns.Procedure,
		Block:     cfg.Columns.Block,
		Type:      cfg.Columns.Type,
		Accuracy:  cfg.Columns.Accuracy,
		RT:        cfg.Columns.RT,
		Response:  cfg.Columns.Response,
	}
}

func trialTypes(cfg *config.Config) []model.TrialType {
	out := make([]model.TrialType, len(cfg.TrialTypes))
	for i, t := range cfg.TrialTypes {
		out[i] = model.TrialType(t)
	}
	return out
}

// writeTable writes t to path, or to stdout when path is "-".
func writeTable(stdout io.Writer, path string, t *tabular.Table) error {
	if path == stdio || path == "" {
		return tabular.WriteCSV(stdout, t)
	}
	return tabular.WriteFile(path, t)
}
