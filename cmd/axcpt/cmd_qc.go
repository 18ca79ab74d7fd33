package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/axcpt/internal/adapters/tabular"
	"github.com/okian/axcpt/internal/app"
	"github.com/okian/axcpt/pkg/logger"
	"github.com/spf13/cobra"
)

type qcOptions struct {
	in        string
	out       string
	joins     []string
	inner     []string
	recodes   []string
	quartiles []string
}

func newQCCommand(c *cli) *cobra.Command {
	o := &qcOptions{}
	cmd := &cobra.Command{
		Use:   "qc",
		Short: "Select scored subjects fit for analysis",
		Long: `QC builds an analysis dataset from a scored file. In order it:

  left-joins each --join table on the index column,
  blanks missing-data codes named by --na,
  adds quartile columns named by --quartile,
  keeps rows whose rater Z code is not the reject value and whose completion
  code marks a completed session,
  inner-joins each --inner table, one output row per matching row.

Columns already present are never joined again; the left value wins.
Quartiles are computed over every row before the QC filter.`,
		Example: `  axcpt qc -i AX-CPT_V2_processed.csv --join cog.csv --na NUMHINJ_v2=99 \
    --quartile dsfraw_V2=dsfquantile_V2 --inner pupilDS_long.csv -o pupil_AX-CPT.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQC(cmd, c, o)
		},
	}

	cmd.Flags().StringVarP(&o.in, "in", "i", "", "Scored file with metadata columns (.csv or .xlsx)")
	cmd.Flags().StringVarP(&o.out, "out", "o", stdio, "Output CSV path, - for stdout")
	cmd.Flags().StringArrayVar(&o.joins, "join", nil, "Table to left-join on the index column; repeatable")
	cmd.Flags().StringArrayVar(&o.inner, "inner", nil, "Long table to inner-join on the index column after QC; repeatable")
	cmd.Flags().StringArrayVar(&o.recodes, "na", nil, "column=code[,code...] values to blank as missing; repeatable")
	cmd.Flags().StringArrayVar(&o.quartiles, "quartile", nil, "column[=name] to bin into quartiles 1-4 (default name column_quartile); repeatable")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func runQC(cmd *cobra.Command, c *cli, o *qcOptions) error {
	ctx := cmd.Context()
	key := c.cfg.IndexColumn

	out, err := tabular.ReadFile(o.in)
	if err != nil {
		return err
	}

	for _, path := range o.joins {
		right, err := tabular.ReadFile(path)
		if err != nil {
			return err
		}
		if out, err = app.JoinNew(out, right, key); err != nil {
			return fmt.Errorf("join %s: %w", path, err)
		}
		c.log.Debug(ctx, "joined table", logger.String("file", path), logger.Int("columns", len(out.Header)))
	}

	for _, arg := range o.recodes {
		column, codes, err := parseRecode(arg)
		if err != nil {
			return err
		}
		if out, err = app.Recode(out, column, codes); err != nil {
			return fmt.Errorf("--na %s: %w", arg, err)
		}
	}

	for _, arg := range o.quartiles {
		column, name, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			name = column + "_quartile"
		}
		if out, err = app.Quartiles(out, column, name); err != nil {
			return fmt.Errorf("--quartile %s: %w", arg, err)
		}
	}

	rows := len(out.Rows)
	out, err = app.QC(out, app.QCRules{
		RaterZColumn:   c.cfg.QC.RaterZColumn,
		RejectRaterZ:   c.cfg.QC.RejectRaterZ,
		CompleteColumn: c.cfg.QC.CompleteColumn,
		CompleteValue:  c.cfg.QC.CompleteValue,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", o.in, err)
	}
	c.log.Info(ctx, "applied qc", logger.Int("rows", rows), logger.Int("kept", len(out.Rows)))

	for _, path := range o.inner {
		right, err := tabular.ReadFile(path)
		if err != nil {
			return err
		}
		if out, err = app.JoinInner(out, right, key); err != nil {
			return fmt.Errorf("inner join %s: %w", path, err)
		}
		c.log.Info(ctx, "inner joined table", logger.String("file", path), logger.Int("rows", len(out.Rows)))
	}

	return writeTable(cmd.OutOrStdout(), o.out, out)
}

// parseRecode splits "column=9,99".
func parseRecode(arg string) (string, []float64, error) {
	column, list, ok := strings.Cut(arg, "=")
	if !ok || column == "" || list == "" {
		return "", nil, fmt.Errorf("invalid --na %q: want column=code[,code...]", arg)
	}
	var codes []float64
	for _, s := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid --na %q: %w", arg, err)
		}
		codes = append(codes, v)
	}
	return column, codes, nil
}
