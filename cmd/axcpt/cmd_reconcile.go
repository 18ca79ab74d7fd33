package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/axcpt/internal/adapters/tabular"
	"github.com/okian/axcpt/internal/domain/roster"
	"github.com/okian/axcpt/pkg/logger"
	"github.com/spf13/cobra"
)

type reconcileOptions struct {
	master       string
	masterColumn string
	sources      []string
	pairs        []string
	missingOut   string
	strict       bool
}

func newReconcileCommand(c *cli) *cobra.Command {
	o := &reconcileOptions{}
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check which subjects have data against a master list",
		Long: `Reconcile compares the subject ids found in each source with a master list.

A source is name=path. A directory path yields ids from raw E-Prime file names
such as AXCPT-Left-19001-1.txt (19001A); a file path yields the distinct
subject ids of a merged export. The report lists ids found in several sources,
ids unknown to the master list and master ids with no data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd, c, o)
		},
	}

	cmd.Flags().StringVar(&o.master, "master", "", "Master subject list (.csv or .xlsx)")
	cmd.Flags().StringVar(&o.masterColumn, "master-column", "", "Subject id column of the master list (default index_column)")
	cmd.Flags().StringArrayVar(&o.sources, "source", nil, "Data source as name=path; repeatable")
	cmd.Flags().StringArrayVar(&o.pairs, "pair", nil, "Two source names as a,b whose ids should agree; repeatable")
	cmd.Flags().StringVar(&o.missingOut, "missing-out", "", "Write master ids without data to this CSV")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "Exit with status 1 when any discrepancy is found")
	_ = cmd.MarkFlagRequired("master")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func runReconcile(cmd *cobra.Command, c *cli, o *reconcileOptions) error {
	ctx := cmd.Context()

	col := o.masterColumn
	if col == "" {
		col = c.cfg.IndexColumn
	}
	masterTbl, err := tabular.ReadFile(o.master)
	if err != nil {
		return err
	}
	master, err := masterTbl.Column(col)
	if err != nil {
		return fmt.Errorf("%s: %w", o.master, err)
	}

	sources := make([]roster.Source, 0, len(o.sources))
	byName := make(map[string][]string, len(o.sources))
	for _, arg := range o.sources {
		name, path, ok := strings.Cut(arg, "=")
		if !ok || name == "" || path == "" {
			return fmt.Errorf("invalid --source %q: want name=path", arg)
		}
		ids, err := sourceIDs(path, c.cfg.Columns.Subject)
		if err != nil {
			return fmt.Errorf("source %s: %w", name, err)
		}
		c.log.Debug(ctx, "loaded source", logger.String("source", name), logger.Int("ids", len(ids)))
		sources = append(sources, roster.Source{Name: name, IDs: ids})
		byName[name] = ids
	}

	rep := roster.Reconcile(master, sources)
	diffs := make(map[string][]string, len(o.pairs))
	for _, pair := range o.pairs {
		a, b, ok := strings.Cut(pair, ",")
		_, okA := byName[a]
		_, okB := byName[b]
		if !ok || !okA || !okB {
			return fmt.Errorf("invalid --pair %q: want two source names as a,b", pair)
		}
		if d := roster.SymmetricDiff(byName[a], byName[b]); len(d) > 0 {
			diffs[pair] = d
		}
	}

	printReport(cmd.OutOrStdout(), rep, diffs)
	c.log.Info(ctx, "reconciled roster",
		logger.Int("master", len(master)),
		logger.Int("duplicates", len(rep.Duplicates)),
		logger.Int("not_in_master", len(rep.NotInMaster)),
		logger.Int("missing", len(rep.Missing)),
		logger.Int("mismatched_pairs", len(diffs)),
	)

	if o.missingOut != "" {
		t := &tabular.Table{Header: []string{c.cfg.IndexColumn}}
		for _, id := range rep.Missing {
			t.Rows = append(t.Rows, []string{id})
		}
		if err := tabular.WriteFile(o.missingOut, t); err != nil {
			return err
		}
	}

	if n := len(rep.Duplicates) + len(rep.NotInMaster) + len(rep.Missing) + len(diffs); o.strict && n > 0 {
		return &DiscrepancyError{Count: n}
	}
	return nil
}

// sourceIDs lists subject ids from a directory of raw files or a merged export.
func sourceIDs(path, subjectColumn string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
				continue
			}
			ids = append(ids, roster.SubjectFromFilename(e.Name()))
		}
		return ids, nil
	}

	t, err := tabular.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return t.Column(subjectColumn)
}

func printReport(w io.Writer, rep roster.Report, diffs map[string][]string) {
	dups := make([]string, 0, len(rep.Duplicates))
	for id := range rep.Duplicates {
		dups = append(dups, id)
	}
	sort.Strings(dups)

	fmt.Fprintf(w, "Duplicates across sources: %d\n", len(dups))
	for _, id := range dups {
		fmt.Fprintf(w, "  %s: %s\n", id, strings.Join(rep.Duplicates[id], ", "))
	}
	fmt.Fprintf(w, "Not in master list: %d\n", len(rep.NotInMaster))
	for _, id := range rep.NotInMaster {
		fmt.Fprintf(w, "  %s\n", id)
	}
	fmt.Fprintf(w, "Missing data: %d\n", len(rep.Missing))
	for _, id := range rep.Missing {
		fmt.Fprintf(w, "  %s\n", id)
	}

	pairs := make([]string, 0, len(diffs))
	for p := range diffs {
		pairs = append(pairs, p)
	}
	sort.Strings(pairs)
	for _, p := range pairs {
		fmt.Fprintf(w, "Mismatch %s: %s\n", p, strings.Join(diffs[p], ", "))
	}
}
