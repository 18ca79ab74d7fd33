package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/axcpt/internal/domain/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TrialColumns names the export columns holding each trial field.
type TrialColumns struct {
	Subject   string
	Procedure string
	Block     string
	Type      string
	Accuracy  string
	RT        string
	Response  string
}

// DefaultTrialColumns are the column names of a merged E-Prime export.
var DefaultTrialColumns = TrialColumns{
	Subject:   "SubjectID",
	Procedure: "Procedure[Trial]",
	Block:     "TheBlock",
	Type:      "Type",
	Accuracy:  "TargetSlide.ACC",
	RT:        "TargetSlide.RT",
	Response:  "TargetSlide.RESP",
}

// Trials converts t into trial rows. Rows whose procedure is procedure must
// carry a block and an accuracy of 0 or 1; other rows (pauses, instructions)
// may leave them blank. Empty RT and response cells become nil. Trial types
// are upper-cased so "ax" and "AX" score together.
func Trials(t *Table, cols TrialColumns, procedure string) ([]model.Trial, error) {
	var idx [7]int
	for i, name := range []string{cols.Subject, cols.Procedure, cols.Block, cols.Type, cols.Accuracy, cols.RT, cols.Response} {
		j, err := t.MustIndex(name)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}

	upper := cases.Upper(language.Und)
	out := make([]model.Trial, 0, len(t.Rows))
	for r, row := range t.Rows {
		line := r + 2 // header is line 1
		trial := model.Trial{
			SubjectID: strings.TrimSpace(row[idx[0]]),
			Procedure: strings.TrimSpace(row[idx[1]]),
			Type:      model.TrialType(upper.String(strings.TrimSpace(row[idx[3]]))),
		}
		task := trial.Procedure == procedure

		block, err := parseInt(row[idx[2]], task)
		if err != nil {
			return nil, fmt.Errorf("line %d %s: %w", line, cols.Block, err)
		}
		trial.Block = block
		acc, err := parseInt(row[idx[4]], task)
		if err != nil {
			return nil, fmt.Errorf("line %d %s: %w", line, cols.Accuracy, err)
		}
		if task && acc != 0 && acc != 1 {
			return nil, fmt.Errorf("line %d %s: %w: accuracy %d not 0 or 1", line, cols.Accuracy, ErrParseCell, acc)
		}
		trial.Accuracy = acc

		if cell := strings.TrimSpace(row[idx[5]]); cell != "" {
			rt, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d %s: %w: %q", line, cols.RT, ErrParseCell, cell)
			}
			trial.RT = &rt
		}
		if cell := strings.TrimSpace(row[idx[6]]); cell != "" {
			trial.Response = &cell
		}
		out = append(out, trial)
	}
	return out, nil
}

// parseInt accepts integral values written as "2" or "2.0". An empty cell is
// 0 unless required.
func parseInt(cell string, required bool) (int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		if required {
			return 0, fmt.Errorf("%w: empty", ErrParseCell)
		}
		return 0, nil
	}
	if v, err := strconv.Atoi(cell); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: %q", ErrParseCell, cell)
	}
	return int(f), nil
}
