// Package exclude drops subjects that fail the data-quality thresholds of the
// validated AX-CPT protocol.
package exclude

import (
	"github.com/okian/axcpt/internal/domain/aggregate"
	"github.com/okian/axcpt/internal/domain/model"
)

// Protocol thresholds. Misses count errors and non-responses together so
// that subjects who rarely respond are caught as well as those who respond
// wrongly.
const (
	MaxBYMisses = 2
	MaxBXMisses = 14
	MaxAXMisses = 43
	MinTrials   = 120
)

// Rule excludes a subject when its value in Column is above Limit (Above set)
// or below it. NaN values never trigger a rule.
type Rule struct {
	Name   string
	Column string
	Above  bool
	Limit  float64
}

// Violated reports whether v breaks the rule.
func (r Rule) Violated(v float64) bool {
	if r.Above {
		return v > r.Limit
	}
	return v < r.Limit
}

// Protocol is the fixed rule set applied by Apply.
var Protocol = []Rule{
	{Name: "by_misses", Column: "bymisses", Above: true, Limit: MaxBYMisses},
	{Name: "bx_misses", Column: "bxmisses", Above: true, Limit: MaxBXMisses},
	{Name: "ax_misses", Column: "axmisses", Above: true, Limit: MaxAXMisses},
	{Name: "min_trials", Column: aggregate.ColumnTrials, Above: false, Limit: MinTrials},
}

// Excluded names a dropped subject and the rules it broke.
type Excluded struct {
	SubjectID string
	Rules     []string
}

// Apply returns tbl without the subjects breaking any Protocol rule, and the
// list of those subjects. Applying it to its own output changes nothing.
func Apply(tbl model.ScoreTable) (model.ScoreTable, []Excluded) {
	return ApplyRules(tbl, Protocol)
}

// ApplyRules is Apply with an explicit rule set.
func ApplyRules(tbl model.ScoreTable, rules []Rule) (model.ScoreTable, []Excluded) {
	out := model.ScoreTable{Columns: append([]string(nil), tbl.Columns...)}
	var dropped []Excluded
	for _, row := range tbl.Rows {
		var broken []string
		for _, r := range rules {
			if r.Violated(row.Get(r.Column)) {
				broken = append(broken, r.Name)
			}
		}
		if len(broken) > 0 {
			dropped = append(dropped, Excluded{SubjectID: row.SubjectID, Rules: broken})
			continue
		}
		out.Rows = append(out.Rows, row.Clone())
	}
	return out, dropped
}
