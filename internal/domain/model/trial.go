// Package model contains domain models passed between pipeline stages.
package model

// TrialType is the cue-probe pairing of an AX-CPT trial.
type TrialType string

// AX-CPT trial types.
const (
	TypeAX TrialType = "AX"
	TypeBX TrialType = "BX"
	TypeAY TrialType = "AY"
	TypeBY TrialType = "BY"
)

// DefaultTrialTypes is the order used when none is configured.
var DefaultTrialTypes = []TrialType{TypeAX, TypeBX, TypeAY, TypeBY}

// Trial represents one behavioral event from the task export.
// RT and Response are nil when the export cell was empty or a stage nulled them.
type Trial struct {
	SubjectID string    // subject identifier
	Procedure string    // E-Prime procedure label, e.g. "TrialProc"
	Type      TrialType // AX, BX, AY or BY
	Block     int       // block index; block 1 is practice
	Accuracy  int       // 1 correct, 0 incorrect
	RT        *float64  // reaction time in ms
	Response  *string   // key pressed
}

// Correct reports whether the trial was scored accurate.
func (t Trial) Correct() bool { return t.Accuracy == 1 }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Str returns a pointer to s.
func Str(s string) *string { return &s }
