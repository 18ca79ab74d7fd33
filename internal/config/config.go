// Package config defines the scoring run configuration and its loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with protocol defaults.
// - Load layers a YAML file and AXCPT_ environment variables on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"slices"
)

// Columns names the E-Prime export columns read for each trial.
type Columns struct {
	Subject   string `koanf:"subject"`
	Procedure string `koanf:"procedure"`
	Block     string `koanf:"block"`
	Type      string `koanf:"type"`
	Accuracy  string `koanf:"accuracy"`
	RT        string `koanf:"rt"`
	Response  string `koanf:"response"`
}

// Metadata configures the per-subject table joined onto the scores.
type Metadata struct {
	// Key is the subject id column in the metadata file. Empty means IndexColumn.
	Key string `koanf:"key"`
	// Columns are copied from the metadata file; empty copies every column.
	Columns []string `koanf:"columns"`
}

// QC configures the analysis filter applied by the qc command.
type QC struct {
	RaterZColumn   string  `koanf:"rater_z_column"`
	RejectRaterZ   float64 `koanf:"reject_rater_z"`
	CompleteColumn string  `koanf:"complete_column"`
	CompleteValue  float64 `koanf:"complete_value"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// IndexColumn is the subject id column of every table the tool writes.
	IndexColumn string `koanf:"index_column"`

	// Procedure is the E-Prime procedure of main-task trials.
	Procedure string `koanf:"procedure"`

	// PracticeBlock is dropped before scoring.
	PracticeBlock int `koanf:"practice_block"`

	// MinRTms and MaxRTms bound a valid response; outside is a miss.
	MinRTms float64 `koanf:"min_rt_ms"`
	MaxRTms float64 `koanf:"max_rt_ms"`

	// TrimSD is the half-width, in standard deviations, of the trimmed mean.
	TrimSD float64 `koanf:"trim_sd"`

	// TrialTypes orders the per-type column blocks of the score table.
	TrialTypes []string `koanf:"trial_types"`

	Columns  Columns  `koanf:"columns"`
	Metadata Metadata `koanf:"metadata"`
	QC       QC       `koanf:"qc"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config holding the protocol defaults. Context is accepted
// first to satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		IndexColumn:   "vetsaid",
		Procedure:     "TrialProc",
		PracticeBlock: 1,
		MinRTms:       200,
		MaxRTms:       1300,
		TrimSD:        3,
		TrialTypes:    []string{"AX", "BX", "AY", "BY"},
		Columns: Columns{
			Subject:   "SubjectID",
			Procedure: "Procedure[Trial]",
			Block:     "TheBlock",
			Type:      "Type",
			Accuracy:  "TargetSlide.ACC",
			RT:        "TargetSlide.RT",
			Response:  "TargetSlide.RESP",
		},
		Metadata: Metadata{
			Columns: []string{"ZAXCPT_v2", "CPTCOMPLETE_v2", "CPTTIM_v2", "CPTVERS_v2", "CPTCOMPUTER_v2"},
		},
		QC: QC{
			RaterZColumn:   "ZAXCPT_v2",
			RejectRaterZ:   2,
			CompleteColumn: "CPTCOMPLETE_v2",
			CompleteValue:  0,
		},
	}
}

// MetadataKey is the join column of the metadata file.
func (c *Config) MetadataKey() string {
	if c.Metadata.Key != "" {
		return c.Metadata.Key
	}
	return c.IndexColumn
}

// Validate reports the first setting that would make a run meaningless.
func (c *Config) Validate() error {
	switch {
	case c.IndexColumn == "":
		return fmt.Errorf("%w: index_column must not be empty", ErrInvalidConfig)
	case c.MinRTms < 0 || c.MaxRTms <= c.MinRTms:
		return fmt.Errorf("%w: rt window [%v, %v] is empty", ErrInvalidConfig, c.MinRTms, c.MaxRTms)
	case c.TrimSD <= 0:
		return fmt.Errorf("%w: trim_sd must be positive", ErrInvalidConfig)
	case !slices.Contains(c.TrialTypes, "AX") || !slices.Contains(c.TrialTypes, "BX"):
		return fmt.Errorf("%w: trial_types must include AX and BX", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q is not text or json", ErrInvalidConfig, c.LogFormat)
	}
	for name, v := range map[string]string{
		"subject":   c.Columns.Subject,
		"procedure": c.Columns.Procedure,
		"block":     c.Columns.Block,
		"type":      c.Columns.Type,
		"accuracy":  c.Columns.Accuracy,
		"rt":        c.Columns.RT,
		"response":  c.Columns.Response,
	} {
		if v == "" {
			return fmt.Errorf("%w: columns.%s must not be empty", ErrInvalidConfig, name)
		}
	}
	return nil
}
