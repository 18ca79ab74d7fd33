package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons and stage names used as label values.
const (
	ReasonNotTask  = "not_task"
	ReasonPractice = "practice"

	StageRead      = "read"
	StageFilter    = "filter"
	StageAggregate = "aggregate"
	StageSDT       = "sdt"
	StageExclude   = "exclude"
	StageWrite     = "write"
)

// Manager holds the Prometheus metrics for a scoring run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	trialsRead         prometheus.Counter
	trialsDropped      *prometheus.CounterVec
	trialsReclassified prometheus.Counter
	subjectsScored     prometheus.Counter
	subjectsExcluded   *prometheus.CounterVec
	stageDuration      *prometheus.HistogramVec
	lastRunTimestamp   prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Initialize global metrics on a custom registry to avoid default Go metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager on its own registry unless one is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "axcpt",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.trialsRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trials_read_total",
		Help:      "Trial rows read from the merged export",
	})

	m.trialsDropped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "trials_dropped_total",
			Help:      "Trial rows removed before scoring by reason",
		},
		[]string{"reason"},
	)

	m.trialsReclassified = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trials_reclassified_total",
		Help:      "Trials marked inaccurate for a reaction time outside the valid window",
	})

	m.subjectsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "subjects_scored_total",
		Help:      "Subjects with a row in the score table",
	})

	m.subjectsExcluded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "subjects_excluded_total",
			Help:      "Subjects excluded from analysis by violated rule",
		},
		[]string{"rule"},
	)

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_duration_milliseconds",
			Help:      "Wall time of each pipeline stage in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.lastRunTimestamp = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last scoring run completed",
	})
}

// RecordTrialsRead adds n to the trials read counter.
func (m *Manager) RecordTrialsRead(n int) { m.trialsRead.Add(float64(n)) }

// RecordTrialsDropped adds n dropped trials under reason.
func (m *Manager) RecordTrialsDropped(reason string, n int) {
	m.trialsDropped.WithLabelValues(reason).Add(float64(n))
}

// RecordTrialsReclassified adds n to the out-of-window counter.
func (m *Manager) RecordTrialsReclassified(n int) { m.trialsReclassified.Add(float64(n)) }

// RecordSubjectsScored adds n to the scored subjects counter.
func (m *Manager) RecordSubjectsScored(n int) { m.subjectsScored.Add(float64(n)) }

// RecordSubjectExcluded counts one subject violating rule.
func (m *Manager) RecordSubjectExcluded(rule string) {
	m.subjectsExcluded.WithLabelValues(rule).Inc()
}

// ObserveStage records how long stage took.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(float64(d) / float64(time.Millisecond))
}

// RecordRunCompleted stamps the completion time of a run.
func (m *Manager) RecordRunCompleted(at time.Time) {
	m.lastRunTimestamp.Set(float64(at.Unix()))
}

// Registry returns the registry this manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes every gathered metric to path in the text exposition
// format read by the node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteTextfile, err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteTextfile, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }

// GetRegistry returns the registry of the process-wide manager.
func GetRegistry() *prometheus.Registry { return globalManager.registry }
