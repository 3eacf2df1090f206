// Package metrics provides Prometheus metrics for the gambit rating pipeline.
//
// The report server exposes the registry for scraping. The rank command is a
// one-shot batch run, so there the registry is dumped in the text exposition
// format with WriteTextfile for pickup by a node_exporter textfile collector.
package metrics

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const textfilePermission = 0o644

// Manager owns every metric the pipeline records.
type Manager struct {
	namespace     string
	subsystem     string
	updateBuckets []float64
	registry      prometheus.Registerer

	// Ingestion
	recordsRead       prometheus.Counter
	recordsSkipped    *prometheus.CounterVec
	outcomesCollected prometheus.Counter

	// Rating
	outcomesApplied    prometheus.Counter
	ratingUpdateMicros prometheus.Histogram
	competitorsTracked prometheus.Gauge

	// Output
	leaderboardEntries prometheus.Gauge
	runDuration        prometheus.Gauge

	// Report server
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps Go runtime collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:     "gambit",
		subsystem:     "rating",
		updateBuckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
		registry:      prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_read_total",
		Help:      "Total number of game records read from the archive",
	})

	m.recordsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_skipped_total",
		Help:      "Game records skipped without producing an outcome, by error kind",
	}, []string{"kind"})

	m.outcomesCollected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "outcomes_collected_total",
		Help:      "Valid game outcomes accumulated by the collector",
	})

	m.outcomesApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "outcomes_applied_total",
		Help:      "Game outcomes folded into the rating state",
	})

	m.ratingUpdateMicros = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "update_duration_microseconds",
		Help:      "Time spent on one pairwise Glicko-2 update",
		Buckets:   m.updateBuckets,
	})

	m.competitorsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "competitors_tracked",
		Help:      "Number of competitors with a stored rating state",
	})

	m.leaderboardEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_entries",
		Help:      "Competitors that passed the deviation threshold",
	})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last pipeline run",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Report server requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "Report server request latency",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100},
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Errors by component and error type",
	}, []string{"component", "error_type"})
}

// RecordRecordRead increments the records read counter.
func RecordRecordRead() {
	globalManager.recordsRead.Inc()
}

// RecordRecordSkipped increments the skipped records counter for kind.
func RecordRecordSkipped(kind string) {
	globalManager.recordsSkipped.WithLabelValues(kind).Inc()
}

// RecordOutcomeCollected increments the collected outcomes counter.
func RecordOutcomeCollected() {
	globalManager.outcomesCollected.Inc()
}

// RecordOutcomeApplied increments the applied outcomes counter.
func RecordOutcomeApplied() {
	globalManager.outcomesApplied.Inc()
}

// RecordRatingUpdateLatency records one pairwise update in microseconds.
func RecordRatingUpdateLatency(micros float64) {
	globalManager.ratingUpdateMicros.Observe(micros)
}

// UpdateCompetitorsTracked sets the number of stored competitors.
func UpdateCompetitorsTracked(count int) {
	globalManager.competitorsTracked.Set(float64(count))
}

// UpdateLeaderboardEntries sets the size of the rendered leaderboard.
func UpdateLeaderboardEntries(count int) {
	globalManager.leaderboardEntries.Set(float64(count))
}

// UpdateRunDuration sets the wall time of the last run in seconds.
func UpdateRunDuration(seconds float64) {
	globalManager.runDuration.Set(seconds)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordHTTPRequest counts one report server request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records the latency of one report server request.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes every metric family gathered from g to path in the
// Prometheus text format. The file is written next to path and renamed into
// place so a collector never reads a partial file.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := bufio.NewWriter(tmp)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := os.Chmod(tmp.Name(), textfilePermission); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
