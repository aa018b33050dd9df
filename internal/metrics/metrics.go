// Package metrics provides Prometheus metrics for pipeline runs.
//
// The pipeline is a batch tool, so metrics live in a private registry and are
// exported as a node_exporter textfile after a run instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a pipeline run.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Per-file outcomes
	FilesProcessed *prometheus.CounterVec
	FilesFailed    *prometheus.CounterVec
	FilesSkipped   *prometheus.CounterVec

	// Stage side effects
	SpansErased        *prometheus.CounterVec
	ReplacementsLogged *prometheus.CounterVec
	FootnoteMismatches *prometheus.CounterVec

	// Stage timing
	StageDuration *prometheus.GaugeVec
}

// New creates and registers all metrics in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := []string{"stage"}

	return &Metrics{
		registry: reg,
		FilesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "justel_files_processed_total",
				Help: "Total number of files written by a stage",
			},
			labels,
		),
		FilesFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "justel_files_failed_total",
				Help: "Total number of files skipped after a transform failure",
			},
			labels,
		),
		FilesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "justel_files_skipped_total",
				Help: "Total number of files a stage chose not to write",
			},
			labels,
		),
		SpansErased: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "justel_spans_erased_total",
				Help: "Total number of marker-delimited spans erased",
			},
			labels,
		),
		ReplacementsLogged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "justel_replacements_logged_total",
				Help: "Total number of replacement audit lines written",
			},
			labels,
		),
		FootnoteMismatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "justel_footnote_mismatches_total",
				Help: "Total number of footnotes whose opening and closing numbers differ",
			},
			labels,
		),
		StageDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "justel_stage_duration_seconds",
				Help: "Wall-clock duration of the last run of a stage",
			},
			labels,
		),
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStage records the outcome counts and duration of a stage run.
func (m *Metrics) ObserveStage(stage string, processed, failed, skipped int, d time.Duration) {
	if m == nil {
		return
	}
	m.FilesProcessed.WithLabelValues(stage).Add(float64(processed))
	m.FilesFailed.WithLabelValues(stage).Add(float64(failed))
	m.FilesSkipped.WithLabelValues(stage).Add(float64(skipped))
	m.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// AddErased counts erased spans.
func (m *Metrics) AddErased(stage string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.SpansErased.WithLabelValues(stage).Add(float64(n))
}

// AddReplacements counts replacement audit lines.
func (m *Metrics) AddReplacements(stage string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ReplacementsLogged.WithLabelValues(stage).Add(float64(n))
}

// AddMismatches counts footnote number mismatches.
func (m *Metrics) AddMismatches(stage string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.FootnoteMismatches.WithLabelValues(stage).Add(float64(n))
}

// WriteTextfile writes the registry in the text exposition format to path,
// atomically, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
