package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "argontune"

// Outcome labels for ObserveRun.
const (
	OutcomeOK       = "ok"
	OutcomeStopped  = "stopped"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// Metrics groups the collectors recorded during tuning.
type Metrics struct {
	registry     *prometheus.Registry
	hashDuration *prometheus.HistogramVec
	samples      *prometheus.CounterVec
	runs         *prometheus.CounterVec
	cache        *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		hashDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "hash_duration_seconds",
			Help:      "Wall-clock time of one timed hash during calibration.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"variant"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "samples_total",
			Help:      "Samples recorded by calibration runs.",
		}, []string{"strategy"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "calibration_runs_total",
			Help:      "Completed calibration runs by outcome.",
		}, []string{"strategy", "outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_lookups_total",
			Help:      "Parameter cache lookups by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.hashDuration,
		m.samples,
		m.runs,
		m.cache,
		NewMemoryCollector().HeapGauge(Namespace),
	)
	return m
}

// Registry returns the private registry, for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHash records the duration of one timed hash.
func (m *Metrics) ObserveHash(variant string, d time.Duration) {
	if m == nil {
		return
	}
	m.hashDuration.WithLabelValues(variant).Observe(d.Seconds())
}

// ObserveSample counts one recorded sample.
func (m *Metrics) ObserveSample(strategy string) {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(strategy).Inc()
}

// ObserveRun counts one finished calibration run.
func (m *Metrics) ObserveRun(strategy, outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(strategy, outcome).Inc()
}

// ObserveCache counts one cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
