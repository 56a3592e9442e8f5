package bindmetrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/bindvar/pkg/binding"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "bindvar").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for evaluation duration.
	// Default: DefaultBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// DefaultBuckets covers evaluations from a microsecond to a frame at 60Hz.
var DefaultBuckets = []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.0166}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "bindvar",
		Buckets:   DefaultBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Outcome label values of recomputes_total.
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeError     = "error"
)

// Observer is a binding.Observer backed by Prometheus collectors.
type Observer struct {
	recomputesTotal   *prometheus.CounterVec
	recomputeDuration *prometheus.HistogramVec
	recomputeErrors   *prometheus.CounterVec
	dependencies      *prometheus.GaugeVec
	listenerCalls     *prometheus.CounterVec
	invalidations     *prometheus.CounterVec
}

var _ binding.Observer = (*Observer)(nil)

// New registers the binding metrics with the configured registry and returns
// an observer that records into them. Registering twice with the same
// registry panics, as with promauto.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		recomputesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recomputes_total",
			Help:        "Total number of cell evaluations by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"cell", "outcome"}),

		recomputeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recompute_duration_seconds",
			Help:        "Cell evaluation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"cell"}),

		recomputeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recompute_errors_total",
			Help:        "Total number of failed cell evaluations",
			ConstLabels: config.ConstLabels,
		}, []string{"cell", "error_type"}),

		dependencies: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "recompute_dependencies",
			Help:        "Number of cells read by the most recent evaluation",
			ConstLabels: config.ConstLabels,
		}, []string{"cell"}),

		listenerCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listener_calls_total",
			Help:        "Total number of listener invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"cell"}),

		invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "invalidations_total",
			Help:        "Total number of clean to dirty transitions",
			ConstLabels: config.ConstLabels,
		}, []string{"cell"}),
	}
}

// Recomputed implements binding.Observer.
func (o *Observer) Recomputed(e binding.RecomputeEvent) {
	cell := e.Cell.Name()
	o.recomputeDuration.WithLabelValues(cell).Observe(e.Duration.Seconds())
	o.dependencies.WithLabelValues(cell).Set(float64(e.Deps))

	outcome := OutcomeUnchanged
	switch {
	case e.Err != nil:
		outcome = OutcomeError
		o.recomputeErrors.WithLabelValues(cell, errorType(e.Err)).Inc()
	case e.Changed:
		outcome = OutcomeChanged
	}
	o.recomputesTotal.WithLabelValues(cell, outcome).Inc()
}

// Notified implements binding.Observer.
func (o *Observer) Notified(cell binding.Observable, listeners int) {
	o.listenerCalls.WithLabelValues(cell.Name()).Add(float64(listeners))
}

// Invalidated implements binding.Observer.
func (o *Observer) Invalidated(cell binding.Observable) {
	o.invalidations.WithLabelValues(cell.Name()).Inc()
}

// errorType keeps the error label to a fixed set.
func errorType(err error) string {
	if errors.Is(err, binding.ErrCycle) {
		return "cycle"
	}
	return "compute"
}
