// Package bindtrace records binding engine evaluations as OpenTelemetry spans.
//
// Each evaluation of an observed cell becomes one span named
// "binding.recompute <cell>", timed from the evaluation's own start and
// duration. Listener notifications can be added as spans too.
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// supplied with WithTracerProvider:
//
//	obs := bindtrace.New(bindtrace.WithTracerName("hud"))
//	label := binding.Computed(fn, binding.WithObserver(obs))
package bindtrace

import (
	"context"
	"errors"

	"github.com/vango-dev/bindvar/pkg/binding"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name.
const defaultTracerName = "bindvar"

// Config configures the tracing observer.
type Config struct {
	// TracerName is the name of the tracer (default: "bindvar").
	TracerName string

	// Provider supplies the tracer. If nil, the global provider is used.
	Provider trace.TracerProvider

	// Filter determines which cells are traced.
	// If nil, all cells are traced.
	Filter func(cell binding.Observable) bool

	// Notifications also records a span each time a cell fires its listeners.
	Notifications bool
}

// Option configures the tracing observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = tp
	}
}

// WithFilter sets a filter function for cells.
func WithFilter(filter func(cell binding.Observable) bool) Option {
	return func(c *Config) {
		c.Filter = filter
	}
}

// WithNotifications enables spans for listener notifications.
func WithNotifications(enabled bool) Option {
	return func(c *Config) {
		c.Notifications = enabled
	}
}

// Observer is a binding.Observer that emits spans.
type Observer struct {
	binding.NopObserver

	tracer        trace.Tracer
	filter        func(binding.Observable) bool
	notifications bool
}

var _ binding.Observer = (*Observer)(nil)

// New creates a tracing observer.
func New(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Observer{
		tracer:        provider.Tracer(config.TracerName),
		filter:        config.Filter,
		notifications: config.Notifications,
	}
}

// Recomputed implements binding.Observer.
func (o *Observer) Recomputed(e binding.RecomputeEvent) {
	if !o.traced(e.Cell) {
		return
	}
	_, span := o.tracer.Start(context.Background(), "binding.recompute "+e.Cell.Name(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(e.Start),
		trace.WithAttributes(
			attribute.String("binding.cell", e.Cell.Name()),
			attribute.Int64("binding.cell_id", int64(e.Cell.ID())),
			attribute.Int("binding.deps", e.Deps),
		),
	)
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetAttributes(attribute.Bool("binding.cycle", errors.Is(e.Err, binding.ErrCycle)))
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetAttributes(attribute.Bool("binding.changed", e.Changed))
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(e.Start.Add(e.Duration)))
}

// Notified implements binding.Observer.
func (o *Observer) Notified(cell binding.Observable, listeners int) {
	if !o.notifications || !o.traced(cell) {
		return
	}
	_, span := o.tracer.Start(context.Background(), "binding.notify "+cell.Name(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("binding.cell", cell.Name()),
			attribute.Int("binding.listeners", listeners),
		),
	)
	span.End()
}

func (o *Observer) traced(cell binding.Observable) bool {
	return o.filter == nil || o.filter(cell)
}
