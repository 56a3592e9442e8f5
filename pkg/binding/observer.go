package binding

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RecomputeEvent describes one evaluation of a computed or side-effecting cell.
type RecomputeEvent struct {
	Cell     Observable
	Start    time.Time
	Duration time.Duration

	// Deps is the number of cells read during the evaluation.
	Deps int

	// Changed is true when listeners were notified as a result.
	Changed bool

	// Err is the fault that failed the evaluation, if any.
	Err error
}

// Observer receives engine events. Observers run synchronously on the
// engine goroutine and must not block.
type Observer interface {
	// Recomputed is called after every evaluation, successful or not.
	Recomputed(e RecomputeEvent)

	// Notified is called after a cell fired its listeners.
	Notified(cell Observable, listeners int)

	// Invalidated is called when a clean cell is marked dirty.
	Invalidated(cell Observable)
}

// NopObserver ignores all events. Embed it to implement a subset of Observer.
type NopObserver struct{}

func (NopObserver) Recomputed(RecomputeEvent)   {}
func (NopObserver) Notified(Observable, int)    {}
func (NopObserver) Invalidated(cell Observable) {}

type multiObserver []Observer

// Observers fans events out to every non-nil observer, in order.
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m multiObserver) Recomputed(e RecomputeEvent) {
	for _, o := range m {
		o.Recomputed(e)
	}
}

func (m multiObserver) Notified(cell Observable, listeners int) {
	for _, o := range m {
		o.Notified(cell, listeners)
	}
}

func (m multiObserver) Invalidated(cell Observable) {
	for _, o := range m {
		o.Invalidated(cell)
	}
}

// logObserver writes engine events to a slog.Logger.
type logObserver struct {
	logger *slog.Logger
}

// LogObserver returns an Observer that logs evaluations and notifications at
// debug level and failed evaluations at warn level. A nil logger uses
// slog.Default().
func LogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &logObserver{logger: logger}
}

func (o *logObserver) Recomputed(e RecomputeEvent) {
	attrs := []slog.Attr{
		slog.String("cell", e.Cell.Name()),
		slog.Uint64("id", e.Cell.ID()),
		slog.Duration("duration", e.Duration),
		slog.Int("deps", e.Deps),
	}
	if e.Err != nil {
		attrs = append(attrs, slog.Bool("cycle", errors.Is(e.Err, ErrCycle)), slog.Any("error", e.Err))
		o.logger.LogAttrs(context.Background(), slog.LevelWarn, "binding recompute failed", attrs...)
		return
	}
	attrs = append(attrs, slog.Bool("changed", e.Changed))
	o.logger.LogAttrs(context.Background(), slog.LevelDebug, "binding recompute", attrs...)
}

func (o *logObserver) Notified(cell Observable, listeners int) {
	o.logger.LogAttrs(context.Background(), slog.LevelDebug, "binding notify",
		slog.String("cell", cell.Name()),
		slog.Int("listeners", listeners),
	)
}

func (o *logObserver) Invalidated(cell Observable) {
	o.logger.LogAttrs(context.Background(), slog.LevelDebug, "binding invalidate",
		slog.String("cell", cell.Name()),
	)
}
