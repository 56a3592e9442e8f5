// Package presence publishes a process-wide activity status, such as a
// "now playing" line, from a value in a binding graph.
//
// A Service is created explicitly and owned by the program. The engine side
// only stores the latest activity; a single polling goroutine started with
// Start publishes it, so the engine never blocks on the publisher and the
// goroutine never touches cells.
package presence

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/bindvar/pkg/binding"
)

// ErrRunning is returned by Start when the service is already running.
var ErrRunning = errors.New("presence: already running")

// Activity is the status shown to other players.
type Activity struct {
	State     string    `json:"state"`
	Details   string    `json:"details,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
}

// Equal reports whether a and b describe the same status.
func (a Activity) Equal(b Activity) bool {
	return a.State == b.State && a.Details == b.Details && a.StartedAt.Equal(b.StartedAt)
}

// Publisher delivers an activity to an external service.
type Publisher interface {
	Publish(ctx context.Context, a Activity) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, a Activity) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, a Activity) error {
	return f(ctx, a)
}

// Publishers fans an activity out to every publisher. All publishers are
// tried; their errors are joined.
func Publishers(pubs ...Publisher) Publisher {
	return PublisherFunc(func(ctx context.Context, a Activity) error {
		var errs []error
		for _, p := range pubs {
			if err := p.Publish(ctx, a); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// Config configures a Service.
type Config struct {
	// Enabled is the initial value of the enable flag.
	Enabled bool

	// Interval is how often the latest activity is considered for publishing.
	// Default: 15s
	Interval time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Interval: 15 * time.Second,
	}
}

// Service publishes the latest activity on a fixed interval.
type Service struct {
	interval  time.Duration
	publisher Publisher
	logger    *slog.Logger

	// Shared between the engine thread and the polling goroutine.
	enabled atomic.Bool
	resend  atomic.Bool
	latest  atomic.Pointer[Activity]

	// Engine thread only.
	source   binding.ReadOnly[Activity]
	listener binding.Listener

	// Polling goroutine only.
	published *Activity

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped service.
func New(config Config, publisher Publisher, logger *slog.Logger) *Service {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		interval:  config.Interval,
		publisher: publisher,
		logger:    logger.With("component", "presence"),
	}
	s.enabled.Store(config.Enabled)
	return s
}

// Watch makes src the activity source, replacing any previous one. It must
// be called on the engine thread. A fault while reading src is logged and
// the last good activity is kept.
func (s *Service) Watch(src binding.ReadOnly[Activity]) {
	s.Unwatch()
	s.source = src
	s.listener = binding.Watch(src, s.capture)
	s.capture(src)
}

// Unwatch detaches the current activity source, if any. It must be called
// on the engine thread.
func (s *Service) Unwatch() {
	if s.source == nil {
		return
	}
	s.source.RemoveListener(s.listener)
	s.source = nil
	s.listener = nil
}

func (s *Service) capture(src binding.ReadOnly[Activity]) {
	a, err := src.Get()
	if err != nil {
		s.logger.Warn("presence source failed", "cell", src.Name(), "error", err)
		return
	}
	s.latest.Store(&a)
}

// SetEnabled turns publishing on or off. It is safe to call from any
// goroutine. Turning publishing back on republishes the latest activity.
func (s *Service) SetEnabled(enabled bool) {
	if prev := s.enabled.Swap(enabled); !prev && enabled {
		s.resend.Store(true)
	}
}

// Enabled reports the enable flag.
func (s *Service) Enabled() bool {
	return s.enabled.Load()
}

// Latest returns the most recent activity captured from the source.
func (s *Service) Latest() (Activity, bool) {
	a := s.latest.Load()
	if a == nil {
		return Activity{}, false
	}
	return *a, true
}

// Start launches the polling goroutine. It stops when ctx is done or Stop is
// called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	return nil
}

// Stop cancels the polling goroutine and waits for it to exit. Stopping a
// stopped service is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the polling goroutine is active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug("presence started", "interval", s.interval)
	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			s.logger.Debug("presence stopped")
			return
		}
	}
}

// tick publishes the latest activity if publishing is enabled and the
// activity differs from the last one delivered.
func (s *Service) tick(ctx context.Context) {
	if !s.enabled.Load() {
		return
	}
	a := s.latest.Load()
	if a == nil {
		return
	}
	force := s.resend.Swap(false)
	if !force && s.published != nil && s.published.Equal(*a) {
		return
	}
	if err := s.publisher.Publish(ctx, *a); err != nil {
		s.logger.Warn("presence publish failed", "error", err)
		if force {
			s.resend.Store(true)
		}
		return
	}
	s.published = a
}

// LogPublisher writes activities to a slog.Logger.
type LogPublisher struct {
	Logger *slog.Logger
}

// Publish implements Publisher.
func (p LogPublisher) Publish(ctx context.Context, a Activity) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "presence", "state", a.State, "details", a.Details)
	return nil
}
