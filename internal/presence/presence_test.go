package presence

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/bindvar/pkg/binding"
)

type recordingPublisher struct {
	mu   sync.Mutex
	got  []Activity
	err  error
	sent chan Activity
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{sent: make(chan Activity, 16)}
}

func (p *recordingPublisher) Publish(ctx context.Context, a Activity) error {
	p.mu.Lock()
	err := p.err
	if err == nil {
		p.got = append(p.got, a)
	}
	p.mu.Unlock()
	if err == nil {
		p.sent <- a
	}
	return err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.got)
}

func waitPublished(t *testing.T, p *recordingPublisher) Activity {
	t.Helper()
	select {
	case a := <-p.sent:
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for publish")
		return Activity{}
	}
}

func TestServiceLifecycle(t *testing.T) {
	pub := newRecordingPublisher()
	s := New(Config{Enabled: true, Interval: time.Millisecond}, pub, nil)

	if s.Running() {
		t.Fatal("expected new service to be stopped")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrRunning) {
		t.Fatalf("expected ErrRunning, got %v", err)
	}
	if !s.Running() {
		t.Fatal("expected service to be running")
	}

	s.Stop()
	s.Stop()
	if s.Running() {
		t.Fatal("expected service to be stopped")
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart error: %v", err)
	}
	s.Stop()
}

func TestServicePublishesChanges(t *testing.T) {
	pub := newRecordingPublisher()
	s := New(Config{Enabled: true, Interval: time.Millisecond}, pub, nil)

	level := binding.New("Menu")
	activity := binding.Computed(func(ctx *binding.Context) Activity {
		return Activity{State: binding.Use(ctx, level)}
	})
	s.Watch(activity)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()

	if got := waitPublished(t, pub); got.State != "Menu" {
		t.Fatalf("expected Menu, got %q", got.State)
	}

	level.Set("Level 2")
	if got := waitPublished(t, pub); got.State != "Level 2" {
		t.Fatalf("expected Level 2, got %q", got.State)
	}

	time.Sleep(10 * time.Millisecond)
	if n := pub.count(); n != 2 {
		t.Fatalf("expected unchanged activity not to be republished, got %d publishes", n)
	}
}

func TestServiceEnableFlag(t *testing.T) {
	pub := newRecordingPublisher()
	s := New(Config{Enabled: false, Interval: time.Millisecond}, pub, nil)
	s.Watch(binding.New(Activity{State: "Playing"}))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()

	time.Sleep(10 * time.Millisecond)
	if n := pub.count(); n != 0 {
		t.Fatalf("expected nothing published while disabled, got %d", n)
	}

	s.SetEnabled(true)
	if !s.Enabled() {
		t.Fatal("expected Enabled() to report true")
	}
	waitPublished(t, pub)

	s.SetEnabled(false)
	s.SetEnabled(true)
	if got := waitPublished(t, pub); got.State != "Playing" {
		t.Fatalf("expected republish after re-enable, got %q", got.State)
	}
}

func TestServiceRetriesFailedPublish(t *testing.T) {
	pub := newRecordingPublisher()
	pub.err = errors.New("offline")
	s := New(Config{Enabled: true, Interval: time.Millisecond}, pub, slog.New(slog.DiscardHandler))
	s.Watch(binding.New(Activity{State: "Playing"}))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()

	time.Sleep(5 * time.Millisecond)
	pub.mu.Lock()
	pub.err = nil
	pub.mu.Unlock()

	if got := waitPublished(t, pub); got.State != "Playing" {
		t.Fatalf("expected Playing after recovery, got %q", got.State)
	}
}

func TestServiceWatchKeepsLastGoodActivity(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := New(DefaultConfig(), newRecordingPublisher(), logger)

	fail := binding.New(false)
	activity := binding.ComputedE(func(ctx *binding.Context) (Activity, error) {
		if binding.Use(ctx, fail) {
			return Activity{}, errors.New("scene unloaded")
		}
		return Activity{State: "Playing"}, nil
	}, binding.WithName("activity"))
	s.Watch(activity)

	fail.Set(true)

	a, ok := s.Latest()
	if !ok || a.State != "Playing" {
		t.Fatalf("expected last good activity, got %+v (ok=%v)", a, ok)
	}
	if !strings.Contains(buf.String(), "presence source failed") {
		t.Errorf("expected a warning to be logged, got:\n%s", buf.String())
	}
}

func TestServiceUnwatch(t *testing.T) {
	s := New(DefaultConfig(), newRecordingPublisher(), nil)
	state := binding.New(Activity{State: "A"})
	s.Watch(state)
	s.Unwatch()
	s.Unwatch()

	state.Set(Activity{State: "B"})
	if a, _ := s.Latest(); a.State != "A" {
		t.Fatalf("expected unwatched source to be ignored, got %q", a.State)
	}
}

func TestPublishers(t *testing.T) {
	one := newRecordingPublisher()
	bad := PublisherFunc(func(context.Context, Activity) error { return errors.New("down") })

	err := Publishers(one, bad).Publish(context.Background(), Activity{State: "x"})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if one.count() != 1 {
		t.Fatalf("expected the healthy publisher to receive the activity, got %d", one.count())
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := LogPublisher{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	if err := p.Publish(context.Background(), Activity{State: "Level 3", Details: "3 lives"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `state="Level 3"`) {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}
