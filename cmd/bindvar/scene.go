package main

import (
	"fmt"
	"math"
	"time"

	"github.com/vango-dev/bindvar/internal/presence"
	"github.com/vango-dev/bindvar/pkg/binding"
	"github.com/vango-dev/bindvar/pkg/inspect"
)

const (
	levelLength     = 30 * time.Second
	levelsPerLife   = 3
	startingLives   = 3
	progressPercent = 100
)

// scene is the graph driven by the serve frame loop. All of its cells are
// read and written on the frame loop goroutine only.
type scene struct {
	clock    *binding.FloatVar
	paused   *binding.BoolVar
	level    *binding.IntVar
	lives    *binding.IntVar
	progress *binding.FloatVar
	label    *binding.Var[string]
	activity *binding.Var[presence.Activity]
}

func newScene(started time.Time, obs binding.Observer) *scene {
	s := &scene{}
	with := func(name string) []binding.Option {
		return []binding.Option{binding.WithName(name), binding.WithObserver(obs)}
	}

	s.clock = binding.NewFloat(0, with("clock")...)
	s.paused = binding.NewBool(false, with("paused")...)
	s.lives = binding.NewInt(startingLives, with("lives")...)

	s.level = binding.ComputedInt(func(ctx *binding.Context) int {
		return int(binding.UseFloat(ctx, s.clock)/levelLength.Seconds()) + 1
	}, with("level")...)

	s.progress = binding.ComputedFloat(func(ctx *binding.Context) float64 {
		elapsed := math.Mod(binding.UseFloat(ctx, s.clock), levelLength.Seconds())
		return math.Floor(elapsed/levelLength.Seconds()*progressPercent) / progressPercent
	}, with("progress")...)

	s.label = binding.Computed(func(ctx *binding.Context) string {
		if binding.Use(ctx, s.paused.Var) {
			return "Paused"
		}
		return fmt.Sprintf("Level %d, %d lives", binding.UseInt(ctx, s.level), binding.UseInt(ctx, s.lives))
	}, with("label")...)

	s.activity = binding.Computed(func(ctx *binding.Context) presence.Activity {
		a := presence.Activity{State: binding.Use(ctx, s.label)}
		if !binding.Use(ctx, s.paused.Var) {
			a.Details = fmt.Sprintf("%.0f%% through the level", binding.UseFloat(ctx, s.progress)*progressPercent)
			a.StartedAt = started
		}
		return a
	}, with("activity")...)

	return s
}

// advance moves the clock forward by dt unless the scene is paused. Every
// levelsPerLife completed levels award a life.
func (s *scene) advance(dt time.Duration) error {
	paused, err := s.paused.Get()
	if err != nil || paused {
		return err
	}

	before, err := s.level.GetInt()
	if err != nil {
		return err
	}
	if err := s.clock.Add(dt.Seconds()); err != nil {
		return err
	}
	after, err := s.level.GetInt()
	if err != nil {
		return err
	}

	for l := before + 1; l <= after; l++ {
		if (l-1)%levelsPerLife == 0 {
			if err := s.lives.Inc(); err != nil {
				return err
			}
		}
	}
	return nil
}

// track registers every cell with reg and returns a func that removes them.
func (s *scene) track(reg *inspect.Registry) (untrack func(), err error) {
	var undo []func()
	untrack = func() {
		for _, u := range undo {
			u()
		}
	}

	adds := []func() (func(), error){
		func() (func(), error) { return inspect.TrackFloat(reg, "clock", s.clock) },
		func() (func(), error) { return inspect.Track(reg, "paused", s.paused.ReadOnly()) },
		func() (func(), error) { return inspect.TrackInt(reg, "level", s.level) },
		func() (func(), error) { return inspect.TrackInt(reg, "lives", s.lives) },
		func() (func(), error) { return inspect.TrackFloat(reg, "progress", s.progress) },
		func() (func(), error) { return inspect.Track(reg, "label", s.label.ReadOnly()) },
	}
	for _, add := range adds {
		u, err := add()
		if err != nil {
			untrack()
			return nil, err
		}
		undo = append(undo, u)
	}
	return untrack, nil
}
