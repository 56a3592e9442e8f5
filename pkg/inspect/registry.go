package inspect

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/vango-dev/bindvar/pkg/binding"
)

// ErrDuplicate is returned when a name is already tracked.
var ErrDuplicate = errors.New("inspect: name already tracked")

// Snapshot is the last observed state of a tracked cell.
type Snapshot struct {
	Name string `json:"name"`

	// Value is the last successfully read value. It is kept when a later
	// read fails.
	Value any `json:"value"`

	// Error is the fault of the last read, if it failed.
	Error string `json:"error,omitempty"`

	// Version counts the reads recorded for this name, starting at 1.
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Registry holds snapshots of tracked cells. Snapshots are written from the
// engine thread and read from any goroutine.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Snapshot
	sinks   []func(Snapshot)
	now     func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Snapshot),
		now:     time.Now,
	}
}

// OnChange registers fn to receive every stored snapshot. fn runs on the
// engine thread after the registry lock is released.
func (r *Registry) OnChange(fn func(Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, fn)
}

// Snapshots returns all snapshots sorted by name.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	out := make([]Snapshot, 0, len(r.entries))
	for _, s := range r.entries {
		out = append(out, *s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the snapshot tracked under name.
func (r *Registry) Lookup(name string) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.entries[name]
	if !ok {
		return Snapshot{}, false
	}
	return *s, true
}

// Len returns the number of tracked names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) register(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	r.entries[name] = &Snapshot{Name: name}
	return nil
}

func (r *Registry) unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

func (r *Registry) store(name string, value any, err error) {
	r.mu.Lock()
	s, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return
	}
	if err != nil {
		s.Error = err.Error()
	} else {
		s.Value = jsonSafe(value)
		s.Error = ""
	}
	s.Version++
	s.UpdatedAt = r.now()
	snap := *s
	sinks := r.sinks
	r.mu.Unlock()

	for _, fn := range sinks {
		fn(snap)
	}
}

// jsonSafe replaces float values that encoding/json rejects.
func jsonSafe(v any) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return f
}

// Track records src under name and keeps the snapshot current through a
// listener. It must be called on the engine thread. The returned func
// detaches the listener and forgets the name.
func Track[T any](r *Registry, name string, src binding.ReadOnly[T]) (untrack func(), err error) {
	return track(r, name, src, func() (any, error) { return src.Get() })
}

// TrackFloat is Track for unboxed float cells.
func TrackFloat(r *Registry, name string, src binding.ReadOnlyFloat) (untrack func(), err error) {
	return track(r, name, src, func() (any, error) { return src.GetFloat() })
}

// TrackInt is Track for unboxed int cells.
func TrackInt(r *Registry, name string, src binding.ReadOnlyInt) (untrack func(), err error) {
	return track(r, name, src, func() (any, error) { return src.GetInt() })
}

func track(r *Registry, name string, src binding.Observable, read func() (any, error)) (func(), error) {
	if err := r.register(name); err != nil {
		return nil, err
	}
	update := func() {
		v, err := read()
		r.store(name, v, err)
	}
	l := binding.NewListener(func(binding.Observable) { update() })
	src.AddListener(l)
	update()

	var once sync.Once
	return func() {
		once.Do(func() {
			src.RemoveListener(l)
			r.unregister(name)
		})
	}, nil
}
