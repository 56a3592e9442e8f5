package binding

import (
	"fmt"
	"time"
)

// mode selects how a Var produces its value.
type mode uint8

const (
	// modeConstant holds a plain value set by the caller.
	modeConstant mode = iota

	// modeComputed derives the value from a computation.
	modeComputed

	// modeSideEffecting applies a transform to the previous value (or a
	// seed) in place.
	modeSideEffecting
)

// Var is a reactive cell. It holds a constant, a computation over other
// cells, or a side-effecting transform.
//
// Computed and side-effecting cells are lazy: they evaluate on Get, cache the
// result, and evaluate again only after a dependency changed. Every
// evaluation rediscovers the dependency set, so a computation may read
// different cells on different runs.
//
// A Var must only be used from one goroutine.
type Var[T any] struct {
	id   uint64
	name string

	// self is the identity reported to listeners and observers. It is the
	// Var itself unless the Var is wrapped by a primitive cell.
	self Observable

	mode      mode
	compute   func(*Context) (T, error)
	transform func(*Context, T) T

	// seed is the argument of the next side-effecting evaluation; seeded
	// reports whether it is still pending.
	seed   T
	seeded bool

	// value is the cached value. Valid whenever dirty is false.
	value    T
	hasValue bool
	dirty    bool

	// computing is set while the cell's own evaluation runs.
	computing bool

	// faulted is set when the last evaluation failed. The next successful
	// evaluation counts as a change so listeners learn of the recovery.
	faulted bool

	// epoch advances whenever the cell is written or invalidated; an
	// evaluation that sees it move discards its result.
	epoch uint64

	// handedOut is set when a discarded result was returned to a reader.
	// Dependents may have cached it, so they are invalidated once the cell
	// caches a value again.
	handedOut bool

	// deps are the cells read during the last successful evaluation.
	deps []Observable
	link *dependencyLink

	// dependents are cells that read this one during their last
	// successful evaluation.
	dependents []dependent

	listeners listenerSet

	equal    func(T, T) bool
	observer Observer
}

func newVar[T any](opts []Option, def func(T, T) bool) *Var[T] {
	o := applyOptions(opts)
	v := &Var[T]{
		id:       NextID(),
		equal:    equalFor(o, def),
		observer: o.observer,
	}
	v.name = o.name
	if v.name == "" {
		v.name = fmt.Sprintf("var#%d", v.id)
	}
	v.self = v
	return v
}

// New creates a constant cell holding value.
func New[T any](value T, opts ...Option) *Var[T] {
	v := newVar[T](opts, defaultEquals[T])
	v.value = value
	v.hasValue = true
	return v
}

// Computed creates a cell derived from fn. fn is not run until the first Get.
// A computation signals a fault with ctx.Fail.
func Computed[T any](fn func(ctx *Context) T, opts ...Option) *Var[T] {
	return ComputedE(liftComputation(fn), opts...)
}

// ComputedE is Computed for computations that return an error.
func ComputedE[T any](fn func(ctx *Context) (T, error), opts ...Option) *Var[T] {
	v := newVar[T](opts, defaultEquals[T])
	v.mode = modeComputed
	v.compute = fn
	v.dirty = true
	return v
}

// SideEffecting creates a cell whose first evaluation applies fn to seed and
// whose later evaluations apply fn to the previous value.
func SideEffecting[T any](seed T, fn func(ctx *Context, existing T) T, opts ...Option) *Var[T] {
	v := newVar[T](opts, defaultEquals[T])
	v.mode = modeSideEffecting
	v.transform = fn
	v.seed = seed
	v.seeded = true
	v.dirty = true
	return v
}

func liftComputation[T any](fn func(*Context) T) func(*Context) (T, error) {
	return func(ctx *Context) (T, error) {
		return fn(ctx), nil
	}
}

// ID returns the unique identifier for this cell.
func (v *Var[T]) ID() uint64 {
	return v.id
}

// Name returns the cell's name.
func (v *Var[T]) Name() string {
	return v.name
}

// Dirty reports whether the cached value is stale.
func (v *Var[T]) Dirty() bool {
	return v.dirty
}

// AddListener implements Observable.
func (v *Var[T]) AddListener(l Listener) {
	v.listeners.add(l)
}

// RemoveListener implements Observable.
func (v *Var[T]) RemoveListener(l Listener) {
	v.listeners.remove(l)
}

// Get returns the current value, evaluating the cell first if it is dirty.
//
// A failed evaluation returns the fault and leaves the cell dirty with its
// previous value intact; the next Get tries again. Reading a cell from
// inside its own evaluation returns a *CycleError.
func (v *Var[T]) Get() (T, error) {
	if v.computing {
		var zero T
		return zero, &CycleError{Cell: v.name}
	}
	if !v.dirty {
		return v.value, nil
	}
	return v.recompute()
}

// Set makes the cell a constant holding value. Listeners fire and dependents
// are invalidated only if the logical value changed.
func (v *Var[T]) Set(value T) {
	changed := v.dirty || !v.hasValue || !v.equal(v.value, value)

	v.detach()
	v.mode = modeConstant
	v.compute = nil
	v.transform = nil
	v.clearSeed()
	v.value = value
	v.hasValue = true
	v.dirty = false
	v.faulted = false
	v.handedOut = false
	v.epoch++

	if changed {
		v.propagate()
	}
}

// Bind makes the cell derived from fn. The previous dependencies are
// dropped; the new ones are discovered on the next evaluation.
func (v *Var[T]) Bind(fn func(ctx *Context) T) {
	v.BindE(liftComputation(fn))
}

// BindE is Bind for computations that return an error.
func (v *Var[T]) BindE(fn func(ctx *Context) (T, error)) {
	v.detach()
	v.mode = modeComputed
	v.compute = fn
	v.transform = nil
	v.clearSeed()
	v.rebind()
}

// SideEffecting makes the cell apply fn to seed on its next evaluation and
// to its previous value after that.
func (v *Var[T]) SideEffecting(seed T, fn func(ctx *Context, existing T) T) {
	v.detach()
	v.mode = modeSideEffecting
	v.compute = nil
	v.transform = fn
	v.seed = seed
	v.seeded = true
	v.rebind()
}

// SideEffectingInPlace is SideEffecting with the current value as the seed.
// It fails, leaving the cell untouched, if the current value cannot be read.
func (v *Var[T]) SideEffectingInPlace(fn func(ctx *Context, existing T) T) error {
	current, err := v.Get()
	if err != nil {
		return err
	}
	v.SideEffecting(current, fn)
	return nil
}

// ReadOnly returns a view of the cell without its write methods.
func (v *Var[T]) ReadOnly() ReadOnly[T] {
	return readOnlyView[T]{v: v}
}

func (v *Var[T]) clearSeed() {
	var zero T
	v.seed = zero
	v.seeded = false
}

// recompute evaluates the cell and caches the result.
func (v *Var[T]) recompute() (T, error) {
	var zero T

	v.computing = true
	defer func() { v.computing = false }()

	epoch := v.epoch
	ctx := newContext(v.self)
	start := time.Now()
	result, err := v.evaluate(ctx)
	v.computing = false
	if err == nil {
		err = ctx.err
	}
	elapsed := time.Since(start)

	if err != nil {
		err = &ComputeError{Cell: v.name, Err: err}
		v.faulted = true
		v.observe(RecomputeEvent{Cell: v.self, Start: start, Duration: elapsed, Deps: len(ctx.deps), Err: err})
		return zero, err
	}

	if v.epoch != epoch {
		// Written or invalidated while evaluating: the result may already
		// be stale, so it is handed back but not cached.
		v.handedOut = true
		v.observe(RecomputeEvent{Cell: v.self, Start: start, Duration: elapsed, Deps: len(ctx.deps)})
		return result, nil
	}

	v.resubscribe(ctx.deps)

	old, had := v.value, v.hasValue
	v.value = result
	v.hasValue = true
	v.dirty = false
	if v.mode == modeSideEffecting {
		v.clearSeed()
	}

	changed := had && (v.mode == modeSideEffecting || v.faulted || !v.equal(old, result))
	v.faulted = false
	v.observe(RecomputeEvent{Cell: v.self, Start: start, Duration: elapsed, Deps: len(ctx.deps), Changed: changed})

	if v.handedOut {
		v.handedOut = false
		w := &wave{}
		for _, d := range v.dependents {
			d.invalidate(w)
		}
		if changed {
			v.notify()
		}
		w.flush()
		return result, nil
	}
	if changed {
		v.notify()
	}
	return result, nil
}

func (v *Var[T]) evaluate(ctx *Context) (T, error) {
	defer ctx.close()

	if v.mode == modeSideEffecting {
		arg := v.value
		if v.seeded {
			arg = v.seed
		}
		return v.transform(ctx, arg), nil
	}
	return v.compute(ctx)
}

// propagate invalidates everything downstream, fires this cell's listeners,
// then refreshes the downstream cells that have listeners.
func (v *Var[T]) propagate() {
	w := &wave{}
	for _, d := range v.dependents {
		d.invalidate(w)
	}
	v.notify()
	w.flush()
}

// rebind marks the cell itself dirty after a mode change and refreshes it if
// anyone is listening.
func (v *Var[T]) rebind() {
	w := &wave{}
	v.invalidate(w)
	w.flush()
}

// invalidate marks the cell dirty. Dependents are visited only on the clean
// to dirty transition; a dirty cell's dependents are already dirty.
func (v *Var[T]) invalidate(w *wave) {
	v.epoch++
	wasClean := !v.dirty
	v.dirty = true
	if v.listeners.len() > 0 {
		w.enqueue(v)
	}
	if !wasClean {
		return
	}
	if v.observer != nil {
		v.observer.Invalidated(v.self)
	}
	for _, d := range v.dependents {
		d.invalidate(w)
	}
}

// refresh pulls a dirty cell that has listeners. If the evaluation fails the
// listeners are still told, so that their own read surfaces the fault.
func (v *Var[T]) refresh() {
	if !v.dirty || v.computing || v.listeners.len() == 0 {
		return
	}
	if _, err := v.recompute(); err != nil {
		v.notify()
	}
}

func (v *Var[T]) notify() {
	n := v.listeners.fire(v.self)
	if n > 0 && v.observer != nil {
		v.observer.Notified(v.self, n)
	}
}

func (v *Var[T]) observe(e RecomputeEvent) {
	if v.observer != nil {
		v.observer.Recomputed(e)
	}
}

// resubscribe replaces the dependency set with next, unsubscribing from
// cells that are no longer read before subscribing to new ones.
func (v *Var[T]) resubscribe(next []Observable) {
	keep := make(map[uint64]struct{}, len(next))
	for _, o := range next {
		keep[o.ID()] = struct{}{}
	}
	prev := make(map[uint64]struct{}, len(v.deps))
	for _, o := range v.deps {
		prev[o.ID()] = struct{}{}
		if _, ok := keep[o.ID()]; !ok {
			v.unsubscribe(o)
		}
	}
	for _, o := range next {
		if _, ok := prev[o.ID()]; !ok {
			v.subscribe(o)
		}
	}
	v.deps = next
}

func (v *Var[T]) detach() {
	for _, o := range v.deps {
		v.unsubscribe(o)
	}
	v.deps = nil
}

func (v *Var[T]) subscribe(o Observable) {
	if s, ok := o.(source); ok {
		s.addDependent(v)
		return
	}
	o.AddListener(v.dependencyLink())
}

func (v *Var[T]) unsubscribe(o Observable) {
	if s, ok := o.(source); ok {
		s.removeDependent(v)
		return
	}
	if v.link != nil {
		o.RemoveListener(v.link)
	}
}

func (v *Var[T]) dependencyLink() *dependencyLink {
	if v.link == nil {
		v.link = &dependencyLink{id: NextID(), target: v}
	}
	return v.link
}

// addDependent implements source.
func (v *Var[T]) addDependent(d dependent) {
	id := d.ID()
	for _, existing := range v.dependents {
		if existing.ID() == id {
			return
		}
	}
	v.dependents = append(v.dependents, d)
}

// removeDependent implements source. Order is preserved and a fresh slice is
// built, so a propagation iterating the old slice is unaffected.
func (v *Var[T]) removeDependent(d dependent) {
	id := d.ID()
	for i, existing := range v.dependents {
		if existing.ID() != id {
			continue
		}
		next := make([]dependent, 0, len(v.dependents)-1)
		next = append(next, v.dependents[:i]...)
		next = append(next, v.dependents[i+1:]...)
		v.dependents = next
		return
	}
}

// readOnlyView hides the write methods of a Var while keeping its identity
// for dependency tracking.
type readOnlyView[T any] struct {
	v *Var[T]
}

func (r readOnlyView[T]) ID() uint64                  { return r.v.ID() }
func (r readOnlyView[T]) Name() string                { return r.v.Name() }
func (r readOnlyView[T]) AddListener(l Listener)      { r.v.AddListener(l) }
func (r readOnlyView[T]) RemoveListener(l Listener)   { r.v.RemoveListener(l) }
func (r readOnlyView[T]) Get() (T, error)             { return r.v.Get() }
func (r readOnlyView[T]) addDependent(d dependent)    { r.v.addDependent(d) }
func (r readOnlyView[T]) removeDependent(d dependent) { r.v.removeDependent(d) }

var (
	_ ReadOnly[int] = (*Var[int])(nil)
	_ source        = (*Var[int])(nil)
	_ dependent     = (*Var[int])(nil)
	_ source        = readOnlyView[int]{}
)
