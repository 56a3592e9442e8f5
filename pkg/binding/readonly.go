package binding

// Observable is the type-erased view of a cell: identity plus listener
// registration. Dependency sets hold Observables so that cells of different
// value types can share one set.
type Observable interface {
	// ID returns the process-unique identifier of the cell.
	ID() uint64

	// Name returns a human-readable name for logs and metrics.
	Name() string

	// AddListener registers l to be called when the value changes.
	// Adding a listener never forces computation.
	AddListener(l Listener)

	// RemoveListener unregisters l. Removing an unknown listener is a no-op.
	RemoveListener(l Listener)
}

// ReadOnly is the read contract of a cell holding a T.
type ReadOnly[T any] interface {
	Observable

	// Get returns the current value, recomputing it first if it is stale.
	// It never registers a dependency; use Use inside a computation for that.
	Get() (T, error)
}

// ReadOnlyFloat is the read contract of an unboxed float64 cell.
type ReadOnlyFloat interface {
	Observable
	GetFloat() (float64, error)
}

// ReadOnlyInt is the read contract of an unboxed int cell.
type ReadOnlyInt interface {
	Observable
	GetInt() (int, error)
}

// Watch adds a typed listener to r and returns it for later removal.
func Watch[T any](r ReadOnly[T], fn func(ReadOnly[T])) Listener {
	l := NewListener(func(Observable) { fn(r) })
	r.AddListener(l)
	return l
}

// source is implemented by cells of this package. Engine cells subscribe to
// each other through it instead of the public listener list, which keeps
// dependents ahead of user listeners during propagation.
type source interface {
	Observable
	addDependent(d dependent)
	removeDependent(d dependent)
}

// dependent is a cell that can be invalidated by a change upstream.
type dependent interface {
	ID() uint64
	invalidate(w *wave)
	refresh()
}
