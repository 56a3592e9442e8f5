package binding

import "fmt"

// Option configures a cell at construction.
type Option func(*options)

type options struct {
	name     string
	observer Observer

	// equal holds a func(T, T) bool for the cell's T.
	equal any
}

// WithName sets the name reported by Name, in logs and in metrics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithEquals sets the equality used to decide whether a new value is a
// change. The default uses == for scalar kinds and reflect.DeepEqual
// otherwise. T must match the cell's value type.
func WithEquals[T any](fn func(a, b T) bool) Option {
	return func(o *options) {
		o.equal = fn
	}
}

// WithObserver attaches an Observer to the cell.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// equalFor resolves the configured equality for T, falling back to def.
func equalFor[T any](o options, def func(T, T) bool) func(T, T) bool {
	if o.equal == nil {
		return def
	}
	fn, ok := o.equal.(func(T, T) bool)
	if !ok {
		var zero T
		panic(fmt.Sprintf("binding: WithEquals function does not match cell type %T", zero))
	}
	return fn
}
