// Package binding provides the reactive value-binding engine for bindvar.
//
// A Var is a cell that either holds a plain value or derives its value from
// other cells. Dependencies are discovered at runtime: reading a cell through
// Use inside a computation subscribes the computing cell to it. When an
// upstream cell changes, every cell downstream of it is marked dirty at once,
// but recomputation only happens when a dirty cell is read.
//
// # Core Types
//
// Var[T] is a reactive value container:
//
//	count := binding.New(0)
//	v, _ := count.Get()
//	count.Set(5)
//
// A computed Var derives its value from other cells:
//
//	doubled := binding.Computed(func(ctx *binding.Context) int {
//	    return binding.Use(ctx, count) * 2
//	})
//	v, err := doubled.Get()  // recomputes only if count changed
//
// A side-effecting Var mutates a seed value in place on every evaluation:
//
//	names := binding.SideEffecting([]string{}, func(ctx *binding.Context, s []string) []string {
//	    return append(s[:0], binding.Use(ctx, first), binding.Use(ctx, last))
//	})
//
// # Listeners
//
// Listeners are called synchronously, in the order they were added, when a
// cell's logical value changes. A listener receives the cell itself and
// re-reads it; it never receives the value directly.
//
//	l := binding.Watch[int](doubled, func(r binding.ReadOnly[int]) {
//	    v, _ := r.Get()
//	    fmt.Println("doubled is now", v)
//	})
//	defer doubled.RemoveListener(l)
//
// # Primitive cells
//
// FloatVar and IntVar hold numbers without going through the generic
// equality path. They deliberately do not implement ReadOnly; read them with
// GetFloat/GetInt, and depend on them with UseFloat/UseInt.
//
// # Threading
//
// The engine is single-threaded. All reads, writes and listener callbacks for
// one graph must happen on one goroutine. Nothing in this package locks.
package binding
