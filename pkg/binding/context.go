package binding

// Context records which cells a computation read. The engine creates one for
// every evaluation and passes it to the computation; it is closed as soon as
// the computation returns.
//
// Each evaluation owns its Context. A computation that triggers another
// cell's evaluation does so with a separate Context, so dependency recording
// never leaks between nesting levels.
type Context struct {
	// owner is the cell being evaluated.
	owner Observable

	// deps are the cells read so far, in first-read order.
	deps []Observable
	seen map[uint64]struct{}

	// err is the first fault recorded during the evaluation.
	err error

	closed bool
}

func newContext(owner Observable) *Context {
	return &Context{owner: owner}
}

// Use records r as a dependency of the evaluating cell and returns its
// current value. A fault while reading r is recorded on ctx and fails the
// evaluation; the zero value is returned in that case.
func Use[T any](ctx *Context, r ReadOnly[T]) T {
	var zero T
	if !ctx.track(r) {
		return zero
	}
	v, err := r.Get()
	if err != nil {
		ctx.Fail(err)
		return zero
	}
	return v
}

// UseFloat is Use for unboxed float cells.
func UseFloat(ctx *Context, r ReadOnlyFloat) float64 {
	if !ctx.track(r) {
		return 0
	}
	v, err := r.GetFloat()
	if err != nil {
		ctx.Fail(err)
		return 0
	}
	return v
}

// UseInt is Use for unboxed int cells.
func UseInt(ctx *Context, r ReadOnlyInt) int {
	if !ctx.track(r) {
		return 0
	}
	v, err := r.GetInt()
	if err != nil {
		ctx.Fail(err)
		return 0
	}
	return v
}

// Fail records err as the fault of this evaluation. The first fault wins;
// the evaluation fails when the computation returns regardless of its result.
func (c *Context) Fail(err error) {
	c.mustBeOpen()
	if err != nil && c.err == nil {
		c.err = err
	}
}

// Err returns the fault recorded so far, if any.
func (c *Context) Err() error {
	return c.err
}

// Owner returns the cell being evaluated.
func (c *Context) Owner() Observable {
	return c.owner
}

// track records o and reports whether reading it should proceed.
func (c *Context) track(o Observable) bool {
	c.mustBeOpen()
	id := o.ID()
	if c.seen == nil {
		c.seen = make(map[uint64]struct{}, 4)
	}
	if _, ok := c.seen[id]; !ok {
		c.seen[id] = struct{}{}
		c.deps = append(c.deps, o)
	}
	return c.err == nil
}

func (c *Context) mustBeOpen() {
	if c.closed {
		panic(ErrContextClosed)
	}
}

func (c *Context) close() {
	c.closed = true
}
