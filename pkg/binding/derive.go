package binding

// Map returns a cell holding fn applied to src's value.
func Map[A, B any](src ReadOnly[A], fn func(A) B, opts ...Option) *Var[B] {
	return Computed(func(ctx *Context) B {
		return fn(Use(ctx, src))
	}, opts...)
}

// Combine returns a cell holding fn applied to the values of a and b.
func Combine[A, B, C any](a ReadOnly[A], b ReadOnly[B], fn func(A, B) C, opts ...Option) *Var[C] {
	return Computed(func(ctx *Context) C {
		return fn(Use(ctx, a), Use(ctx, b))
	}, opts...)
}

// Not returns a cell holding the negation of src.
func Not(src ReadOnly[bool], opts ...Option) *Var[bool] {
	return Map(src, func(v bool) bool { return !v }, opts...)
}
