package binding

// FloatVar is a float64 cell with an unboxed read path.
//
// It shares the Var state machine but exposes only GetFloat: FloatVar does
// not implement ReadOnly[float64], so it cannot be passed to Use or read
// through the generic path. Depend on it with UseFloat.
type FloatVar struct {
	v *Var[float64]
}

func wrapFloat(v *Var[float64]) *FloatVar {
	f := &FloatVar{v: v}
	v.self = f
	return f
}

// NewFloat creates a constant float cell.
func NewFloat(value float64, opts ...Option) *FloatVar {
	v := newVar[float64](opts, floatEquals)
	v.value = value
	v.hasValue = true
	return wrapFloat(v)
}

// ComputedFloat creates a float cell derived from fn.
func ComputedFloat(fn func(ctx *Context) float64, opts ...Option) *FloatVar {
	v := newVar[float64](opts, floatEquals)
	v.mode = modeComputed
	v.compute = liftComputation(fn)
	v.dirty = true
	return wrapFloat(v)
}

// GetFloat returns the current value, evaluating the cell if it is dirty.
func (f *FloatVar) GetFloat() (float64, error) {
	return f.v.Get()
}

// Set makes the cell a constant holding value.
func (f *FloatVar) Set(value float64) {
	f.v.Set(value)
}

// Bind makes the cell derived from fn.
func (f *FloatVar) Bind(fn func(ctx *Context) float64) {
	f.v.Bind(fn)
}

// SideEffecting makes the cell apply fn to seed on its next evaluation and to
// its previous value after that.
func (f *FloatVar) SideEffecting(seed float64, fn func(ctx *Context, existing float64) float64) {
	f.v.SideEffecting(seed, fn)
}

// SideEffectingInPlace is SideEffecting with the current value as the seed.
func (f *FloatVar) SideEffectingInPlace(fn func(ctx *Context, existing float64) float64) error {
	return f.v.SideEffectingInPlace(fn)
}

// Add adds n to the current value and makes the cell a constant.
func (f *FloatVar) Add(n float64) error {
	cur, err := f.v.Get()
	if err != nil {
		return err
	}
	f.v.Set(cur + n)
	return nil
}

// ID returns the unique identifier for this cell.
func (f *FloatVar) ID() uint64 { return f.v.ID() }

// Name returns the cell's name.
func (f *FloatVar) Name() string { return f.v.Name() }

// Dirty reports whether the cached value is stale.
func (f *FloatVar) Dirty() bool { return f.v.Dirty() }

// AddListener implements Observable. Listeners receive the *FloatVar.
func (f *FloatVar) AddListener(l Listener) { f.v.AddListener(l) }

// RemoveListener implements Observable.
func (f *FloatVar) RemoveListener(l Listener) { f.v.RemoveListener(l) }

func (f *FloatVar) addDependent(d dependent)    { f.v.addDependent(d) }
func (f *FloatVar) removeDependent(d dependent) { f.v.removeDependent(d) }

var (
	_ ReadOnlyFloat = (*FloatVar)(nil)
	_ source        = (*FloatVar)(nil)
)
