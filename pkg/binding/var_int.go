package binding

// IntVar is an int cell with an unboxed read path. Like FloatVar it does not
// implement ReadOnly[int]; depend on it with UseInt.
type IntVar struct {
	v *Var[int]
}

func wrapInt(v *Var[int]) *IntVar {
	i := &IntVar{v: v}
	v.self = i
	return i
}

// NewInt creates a constant int cell.
func NewInt(value int, opts ...Option) *IntVar {
	v := newVar[int](opts, intEquals)
	v.value = value
	v.hasValue = true
	return wrapInt(v)
}

// ComputedInt creates an int cell derived from fn.
func ComputedInt(fn func(ctx *Context) int, opts ...Option) *IntVar {
	v := newVar[int](opts, intEquals)
	v.mode = modeComputed
	v.compute = liftComputation(fn)
	v.dirty = true
	return wrapInt(v)
}

// GetInt returns the current value, evaluating the cell if it is dirty.
func (i *IntVar) GetInt() (int, error) {
	return i.v.Get()
}

// Set makes the cell a constant holding value.
func (i *IntVar) Set(value int) {
	i.v.Set(value)
}

// Bind makes the cell derived from fn.
func (i *IntVar) Bind(fn func(ctx *Context) int) {
	i.v.Bind(fn)
}

// SideEffecting makes the cell apply fn to seed on its next evaluation and to
// its previous value after that.
func (i *IntVar) SideEffecting(seed int, fn func(ctx *Context, existing int) int) {
	i.v.SideEffecting(seed, fn)
}

// SideEffectingInPlace is SideEffecting with the current value as the seed.
func (i *IntVar) SideEffectingInPlace(fn func(ctx *Context, existing int) int) error {
	return i.v.SideEffectingInPlace(fn)
}

// Add adds n to the current value and makes the cell a constant.
func (i *IntVar) Add(n int) error {
	cur, err := i.v.Get()
	if err != nil {
		return err
	}
	i.v.Set(cur + n)
	return nil
}

// Inc increments the value by 1.
func (i *IntVar) Inc() error {
	return i.Add(1)
}

// Dec decrements the value by 1.
func (i *IntVar) Dec() error {
	return i.Add(-1)
}

func (i *IntVar) ID() uint64                  { return i.v.ID() }
func (i *IntVar) Name() string                { return i.v.Name() }
func (i *IntVar) Dirty() bool                 { return i.v.Dirty() }
func (i *IntVar) AddListener(l Listener)      { i.v.AddListener(l) }
func (i *IntVar) RemoveListener(l Listener)   { i.v.RemoveListener(l) }
func (i *IntVar) addDependent(d dependent)    { i.v.addDependent(d) }
func (i *IntVar) removeDependent(d dependent) { i.v.removeDependent(d) }

var (
	_ ReadOnlyInt = (*IntVar)(nil)
	_ source      = (*IntVar)(nil)
)
