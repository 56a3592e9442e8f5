package binding

// BoolVar wraps Var[bool] with convenience methods for boolean operations.
type BoolVar struct {
	*Var[bool]
}

// NewBool creates a constant boolean cell.
func NewBool(value bool, opts ...Option) *BoolVar {
	return &BoolVar{New(value, opts...)}
}

// Invert reads the value, stores its negation and returns the new value.
// If the read fails nothing is written.
func (b *BoolVar) Invert() (bool, error) {
	cur, err := b.Get()
	if err != nil {
		return false, err
	}
	b.Set(!cur)
	return !cur, nil
}

// SetTrue sets the value to true.
func (b *BoolVar) SetTrue() {
	b.Set(true)
}

// SetFalse sets the value to false.
func (b *BoolVar) SetFalse() {
	b.Set(false)
}
