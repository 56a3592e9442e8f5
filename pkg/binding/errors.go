package binding

import (
	"errors"
	"fmt"
)

// ErrCycle is matched by errors.Is when an evaluation read, directly or
// through other cells, the cell that was being evaluated.
var ErrCycle = errors.New("binding: dependency cycle")

// ErrCompute is matched by errors.Is when a computation failed.
var ErrCompute = errors.New("binding: computation failed")

// ErrContextClosed is the panic value raised when a tracking context is
// used after its computation returned.
var ErrContextClosed = errors.New("binding: tracking context used after its computation returned")

// CycleError reports the cell at which a dependency cycle closed.
type CycleError struct {
	Cell string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("binding: dependency cycle at %s", e.Cell)
}

// Is reports whether target is ErrCycle.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// ComputeError wraps a fault raised while evaluating a cell. The cell keeps
// its previous value and stays dirty.
type ComputeError struct {
	Cell string
	Err  error
}

// Error implements the error interface.
func (e *ComputeError) Error() string {
	return fmt.Sprintf("binding: compute %s: %v", e.Cell, e.Err)
}

// Unwrap returns the underlying fault for errors.Is/As support.
func (e *ComputeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrCompute.
func (e *ComputeError) Is(target error) bool {
	return target == ErrCompute
}
