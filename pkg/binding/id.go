package binding

import "sync/atomic"

// globalIDCounter is the source of unique IDs for cells and listeners.
var globalIDCounter atomic.Uint64

// NextID returns a process-unique identifier. Cells and listeners created by
// this package use it; foreign Observable and Listener implementations
// should too, so that IDs never collide.
func NextID() uint64 {
	return globalIDCounter.Add(1)
}
