package binding

// Listener is notified when an Observable's logical value changes.
type Listener interface {
	// OnChange is called with the cell whose value changed. The listener
	// re-reads the cell to observe the new value.
	OnChange(src Observable)

	// ID returns a unique identifier for this listener.
	// Used for deduplication and removal.
	ID() uint64
}

// FuncListener adapts a function to the Listener interface.
type FuncListener struct {
	id uint64
	fn func(Observable)
}

// NewListener wraps fn in a Listener with a fresh ID. Keep the returned
// value to remove the listener later.
func NewListener(fn func(src Observable)) *FuncListener {
	return &FuncListener{id: NextID(), fn: fn}
}

// OnChange implements Listener.
func (l *FuncListener) OnChange(src Observable) {
	if l.fn != nil {
		l.fn(src)
	}
}

// ID implements Listener.
func (l *FuncListener) ID() uint64 {
	return l.id
}

// listenerEntry is one registration. removed is set when the listener is
// detached so that an in-progress firing skips it.
type listenerEntry struct {
	l       Listener
	removed bool
}

// listenerSet is an insertion-ordered set of listeners.
//
// Removal always builds a fresh slice, so a snapshot taken by fire is never
// modified underneath it. Appends past a snapshot's length are invisible to
// that snapshot.
type listenerSet struct {
	entries []*listenerEntry
}

// add registers l. Returns false if a listener with the same ID is present.
func (s *listenerSet) add(l Listener) bool {
	if l == nil {
		return false
	}
	id := l.ID()
	for _, e := range s.entries {
		if e.l.ID() == id {
			return false
		}
	}
	s.entries = append(s.entries, &listenerEntry{l: l})
	return true
}

// remove detaches the listener with l's ID. Returns false if it was not present.
func (s *listenerSet) remove(l Listener) bool {
	if l == nil {
		return false
	}
	id := l.ID()
	for i, e := range s.entries {
		if e.l.ID() != id {
			continue
		}
		e.removed = true
		next := make([]*listenerEntry, 0, len(s.entries)-1)
		next = append(next, s.entries[:i]...)
		next = append(next, s.entries[i+1:]...)
		s.entries = next
		return true
	}
	return false
}

// fire calls every listener registered when fire began, in insertion order.
// Returns the number of listeners called.
func (s *listenerSet) fire(src Observable) int {
	snapshot := s.entries
	called := 0
	for _, e := range snapshot {
		if e.removed {
			continue
		}
		e.l.OnChange(src)
		called++
	}
	return called
}

func (s *listenerSet) len() int {
	return len(s.entries)
}
