package binding

// countingListener records every notification it receives.
type countingListener struct {
	id      uint64
	count   int
	sources []Observable
}

func newCountingListener() *countingListener {
	return &countingListener{id: NextID()}
}

func (l *countingListener) OnChange(src Observable) {
	l.count++
	l.sources = append(l.sources, src)
}

func (l *countingListener) ID() uint64 {
	return l.id
}

// externalInt is an Observable implemented outside the engine's own cell
// types, used to exercise subscription through the public listener list.
type externalInt struct {
	id        uint64
	value     int
	listeners []Listener
}

func newExternalInt(v int) *externalInt {
	return &externalInt{id: NextID(), value: v}
}

func (e *externalInt) ID() uint64        { return e.id }
func (e *externalInt) Name() string      { return "external" }
func (e *externalInt) Get() (int, error) { return e.value, nil }

func (e *externalInt) AddListener(l Listener) {
	e.listeners = append(e.listeners, l)
}

func (e *externalInt) RemoveListener(l Listener) {
	for i, existing := range e.listeners {
		if existing.ID() == l.ID() {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

func (e *externalInt) set(v int) {
	e.value = v
	for _, l := range append([]Listener(nil), e.listeners...) {
		l.OnChange(e)
	}
}
