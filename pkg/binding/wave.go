package binding

// wave collects the cells dirtied by one change so that the ones with
// listeners can be refreshed after the whole downstream graph is marked.
// Refreshing only after marking means no evaluation can read a cell that is
// about to be invalidated by the same change.
//
// Cells with listeners are therefore pulled eagerly, at the end of the write
// that dirtied them, so their listeners fire only on a real change. Cells
// without listeners are only marked and stay dirty until someone reads them.
type wave struct {
	queue  []dependent
	queued map[uint64]struct{}
}

func (w *wave) enqueue(d dependent) {
	if w.queued == nil {
		w.queued = make(map[uint64]struct{})
	}
	id := d.ID()
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.queue = append(w.queue, d)
}

// flush refreshes queued cells in the order they were dirtied.
func (w *wave) flush() {
	for _, d := range w.queue {
		d.refresh()
	}
}

// dependencyLink subscribes a cell to an Observable implemented outside this
// package, through that Observable's public listener list.
type dependencyLink struct {
	id     uint64
	target dependent
}

// OnChange implements Listener.
func (l *dependencyLink) OnChange(Observable) {
	w := &wave{}
	l.target.invalidate(w)
	w.flush()
}

// ID implements Listener.
func (l *dependencyLink) ID() uint64 {
	return l.id
}
