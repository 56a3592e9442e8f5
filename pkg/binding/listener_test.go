package binding

import (
	"reflect"
	"testing"
)

func TestListenerOrder(t *testing.T) {
	v := New(0)
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		v.AddListener(NewListener(func(Observable) { order = append(order, i) }))
	}

	v.Set(1)
	if !reflect.DeepEqual(order, []int{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", order)
	}
}

func TestListenerReceivesCell(t *testing.T) {
	v := New("a")
	listener := newCountingListener()
	v.AddListener(listener)

	v.Set("b")
	if len(listener.sources) != 1 || listener.sources[0] != Observable(v) {
		t.Errorf("listener should receive the cell itself, got %v", listener.sources)
	}
}

func TestListenerDeduplicated(t *testing.T) {
	v := New(0)
	listener := newCountingListener()
	v.AddListener(listener)
	v.AddListener(listener)

	v.Set(1)
	if listener.count != 1 {
		t.Errorf("expected 1 notification, got %d", listener.count)
	}
}

func TestListenerRemovedDuringFiring(t *testing.T) {
	v := New(0)
	var order []string

	second := NewListener(func(Observable) { order = append(order, "second") })
	first := NewListener(func(Observable) {
		order = append(order, "first")
		v.RemoveListener(second)
	})
	third := NewListener(func(Observable) { order = append(order, "third") })

	v.AddListener(first)
	v.AddListener(second)
	v.AddListener(third)

	v.Set(1)
	if !reflect.DeepEqual(order, []string{"first", "third"}) {
		t.Errorf("expected [first third], got %v", order)
	}

	order = nil
	v.Set(2)
	if !reflect.DeepEqual(order, []string{"first", "third"}) {
		t.Errorf("expected [first third] on the next firing, got %v", order)
	}
}

func TestListenerRemovesItselfDuringFiring(t *testing.T) {
	v := New(0)
	calls := 0
	var self *FuncListener
	self = NewListener(func(Observable) {
		calls++
		v.RemoveListener(self)
	})
	after := newCountingListener()
	v.AddListener(self)
	v.AddListener(after)

	v.Set(1)
	v.Set(2)
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if after.count != 2 {
		t.Errorf("later listeners must keep firing, got %d", after.count)
	}
}

func TestListenerAddedDuringFiring(t *testing.T) {
	v := New(0)
	late := newCountingListener()
	added := false
	v.AddListener(NewListener(func(Observable) {
		if !added {
			added = true
			v.AddListener(late)
		}
	}))

	v.Set(1)
	if late.count != 0 {
		t.Errorf("a listener added during firing must wait for the next change, got %d", late.count)
	}
	v.Set(2)
	if late.count != 1 {
		t.Errorf("expected 1 notification, got %d", late.count)
	}
}

func TestRemoveUnknownListener(t *testing.T) {
	v := New(0)
	v.RemoveListener(newCountingListener())
	v.RemoveListener(nil)
	v.AddListener(nil)
	v.Set(1)
}

func TestDependentsFireBeforeOwnListeners(t *testing.T) {
	a := New(1)
	b := Computed(func(ctx *Context) int { return Use(ctx, a) * 2 })
	_ = mustGet[int](t, b)

	var dirtyWhenNotified bool
	a.AddListener(NewListener(func(Observable) {
		dirtyWhenNotified = b.Dirty()
	}))

	a.Set(2)
	if !dirtyWhenNotified {
		t.Error("dependents must be dirty before the source's listeners run")
	}
}

func TestListenerReadsInsideNotification(t *testing.T) {
	a := New(1)
	b := Computed(func(ctx *Context) int { return Use(ctx, a) + 1 })
	_ = mustGet[int](t, b)

	var seen int
	a.AddListener(NewListener(func(Observable) {
		seen, _ = b.Get()
	}))

	a.Set(5)
	if seen != 6 {
		t.Errorf("a listener reading downstream should see fresh data, got %d", seen)
	}
}
