package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleEvent struct {
	payload int
}

func TestSignal_AttachAndNotify(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var called sampleEvent
	s.Attach(func(e sampleEvent) { called = e }, "obs")
	s.Notify(sampleEvent{1})
	assert.Equal(t, sampleEvent{1}, called)
}

func TestSignal_NotifyPreservesOrder(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var order []int
	s.Attach(func(e sampleEvent) { order = append(order, 1) }, "obs1")
	s.Attach(func(e sampleEvent) { order = append(order, 2) }, "obs2")
	s.Notify(sampleEvent{1})
	assert.Equal(t, []int{1, 2}, order)
}

func TestSignal_Detach(t *testing.T) {
	s := NewSignal[sampleEvent]()
	called := false
	observer := Observer[sampleEvent](func(e sampleEvent) { called = true })
	s.Attach(observer, "obs")
	s.Detach(observer, "obs")
	s.Notify(sampleEvent{1})
	assert.False(t, called)
}

func TestSignal_DetachNonexistentIsSilent(t *testing.T) {
	s := NewSignal[sampleEvent]()
	observer := Observer[sampleEvent](func(e sampleEvent) {})
	s.Detach(observer, "nonexistent") // should not panic
}

func TestSignal_AttachDuplicateObserverIDKeepsFirst(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var which int
	s.Attach(func(e sampleEvent) { which = 1 }, "same")
	s.Attach(func(e sampleEvent) { which = 2 }, "same")
	s.Notify(sampleEvent{1})
	assert.Equal(t, 1, which)
}

func TestSignal_AttachDuplicateWithoutIDIsIdempotent(t *testing.T) {
	s := NewSignal[sampleEvent]()
	callCount := 0
	observer := Observer[sampleEvent](func(e sampleEvent) { callCount++ })
	s.Attach(observer)
	s.Attach(observer)
	s.Notify(sampleEvent{1})
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, s.Len())
}

func TestSignal_AttachNilIsIgnored(t *testing.T) {
	s := NewSignal[sampleEvent]()
	d := s.Attach(nil)
	d.Dispose()
	assert.Equal(t, 0, s.Len())
}

func TestSignal_DisposableDetaches(t *testing.T) {
	s := NewSignal[sampleEvent]()
	called := false
	d := s.Attach(func(e sampleEvent) { called = true })
	d.Dispose()
	s.Notify(sampleEvent{1})
	assert.False(t, called)
}

func TestSignal_DifferentClosuresWithoutIDAreSeparate(t *testing.T) {
	s := NewSignal[sampleEvent]()
	var calls []int
	for i := range 2 {
		s.AddListener(func(e sampleEvent) { calls = append(calls, i) })
	}
	s.Notify(sampleEvent{1})
	assert.Equal(t, []int{0, 1}, calls)
}

func TestSignal_AddRemoveListener(t *testing.T) {
	s := NewSignal[int]()
	var got []int
	listener := func(v int) { got = append(got, v) }

	s.AddListener(listener)
	s.Notify(1)
	s.RemoveListener(listener)
	s.Notify(2)

	assert.Equal(t, []int{1}, got)
}

func TestSignal_ListenerDetachedDuringNotifyIsSkipped(t *testing.T) {
	s := NewSignal[int]()
	var calls []string
	second := func(int) { calls = append(calls, "second") }

	s.AddListener(func(int) {
		calls = append(calls, "first")
		s.RemoveListener(second)
	})
	s.AddListener(second)
	s.Notify(1)

	assert.Equal(t, []string{"first"}, calls)
}

func TestSignal_ListenerAddedDuringNotifyWaitsForNextNotify(t *testing.T) {
	s := NewSignal[int]()
	var calls []string
	late := func(int) { calls = append(calls, "late") }

	s.AddListener(func(int) {
		calls = append(calls, "early")
		s.AddListener(late)
	})
	s.Notify(1)
	assert.Equal(t, []string{"early"}, calls)

	s.Notify(2)
	assert.Equal(t, []string{"early", "early", "late"}, calls)
}

func TestSignal_RemoveAllListeners(t *testing.T) {
	s := NewSignal[int]()
	called := false
	s.AddListener(func(int) { called = true })
	s.RemoveAllListeners()
	s.Notify(1)
	assert.False(t, called)
	assert.Equal(t, 0, s.Len())
}

func TestSignal0_InvokeAndRemove(t *testing.T) {
	s := NewSignal0()
	callCount := 0
	listener := func() { callCount++ }

	s.AddListener(listener)
	s.AddListener(listener)
	s.Invoke()
	s.RemoveListener(listener)
	s.Invoke()

	assert.Equal(t, 1, callCount)
	assert.Equal(t, 0, s.Len())
}

func TestSignal0_AttachReturnsDetachingDisposable(t *testing.T) {
	s := NewSignal0()
	callCount := 0
	d := s.Attach(func() { callCount++ })
	s.Invoke()
	d.Dispose()
	d.Dispose()
	s.Invoke()
	assert.Equal(t, 1, callCount)
}

func TestSignal2_InvokePassesBothArguments(t *testing.T) {
	s := NewSignal2[string, int]()
	var gotKey string
	var gotValue int
	listener := func(k string, v int) {
		gotKey, gotValue = k, v
	}

	s.AddListener(listener)
	s.Invoke("answer", 42)
	assert.Equal(t, "answer", gotKey)
	assert.Equal(t, 42, gotValue)

	s.RemoveListener(listener)
	s.Invoke("other", 1)
	assert.Equal(t, "answer", gotKey)
	assert.Equal(t, 0, s.Len())
}

func TestSignal2_RemoveAllListeners(t *testing.T) {
	s := NewSignal2[int, int]()
	s.Attach(func(int, int) {}, "a")
	s.Attach(func(int, int) {}, "b")
	assert.Equal(t, 2, s.Len())
	s.RemoveAllListeners()
	assert.Equal(t, 0, s.Len())
}

func TestSignal_StaleTokenDoesNotDetachReattachedListener(t *testing.T) {
	s := NewSignal[int]()
	callCount := 0
	listener := func(int) { callCount++ }

	stale := s.Attach(listener)
	s.RemoveListener(listener)
	s.AddListener(listener)
	stale.Dispose()
	s.Notify(1)

	assert.Equal(t, 1, callCount)
}
