package signals

import (
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/disposable"
)

// Signal0 is a listener registry for listeners without arguments.
type Signal0 struct {
	observers listeners[func()]
}

func NewSignal0() *Signal0 {
	return &Signal0{}
}

func (s *Signal0) Attach(listener func(), listenerID ...any) disposable.Disposable {
	return s.observers.attach(listener, listenerID)
}

func (s *Signal0) Detach(listener func(), listenerID ...any) {
	s.observers.detach(listener, listenerID)
}

func (s *Signal0) AddListener(listener func()) {
	s.Attach(listener)
}

func (s *Signal0) RemoveListener(listener func()) {
	s.Detach(listener)
}

func (s *Signal0) Invoke() {
	s.observers.each(func(l func()) { l() })
}

func (s *Signal0) RemoveAllListeners() {
	s.observers.clear()
}

func (s *Signal0) Len() int {
	return s.observers.len()
}

// Signal2 is a listener registry for two-argument listeners, such as
// old/new value pairs.
type Signal2[A, B any] struct {
	observers listeners[func(A, B)]
}

func NewSignal2[A, B any]() *Signal2[A, B] {
	return &Signal2[A, B]{}
}

func (s *Signal2[A, B]) Attach(listener func(A, B), listenerID ...any) disposable.Disposable {
	return s.observers.attach(listener, listenerID)
}

func (s *Signal2[A, B]) Detach(listener func(A, B), listenerID ...any) {
	s.observers.detach(listener, listenerID)
}

func (s *Signal2[A, B]) AddListener(listener func(A, B)) {
	s.Attach(listener)
}

func (s *Signal2[A, B]) RemoveListener(listener func(A, B)) {
	s.Detach(listener)
}

func (s *Signal2[A, B]) Invoke(a A, b B) {
	s.observers.each(func(l func(A, B)) { l(a, b) })
}

func (s *Signal2[A, B]) RemoveAllListeners() {
	s.observers.clear()
}

func (s *Signal2[A, B]) Len() int {
	return s.observers.len()
}
