package signals

import (
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/disposable"
)

// SignalImp is a listener registry for one-argument listeners.
type SignalImp[E any] struct {
	observers listeners[Observer[E]]
}

func NewSignal[E any]() *SignalImp[E] {
	return &SignalImp[E]{}
}

func (s *SignalImp[E]) Attach(observer Observer[E], observerID ...any) disposable.Disposable {
	return s.observers.attach(observer, observerID)
}

func (s *SignalImp[E]) Detach(observer Observer[E], observerID ...any) {
	s.observers.detach(observer, observerID)
}

func (s *SignalImp[E]) Notify(event E) {
	s.observers.each(func(o Observer[E]) { o(event) })
}

// AddListener attaches a plain func(E); a listener already attached is ignored.
func (s *SignalImp[E]) AddListener(listener func(E)) {
	s.Attach(listener)
}

func (s *SignalImp[E]) RemoveListener(listener func(E)) {
	s.Detach(listener)
}

func (s *SignalImp[E]) RemoveAllListeners() {
	s.observers.clear()
}

func (s *SignalImp[E]) Len() int {
	return s.observers.len()
}
