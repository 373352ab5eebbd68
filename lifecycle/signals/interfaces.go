package signals

import (
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/disposable"
)

// Observer is a one-argument listener.
type Observer[E any] func(E)

// Signal is the consumer-facing side of a one-argument listener registry.
// Listeners are deduplicated by identity and notified in attach order.
type Signal[E any] interface {
	Attach(observer Observer[E], observerID ...any) disposable.Disposable
	Detach(observer Observer[E], observerID ...any)
	AddListener(listener func(E))
	RemoveListener(listener func(E))
	RemoveAllListeners()
	Notify(event E)
	Len() int
}

var _ Signal[int] = (*SignalImp[int])(nil)
