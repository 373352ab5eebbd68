package signals

import (
	"github.com/krew-solutions/ascetic-lifecycle-go/internal/funcid"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/disposable"
)

type entry[F any] struct {
	id       any
	listener F
	removed  bool
}

// listeners is the ordered, identity-deduplicated core shared by the
// signals of every arity.
type listeners[F any] struct {
	entries []*entry[F]
}

func (l *listeners[F]) attach(listener F, listenerID []any) disposable.Disposable {
	if funcid.IsNil(listener) {
		return disposable.Noop()
	}
	id := funcid.Key(listener, listenerID)
	for _, e := range l.entries {
		if e.id == id {
			return disposable.Noop()
		}
	}
	added := &entry[F]{id: id, listener: listener}
	l.entries = append(l.entries, added)
	return disposable.NewDisposable(func() {
		l.remove(func(e *entry[F]) bool { return e == added })
	})
}

func (l *listeners[F]) detach(listener F, listenerID []any) {
	id := funcid.Key(listener, listenerID)
	l.remove(func(e *entry[F]) bool { return e.id == id })
}

func (l *listeners[F]) remove(match func(*entry[F]) bool) {
	for i, e := range l.entries {
		if match(e) {
			e.removed = true
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

// each calls fn for the listeners attached when it started, skipping any
// detached along the way.
func (l *listeners[F]) each(fn func(F)) {
	snapshot := l.entries
	for _, e := range snapshot {
		if !e.removed {
			fn(e.listener)
		}
	}
}

func (l *listeners[F]) clear() {
	for _, e := range l.entries {
		e.removed = true
	}
	l.entries = nil
}

func (l *listeners[F]) len() int {
	return len(l.entries)
}
