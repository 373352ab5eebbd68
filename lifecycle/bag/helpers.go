package bag

import (
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/disposable"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/eventbus"
)

// Listenable is any registry with paired add/remove listener calls, of any
// listener arity.
type Listenable[F any] interface {
	AddListener(listener F)
	RemoveListener(listener F)
}

// ViewID identifies a kind of view a ViewOpener knows how to open.
type ViewID int

// ViewOpener allocates views behind integer serial ids. A serial id of zero
// or less means nothing was opened.
type ViewOpener interface {
	OpenView(id ViewID, userData any) int
	CloseView(serialID int)
}

// On subscribes handler to the bus and keeps the token in the bag.
func On[T eventbus.Event](b *Bag, bus *eventbus.Bus, handler eventbus.Handler[T]) disposable.Disposable {
	token := eventbus.On(bus, handler)
	b.Add(token)
	return token
}

// OnNotify subscribes a payload-less handler to the bus and keeps the token
// in the bag.
func OnNotify[T eventbus.Event](b *Bag, bus *eventbus.Bus, handler eventbus.NotifyHandler) disposable.Disposable {
	token := eventbus.OnNotify[T](bus, handler)
	b.Add(token)
	return token
}

// Listen adds handler to source and registers the matching RemoveListener.
//
// When source also reports its listener count with Len, a handler that was
// already attached by someone else is left alone: nothing is registered and
// teardown does not remove it. Sources without Len cannot tell, and the bag
// removes the handler at teardown whoever attached it first.
func Listen[F any](b *Bag, source Listenable[F], handler F) disposable.Disposable {
	if source == nil {
		b.logger.Warn("listen called with nil source")
		return disposable.Noop()
	}
	counter, counted := source.(interface{ Len() int })
	before := 0
	if counted {
		before = counter.Len()
	}
	source.AddListener(handler)
	if counted && counter.Len() == before {
		b.logger.Debug("listener already attached, not taking ownership")
		return disposable.Noop()
	}
	return b.AddFunc(func() {
		source.RemoveListener(handler)
	})
}

// Register calls register(handler) now and unregister(handler) at teardown.
func Register[H any](b *Bag, register, unregister func(H), handler H) disposable.Disposable {
	if register == nil || unregister == nil {
		b.logger.Warn("register called with nil register or unregister func")
		return disposable.Noop()
	}
	register(handler)
	return b.AddFunc(func() {
		unregister(handler)
	})
}

// AddHandle releases handle with release at teardown.
func AddHandle[H any](b *Bag, handle H, release func(H)) disposable.Disposable {
	if release == nil {
		b.logger.Warn("add handle called with nil release func")
		return disposable.Noop()
	}
	return b.AddFunc(func() {
		release(handle)
	})
}

// OpenSubView opens a view and, when it was actually opened, closes it at
// teardown. It returns the serial id reported by views.
func OpenSubView(b *Bag, views ViewOpener, id ViewID, userData any) int {
	serialID := views.OpenView(id, userData)
	if serialID <= 0 {
		b.logger.Debug("view was not opened", slog.Int("view", int(id)))
		return serialID
	}
	AddHandle(b, serialID, views.CloseView)
	return serialID
}

// AddCloser closes c at teardown. Close errors are logged by Dispose and
// returned by Close.
func AddCloser(b *Bag, c io.Closer) disposable.Disposable {
	if c == nil {
		b.logger.Warn("nil closer added to bag")
		return disposable.Noop()
	}
	d := &closer{c: c}
	b.Add(d)
	return d
}

type closer struct {
	c      io.Closer
	closed atomic.Bool
}

func (c *closer) Dispose() {
	_ = c.disposeErr()
}

func (c *closer) disposeErr() error {
	if c.closed.Swap(true) {
		return nil
	}
	return errors.Wrap(c.c.Close(), "close")
}
