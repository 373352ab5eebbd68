package eventbus

import (
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/fogfish/opts"

	"github.com/krew-solutions/ascetic-lifecycle-go/internal/funcid"
	"github.com/krew-solutions/ascetic-lifecycle-go/internal/logx"
	"github.com/krew-solutions/ascetic-lifecycle-go/lifecycle/disposable"
)

// Bus dispatches events by their Go type. It is not safe for concurrent
// use; confine a Bus to the goroutine that drives the application logic.
type Bus struct {
	registries map[reflect.Type]handlerSet
	logger     *slog.Logger
	debugEmit  bool
}

type Option = opts.Option[Bus]

// WithLogger sets the logger used for usage warnings and handler panics.
func WithLogger(logger *slog.Logger) Option {
	return opts.Type[Bus](func(b *Bus) error {
		b.logger = logger
		return nil
	})
}

// WithDebugEmit logs, at debug level, every emit that finds no subscribers.
func WithDebugEmit(enabled bool) Option {
	return opts.Type[Bus](func(b *Bus) error {
		b.debugEmit = enabled
		return nil
	})
}

func New(options ...Option) *Bus {
	b := &Bus{registries: make(map[reflect.Type]handlerSet)}
	if err := opts.Apply(b, options); err != nil {
		panic(err)
	}
	b.logger = logx.Named(b.logger, "eventbus")
	return b
}

// Reset drops every handler of every event type. Tokens issued before the
// reset become no-ops.
func (b *Bus) Reset() {
	for _, set := range b.registries {
		set.clear()
	}
	clear(b.registries)
}

// Len returns the number of event types that currently have subscribers.
func (b *Bus) Len() int {
	return len(b.registries)
}

// EventTypes lists the event types that currently have subscribers.
func (b *Bus) EventTypes() []reflect.Type {
	types := make([]reflect.Type, 0, len(b.registries))
	for typ := range b.registries {
		types = append(types, typ)
	}
	slices.SortFunc(types, func(x, y reflect.Type) int {
		return strings.Compare(x.String(), y.String())
	})
	return types
}

func lookup[T Event](b *Bus) (*registry[T], bool) {
	set, ok := b.registries[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return set.(*registry[T]), true
}

func getOrCreate[T Event](b *Bus) *registry[T] {
	if reg, ok := lookup[T](b); ok {
		return reg
	}
	reg := newRegistry[T]()
	b.registries[reflect.TypeFor[T]()] = reg
	return reg
}

func (b *Bus) evictIfEmpty(typ reflect.Type) {
	if set, ok := b.registries[typ]; ok && set.len() == 0 {
		delete(b.registries, typ)
	}
}

// --- Typed free functions ---

// On subscribes handler to events of type T and returns a token that
// cancels the subscription. The handler identity is the closure itself
// unless an explicit key is given (it must be comparable); subscribing the
// same identity twice is rejected and yields a no-op token.
func On[T Event](b *Bus, handler Handler[T], key ...any) disposable.Disposable {
	return subscribe(b, handler, key, pickPayload[T])
}

// OnNotify subscribes a handler that only needs to know that an event of
// type T happened.
func OnNotify[T Event](b *Bus, handler NotifyHandler, key ...any) disposable.Disposable {
	return subscribe(b, handler, key, pickNotify[T])
}

// Off removes a handler added with On. Unknown handlers are ignored.
func Off[T Event](b *Bus, handler Handler[T], key ...any) {
	unsubscribe(b, funcid.Key(handler, key), nil, pickPayload[T])
}

// OffNotify removes a handler added with OnNotify. Unknown handlers are ignored.
func OffNotify[T Event](b *Bus, handler NotifyHandler, key ...any) {
	unsubscribe(b, funcid.Key(handler, key), nil, pickNotify[T])
}

// Emit delivers payload to the handlers of type T: notify handlers first,
// then payload handlers, each in subscription order. The set of handlers is
// fixed when Emit starts; handlers removed during the pass are skipped if
// not yet reached, handlers added during the pass wait for the next Emit.
// A panicking handler is logged and does not stop the others.
func Emit[T Event](b *Bus, payload T) {
	typ := reflect.TypeFor[T]()
	reg, ok := lookup[T](b)
	if !ok {
		if b.debugEmit {
			b.logger.Debug("event emitted without subscribers", logx.Type("event", typ))
		}
		return
	}

	notify := reg.notify.snapshot()
	withPayload := reg.payload.snapshot()

	for _, e := range notify {
		if !e.removed {
			b.deliverNotify(typ, e)
		}
	}
	for _, e := range withPayload {
		if !e.removed {
			deliver(b, typ, e, payload)
		}
	}
}

// EmitDefault emits the zero value of T.
func EmitDefault[T Event](b *Bus) {
	var zero T
	Emit(b, zero)
}

// Subscribers returns how many handlers are subscribed to T.
func Subscribers[T Event](b *Bus) int {
	reg, ok := lookup[T](b)
	if !ok {
		return 0
	}
	return reg.len()
}

func subscribe[T Event, F any](b *Bus, handler F, key []any, pick func(*registry[T]) *handlers[F]) disposable.Disposable {
	typ := reflect.TypeFor[T]()
	if funcid.IsNil(handler) {
		b.logger.Warn("subscribe called with nil handler", logx.Type("event", typ))
		return disposable.Noop()
	}

	id := funcid.Key(handler, key)
	reg := getOrCreate[T](b)
	e, added := pick(reg).add(id, handler)
	if !added {
		b.logger.Warn("duplicate subscription ignored", logx.Type("event", typ), logx.Type("handler", reflect.TypeOf(handler)))
		return disposable.Noop()
	}

	b.logger.Debug("subscribed", logx.Type("event", typ), slog.String("subscription", e.id.String()))
	return disposable.NewDisposable(func() {
		unsubscribe(b, id, e, pick)
	})
}

func unsubscribe[T Event, F any](b *Bus, id any, want *entry[F], pick func(*registry[T]) *handlers[F]) {
	if id == any(uintptr(0)) {
		return
	}
	reg, ok := lookup[T](b)
	if !ok {
		return
	}
	e, removed := pick(reg).remove(id, want)
	if !removed {
		return
	}
	typ := reflect.TypeFor[T]()
	b.logger.Debug("unsubscribed", logx.Type("event", typ), slog.String("subscription", e.id.String()))
	b.evictIfEmpty(typ)
}

func (b *Bus) deliverNotify(typ reflect.Type, e *entry[NotifyHandler]) {
	defer b.recoverHandler(typ, e.id.String())
	e.fn()
}

func deliver[T Event](b *Bus, typ reflect.Type, e *entry[Handler[T]], payload T) {
	defer b.recoverHandler(typ, e.id.String())
	e.fn(payload)
}

func (b *Bus) recoverHandler(typ reflect.Type, subscription string) {
	if r := recover(); r != nil {
		b.logger.Error("event handler panicked",
			logx.Type("event", typ),
			slog.String("subscription", subscription),
			logx.Panic(r),
		)
	}
}
