package eventbus

import (
	"github.com/oklog/ulid/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type entry[F any] struct {
	id      ulid.ULID
	fn      F
	removed bool
}

// handlers keeps subscription order and resolves a handler key to its
// entry in O(1).
type handlers[F any] struct {
	entries *orderedmap.OrderedMap[any, *entry[F]]
}

func newHandlers[F any]() *handlers[F] {
	return &handlers[F]{entries: orderedmap.New[any, *entry[F]]()}
}

func (h *handlers[F]) add(key any, fn F) (*entry[F], bool) {
	if _, exists := h.entries.Get(key); exists {
		return nil, false
	}
	e := &entry[F]{id: ulid.Make(), fn: fn}
	h.entries.Set(key, e)
	return e, true
}

// remove drops the entry under key. When want is not nil only that exact
// entry is removed, so a stale token cannot cancel a newer subscription.
func (h *handlers[F]) remove(key any, want *entry[F]) (*entry[F], bool) {
	e, ok := h.entries.Get(key)
	if !ok || (want != nil && e != want) {
		return nil, false
	}
	h.entries.Delete(key)
	e.removed = true
	return e, true
}

func (h *handlers[F]) snapshot() []*entry[F] {
	if h.entries.Len() == 0 {
		return nil
	}
	out := make([]*entry[F], 0, h.entries.Len())
	for pair := h.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

func (h *handlers[F]) clear() {
	for pair := h.entries.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.removed = true
	}
	h.entries = orderedmap.New[any, *entry[F]]()
}

func (h *handlers[F]) len() int {
	return h.entries.Len()
}

type handlerSet interface {
	len() int
	clear()
}

// registry holds every handler subscribed to one event type.
type registry[T Event] struct {
	notify  *handlers[NotifyHandler]
	payload *handlers[Handler[T]]
}

func newRegistry[T Event]() *registry[T] {
	return &registry[T]{
		notify:  newHandlers[NotifyHandler](),
		payload: newHandlers[Handler[T]](),
	}
}

func (r *registry[T]) len() int {
	return r.notify.len() + r.payload.len()
}

func (r *registry[T]) clear() {
	r.notify.clear()
	r.payload.clear()
}

func pickNotify[T Event](r *registry[T]) *handlers[NotifyHandler] {
	return r.notify
}

func pickPayload[T Event](r *registry[T]) *handlers[Handler[T]] {
	return r.payload
}
