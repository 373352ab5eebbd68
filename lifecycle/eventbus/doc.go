// Package eventbus implements an in-process, type-indexed event bus.
//
// Every event type gets its own registry of handlers, created on the first
// subscription and dropped with the last one. Handlers come in two shapes:
// payload handlers receive the event, notify handlers only learn that it
// happened.
//
//	type ScoreChanged struct {
//	    eventbus.EventBase
//	    Score int
//	}
//
//	bus := eventbus.New()
//	token := eventbus.On(bus, func(e ScoreChanged) { render(e.Score) })
//	defer token.Dispose()
//
//	eventbus.Emit(bus, ScoreChanged{Score: 10})
//
// Go methods cannot take type parameters, so the typed operations are free
// functions over *Bus.
//
// # Delivery
//
// Emit runs notify handlers, then payload handlers, each in subscription
// order, on the calling goroutine. The handler set is captured when Emit
// starts. A handler removed during the pass is skipped if it has not run
// yet; a handler added during the pass first runs on the next Emit. A
// panicking handler is logged at error level and the rest still run.
//
// # Identity
//
// A handler is identified by its closure, or by an explicit key passed to
// On. Subscribing an identity that is already subscribed is logged and
// ignored. Method values such as obj.Handle build a new closure on every
// evaluation; keep the value in a variable, or pass a key, to be able to
// call Off with it.
package eventbus
