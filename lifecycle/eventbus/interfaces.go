package eventbus

// Event is the marker every payload dispatched through the bus carries.
// Embed EventBase into your event structs to implement it.
type Event interface {
	IsEvent()
}

// EventBase is an embeddable struct that implements Event.
type EventBase struct{}

func (EventBase) IsEvent() {}

// Handler receives the payload of an event of type T.
type Handler[T Event] = func(event T)

// NotifyHandler is told that an event of some type was emitted, without the payload.
type NotifyHandler = func()
