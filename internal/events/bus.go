// Package events carries the node's lifecycle notifications from the
// loop to its observers: metrics, the debug API stream and the simulate
// command. Dispatch is asynchronous; subscribers run on dispatcher
// goroutines, never on the loop goroutine.
package events

import (
	"github.com/kelindar/event"
)

// Bus is a typed publish/subscribe fan-out over a single dispatcher.
type Bus struct {
	d *event.Dispatcher
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{d: event.NewDispatcher()}
}

// Publish delivers ev to every subscriber registered for its concrete
// type. Publishing a type nobody subscribed to is a no-op.
func Publish[T Event](b *Bus, ev T) {
	event.Publish(b.d, ev)
}

// Subscribe registers fn for events of type T and returns its
// unsubscribe function.
func Subscribe[T Event](b *Bus, fn func(T)) func() {
	return event.Subscribe(b.d, fn)
}
