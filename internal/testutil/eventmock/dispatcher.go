package eventmock

import (
	"context"
	"sync"

	"rentflow/internal/domain/event"
)

var _ event.Dispatcher = (*Dispatcher)(nil)

// Dispatcher records every event handed to it. Err, when set, is returned
// after recording.
type Dispatcher struct {
	mu     sync.Mutex
	events []event.Event
	Err    error
}

func (d *Dispatcher) Dispatch(_ context.Context, events ...event.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, events...)
	return d.Err
}

func (d *Dispatcher) Events() []event.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]event.Event(nil), d.events...)
}

// Types lists recorded event types in dispatch order.
func (d *Dispatcher) Types() []event.Type {
	var out []event.Type
	for _, e := range d.Events() {
		out = append(out, e.Type)
	}
	return out
}

func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = nil
}
