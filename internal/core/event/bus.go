package event

import "sync"

// Handler receives a dispatched event.
type Handler func(Event)

// Bus queues events published during a tick and delivers them in publish
// order when Flush is called in the output phase. Publish and Flush run on
// the tick goroutine; the mutex only protects handler registration.
type Bus struct {
	mu       sync.Mutex
	pending  []Event
	handlers map[Type][]Handler
	all      []Handler
}

func NewBus() *Bus {
	return &Bus{
		pending:  make([]Event, 0, 32),
		handlers: make(map[Type][]Handler),
	}
}

// Publish queues ev for the next Flush.
func (b *Bus) Publish(ev Event) {
	b.pending = append(b.pending, ev)
}

// Subscribe registers fn for events of type t.
func (b *Bus) Subscribe(t Type, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SubscribeAll registers fn for every event type.
func (b *Bus) SubscribeAll(fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, fn)
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	return len(b.pending)
}

// Flush delivers queued events. Events published by handlers during Flush
// are kept for the next Flush.
func (b *Bus) Flush() {
	if len(b.pending) == 0 {
		return
	}
	batch := b.pending
	b.pending = make([]Event, 0, cap(batch))

	b.mu.Lock()
	all := b.all
	handlers := b.handlers
	b.mu.Unlock()

	for _, ev := range batch {
		for _, h := range handlers[ev.Type()] {
			h(ev)
		}
		for _, h := range all {
			h(ev)
		}
	}
}

// Clear drops queued events without delivering them.
func (b *Bus) Clear() {
	b.pending = b.pending[:0]
}
