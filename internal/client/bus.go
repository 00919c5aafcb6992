package client

import (
	"sync"

	conndomain "craft_marketplace_service/internal/connection/domain"
)

// Bus event names
const (
	// EventConnectionStatusChanged some room's connection state moved,
	// listeners refetch what they care about
	EventConnectionStatusChanged = "connectionStatusChanged"
	// EventConnectionAcceptedByMe the local user accepted a request
	EventConnectionAcceptedByMe = "connectionAcceptedByMe"
	// EventConnectionAccepted the other party accepted the local user's
	// request
	EventConnectionAccepted = "connectionAccepted"
)

// Event one bus notification
type Event struct {
	Name       string
	RoomID     string
	Connection *conndomain.Connection
}

// Bus typed in-process pub/sub between the client orchestrators.
// Handlers run synchronously on the publisher's goroutine.
type Bus struct {
	mu   sync.Mutex
	subs map[string]map[int]func(Event)
	next int
}

// NewBus create Bus
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[int]func(Event)),
	}
}

// Subscribe register a handler for one event name; the returned func
// removes it
func (b *Bus) Subscribe(name string, handler func(Event)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[name] == nil {
		b.subs[name] = make(map[int]func(Event))
	}
	id := b.next
	b.next++
	b.subs[name][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[name], id)
	}
}

// Publish deliver the event to every handler of its name
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	handlers := make([]func(Event), 0, len(b.subs[evt.Name]))
	for _, h := range b.subs[evt.Name] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(evt)
	}
}
