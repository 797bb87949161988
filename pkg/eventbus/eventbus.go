package eventbus

import (
	"reflect"
	"sync"
)

// Handler is a function that handles an event.
type Handler func(event any)

// EventBus provides in-process pub/sub keyed by event type. It decouples
// event producers (the change feed) from transports (NATS, AMQP).
type EventBus struct {
	handlers map[reflect.Type][]Handler
	mu       sync.RWMutex
}

// New creates a new EventBus.
func New() *EventBus {
	return &EventBus{
		handlers: make(map[reflect.Type][]Handler),
	}
}

// Subscribe registers a handler for the concrete type of eventType.
func (e *EventBus) Subscribe(eventType any, handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := reflect.TypeOf(eventType)
	e.handlers[t] = append(e.handlers[t], handler)
}

// Publish delivers an event to all subscribers asynchronously.
func (e *EventBus) Publish(event any) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, handler := range e.handlers[reflect.TypeOf(event)] {
		go handler(event)
	}
}

// PublishSync delivers an event to all subscribers on the calling goroutine.
func (e *EventBus) PublishSync(event any) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, handler := range e.handlers[reflect.TypeOf(event)] {
		handler(event)
	}
}

// HasSubscribers reports whether any handler is registered for an event type.
func (e *EventBus) HasSubscribers(eventType any) bool {
	return e.SubscriberCount(eventType) > 0
}

// SubscriberCount returns the number of subscribers for an event type.
func (e *EventBus) SubscriberCount(eventType any) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.handlers[reflect.TypeOf(eventType)])
}
