package ports

import (
	"context"

	"github.com/google/uuid"
)

// Event is a generic wrapper for any event payload
type Event struct {
	ID    uuid.UUID // Correlates publish and handler log lines
	Topic string
	Data  interface{}
}

// EventHandler is a function that can handle a specific event
type EventHandler func(ctx context.Context, event Event) error

// EventBus carries inbound bot updates to the router and domain events
// (submission:*) to their observers.
type EventBus interface {
	// Publish sends an event to all subscribers of a topic
	Publish(ctx context.Context, topic string, data interface{}) error

	// Subscribe registers a handler for a specific topic
	Subscribe(topic string, handler EventHandler)
}
