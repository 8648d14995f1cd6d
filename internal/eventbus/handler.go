package eventbus

import "context"

// Handler processes events dispatched by the bus.
type Handler interface {
	// ID returns a stable identifier for logging and introspection.
	ID() string

	// Handles returns the event types this handler wants to receive.
	Handles() []EventType

	// Priority orders handlers within a dispatch; lower runs first.
	Priority() int

	// Handle processes one event. Errors are logged by the bus and do not
	// stop the chain.
	Handle(ctx context.Context, event *Event) error
}
