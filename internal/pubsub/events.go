// Package pubsub provides a generic publish/subscribe event system.
// The logger fans entries out through it, and the input field engine
// announces text, selection and submit changes to observers.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// CreatedEvent marks a newly produced item, e.g. a log entry.
	CreatedEvent EventType = "created"

	TextChangedEvent      EventType = "text_changed"
	SelectionChangedEvent EventType = "selection_changed"
	SubmittedEvent        EventType = "submitted"
	StateChangedEvent     EventType = "state_changed"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}
