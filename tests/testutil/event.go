package testutil

import (
	"context"
	"sync"

	"github.com/thaipharm/backend/internal/domain/shared"
)

// EventRecorder is a shared.EventPublisher that keeps every published event
type EventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Publish records events and returns the configured error, if any
func (r *EventRecorder) Publish(_ context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return r.err
}

// FailWith makes later Publish calls return err after recording
func (r *EventRecorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Types lists the recorded event types in publish order
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

// Last returns the most recent event of eventType, or nil
func (r *EventRecorder) Last(eventType string) shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].EventType() == eventType {
			return r.events[i]
		}
	}
	return nil
}
