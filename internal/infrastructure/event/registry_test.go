package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// mockHandler implements EventHandler for testing
type mockHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
}

func newMockHandler(eventTypes ...string) *mockHandler {
	return &mockHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *mockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.handled = append(h.handled, event)
	return nil
}

func (h *mockHandler) EventTypes() []string {
	return h.eventTypes
}

func TestHandlerRegistry_Register_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newMockHandler("SaleCreated", "SaleCancelled")

	registry.Register(handler, "SaleCreated", "SaleCancelled")

	handlers := registry.GetHandlers("SaleCreated")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler, handlers[0])

	handlers = registry.GetHandlers("SaleCancelled")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler, handlers[0])

	handlers = registry.GetHandlers("TransferShipped")
	assert.Len(t, handlers, 0)
}

func TestHandlerRegistry_Register_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newMockHandler() // No event types = wildcard

	registry.Register(handler)

	handlers := registry.GetHandlers("SaleCreated")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler, handlers[0])

	handlers = registry.GetHandlers("AnyEventType")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler, handlers[0])
}

func TestHandlerRegistry_Register_MixedTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	specificHandler := newMockHandler("SaleCreated")
	wildcardHandler := newMockHandler()

	registry.Register(specificHandler, "SaleCreated")
	registry.Register(wildcardHandler)

	handlers := registry.GetHandlers("SaleCreated")
	assert.Len(t, handlers, 2)

	handlers = registry.GetHandlers("OtherEvent")
	assert.Len(t, handlers, 1)
	assert.Equal(t, wildcardHandler, handlers[0])
}

func TestHandlerRegistry_Unregister_SpecificHandler(t *testing.T) {
	registry := NewHandlerRegistry()
	handler1 := newMockHandler("SaleCreated")
	handler2 := newMockHandler("SaleCreated")

	registry.Register(handler1, "SaleCreated")
	registry.Register(handler2, "SaleCreated")

	handlers := registry.GetHandlers("SaleCreated")
	assert.Len(t, handlers, 2)

	registry.Unregister(handler1)

	handlers = registry.GetHandlers("SaleCreated")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler2, handlers[0])
}

func TestHandlerRegistry_Unregister_WildcardHandler(t *testing.T) {
	registry := NewHandlerRegistry()
	wildcardHandler := newMockHandler()

	registry.Register(wildcardHandler)

	handlers := registry.GetHandlers("AnyEvent")
	assert.Len(t, handlers, 1)

	registry.Unregister(wildcardHandler)

	handlers = registry.GetHandlers("AnyEvent")
	assert.Len(t, handlers, 0)
}

func TestHandlerRegistry_GetAllHandlers(t *testing.T) {
	registry := NewHandlerRegistry()
	handler1 := newMockHandler("SaleCreated")
	handler2 := newMockHandler("GoodsReceived")
	wildcardHandler := newMockHandler()

	registry.Register(handler1, "SaleCreated")
	registry.Register(handler2, "GoodsReceived")
	registry.Register(wildcardHandler)

	allHandlers := registry.GetAllHandlers()
	assert.Len(t, allHandlers, 3)
}

func TestHandlerRegistry_GetAllHandlers_NoDuplicates(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newMockHandler("SaleCreated", "SaleCancelled")

	// Register same handler for multiple event types
	registry.Register(handler, "SaleCreated", "SaleCancelled")

	allHandlers := registry.GetAllHandlers()
	assert.Len(t, allHandlers, 1)
}

func TestHandlerRegistry_HasHandlers(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newMockHandler("TransferShipped")
	assert.False(t, registry.HasHandlers("TransferShipped"))

	registry.Register(handler, "TransferShipped")
	assert.True(t, registry.HasHandlers("TransferShipped"))
	assert.False(t, registry.HasHandlers("SaleCreated"))

	wildcard := newMockHandler()
	registry.Register(wildcard)
	assert.True(t, registry.HasHandlers("SaleCreated"))

	registry.Unregister(handler)
	registry.Unregister(wildcard)
	assert.False(t, registry.HasHandlers("TransferShipped"))
}
