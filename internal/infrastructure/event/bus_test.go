package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thaipharm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, branchID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Sale", uuid.New(), branchID),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicMsg   string
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := newTestHandler("SaleCreated")
	bus.Subscribe(handler, "SaleCreated")

	event := newTestEvent("SaleCreated", uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := newTestHandler("SaleCreated")
	bus.Subscribe(handler, "SaleCreated")

	event1 := newTestEvent("SaleCreated", uuid.New())
	event2 := newTestEvent("SaleCreated", uuid.New())
	err := bus.Publish(context.Background(), event1, event2)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler1 := newTestHandler("SaleCreated")
	handler2 := newTestHandler("SaleCreated")
	bus.Subscribe(handler1, "SaleCreated")
	bus.Subscribe(handler2, "SaleCreated")

	event := newTestEvent("SaleCreated", uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	wildcardHandler := newTestHandler()
	bus.Subscribe(wildcardHandler)

	event := newTestEvent("BatchesExpired", uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, wildcardHandler.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler1 := newTestHandler("SaleCreated")
	handler1.setError(errors.New("handler error"))
	handler2 := newTestHandler("SaleCreated")
	bus.Subscribe(handler1, "SaleCreated")
	bus.Subscribe(handler2, "SaleCreated")

	event := newTestEvent("SaleCreated", uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_NoMatchingHandlers(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := newTestHandler("TransferShipped")
	bus.Subscribe(handler, "TransferShipped")

	event := newTestEvent("SaleCreated", uuid.New())
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 0)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	handler := newTestHandler("SaleCreated")
	bus.Subscribe(handler, "SaleCreated")

	event1 := newTestEvent("SaleCreated", uuid.New())
	_ = bus.Publish(context.Background(), event1)
	assert.Len(t, handler.getHandled(), 1)

	bus.Unsubscribe(handler)

	event2 := newTestEvent("SaleCreated", uuid.New())
	_ = bus.Publish(context.Background(), event2)
	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	logger := zap.NewNop()
	bus := NewInMemoryEventBus(logger)

	ctx := context.Background()
	err := bus.Start(ctx)
	require.NoError(t, err)

	handler := newTestHandler("SaleCreated")
	bus.Subscribe(handler, "SaleCreated")
	event := newTestEvent("SaleCreated", uuid.New())
	err = bus.Publish(ctx, event)
	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = bus.Stop(ctx)
	require.NoError(t, err)
}

func TestInMemoryEventBus_Publish_HandlerPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := newTestHandler("SaleCreated")
	panicking.panicMsg = "boom"
	healthy := newTestHandler("SaleCreated")
	bus.Subscribe(panicking, "SaleCreated")
	bus.Subscribe(healthy, "SaleCreated")

	require.NotPanics(t, func() {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCreated", uuid.New())))
	})
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Async(t *testing.T) {
	t.Run("stop drains queued events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncWorkers(2, 8))
		handler := newTestHandler("SaleCreated")
		bus.Subscribe(handler, "SaleCreated")
		require.NoError(t, bus.Start(context.Background()))

		for i := 0; i < 20; i++ {
			require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCreated", uuid.New())))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, bus.Stop(ctx))
		assert.Len(t, handler.getHandled(), 20)
	})

	t.Run("cancelled publisher context does not reach handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncWorkers(1, 4))
		var seen error
		var mu sync.Mutex
		handler := &ctxHandler{fn: func(ctx context.Context) {
			mu.Lock()
			defer mu.Unlock()
			seen = ctx.Err()
		}}
		bus.Subscribe(handler, "TransferShipped")
		require.NoError(t, bus.Start(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, bus.Publish(ctx, newTestEvent("TransferShipped", uuid.New())))
		cancel()

		require.NoError(t, bus.Stop(context.Background()))
		mu.Lock()
		defer mu.Unlock()
		assert.NoError(t, seen)
	})

	t.Run("publishes inline when not started", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncWorkers(2, 8))
		handler := newTestHandler("SaleCreated")
		bus.Subscribe(handler, "SaleCreated")

		require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCreated", uuid.New())))
		assert.Len(t, handler.getHandled(), 1)
	})

	t.Run("can restart after stop", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncWorkers(1, 4))
		handler := newTestHandler("SaleCreated")
		bus.Subscribe(handler, "SaleCreated")

		for round := 0; round < 2; round++ {
			require.NoError(t, bus.Start(context.Background()))
			require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCreated", uuid.New())))
			require.NoError(t, bus.Stop(context.Background()))
		}
		assert.Len(t, handler.getHandled(), 2)
	})
}

type ctxHandler struct {
	fn func(ctx context.Context)
}

func (h *ctxHandler) Handle(ctx context.Context, _ shared.DomainEvent) error {
	h.fn(ctx)
	return nil
}

func (h *ctxHandler) EventTypes() []string {
	return []string{"TransferShipped"}
}
