package oem

import (
	"context"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// OrderFilter narrows OEM order queries
type OrderFilter struct {
	shared.Filter
	BranchID   *uuid.UUID
	SupplierID *uuid.UUID
	Status     OrderStatus
}

// OrderRepository defines the interface for OEM order persistence
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Find(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	Create(ctx context.Context, order *Order) error

	// SaveWithLock updates the header and item counters when the stored
	// version is one less than order.Version
	SaveWithLock(ctx context.Context, order *Order) error
}

// GoodsReceivingRepository defines the interface for goods receiving persistence
type GoodsReceivingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GoodsReceiving, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]GoodsReceiving, error)
	Create(ctx context.Context, gr *GoodsReceiving) error
}
