package inventory

import (
	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInventoryLine = "InventoryLine"

// Event type constants
const (
	EventTypeStockAdjusted          = "StockAdjusted"
	EventTypeStockBelowReorderPoint = "StockBelowReorderPoint"
	EventTypeBatchesExpired         = "BatchesExpired"
)

// StockAdjustedEvent is raised after a manual adjustment commits
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID    `json:"product_id"`
	BatchID      uuid.UUID    `json:"batch_id"`
	Ledger       Ledger       `json:"ledger"`
	MovementType MovementType `json:"movement_type"`
	Quantity     int64        `json:"quantity"`
	Reason       string       `json:"reason,omitempty"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(m *StockMovement) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeInventoryLine, m.BatchID, m.BranchID),
		ProductID:       m.ProductID,
		BatchID:         m.BatchID,
		Ledger:          m.Ledger,
		MovementType:    m.MovementType,
		Quantity:        m.Quantity,
		Reason:          m.Reason,
	}
}

// StockBelowReorderPointEvent is raised when a branch's on-hand quantity of a
// product drops below the catalog reorder point
type StockBelowReorderPointEvent struct {
	shared.BaseDomainEvent
	ProductID    uuid.UUID `json:"product_id"`
	SKU          string    `json:"sku"`
	OnHand       int64     `json:"on_hand"`
	ReorderPoint int64     `json:"reorder_point"`
	ReorderQty   int64     `json:"reorder_qty"`
}

// NewStockBelowReorderPointEvent creates a new StockBelowReorderPointEvent
func NewStockBelowReorderPointEvent(branchID, productID uuid.UUID, sku string, onHand, reorderPoint, reorderQty int64) *StockBelowReorderPointEvent {
	return &StockBelowReorderPointEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorderPoint, AggregateTypeInventoryLine, productID, branchID),
		ProductID:       productID,
		SKU:             sku,
		OnHand:          onHand,
		ReorderPoint:    reorderPoint,
		ReorderQty:      reorderQty,
	}
}

// BatchesExpiredEvent is raised after expired batches are deactivated
type BatchesExpiredEvent struct {
	shared.BaseDomainEvent
	Count int64 `json:"count"`
}

// NewBatchesExpiredEvent creates a new BatchesExpiredEvent
func NewBatchesExpiredEvent(count int64) *BatchesExpiredEvent {
	return &BatchesExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchesExpired, "Batch", uuid.Nil, uuid.Nil),
		Count:           count,
	}
}
