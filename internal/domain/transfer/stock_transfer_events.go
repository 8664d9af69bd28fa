package transfer

import (
	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStockTransfer = "StockTransfer"

// Event type constants
const (
	EventTypeTransferRequested = "TransferRequested"
	EventTypeTransferShipped   = "TransferShipped"
	EventTypeTransferCompleted = "TransferCompleted"
	EventTypeTransferRejected  = "TransferRejected"
	EventTypeTransferCancelled = "TransferCancelled"
)

// TransferEvent carries the state of a transfer at a lifecycle step
type TransferEvent struct {
	shared.BaseDomainEvent
	TransferID     uuid.UUID      `json:"transfer_id"`
	TransferNumber string         `json:"transfer_number"`
	SourceBranchID uuid.UUID      `json:"source_branch_id"`
	TargetBranchID uuid.UUID      `json:"target_branch_id"`
	Status         TransferStatus `json:"status"`
	Quantity       int64          `json:"quantity"`
}

func newTransferEvent(eventType string, t *StockTransfer, branchID uuid.UUID) *TransferEvent {
	return &TransferEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeStockTransfer, t.ID, branchID),
		TransferID:      t.ID,
		TransferNumber:  t.TransferNumber,
		SourceBranchID:  t.SourceBranchID,
		TargetBranchID:  t.TargetBranchID,
		Status:          t.Status,
		Quantity:        t.TotalQuantity(),
	}
}

// NewTransferRequestedEvent is raised when a transfer is created
func NewTransferRequestedEvent(t *StockTransfer) *TransferEvent {
	return newTransferEvent(EventTypeTransferRequested, t, t.SourceBranchID)
}

// NewTransferShippedEvent is raised when stock leaves the source branch
func NewTransferShippedEvent(t *StockTransfer) *TransferEvent {
	return newTransferEvent(EventTypeTransferShipped, t, t.SourceBranchID)
}

// NewTransferCompletedEvent is raised when the target branch receives the stock
func NewTransferCompletedEvent(t *StockTransfer) *TransferEvent {
	return newTransferEvent(EventTypeTransferCompleted, t, t.TargetBranchID)
}

// NewTransferRejectedEvent is raised when the target branch refuses the shipment
func NewTransferRejectedEvent(t *StockTransfer) *TransferEvent {
	return newTransferEvent(EventTypeTransferRejected, t, t.TargetBranchID)
}

// NewTransferCancelledEvent is raised when a pending transfer is withdrawn
func NewTransferCancelledEvent(t *StockTransfer) *TransferEvent {
	return newTransferEvent(EventTypeTransferCancelled, t, t.SourceBranchID)
}
