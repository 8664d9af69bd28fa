package transfer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// TransferStatus represents the status of a stock transfer
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusShipped   TransferStatus = "SHIPPED"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
	TransferStatusRejected  TransferStatus = "REJECTED"
)

// IsValid checks if the status is valid
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusShipped, TransferStatusCompleted,
		TransferStatusCancelled, TransferStatusRejected:
		return true
	}
	return false
}

// String returns the string representation
func (s TransferStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return target == TransferStatusShipped || target == TransferStatusCancelled
	case TransferStatusShipped:
		return target == TransferStatusCompleted || target == TransferStatusRejected
	}
	return false
}

// IsTerminal returns true when no further transition is possible
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCompleted || s == TransferStatusCancelled || s == TransferStatusRejected
}

// StockTransferItem is a requested product quantity
type StockTransferItem struct {
	ID         uuid.UUID
	TransferID uuid.UUID
	ProductID  uuid.UUID
	Ledger     inventory.Ledger
	Quantity   int64
}

// ShipmentLine records which batch row a shipped quantity came from. The
// manifest travels from ship to receive so the destination credits the same batch.
type ShipmentLine struct {
	ID         uuid.UUID
	TransferID uuid.UUID
	ItemID     uuid.UUID
	ProductID  uuid.UUID
	BatchID    uuid.UUID
	Ledger     inventory.Ledger
	Quantity   int64
	Cost       inventory.Costing
}

// ItemInput is one requested line of a transfer
type ItemInput struct {
	ProductID uuid.UUID
	Ledger    inventory.Ledger
	Quantity  int64
}

// StockTransfer moves stock from one branch to another in two transactions:
// ship deducts at the source, receive credits the target.
type StockTransfer struct {
	shared.BaseAggregateRoot
	TransferNumber string
	SourceBranchID uuid.UUID
	TargetBranchID uuid.UUID
	Status         TransferStatus
	Notes          string
	Items          []StockTransferItem
	Shipment       []ShipmentLine
	RequestedBy    uuid.UUID
	ShippedBy      *uuid.UUID
	ShippedAt      *time.Time
	ReceivedBy     *uuid.UUID
	ReceivedAt     *time.Time
	CancelledAt    *time.Time
	CancelReason   string
}

// NewStockTransfer creates a pending transfer. Lines for the same product and
// ledger are merged.
func NewStockTransfer(number string, sourceBranchID, targetBranchID uuid.UUID, items []ItemInput, requestedBy uuid.UUID, notes string) (*StockTransfer, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.InvalidInput("transfer number is required")
	}
	if sourceBranchID == uuid.Nil || targetBranchID == uuid.Nil {
		return nil, shared.InvalidInput("source and target branch are required")
	}
	if sourceBranchID == targetBranchID {
		return nil, shared.InvalidInput("source and target branch must differ")
	}
	if len(items) == 0 {
		return nil, shared.InvalidInput("transfer must have at least one item")
	}

	t := &StockTransfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TransferNumber:    number,
		SourceBranchID:    sourceBranchID,
		TargetBranchID:    targetBranchID,
		Status:            TransferStatusPending,
		Notes:             strings.TrimSpace(notes),
		RequestedBy:       requestedBy,
	}

	index := make(map[string]int)
	for _, in := range items {
		if in.ProductID == uuid.Nil {
			return nil, shared.InvalidInput("product ID is required")
		}
		if in.Quantity <= 0 {
			return nil, shared.InvalidInput("transfer quantity must be positive")
		}
		ledger := in.Ledger
		if ledger == "" {
			ledger = inventory.LedgerVAT
		}
		if !ledger.IsValid() {
			return nil, shared.InvalidInput("invalid ledger %q", ledger)
		}
		key := in.ProductID.String() + "/" + string(ledger)
		if i, ok := index[key]; ok {
			t.Items[i].Quantity += in.Quantity
			continue
		}
		index[key] = len(t.Items)
		t.Items = append(t.Items, StockTransferItem{
			ID:         uuid.New(),
			TransferID: t.ID,
			ProductID:  in.ProductID,
			Ledger:     ledger,
			Quantity:   in.Quantity,
		})
	}

	t.AddDomainEvent(NewTransferRequestedEvent(t))
	return t, nil
}

// Ship records the shipment manifest and moves the transfer to SHIPPED.
// The manifest must cover every item exactly.
func (t *StockTransfer) Ship(manifest []ShipmentLine, actorID uuid.UUID) error {
	if !t.Status.CanTransitionTo(TransferStatusShipped) {
		return shared.InvalidTransition("transfer "+t.TransferNumber, t.Status, TransferStatusShipped)
	}

	shipped := make(map[uuid.UUID]int64)
	for _, line := range manifest {
		if line.Quantity <= 0 {
			return shared.InvalidInput("shipment quantity must be positive")
		}
		shipped[line.ItemID] += line.Quantity
	}
	for _, item := range t.Items {
		if shipped[item.ID] != item.Quantity {
			return shared.RuleViolation("shipment for item %s covers %d of %d", item.ProductID, shipped[item.ID], item.Quantity)
		}
	}

	now := time.Now()
	t.Shipment = make([]ShipmentLine, len(manifest))
	for i, line := range manifest {
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		line.TransferID = t.ID
		t.Shipment[i] = line
	}
	t.Status = TransferStatusShipped
	t.ShippedBy = &actorID
	t.ShippedAt = &now
	t.touch(now)

	t.AddDomainEvent(NewTransferShippedEvent(t))
	return nil
}

// Receive completes the transfer. Only the target branch may receive.
func (t *StockTransfer) Receive(actingBranchID, actorID uuid.UUID) error {
	if !t.Status.CanTransitionTo(TransferStatusCompleted) {
		return shared.InvalidTransition("transfer "+t.TransferNumber, t.Status, TransferStatusCompleted)
	}
	if actingBranchID != t.TargetBranchID {
		return shared.RuleViolation("transfer %s can only be received by its target branch", t.TransferNumber)
	}

	now := time.Now()
	t.Status = TransferStatusCompleted
	t.ReceivedBy = &actorID
	t.ReceivedAt = &now
	t.touch(now)

	t.AddDomainEvent(NewTransferCompletedEvent(t))
	return nil
}

// Reject refuses a shipped transfer at the target branch; the caller returns
// the manifest quantities to the source branch in the same transaction.
func (t *StockTransfer) Reject(actingBranchID, actorID uuid.UUID, reason string) error {
	if !t.Status.CanTransitionTo(TransferStatusRejected) {
		return shared.InvalidTransition("transfer "+t.TransferNumber, t.Status, TransferStatusRejected)
	}
	if actingBranchID != t.TargetBranchID {
		return shared.RuleViolation("transfer %s can only be rejected by its target branch", t.TransferNumber)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.InvalidInput("reject reason is required")
	}

	now := time.Now()
	t.Status = TransferStatusRejected
	t.ReceivedBy = &actorID
	t.ReceivedAt = &now
	t.CancelReason = reason
	t.touch(now)

	t.AddDomainEvent(NewTransferRejectedEvent(t))
	return nil
}

// Cancel withdraws a transfer that has not shipped yet
func (t *StockTransfer) Cancel(reason string) error {
	if !t.Status.CanTransitionTo(TransferStatusCancelled) {
		return shared.InvalidTransition("transfer "+t.TransferNumber, t.Status, TransferStatusCancelled)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.InvalidInput("cancel reason is required")
	}

	now := time.Now()
	t.Status = TransferStatusCancelled
	t.CancelledAt = &now
	t.CancelReason = reason
	t.touch(now)

	t.AddDomainEvent(NewTransferCancelledEvent(t))
	return nil
}

// TotalQuantity returns the requested units across all items
func (t *StockTransfer) TotalQuantity() int64 {
	var n int64
	for _, item := range t.Items {
		n += item.Quantity
	}
	return n
}

// InTransitQuantity returns the units deducted at the source and not yet credited anywhere
func (t *StockTransfer) InTransitQuantity() int64 {
	if t.Status != TransferStatusShipped {
		return 0
	}
	var n int64
	for _, line := range t.Shipment {
		n += line.Quantity
	}
	return n
}

func (t *StockTransfer) touch(now time.Time) {
	t.MarkModified(now)
}
