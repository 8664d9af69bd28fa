package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// MovementType is the cause of a quantity change
type MovementType string

const (
	MovementIn            MovementType = "IN"
	MovementOut           MovementType = "OUT"
	MovementAdjustmentIn  MovementType = "ADJUSTMENT_IN"
	MovementAdjustmentOut MovementType = "ADJUSTMENT_OUT"
	MovementTransferIn    MovementType = "TRANSFER_IN"
	MovementTransferOut   MovementType = "TRANSFER_OUT"
	MovementReturnIn      MovementType = "RETURN_IN"
	MovementExpired       MovementType = "EXPIRED"
	MovementDamaged       MovementType = "DAMAGED"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementIn, MovementOut,
		MovementAdjustmentIn, MovementAdjustmentOut,
		MovementTransferIn, MovementTransferOut,
		MovementReturnIn, MovementExpired, MovementDamaged:
		return true
	}
	return false
}

// IsIncrease returns true if this movement type adds stock
func (t MovementType) IsIncrease() bool {
	switch t {
	case MovementIn, MovementAdjustmentIn, MovementTransferIn, MovementReturnIn:
		return true
	}
	return false
}

// IsAdjustment returns true for the types a manual stock adjustment may use
func (t MovementType) IsAdjustment() bool {
	switch t {
	case MovementAdjustmentIn, MovementAdjustmentOut, MovementExpired, MovementDamaged:
		return true
	}
	return false
}

// Signed returns quantity with the sign implied by the movement type
func (t MovementType) Signed(quantity int64) int64 {
	if t.IsIncrease() {
		return quantity
	}
	return -quantity
}

// ReferenceType identifies the document that caused a movement
type ReferenceType string

const (
	ReferenceSale           ReferenceType = "SALE"
	ReferenceSaleCancel     ReferenceType = "SALE_CANCEL"
	ReferenceTransfer       ReferenceType = "TRANSFER"
	ReferenceGoodsReceiving ReferenceType = "GOODS_RECEIVING"
	ReferenceAdjustment     ReferenceType = "ADJUSTMENT"
	ReferenceReceipt        ReferenceType = "RECEIPT"
)

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceSale, ReferenceSaleCancel, ReferenceTransfer,
		ReferenceGoodsReceiving, ReferenceAdjustment, ReferenceReceipt:
		return true
	}
	return false
}

// StockMovement is one append-only audit entry documenting a single quantity
// change. Quantity is always positive; the direction comes from MovementType.
// Corrections are made with new movements, never by editing old ones.
type StockMovement struct {
	ID            uuid.UUID
	BranchID      uuid.UUID
	ProductID     uuid.UUID
	BatchID       uuid.UUID
	Ledger        Ledger
	MovementType  MovementType
	Quantity      int64
	UnitCost      decimal.Decimal
	ReferenceType ReferenceType
	ReferenceID   uuid.UUID
	Reason        string
	ActorID       uuid.UUID
	CreatedAt     time.Time
}

// MovementInput carries the fields of a new movement
type MovementInput struct {
	BranchID      uuid.UUID
	ProductID     uuid.UUID
	BatchID       uuid.UUID
	Ledger        Ledger
	MovementType  MovementType
	Quantity      int64
	UnitCost      decimal.Decimal
	ReferenceType ReferenceType
	ReferenceID   uuid.UUID
	Reason        string
	ActorID       uuid.UUID
}

// NewStockMovement validates and creates a movement
func NewStockMovement(in MovementInput) (*StockMovement, error) {
	if in.BranchID == uuid.Nil || in.ProductID == uuid.Nil || in.BatchID == uuid.Nil {
		return nil, shared.InvalidInput("movement requires branch, product and batch")
	}
	if !in.Ledger.IsValid() {
		return nil, shared.InvalidInput("invalid ledger %q", in.Ledger)
	}
	if !in.MovementType.IsValid() {
		return nil, shared.InvalidInput("invalid movement type %q", in.MovementType)
	}
	if in.Quantity <= 0 {
		return nil, shared.InvalidInput("movement quantity must be positive")
	}
	if !in.ReferenceType.IsValid() {
		return nil, shared.InvalidInput("invalid reference type %q", in.ReferenceType)
	}

	return &StockMovement{
		ID:            uuid.New(),
		BranchID:      in.BranchID,
		ProductID:     in.ProductID,
		BatchID:       in.BatchID,
		Ledger:        in.Ledger,
		MovementType:  in.MovementType,
		Quantity:      in.Quantity,
		UnitCost:      in.UnitCost,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Reason:        in.Reason,
		ActorID:       in.ActorID,
		CreatedAt:     time.Now(),
	}, nil
}

// SignedQuantity returns the quantity with its direction applied
func (m *StockMovement) SignedQuantity() int64 {
	return m.MovementType.Signed(m.Quantity)
}
