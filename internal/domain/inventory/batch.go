package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// Batch is a manufactured lot of a product. Its quantity is the sum of every
// branch holding of the batch across both ledgers. Batches are never deleted,
// they are deactivated once exhausted or expired.
type Batch struct {
	shared.BaseEntity
	ProductID   uuid.UUID
	BatchNumber string
	LotNumber   string
	ExpiryDate  time.Time
	CostPrice   decimal.Decimal
	Quantity    int64
	IsActive    bool
}

// NewBatch creates an empty, active batch. Quantity is raised by the receipt
// that creates it so that every change is paired with a movement.
func NewBatch(productID uuid.UUID, batchNumber, lotNumber string, expiryDate time.Time, costPrice decimal.Decimal) (*Batch, error) {
	if productID == uuid.Nil {
		return nil, shared.InvalidInput("product ID is required")
	}
	batchNumber = strings.TrimSpace(batchNumber)
	if batchNumber == "" {
		return nil, shared.InvalidInput("batch number is required")
	}
	if len(batchNumber) > 50 {
		return nil, shared.InvalidInput("batch number cannot exceed 50 characters")
	}
	if expiryDate.IsZero() {
		return nil, shared.InvalidInput("expiry date is required")
	}
	if costPrice.IsNegative() {
		return nil, shared.InvalidInput("cost price cannot be negative")
	}

	return &Batch{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		BatchNumber: batchNumber,
		LotNumber:   strings.TrimSpace(lotNumber),
		ExpiryDate:  truncateToDay(expiryDate),
		CostPrice:   costPrice,
		Quantity:    0,
		IsActive:    true,
	}, nil
}

// IsExpired reports whether the batch is past its expiry date at asOf.
// A batch is still usable on its expiry date.
func (b *Batch) IsExpired(asOf time.Time) bool {
	return b.ExpiryDate.Before(truncateToDay(asOf))
}

// IsSellable reports whether the batch may be picked for a sale.
func (b *Batch) IsSellable(asOf time.Time) bool {
	return b.IsActive && !b.IsExpired(asOf)
}

// DaysUntilExpiry returns the whole days left before expiry, negative once expired.
func (b *Batch) DaysUntilExpiry(asOf time.Time) int {
	return int(b.ExpiryDate.Sub(truncateToDay(asOf)).Hours() / 24)
}

// ApplyDelta applies a signed quantity change and keeps the active flag in step
// with the remaining quantity.
func (b *Batch) ApplyDelta(delta int64) error {
	next := b.Quantity + delta
	if next < 0 {
		return shared.InsufficientStock("batch "+b.BatchNumber, -delta, b.Quantity)
	}
	b.Quantity = next
	b.IsActive = next > 0
	b.Touch(time.Now())
	return nil
}

// Deactivate marks the batch unusable for new sales.
func (b *Batch) Deactivate() {
	b.IsActive = false
	b.Touch(time.Now())
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
