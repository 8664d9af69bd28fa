package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// SaleFilter narrows sale queries
type SaleFilter struct {
	shared.Filter
	BranchID *uuid.UUID
	Status   SaleStatus
	From     *time.Time
	To       *time.Time
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID finds a sale with its items and payment
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByInvoiceNumber finds a sale by its invoice number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Sale, error)

	// FindByIdempotencyKey finds the sale created under a checkout idempotency key
	FindByIdempotencyKey(ctx context.Context, key string) (*Sale, error)

	// Find lists sale headers matching filter with the total count
	Find(ctx context.Context, filter SaleFilter) ([]Sale, int64, error)

	// Create inserts a new sale with its items and payment
	Create(ctx context.Context, sale *Sale) error

	// SaveWithLock updates the header when the stored version is one less than
	// sale.Version, failing with a concurrency conflict otherwise
	SaveWithLock(ctx context.Context, sale *Sale) error
}
