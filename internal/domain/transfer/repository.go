package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// TransferFilter narrows transfer queries
type TransferFilter struct {
	shared.Filter
	// BranchID matches transfers where the branch is source or target
	BranchID *uuid.UUID
	Status   TransferStatus
}

// StockTransferRepository defines the interface for transfer persistence
type StockTransferRepository interface {
	// FindByID finds a transfer with its items and shipment manifest
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransfer, error)

	// Find lists transfers matching filter with their items
	Find(ctx context.Context, filter TransferFilter) ([]StockTransfer, int64, error)

	// Create inserts a new transfer with its items
	Create(ctx context.Context, transfer *StockTransfer) error

	// SaveWithLock updates the header, and inserts shipment lines not yet stored,
	// when the stored version is one less than transfer.Version
	SaveWithLock(ctx context.Context, transfer *StockTransfer) error
}
