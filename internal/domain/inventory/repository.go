package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// BatchRepository defines the interface for batch registry persistence
type BatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByIDs finds several batches at once
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Batch, error)

	// FindByProductAndNumber finds the batch identified by (productID, batchNumber)
	FindByProductAndNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (*Batch, error)

	// FindByProduct lists batches of a product
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Batch, error)

	// GetOrCreate stores batch unless a batch with the same (productID, batchNumber)
	// already exists, and returns the stored row either way.
	GetOrCreate(ctx context.Context, batch *Batch) (*Batch, error)

	// AdjustQuantity applies a signed delta in a single guarded statement.
	// It fails with an insufficient stock error if the result would be negative
	// and with a not found error if the batch does not exist.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int64) error

	// DeactivateExpired marks active batches whose expiry date is before asOf inactive
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)
}

// InventoryLineRepository defines the interface for per-branch stock lines
type InventoryLineRepository interface {
	// FindByKey finds the line for (branch, product, batch, ledger)
	FindByKey(ctx context.Context, branchID, productID, batchID uuid.UUID, ledger Ledger) (*InventoryLine, error)

	// FindByBranchAndProduct lists the product's lines at a branch; an empty ledger returns both ledgers
	FindByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID, ledger Ledger) ([]InventoryLine, error)

	// FindByBranch lists a branch's lines with paging; an empty ledger returns both ledgers
	FindByBranch(ctx context.Context, branchID uuid.UUID, ledger Ledger, filter shared.Filter) ([]InventoryLine, int64, error)

	// FindByBatch lists every branch holding of a batch
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]InventoryLine, error)

	// FindCandidates returns the branch's lines of the product in the ledger
	// holding at least minQuantity, joined with their batches
	FindCandidates(ctx context.Context, branchID, productID uuid.UUID, ledger Ledger, minQuantity int64) ([]StockCandidate, error)

	// Increment adds line.Quantity to the line identified by line's key,
	// creating it with line's cost block and location when absent.
	Increment(ctx context.Context, line *InventoryLine) error

	// Decrement subtracts quantity only if the line holds at least quantity.
	// It returns false, with no change, when the line is missing or short.
	Decrement(ctx context.Context, branchID, productID, batchID uuid.UUID, ledger Ledger, quantity int64) (bool, error)

	// SumByBranchAndProduct returns the on-hand quantity of a product at a branch across both ledgers
	SumByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID) (int64, error)

	// SumByBatch returns the on-hand quantity of a batch across all branches and ledgers
	SumByBatch(ctx context.Context, batchID uuid.UUID) (int64, error)
}

// MovementFilter narrows movement queries
type MovementFilter struct {
	shared.Filter
	BranchID      *uuid.UUID
	ProductID     *uuid.UUID
	BatchID       *uuid.UUID
	Ledger        Ledger
	Types         []MovementType
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
	From          *time.Time
	To            *time.Time
}

// StockMovementRepository is append-only: it creates and reads movements, never updates them
type StockMovementRepository interface {
	// Create appends a movement
	Create(ctx context.Context, movement *StockMovement) error

	// FindByReference lists the movements caused by one document
	FindByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID) ([]StockMovement, error)

	// Find lists movements matching filter, newest first, with the total count
	Find(ctx context.Context, filter MovementFilter) ([]StockMovement, int64, error)
}
