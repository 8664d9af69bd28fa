package inventory

import (
	"context"

	"github.com/thaipharm/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Every quantity change touches three tables together: the inventory line, the
// batch total and the movement log. Going through one TransactionalRepositories
// value is what keeps batch.quantity equal to the sum of its lines.
type TransactionalRepositories interface {
	// BatchRepo returns the batch registry scoped to the current transaction
	BatchRepo() inventory.BatchRepository
	// LineRepo returns the inventory line repository scoped to the current transaction
	LineRepo() inventory.InventoryLineRepository
	// MovementRepo returns the stock movement log scoped to the current transaction
	MovementRepo() inventory.StockMovementRepository
}
