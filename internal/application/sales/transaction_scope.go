package sales

import (
	"context"

	appinventory "github.com/thaipharm/backend/internal/application/inventory"
	"github.com/thaipharm/backend/internal/domain/sales"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// TransactionScope runs checkout and cancellation in one database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories extends the ledger repositories with the sale
// repository and the document sequence, all sharing one transaction
type TransactionalRepositories interface {
	appinventory.TransactionalRepositories
	SaleRepo() sales.SaleRepository
	Sequences() shared.SequenceGenerator
}
