package transfer

import (
	"context"

	appinventory "github.com/thaipharm/backend/internal/application/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/domain/transfer"
)

// TransactionScope runs each transfer step in one database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories extends the ledger repositories with the transfer
// repository and the document sequence
type TransactionalRepositories interface {
	appinventory.TransactionalRepositories
	TransferRepo() transfer.StockTransferRepository
	Sequences() shared.SequenceGenerator
}
