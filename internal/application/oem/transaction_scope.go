package oem

import (
	"context"

	appinventory "github.com/thaipharm/backend/internal/application/inventory"
	"github.com/thaipharm/backend/internal/domain/oem"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// TransactionScope runs order changes and goods receivings in one database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories extends the ledger repositories with the OEM order
// and goods receiving repositories and the document sequence
type TransactionalRepositories interface {
	appinventory.TransactionalRepositories
	OrderRepo() oem.OrderRepository
	ReceivingRepo() oem.GoodsReceivingRepository
	Sequences() shared.SequenceGenerator
}
