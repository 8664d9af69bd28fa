package persistence

import (
	"context"

	appinventory "github.com/thaipharm/backend/internal/application/inventory"
	appoem "github.com/thaipharm/backend/internal/application/oem"
	appsales "github.com/thaipharm/backend/internal/application/sales"
	apptransfer "github.com/thaipharm/backend/internal/application/transfer"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/oem"
	"github.com/thaipharm/backend/internal/domain/sales"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/domain/transfer"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application TransactionScopes using GORM transactions.
// Every repository handed to the callback is bound to the same *gorm.DB transaction,
// so the callback's changes are committed or rolled back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

func (s *GormTransactionScope) run(ctx context.Context, fn func(repos *gormTransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
// If fn succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// Sales returns the scope used by checkout and cancellation
func (s *GormTransactionScope) Sales() *GormSalesTransactionScope {
	return &GormSalesTransactionScope{scope: s}
}

// Transfers returns the scope used by the transfer workflow
func (s *GormTransactionScope) Transfers() *GormTransferTransactionScope {
	return &GormTransferTransactionScope{scope: s}
}

// Oem returns the scope used by OEM ordering and goods receiving
func (s *GormTransactionScope) Oem() *GormOemTransactionScope {
	return &GormOemTransactionScope{scope: s}
}

// GormSalesTransactionScope implements sales.TransactionScope
type GormSalesTransactionScope struct {
	scope *GormTransactionScope
}

// Execute runs fn within a database transaction
func (s *GormSalesTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.scope.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// GormTransferTransactionScope implements transfer.TransactionScope
type GormTransferTransactionScope struct {
	scope *GormTransactionScope
}

// Execute runs fn within a database transaction
func (s *GormTransferTransactionScope) Execute(ctx context.Context, fn func(repos apptransfer.TransactionalRepositories) error) error {
	return s.scope.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// GormOemTransactionScope implements oem.TransactionScope
type GormOemTransactionScope struct {
	scope *GormTransactionScope
}

// Execute runs fn within a database transaction
func (s *GormOemTransactionScope) Execute(ctx context.Context, fn func(repos appoem.TransactionalRepositories) error) error {
	return s.scope.run(ctx, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// BatchRepo returns the batch registry scoped to the current transaction.
func (r *gormTransactionalRepositories) BatchRepo() inventory.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// LineRepo returns the inventory line repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LineRepo() inventory.InventoryLineRepository {
	return NewGormInventoryLineRepository(r.tx)
}

// MovementRepo returns the stock movement log scoped to the current transaction.
func (r *gormTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// SaleRepo returns the sale repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// TransferRepo returns the stock transfer repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TransferRepo() transfer.StockTransferRepository {
	return NewGormStockTransferRepository(r.tx)
}

// OrderRepo returns the OEM order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() oem.OrderRepository {
	return NewGormOemOrderRepository(r.tx)
}

// ReceivingRepo returns the goods receiving repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ReceivingRepo() oem.GoodsReceivingRepository {
	return NewGormGoodsReceivingRepository(r.tx)
}

// Sequences returns the document sequence generator scoped to the current transaction.
func (r *gormTransactionalRepositories) Sequences() shared.SequenceGenerator {
	return NewGormSequenceGenerator(r.tx)
}

var (
	_ appinventory.TransactionScope = (*GormTransactionScope)(nil)
	_ appsales.TransactionScope     = (*GormSalesTransactionScope)(nil)
	_ apptransfer.TransactionScope  = (*GormTransferTransactionScope)(nil)
	_ appoem.TransactionScope       = (*GormOemTransactionScope)(nil)

	_ appsales.TransactionalRepositories    = (*gormTransactionalRepositories)(nil)
	_ apptransfer.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ appoem.TransactionalRepositories      = (*gormTransactionalRepositories)(nil)
)
