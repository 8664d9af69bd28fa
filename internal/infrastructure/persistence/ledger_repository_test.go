package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appinventory "github.com/thaipharm/backend/internal/application/inventory"
	appsales "github.com/thaipharm/backend/internal/application/sales"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/tests/testutil"
	"gorm.io/gorm"
)

func newTestBatch(t *testing.T, db *gorm.DB, productID uuid.UUID, number string, expiry time.Time) *inventory.Batch {
	t.Helper()

	candidate, err := inventory.NewBatch(productID, number, "LOT-"+number, expiry, decimal.NewFromInt(40))
	require.NoError(t, err)
	batch, err := NewGormBatchRepository(db).GetOrCreate(context.Background(), candidate)
	require.NoError(t, err)
	return batch
}

func TestBatchRepository_GetOrCreate_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	productID := uuid.New()
	expiry := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	first := newTestBatch(t, db, productID, "B-100", expiry)

	again, err := inventory.NewBatch(productID, "B-100", "OTHER-LOT", expiry, decimal.NewFromInt(99))
	require.NoError(t, err)
	stored, err := NewGormBatchRepository(db).GetOrCreate(ctx, again)
	require.NoError(t, err)

	assert.Equal(t, first.ID, stored.ID, "a batch number is registered once per product")
	assert.Equal(t, "LOT-B-100", stored.LotNumber)
	assert.True(t, stored.CostPrice.Equal(decimal.NewFromInt(40)))

	var count int64
	require.NoError(t, db.Table("batches").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInventoryLineRepository_IncrementDecrement_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewGormInventoryLineRepository(db)
	branchID, productID, batchID := uuid.New(), uuid.New(), uuid.New()

	cost, err := inventory.NewVatCost(decimal.NewFromInt(40), decimal.NewFromInt(7))
	require.NoError(t, err)
	for _, qty := range []int64{10, 5} {
		line, err := inventory.NewInventoryLine(branchID, productID, batchID, qty, "SHELF-1", cost)
		require.NoError(t, err)
		require.NoError(t, repo.Increment(ctx, line))
	}

	line, err := repo.FindByKey(ctx, branchID, productID, batchID, inventory.LedgerVAT)
	require.NoError(t, err)
	assert.Equal(t, int64(15), line.Quantity)

	ok, err := repo.Decrement(ctx, branchID, productID, batchID, inventory.LedgerVAT, 20)
	require.NoError(t, err)
	assert.False(t, ok, "cannot take more than the line holds")

	ok, err = repo.Decrement(ctx, branchID, productID, batchID, inventory.LedgerNonVAT, 1)
	require.NoError(t, err)
	assert.False(t, ok, "the NON_VAT line does not exist")

	ok, err = repo.Decrement(ctx, branchID, productID, batchID, inventory.LedgerVAT, 15)
	require.NoError(t, err)
	assert.True(t, ok)

	line, err = repo.FindByKey(ctx, branchID, productID, batchID, inventory.LedgerVAT)
	require.NoError(t, err)
	assert.Equal(t, int64(0), line.Quantity)

	total, err := repo.SumByBranchAndProduct(ctx, branchID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestInventoryLineRepository_FindCandidates_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewGormInventoryLineRepository(db)
	branchID, productID := uuid.New(), uuid.New()

	early := newTestBatch(t, db, productID, "EARLY", time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	late := newTestBatch(t, db, productID, "LATE", time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC))

	cost, err := inventory.NewVatCost(decimal.NewFromInt(40), decimal.NewFromInt(7))
	require.NoError(t, err)
	for batchID, qty := range map[uuid.UUID]int64{early.ID: 3, late.ID: 20} {
		line, err := inventory.NewInventoryLine(branchID, productID, batchID, qty, "", cost)
		require.NoError(t, err)
		require.NoError(t, repo.Increment(ctx, line))
	}

	candidates, err := repo.FindCandidates(ctx, branchID, productID, inventory.LedgerVAT, 5)
	require.NoError(t, err)
	require.Len(t, candidates, 1, "lines holding less than the requested quantity are skipped")
	assert.Equal(t, late.ID, candidates[0].Batch.ID)
	assert.Equal(t, int64(20), candidates[0].Line.Quantity)

	candidates, err = repo.FindCandidates(ctx, branchID, productID, inventory.LedgerNonVAT, 1)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestBatchRepository_DeactivateExpired_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	repo := NewGormBatchRepository(db)
	productID := uuid.New()
	asOf := time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)

	expired := newTestBatch(t, db, productID, "OLD", asOf.AddDate(0, 0, -1))
	lastDay := newTestBatch(t, db, productID, "TODAY", asOf)

	count, err := repo.DeactivateExpired(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := repo.FindByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	stored, err = repo.FindByID(ctx, lastDay.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive, "a batch is still usable on its expiry date")
}

func TestSequenceGenerator_Next_SQLite(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	gen := NewGormSequenceGenerator(db)
	day := time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC)

	for _, want := range []string{"INV-BKK01-20250214-0001", "INV-BKK01-20250214-0002", "INV-BKK01-20250214-0003"} {
		got, err := gen.Next(ctx, shared.PrefixInvoice, "BKK01", day)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := gen.Next(ctx, shared.PrefixInvoice, "CNX02", day)
	require.NoError(t, err)
	assert.Equal(t, "INV-CNX02-20250214-0001", got, "each branch has its own counter")

	got, err = gen.Next(ctx, shared.PrefixTransfer, "BKK01", day)
	require.NoError(t, err)
	assert.Equal(t, "TRF-BKK01-20250214-0001", got, "each prefix has its own counter")

	got, err = gen.Next(ctx, shared.PrefixInvoice, "BKK01", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "INV-BKK01-20250215-0001", got, "counters restart every day")
}

func TestTransactionScope_SQLite(t *testing.T) {
	ctx := context.Background()
	ledger := appinventory.NewLedger()

	receive := func(t *testing.T, batch *inventory.Batch, branchID uuid.UUID, qty int64) appinventory.StockIn {
		t.Helper()
		cost, err := inventory.NewVatCost(decimal.NewFromInt(40), decimal.NewFromInt(7))
		require.NoError(t, err)
		return appinventory.StockIn{
			BranchID:      branchID,
			ProductID:     batch.ProductID,
			BatchID:       batch.ID,
			Quantity:      qty,
			Cost:          cost,
			MovementType:  inventory.MovementIn,
			ReferenceType: inventory.ReferenceReceipt,
			ReferenceID:   uuid.New(),
		}
	}

	t.Run("commit keeps line, batch and movement in step", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		batch := newTestBatch(t, db, uuid.New(), "B-1", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
		branchID := uuid.New()

		err := NewGormTransactionScope(db).Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			_, err := ledger.Receive(ctx, repos, receive(t, batch, branchID, 12))
			return err
		})
		require.NoError(t, err)

		stored, err := NewGormBatchRepository(db).FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(12), stored.Quantity)

		sum, err := NewGormInventoryLineRepository(db).SumByBatch(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, stored.Quantity, sum)

		movements, total, err := NewGormStockMovementRepository(db).Find(ctx, inventory.MovementFilter{BatchID: &batch.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, inventory.MovementIn, movements[0].MovementType)
	})

	t.Run("error rolls every write back", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		batch := newTestBatch(t, db, uuid.New(), "B-2", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
		branchID := uuid.New()
		boom := errors.New("payment declined")

		err := NewGormTransactionScope(db).Sales().Execute(ctx, func(repos appsales.TransactionalRepositories) error {
			if _, err := ledger.Receive(ctx, repos, receive(t, batch, branchID, 7)); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		stored, err := NewGormBatchRepository(db).FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stored.Quantity)

		_, err = NewGormInventoryLineRepository(db).FindByKey(ctx, branchID, batch.ProductID, batch.ID, inventory.LedgerVAT)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, total, err := NewGormStockMovementRepository(db).Find(ctx, inventory.MovementFilter{BatchID: &batch.ID})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}
