package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// These tests pin the shape of the statements that keep stock consistent under
// concurrency: the conditional decrement, the guarded batch adjustment and the
// counter upsert behind document numbers.

func TestInventoryLineRepository_Decrement_SQL(t *testing.T) {
	branchID, productID, batchID := uuid.New(), uuid.New(), uuid.New()
	decrementSQL := `UPDATE "inventory_lines" SET "quantity"=quantity - \$1,"updated_at"=\$2 ` +
		`WHERE branch_id = \$3 AND product_id = \$4 AND batch_id = \$5 AND ledger = \$6 AND quantity >= \$7`

	t.Run("one row updated means the stock was there", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectExec(decrementSQL).
			WithArgs(int64(3), sqlmock.AnyArg(), branchID, productID, batchID, "VAT", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := NewGormInventoryLineRepository(db.DB).Decrement(context.Background(), branchID, productID, batchID, inventory.LedgerVAT, 3)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no row updated means insufficient stock", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectExec(decrementSQL).
			WithArgs(int64(50), sqlmock.AnyArg(), branchID, productID, batchID, "NON_VAT", int64(50)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewGormInventoryLineRepository(db.DB).Decrement(context.Background(), branchID, productID, batchID, inventory.LedgerNonVAT, 50)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-positive quantity never reaches the database", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		_, err := NewGormInventoryLineRepository(db.DB).Decrement(context.Background(), branchID, productID, batchID, inventory.LedgerVAT, 0)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInventoryLineRepository_Increment_SQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	cost, err := inventory.NewVatCost(decimal.NewFromInt(40), decimal.NewFromInt(7))
	require.NoError(t, err)
	line, err := inventory.NewInventoryLine(uuid.New(), uuid.New(), uuid.New(), 10, "A-1", cost)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "inventory_lines" .* ON CONFLICT \("branch_id","product_id","batch_id","ledger"\) ` +
		`DO UPDATE SET "quantity"=inventory_lines.quantity \+ excluded.quantity,"updated_at"=\$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewGormInventoryLineRepository(db.DB).Increment(context.Background(), line))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepository_AdjustQuantity_SQL(t *testing.T) {
	batchID := uuid.New()
	adjustSQL := `UPDATE "batches" SET "is_active"=quantity \+ \$1 > 0,"quantity"=quantity \+ \$2,"updated_at"=\$3 ` +
		`WHERE id = \$4 AND quantity \+ \$5 >= 0`

	t.Run("guarded update succeeds", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectExec(adjustSQL).
			WithArgs(int64(-4), int64(-4), sqlmock.AnyArg(), batchID, int64(-4)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewGormBatchRepository(db.DB).AdjustQuantity(context.Background(), batchID, -4))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guard failure reports the stored quantity", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectExec(adjustSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "batches" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "batch_number", "quantity"}).
				AddRow(batchID, "B-001", int64(2)))

		err := NewGormBatchRepository(db.DB).AdjustQuantity(context.Background(), batchID, -4)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Contains(t, err.Error(), "available 2")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero delta is a no-op", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		require.NoError(t, NewGormBatchRepository(db.DB).AdjustQuantity(context.Background(), batchID, 0))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSequenceGenerator_Next_SQL(t *testing.T) {
	day := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

	t.Run("increments the counter row and formats the number", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "document_sequences" .* ON CONFLICT \("prefix","scope","day"\) ` +
			`DO UPDATE SET "last_value"=document_sequences.last_value \+ 1`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT "last_value" FROM "document_sequences" WHERE prefix = \$1 AND scope = \$2 AND day = \$3`).
			WithArgs("INV", "BKK01", "20240309").
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(int64(12)))

		number, err := NewGormSequenceGenerator(db.DB).Next(context.Background(), shared.PrefixInvoice, "BKK01", day)
		require.NoError(t, err)
		assert.Equal(t, "INV-BKK01-20240309-0012", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upsert failure is wrapped", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		dbErr := errors.New("connection reset")
		mock.ExpectExec(`INSERT INTO "document_sequences"`).WillReturnError(dbErr)

		_, err := NewGormSequenceGenerator(db.DB).Next(context.Background(), shared.PrefixTransfer, "BKK01", day)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("blank scope is rejected", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		_, err := NewGormSequenceGenerator(db.DB).Next(context.Background(), shared.PrefixTransfer, "  ", day)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
