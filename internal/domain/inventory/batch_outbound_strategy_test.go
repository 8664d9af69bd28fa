package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thaipharm/backend/internal/domain/shared"
)

var asOf = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func createTestCandidate(batchNumber string, lineQty int64, expiry time.Time, createdAt time.Time) StockCandidate {
	batch := Batch{
		BaseEntity:  shared.BaseEntity{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		ProductID:   uuid.New(),
		BatchNumber: batchNumber,
		ExpiryDate:  expiry,
		CostPrice:   decimal.NewFromFloat(0.5),
		Quantity:    lineQty,
		IsActive:    true,
	}
	line := InventoryLine{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		BranchID:   uuid.New(),
		ProductID:  batch.ProductID,
		BatchID:    batch.ID,
		Quantity:   lineQty,
		Cost:       VatCost{CostBeforeVat: decimal.NewFromFloat(0.5)},
	}
	return StockCandidate{Line: line, Batch: batch}
}

func TestBatchOutboundStrategyType(t *testing.T) {
	assert.True(t, BatchOutboundStrategyTypeFEFO.IsValid())
	assert.True(t, BatchOutboundStrategyTypeOldestRow.IsValid())
	assert.False(t, BatchOutboundStrategyType("SPECIFIED").IsValid())
}

func TestFEFOSelector_Select(t *testing.T) {
	selector := FEFOSelector{}
	created := asOf.AddDate(0, -3, 0)

	t.Run("picks the earliest expiring batch", func(t *testing.T) {
		late := createTestCandidate("LATE", 100, asOf.AddDate(2, 0, 0), created)
		early := createTestCandidate("EARLY", 100, asOf.AddDate(1, 0, 0), created.Add(time.Hour))

		got, ok := selector.Select([]StockCandidate{late, early}, 10, asOf)
		require.True(t, ok)
		assert.Equal(t, "EARLY", got.Batch.BatchNumber)
	})

	t.Run("skips batches that cannot cover the whole line", func(t *testing.T) {
		early := createTestCandidate("EARLY", 5, asOf.AddDate(1, 0, 0), created)
		late := createTestCandidate("LATE", 100, asOf.AddDate(2, 0, 0), created)

		got, ok := selector.Select([]StockCandidate{early, late}, 10, asOf)
		require.True(t, ok)
		assert.Equal(t, "LATE", got.Batch.BatchNumber)
	})

	t.Run("skips expired and inactive batches", func(t *testing.T) {
		expired := createTestCandidate("EXPIRED", 100, asOf.AddDate(0, 0, -1), created)
		inactive := createTestCandidate("INACTIVE", 100, asOf.AddDate(0, 6, 0), created)
		inactive.Batch.IsActive = false

		_, ok := selector.Select([]StockCandidate{expired, inactive}, 10, asOf)
		assert.False(t, ok)

		got, ok := FEFOSelector{AllowExpired: true}.Select([]StockCandidate{expired, inactive}, 10, asOf)
		require.True(t, ok)
		assert.Equal(t, "EXPIRED", got.Batch.BatchNumber)
	})

	t.Run("a batch expiring today is still sellable", func(t *testing.T) {
		today := createTestCandidate("TODAY", 100, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), created)
		_, ok := selector.Select([]StockCandidate{today}, 10, asOf)
		assert.True(t, ok)
	})

	t.Run("ties on expiry go to the older batch", func(t *testing.T) {
		expiry := asOf.AddDate(1, 0, 0)
		newer := createTestCandidate("NEWER", 100, expiry, created.Add(time.Hour))
		older := createTestCandidate("OLDER", 100, expiry, created)

		got, ok := selector.Select([]StockCandidate{newer, older}, 10, asOf)
		require.True(t, ok)
		assert.Equal(t, "OLDER", got.Batch.BatchNumber)
	})
}

func TestOldestRowAllocator_Allocate(t *testing.T) {
	base := asOf.AddDate(0, -1, 0)
	first := createTestCandidate("A", 60, asOf.AddDate(2, 0, 0), base).Line
	second := createTestCandidate("B", 30, asOf.AddDate(1, 0, 0), base.Add(time.Hour)).Line
	third := createTestCandidate("C", 50, asOf.AddDate(1, 0, 0), base.Add(2*time.Hour)).Line

	t.Run("consumes rows in creation order, not expiry order", func(t *testing.T) {
		result := OldestRowAllocator{}.Allocate([]InventoryLine{third, second, first}, 100)

		require.True(t, result.FullyFulfilled())
		require.Len(t, result.Allocations, 3)
		assert.Equal(t, first.ID, result.Allocations[0].LineID)
		assert.Equal(t, int64(60), result.Allocations[0].Quantity)
		assert.Equal(t, second.ID, result.Allocations[1].LineID)
		assert.Equal(t, int64(30), result.Allocations[1].Quantity)
		assert.Equal(t, third.ID, result.Allocations[2].LineID)
		assert.Equal(t, int64(10), result.Allocations[2].Quantity)
		assert.Equal(t, int64(100), result.Allocated)
	})

	t.Run("fits in a single row", func(t *testing.T) {
		result := OldestRowAllocator{}.Allocate([]InventoryLine{first, second}, 40)
		require.Len(t, result.Allocations, 1)
		assert.Equal(t, first.BatchID, result.Allocations[0].BatchID)
	})

	t.Run("reports the shortfall", func(t *testing.T) {
		result := OldestRowAllocator{}.Allocate([]InventoryLine{first, second}, 200)
		assert.False(t, result.FullyFulfilled())
		assert.Equal(t, int64(90), result.Allocated)
		assert.Equal(t, int64(110), result.Shortfall)
	})

	t.Run("ignores empty rows", func(t *testing.T) {
		empty := first
		empty.Quantity = 0
		result := OldestRowAllocator{}.Allocate([]InventoryLine{empty}, 1)
		assert.Empty(t, result.Allocations)
		assert.Equal(t, int64(1), result.Shortfall)
	})
}
