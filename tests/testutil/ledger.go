package testutil

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thaipharm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// TestingT is the subset of *testing.T the ledger assertions need
type TestingT interface {
	require.TestingT
	Helper()
}

// AssertLedgerBalanced checks that every batch holds exactly the units on its
// inventory lines across branches and ledgers, and that no quantity is negative.
func AssertLedgerBalanced(t TestingT, db *gorm.DB) {
	t.Helper()

	var batches []models.BatchModel
	require.NoError(t, db.Find(&batches).Error)
	for _, b := range batches {
		var onHand int64
		require.NoError(t, db.Model(&models.InventoryLineModel{}).
			Where("batch_id = ?", b.ID).
			Select("COALESCE(SUM(quantity), 0)").
			Scan(&onHand).Error)
		assert.Equal(t, onHand, b.Quantity, "batch %s quantity differs from its lines", b.BatchNumber)
		assert.GreaterOrEqual(t, b.Quantity, int64(0), "batch %s is negative", b.BatchNumber)
	}

	var negative int64
	require.NoError(t, db.Model(&models.InventoryLineModel{}).Where("quantity < 0").Count(&negative).Error)
	assert.Zero(t, negative, "inventory lines with negative quantity")
}
