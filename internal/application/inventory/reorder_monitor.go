package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReorderMonitor raises StockBelowReorderPoint after stock leaves a branch.
// It runs after the deducting transaction has committed, and its failures are
// logged rather than returned: a missed alert must not undo a sale.
type ReorderMonitor struct {
	products  catalog.ProductReader
	lines     inventory.InventoryLineRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewReorderMonitor creates a new ReorderMonitor
func NewReorderMonitor(
	products catalog.ProductReader,
	lines inventory.InventoryLineRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ReorderMonitor {
	return &ReorderMonitor{
		products:  products,
		lines:     lines,
		publisher: publisher,
		logger:    logger,
	}
}

// Check compares each product's on-hand quantity at branchID with its reorder point
func (m *ReorderMonitor) Check(ctx context.Context, branchID uuid.UUID, productIDs ...uuid.UUID) {
	if m == nil || m.publisher == nil {
		return
	}
	seen := make(map[uuid.UUID]bool, len(productIDs))
	for _, productID := range productIDs {
		if seen[productID] {
			continue
		}
		seen[productID] = true

		product, err := m.products.FindByID(ctx, productID)
		if err != nil {
			m.logger.Warn("Reorder check skipped, product lookup failed",
				zap.String("product_id", productID.String()),
				zap.Error(err))
			continue
		}
		if product.ReorderPoint <= 0 {
			continue
		}
		onHand, err := m.lines.SumByBranchAndProduct(ctx, branchID, productID)
		if err != nil {
			m.logger.Warn("Reorder check skipped, stock sum failed",
				zap.String("product_id", productID.String()),
				zap.Error(err))
			continue
		}
		if !product.BelowReorderPoint(onHand) {
			continue
		}

		event := inventory.NewStockBelowReorderPointEvent(branchID, productID, product.SKU, onHand, product.ReorderPoint, product.ReorderQty)
		if err := m.publisher.Publish(ctx, event); err != nil {
			m.logger.Warn("Failed to publish StockBelowReorderPoint event",
				zap.String("product_id", productID.String()),
				zap.Error(err))
		}
	}
}
