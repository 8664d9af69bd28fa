package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryLineRepository implements InventoryLineRepository using GORM.
// VAT and non-VAT lines live in the same table, told apart by the ledger column.
type GormInventoryLineRepository struct {
	db *gorm.DB
}

// NewGormInventoryLineRepository creates a new GormInventoryLineRepository
func NewGormInventoryLineRepository(db *gorm.DB) *GormInventoryLineRepository {
	return &GormInventoryLineRepository{db: db}
}

// FindByKey finds the line for (branch, product, batch, ledger)
func (r *GormInventoryLineRepository) FindByKey(ctx context.Context, branchID, productID, batchID uuid.UUID, ledger inventory.Ledger) (*inventory.InventoryLine, error) {
	var model models.InventoryLineModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND product_id = ? AND batch_id = ? AND ledger = ?", branchID, productID, batchID, ledger).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound(ledger.String()+" inventory line", batchID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBranchAndProduct lists the product's lines at a branch
func (r *GormInventoryLineRepository) FindByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID, ledger inventory.Ledger) ([]inventory.InventoryLine, error) {
	query := r.db.WithContext(ctx).
		Where("branch_id = ? AND product_id = ?", branchID, productID)
	if ledger != "" {
		query = query.Where("ledger = ?", ledger)
	}
	var lineModels []models.InventoryLineModel
	if err := query.Order("created_at ASC, id ASC").Find(&lineModels).Error; err != nil {
		return nil, err
	}
	return toInventoryLines(lineModels), nil
}

// FindByBranch lists a branch's lines with paging
func (r *GormInventoryLineRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, ledger inventory.Ledger, filter shared.Filter) ([]inventory.InventoryLine, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryLineModel{}).Where("branch_id = ?", branchID)
	if ledger != "" {
		query = query.Where("ledger = ?", ledger)
	}
	if inStock, ok := filter.Filters["in_stock"].(bool); ok && inStock {
		query = query.Where("quantity > 0")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lineModels []models.InventoryLineModel
	if err := applyPaging(query, filter, InventoryLineSortFields, "product_id ASC, created_at ASC").
		Find(&lineModels).Error; err != nil {
		return nil, 0, err
	}
	return toInventoryLines(lineModels), total, nil
}

// FindByBatch lists every branch holding of a batch
func (r *GormInventoryLineRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]inventory.InventoryLine, error) {
	var lineModels []models.InventoryLineModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("branch_id ASC, ledger ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}
	return toInventoryLines(lineModels), nil
}

// FindCandidates returns the lines holding at least minQuantity together with their batches
func (r *GormInventoryLineRepository) FindCandidates(ctx context.Context, branchID, productID uuid.UUID, ledger inventory.Ledger, minQuantity int64) ([]inventory.StockCandidate, error) {
	var lineModels []models.InventoryLineModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND product_id = ? AND ledger = ? AND quantity >= ? AND quantity > 0",
			branchID, productID, ledger, minQuantity).
		Order("created_at ASC, id ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}
	if len(lineModels) == 0 {
		return []inventory.StockCandidate{}, nil
	}

	batchIDs := make([]uuid.UUID, len(lineModels))
	for i, m := range lineModels {
		batchIDs[i] = m.BatchID
	}
	var batchModels []models.BatchModel
	if err := r.db.WithContext(ctx).Where("id IN ?", batchIDs).Find(&batchModels).Error; err != nil {
		return nil, err
	}
	batches := make(map[uuid.UUID]*inventory.Batch, len(batchModels))
	for i := range batchModels {
		batches[batchModels[i].ID] = batchModels[i].ToDomain()
	}

	candidates := make([]inventory.StockCandidate, 0, len(lineModels))
	for i := range lineModels {
		batch, ok := batches[lineModels[i].BatchID]
		if !ok {
			continue
		}
		candidates = append(candidates, inventory.StockCandidate{
			Line:  *lineModels[i].ToDomain(),
			Batch: *batch,
		})
	}
	return candidates, nil
}

// Increment upserts the line: an existing row gains line.Quantity and keeps its
// cost block and location; a missing row is created from line.
func (r *GormInventoryLineRepository) Increment(ctx context.Context, line *inventory.InventoryLine) error {
	if line.Quantity <= 0 {
		return shared.InvalidInput("increment quantity must be positive")
	}
	model := models.InventoryLineModelFromDomain(line)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "branch_id"}, {Name: "product_id"}, {Name: "batch_id"}, {Name: "ledger"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("inventory_lines.quantity + excluded.quantity"),
				"updated_at": time.Now(),
			}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert inventory line: %w", err)
	}
	return nil
}

// Decrement subtracts quantity in a single conditional UPDATE. It reports false,
// leaving the row untouched, when the line is missing or holds less than quantity.
func (r *GormInventoryLineRepository) Decrement(ctx context.Context, branchID, productID, batchID uuid.UUID, ledger inventory.Ledger, quantity int64) (bool, error) {
	if quantity <= 0 {
		return false, shared.InvalidInput("decrement quantity must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.InventoryLineModel{}).
		Where("branch_id = ? AND product_id = ? AND batch_id = ? AND ledger = ? AND quantity >= ?",
			branchID, productID, batchID, ledger, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to decrement inventory line: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SumByBranchAndProduct returns a product's on-hand quantity at a branch across both ledgers
func (r *GormInventoryLineRepository) SumByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryLineModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// SumByBatch returns a batch's on-hand quantity across all branches and ledgers
func (r *GormInventoryLineRepository) SumByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryLineModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("batch_id = ?", batchID).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func toInventoryLines(lineModels []models.InventoryLineModel) []inventory.InventoryLine {
	lines := make([]inventory.InventoryLine, len(lineModels))
	for i := range lineModels {
		lines[i] = *lineModels[i].ToDomain()
	}
	return lines
}

// Ensure GormInventoryLineRepository implements InventoryLineRepository
var _ inventory.InventoryLineRepository = (*GormInventoryLineRepository)(nil)
