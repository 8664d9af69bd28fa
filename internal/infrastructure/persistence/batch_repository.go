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

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("batch", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds several batches at once
func (r *GormBatchRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Batch, error) {
	if len(ids) == 0 {
		return []inventory.Batch{}, nil
	}
	var batchModels []models.BatchModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&batchModels).Error; err != nil {
		return nil, err
	}
	batches := make([]inventory.Batch, len(batchModels))
	for i := range batchModels {
		batches[i] = *batchModels[i].ToDomain()
	}
	return batches, nil
}

// FindByProductAndNumber finds a batch by (productID, batchNumber)
func (r *GormBatchRepository) FindByProductAndNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND batch_number = ?", productID, batchNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("batch", batchNumber)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProduct lists batches of a product, earliest expiry first by default
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.Batch, error) {
	var batchModels []models.BatchModel
	query := applyPaging(
		r.db.WithContext(ctx).Model(&models.BatchModel{}).Where("product_id = ?", productID),
		filter, BatchSortFields, "expiry_date ASC, created_at ASC",
	)
	if active, ok := filter.Filters["active"].(bool); ok {
		query = query.Where("is_active = ?", active)
	}
	if err := query.Find(&batchModels).Error; err != nil {
		return nil, err
	}
	batches := make([]inventory.Batch, len(batchModels))
	for i := range batchModels {
		batches[i] = *batchModels[i].ToDomain()
	}
	return batches, nil
}

// GetOrCreate inserts batch unless (product_id, batch_number) already exists, then
// reads the stored row back. Concurrent first receipts of the same batch both end
// up with the single stored row.
func (r *GormBatchRepository) GetOrCreate(ctx context.Context, batch *inventory.Batch) (*inventory.Batch, error) {
	model := models.BatchModelFromDomain(batch)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "batch_number"}},
			DoNothing: true,
		}).
		Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to insert batch %s: %w", batch.BatchNumber, err)
	}
	return r.FindByProductAndNumber(ctx, batch.ProductID, batch.BatchNumber)
}

// AdjustQuantity applies delta in a single guarded UPDATE so concurrent callers
// can never drive the quantity below zero.
func (r *GormBatchRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int64) error {
	if delta == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"is_active":  gorm.Expr("quantity + ? > 0", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to adjust batch quantity: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var model models.BatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NotFound("batch", id)
		}
		return err
	}
	return shared.InsufficientStock("batch "+model.BatchNumber, -delta, model.Quantity)
}

// DeactivateExpired marks active batches that expired before asOf inactive
func (r *GormBatchRepository) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	result := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
		Where("is_active = ? AND expiry_date < ?", true, day).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Ensure GormBatchRepository implements BatchRepository
var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
