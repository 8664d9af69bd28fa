package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/domain/transfer"
	"github.com/thaipharm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockTransferRepository implements StockTransferRepository using GORM
type GormStockTransferRepository struct {
	db *gorm.DB
}

// NewGormStockTransferRepository creates a new GormStockTransferRepository
func NewGormStockTransferRepository(db *gorm.DB) *GormStockTransferRepository {
	return &GormStockTransferRepository{db: db}
}

// FindByID finds a transfer with its items and shipment manifest
func (r *GormStockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*transfer.StockTransfer, error) {
	var model models.StockTransferModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Shipment").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("stock transfer", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Find lists transfers where the filtered branch is source or target
func (r *GormStockTransferRepository) Find(ctx context.Context, filter transfer.TransferFilter) ([]transfer.StockTransfer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockTransferModel{})
	if filter.BranchID != nil {
		query = query.Where("source_branch_id = ? OR target_branch_id = ?", *filter.BranchID, *filter.BranchID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("transfer_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transferModels []models.StockTransferModel
	if err := applyPaging(query.Preload("Items"), filter.Filter, TransferSortFields, "created_at DESC, id DESC").
		Find(&transferModels).Error; err != nil {
		return nil, 0, err
	}
	transfers := make([]transfer.StockTransfer, len(transferModels))
	for i := range transferModels {
		transfers[i] = *transferModels[i].ToDomain()
	}
	return transfers, total, nil
}

// Create inserts a new transfer with its items
func (r *GormStockTransferRepository) Create(ctx context.Context, t *transfer.StockTransfer) error {
	if err := r.db.WithContext(ctx).Create(models.StockTransferModelFromDomain(t)).Error; err != nil {
		return fmt.Errorf("failed to create stock transfer %s: %w", t.TransferNumber, err)
	}
	return nil
}

// SaveWithLock updates the header under the version check and appends
// manifest lines that are not stored yet. Stored manifest lines never change.
func (r *GormStockTransferRepository) SaveWithLock(ctx context.Context, t *transfer.StockTransfer) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.StockTransferModel{}).
		Where("id = ? AND version = ?", t.ID, t.Version-1).
		Updates(map[string]interface{}{
			"status":        t.Status,
			"notes":         t.Notes,
			"shipped_by":    t.ShippedBy,
			"shipped_at":    t.ShippedAt,
			"received_by":   t.ReceivedBy,
			"received_at":   t.ReceivedAt,
			"cancelled_at":  t.CancelledAt,
			"cancel_reason": t.CancelReason,
			"version":       t.Version,
			"updated_at":    t.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	if len(t.Shipment) == 0 {
		return nil
	}
	lines := make([]models.TransferShipmentLineModel, len(t.Shipment))
	for i := range t.Shipment {
		lines[i] = *models.TransferShipmentLineModelFromDomain(&t.Shipment[i])
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&lines).Error; err != nil {
		return fmt.Errorf("failed to store shipment manifest: %w", err)
	}
	return nil
}

// Ensure GormStockTransferRepository implements StockTransferRepository
var _ transfer.StockTransferRepository = (*GormStockTransferRepository)(nil)
