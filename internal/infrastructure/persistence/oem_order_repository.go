package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/oem"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOemOrderRepository implements oem.OrderRepository using GORM
type GormOemOrderRepository struct {
	db *gorm.DB
}

// NewGormOemOrderRepository creates a new GormOemOrderRepository
func NewGormOemOrderRepository(db *gorm.DB) *GormOemOrderRepository {
	return &GormOemOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormOemOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*oem.Order, error) {
	var model models.OemOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("OEM order", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Find lists orders matching filter, newest first by default
func (r *GormOemOrderRepository) Find(ctx context.Context, filter oem.OrderFilter) ([]oem.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OemOrderModel{})
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("order_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orderModels []models.OemOrderModel
	if err := applyPaging(query.Preload("Items"), filter.Filter, OemOrderSortFields, "created_at DESC, id DESC").
		Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]oem.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, total, nil
}

// Create inserts a new order with its items
func (r *GormOemOrderRepository) Create(ctx context.Context, order *oem.Order) error {
	if err := r.db.WithContext(ctx).Create(models.OemOrderModelFromDomain(order)).Error; err != nil {
		return fmt.Errorf("failed to create OEM order %s: %w", order.OrderNumber, err)
	}
	return nil
}

// SaveWithLock updates the header under the version check, then writes each
// item's receiving counters. Items themselves are fixed once the order exists.
func (r *GormOemOrderRepository) SaveWithLock(ctx context.Context, order *oem.Order) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.OemOrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"status":        order.Status,
			"notes":         order.Notes,
			"confirmed_at":  order.ConfirmedAt,
			"cancelled_at":  order.CancelledAt,
			"cancel_reason": order.CancelReason,
			"version":       order.Version,
			"updated_at":    order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	for _, item := range order.Items {
		if err := db.Model(&models.OemOrderItemModel{}).
			Where("id = ? AND order_id = ?", item.ID, order.ID).
			Updates(map[string]interface{}{
				"received_qty": item.ReceivedQty,
				"accepted_qty": item.AcceptedQty,
				"rejected_qty": item.RejectedQty,
			}).Error; err != nil {
			return fmt.Errorf("failed to update OEM order item %s: %w", item.ID, err)
		}
	}
	return nil
}

// GormGoodsReceivingRepository implements oem.GoodsReceivingRepository using GORM
type GormGoodsReceivingRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceivingRepository creates a new GormGoodsReceivingRepository
func NewGormGoodsReceivingRepository(db *gorm.DB) *GormGoodsReceivingRepository {
	return &GormGoodsReceivingRepository{db: db}
}

// FindByID finds a goods receiving with its items
func (r *GormGoodsReceivingRepository) FindByID(ctx context.Context, id uuid.UUID) (*oem.GoodsReceiving, error) {
	var model models.GoodsReceivingModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NotFound("goods receiving", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder lists the receivings of an order, oldest first
func (r *GormGoodsReceivingRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]oem.GoodsReceiving, error) {
	var grModels []models.GoodsReceivingModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("received_at ASC, created_at ASC").
		Find(&grModels).Error; err != nil {
		return nil, err
	}
	receivings := make([]oem.GoodsReceiving, len(grModels))
	for i := range grModels {
		receivings[i] = *grModels[i].ToDomain()
	}
	return receivings, nil
}

// Create inserts a goods receiving with its items
func (r *GormGoodsReceivingRepository) Create(ctx context.Context, gr *oem.GoodsReceiving) error {
	if err := r.db.WithContext(ctx).Create(models.GoodsReceivingModelFromDomain(gr)).Error; err != nil {
		return fmt.Errorf("failed to create goods receiving %s: %w", gr.GRNumber, err)
	}
	return nil
}

// Ensure the OEM repositories implement their interfaces
var (
	_ oem.OrderRepository          = (*GormOemOrderRepository)(nil)
	_ oem.GoodsReceivingRepository = (*GormGoodsReceivingRepository)(nil)
)
