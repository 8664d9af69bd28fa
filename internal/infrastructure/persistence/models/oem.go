package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/oem"
)

// OemOrderModel is the persistence model for the OEM Order aggregate root.
type OemOrderModel struct {
	AggregateModel
	OrderNumber  string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	BranchID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status       oem.OrderStatus     `gorm:"type:varchar(30);not null;default:'DRAFT';index"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Items        []OemOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
	Notes        string              `gorm:"type:text"`
	CreatedBy    uuid.UUID           `gorm:"type:uuid"`
	ConfirmedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OemOrderModel) TableName() string {
	return "oem_orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OemOrderModel) ToDomain() *oem.Order {
	o := &oem.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		SupplierID:        m.SupplierID,
		BranchID:          m.BranchID,
		Status:            m.Status,
		TotalAmount:       m.TotalAmount,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		ConfirmedAt:       m.ConfirmedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Items:             make([]oem.OrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		o.Items[i] = oem.OrderItem{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			ReceivedQty: item.ReceivedQty,
			AcceptedQty: item.AcceptedQty,
			RejectedQty: item.RejectedQty,
		}
	}
	return o
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OemOrderModel) FromDomain(o *oem.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.SupplierID = o.SupplierID
	m.BranchID = o.BranchID
	m.Status = o.Status
	m.TotalAmount = o.TotalAmount
	m.Notes = o.Notes
	m.CreatedBy = o.CreatedBy
	m.ConfirmedAt = o.ConfirmedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Items = make([]OemOrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OemOrderItemModel{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			ReceivedQty: item.ReceivedQty,
			AcceptedQty: item.AcceptedQty,
			RejectedQty: item.RejectedQty,
		}
	}
}

// OemOrderModelFromDomain creates a new persistence model from a domain Order aggregate.
func OemOrderModelFromDomain(o *oem.Order) *OemOrderModel {
	m := &OemOrderModel{}
	m.FromDomain(o)
	return m
}

// OemOrderItemModel is the persistence model for the OrderItem entity.
type OemOrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQty int64           `gorm:"not null;default:0"`
	AcceptedQty int64           `gorm:"not null;default:0"`
	RejectedQty int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OemOrderItemModel) TableName() string {
	return "oem_order_items"
}

// GoodsReceivingModel is the persistence model for the GoodsReceiving aggregate root.
type GoodsReceivingModel struct {
	AggregateModel
	GRNumber   string                    `gorm:"column:gr_number;type:varchar(50);not null;uniqueIndex"`
	OrderID    uuid.UUID                 `gorm:"type:uuid;not null;index"`
	BranchID   uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ReceivedBy uuid.UUID                 `gorm:"type:uuid"`
	ReceivedAt time.Time                 `gorm:"not null"`
	Notes      string                    `gorm:"type:text"`
	Items      []GoodsReceivingItemModel `gorm:"foreignKey:ReceivingID;references:ID"`
}

// TableName returns the table name for GORM
func (GoodsReceivingModel) TableName() string {
	return "goods_receivings"
}

// ToDomain converts the persistence model to a domain GoodsReceiving aggregate.
func (m *GoodsReceivingModel) ToDomain() *oem.GoodsReceiving {
	gr := &oem.GoodsReceiving{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		GRNumber:          m.GRNumber,
		OrderID:           m.OrderID,
		BranchID:          m.BranchID,
		ReceivedBy:        m.ReceivedBy,
		ReceivedAt:        m.ReceivedAt,
		Notes:             m.Notes,
		Items:             make([]oem.GoodsReceivingItem, len(m.Items)),
	}
	for i, item := range m.Items {
		gr.Items[i] = oem.GoodsReceivingItem{
			ID:          item.ID,
			ReceivingID: item.ReceivingID,
			OrderItemID: item.OrderItemID,
			ProductID:   item.ProductID,
			BatchID:     item.BatchID,
			BatchNumber: item.BatchNumber,
			LotNumber:   item.LotNumber,
			ExpiryDate:  item.ExpiryDate,
			ReceivedQty: item.ReceivedQty,
			AcceptedQty: item.AcceptedQty,
			RejectedQty: item.RejectedQty,
			UnitPrice:   item.UnitPrice,
		}
	}
	return gr
}

// GoodsReceivingModelFromDomain creates a new persistence model from a domain GoodsReceiving.
func GoodsReceivingModelFromDomain(gr *oem.GoodsReceiving) *GoodsReceivingModel {
	m := &GoodsReceivingModel{
		GRNumber:   gr.GRNumber,
		OrderID:    gr.OrderID,
		BranchID:   gr.BranchID,
		ReceivedBy: gr.ReceivedBy,
		ReceivedAt: gr.ReceivedAt,
		Notes:      gr.Notes,
		Items:      make([]GoodsReceivingItemModel, len(gr.Items)),
	}
	m.FromDomainAggregateRoot(gr.BaseAggregateRoot)
	for i, item := range gr.Items {
		m.Items[i] = GoodsReceivingItemModel{
			ID:          item.ID,
			ReceivingID: item.ReceivingID,
			OrderItemID: item.OrderItemID,
			ProductID:   item.ProductID,
			BatchID:     item.BatchID,
			BatchNumber: item.BatchNumber,
			LotNumber:   item.LotNumber,
			ExpiryDate:  item.ExpiryDate,
			ReceivedQty: item.ReceivedQty,
			AcceptedQty: item.AcceptedQty,
			RejectedQty: item.RejectedQty,
			UnitPrice:   item.UnitPrice,
		}
	}
	return m
}

// GoodsReceivingItemModel is the persistence model for the GoodsReceivingItem entity.
type GoodsReceivingItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceivingID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	BatchID     *uuid.UUID      `gorm:"type:uuid"`
	BatchNumber string          `gorm:"type:varchar(100);not null"`
	LotNumber   string          `gorm:"type:varchar(100)"`
	ExpiryDate  time.Time       `gorm:"not null"`
	ReceivedQty int64           `gorm:"not null"`
	AcceptedQty int64           `gorm:"not null"`
	RejectedQty int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (GoodsReceivingItemModel) TableName() string {
	return "goods_receiving_items"
}
