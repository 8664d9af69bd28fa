package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/sales"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	AggregateModel
	BranchID       uuid.UUID           `gorm:"type:uuid;not null;index:idx_sales_branch_created,priority:1"`
	InvoiceNumber  string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	CashierID      uuid.UUID           `gorm:"type:uuid"`
	CustomerName   string              `gorm:"type:varchar(200)"`
	Items          []SaleItemModel     `gorm:"foreignKey:SaleID;references:ID"`
	Payment        *PaymentModel       `gorm:"foreignKey:SaleID;references:ID"`
	Subtotal       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	VatAmount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentMethod  sales.PaymentMethod `gorm:"type:varchar(20);not null"`
	AmountPaid     decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ChangeAmount   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status         sales.SaleStatus    `gorm:"type:varchar(20);not null;default:'COMPLETED';index"`
	IdempotencyKey *string             `gorm:"type:varchar(100);uniqueIndex"`
	CancelReason   string              `gorm:"type:varchar(500)"`
	CancelledAt    *time.Time
	CancelledBy    *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale aggregate.
func (m *SaleModel) ToDomain() *sales.Sale {
	sale := &sales.Sale{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BranchID:          m.BranchID,
		InvoiceNumber:     m.InvoiceNumber,
		CashierID:         m.CashierID,
		CustomerName:      m.CustomerName,
		Subtotal:          m.Subtotal,
		DiscountAmount:    m.DiscountAmount,
		VatAmount:         m.VatAmount,
		TotalAmount:       m.TotalAmount,
		PaymentMethod:     m.PaymentMethod,
		AmountPaid:        m.AmountPaid,
		ChangeAmount:      m.ChangeAmount,
		Status:            m.Status,
		CancelReason:      m.CancelReason,
		CancelledAt:       m.CancelledAt,
		CancelledBy:       m.CancelledBy,
		Items:             make([]sales.SaleItem, len(m.Items)),
	}
	if m.IdempotencyKey != nil {
		sale.IdempotencyKey = *m.IdempotencyKey
	}
	for i, item := range m.Items {
		sale.Items[i] = *item.ToDomain()
	}
	if m.Payment != nil {
		sale.Payment = m.Payment.ToDomain()
	}
	return sale
}

// FromDomain populates the persistence model from a domain Sale aggregate.
func (m *SaleModel) FromDomain(s *sales.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.BranchID = s.BranchID
	m.InvoiceNumber = s.InvoiceNumber
	m.CashierID = s.CashierID
	m.CustomerName = s.CustomerName
	m.Subtotal = s.Subtotal
	m.DiscountAmount = s.DiscountAmount
	m.VatAmount = s.VatAmount
	m.TotalAmount = s.TotalAmount
	m.PaymentMethod = s.PaymentMethod
	m.AmountPaid = s.AmountPaid
	m.ChangeAmount = s.ChangeAmount
	m.Status = s.Status
	m.CancelReason = s.CancelReason
	m.CancelledAt = s.CancelledAt
	m.CancelledBy = s.CancelledBy
	m.IdempotencyKey = nil
	if s.IdempotencyKey != "" {
		key := s.IdempotencyKey
		m.IdempotencyKey = &key
	}
	m.Items = make([]SaleItemModel, len(s.Items))
	for i := range s.Items {
		m.Items[i] = *SaleItemModelFromDomain(&s.Items[i])
	}
	m.Payment = nil
	if s.Payment != nil {
		m.Payment = PaymentModelFromDomain(s.Payment)
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale aggregate.
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleItemModel is the persistence model for the SaleItem entity.
type SaleItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductSKU  string          `gorm:"column:product_sku;type:varchar(50)"`
	ProductName string          `gorm:"type:varchar(200)"`
	BatchID     *uuid.UUID      `gorm:"type:uuid;index"`
	IsVat       bool            `gorm:"not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VatRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	VatAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem entity.
func (m *SaleItemModel) ToDomain() *sales.SaleItem {
	return &sales.SaleItem{
		ID:          m.ID,
		SaleID:      m.SaleID,
		ProductID:   m.ProductID,
		ProductSKU:  m.ProductSKU,
		ProductName: m.ProductName,
		BatchID:     m.BatchID,
		IsVat:       m.IsVat,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Discount:    m.Discount,
		VatRate:     m.VatRate,
		VatAmount:   m.VatAmount,
		TotalPrice:  m.TotalPrice,
		CreatedAt:   m.CreatedAt,
	}
}

// SaleItemModelFromDomain creates a new persistence model from a domain SaleItem entity.
func SaleItemModelFromDomain(i *sales.SaleItem) *SaleItemModel {
	return &SaleItemModel{
		ID:          i.ID,
		SaleID:      i.SaleID,
		ProductID:   i.ProductID,
		ProductSKU:  i.ProductSKU,
		ProductName: i.ProductName,
		BatchID:     i.BatchID,
		IsVat:       i.IsVat,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		Discount:    i.Discount,
		VatRate:     i.VatRate,
		VatAmount:   i.VatAmount,
		TotalPrice:  i.TotalPrice,
		CreatedAt:   i.CreatedAt,
	}
}

// PaymentModel is the persistence model for the Payment entity.
type PaymentModel struct {
	ID        uuid.UUID           `gorm:"type:uuid;primary_key"`
	SaleID    uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	Method    sales.PaymentMethod `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Reference string              `gorm:"type:varchar(100)"`
	CreatedAt time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *sales.Payment {
	return &sales.Payment{
		ID:        m.ID,
		SaleID:    m.SaleID,
		Method:    m.Method,
		Amount:    m.Amount,
		Reference: m.Reference,
		CreatedAt: m.CreatedAt,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *sales.Payment) *PaymentModel {
	return &PaymentModel{
		ID:        p.ID,
		SaleID:    p.SaleID,
		Method:    p.Method,
		Amount:    p.Amount,
		Reference: p.Reference,
		CreatedAt: p.CreatedAt,
	}
}
