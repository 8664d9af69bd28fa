package models

import (
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	SKU          string              `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Name         string              `gorm:"type:varchar(200);not null"`
	DrugType     catalog.DrugType    `gorm:"type:varchar(30);not null;default:'GENERAL'"`
	IsVatExempt  bool                `gorm:"not null;default:false"`
	VatRate      decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:7"`
	CostPrice    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	ReorderPoint int64               `gorm:"not null;default:0"`
	ReorderQty   int64               `gorm:"not null;default:0"`
	IsActive     bool                `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseEntity:   m.BaseModel.ToDomain(),
		SKU:          m.SKU,
		Name:         m.Name,
		DrugType:     m.DrugType,
		IsVatExempt:  m.IsVatExempt,
		VatRate:      m.VatRate,
		CostPrice:    m.CostPrice,
		ReorderPoint: m.ReorderPoint,
		ReorderQty:   m.ReorderQty,
		IsActive:     m.IsActive,
	}
	if m.SellingPrice.Valid {
		price := m.SellingPrice.Decimal
		p.SellingPrice = &price
	}
	return p
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		SKU:          p.SKU,
		Name:         p.Name,
		DrugType:     p.DrugType,
		IsVatExempt:  p.IsVatExempt,
		VatRate:      p.VatRate,
		CostPrice:    p.CostPrice,
		ReorderPoint: p.ReorderPoint,
		ReorderQty:   p.ReorderQty,
		IsActive:     p.IsActive,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	if p.SellingPrice != nil {
		m.SellingPrice = nullDecimal(*p.SellingPrice)
	}
	return m
}
