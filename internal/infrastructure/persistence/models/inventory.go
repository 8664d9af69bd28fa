package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/inventory"
)

// BatchModel is the persistence model for the Batch entity.
type BatchModel struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_batches_product_number,priority:1"`
	BatchNumber string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_batches_product_number,priority:2"`
	LotNumber   string          `gorm:"type:varchar(100)"`
	ExpiryDate  time.Time       `gorm:"not null;index"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity    int64           `gorm:"not null;default:0"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch entity.
func (m *BatchModel) ToDomain() *inventory.Batch {
	return &inventory.Batch{
		BaseEntity:  m.BaseModel.ToDomain(),
		ProductID:   m.ProductID,
		BatchNumber: m.BatchNumber,
		LotNumber:   m.LotNumber,
		ExpiryDate:  m.ExpiryDate,
		CostPrice:   m.CostPrice,
		Quantity:    m.Quantity,
		IsActive:    m.IsActive,
	}
}

// BatchModelFromDomain creates a new persistence model from a domain Batch entity.
func BatchModelFromDomain(b *inventory.Batch) *BatchModel {
	m := &BatchModel{
		ProductID:   b.ProductID,
		BatchNumber: b.BatchNumber,
		LotNumber:   b.LotNumber,
		ExpiryDate:  b.ExpiryDate,
		CostPrice:   b.CostPrice,
		Quantity:    b.Quantity,
		IsActive:    b.IsActive,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// InventoryLineModel is the persistence model for InventoryLine. Both ledgers share
// the inventory_lines table; the ledger column decides which cost columns are set.
type InventoryLineModel struct {
	BaseModel
	BranchID      uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_lines_key,priority:1"`
	ProductID     uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_lines_key,priority:2;index"`
	BatchID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_lines_key,priority:3;index"`
	Ledger        inventory.Ledger    `gorm:"type:varchar(10);not null;uniqueIndex:idx_inventory_lines_key,priority:4"`
	Quantity      int64               `gorm:"not null;default:0"`
	Location      string              `gorm:"type:varchar(100)"`
	CostBeforeVat decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	VatRate       decimal.NullDecimal `gorm:"type:decimal(5,2)"`
	VatAmount     decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	CostWithVat   decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	CostPrice     decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	SellingPrice  decimal.NullDecimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (InventoryLineModel) TableName() string {
	return "inventory_lines"
}

// ToDomain converts the persistence model to a domain InventoryLine.
func (m *InventoryLineModel) ToDomain() *inventory.InventoryLine {
	line := &inventory.InventoryLine{
		BaseEntity: m.BaseModel.ToDomain(),
		BranchID:   m.BranchID,
		ProductID:  m.ProductID,
		BatchID:    m.BatchID,
		Quantity:   m.Quantity,
		Location:   m.Location,
	}
	switch m.Ledger {
	case inventory.LedgerNonVAT:
		line.Cost = inventory.NonVatCost{
			CostPrice:    m.CostPrice.Decimal,
			SellingPrice: m.SellingPrice.Decimal,
		}
	default:
		line.Cost = inventory.VatCost{
			CostBeforeVat: m.CostBeforeVat.Decimal,
			VatRate:       m.VatRate.Decimal,
			VatAmount:     m.VatAmount.Decimal,
			CostWithVat:   m.CostWithVat.Decimal,
		}
	}
	return line
}

// InventoryLineModelFromDomain creates a new persistence model from a domain InventoryLine.
func InventoryLineModelFromDomain(l *inventory.InventoryLine) *InventoryLineModel {
	m := &InventoryLineModel{
		BranchID:  l.BranchID,
		ProductID: l.ProductID,
		BatchID:   l.BatchID,
		Ledger:    l.Ledger(),
		Quantity:  l.Quantity,
		Location:  l.Location,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	switch cost := l.Cost.(type) {
	case inventory.VatCost:
		m.CostBeforeVat = nullDecimal(cost.CostBeforeVat)
		m.VatRate = nullDecimal(cost.VatRate)
		m.VatAmount = nullDecimal(cost.VatAmount)
		m.CostWithVat = nullDecimal(cost.CostWithVat)
	case inventory.NonVatCost:
		m.CostPrice = nullDecimal(cost.CostPrice)
		m.SellingPrice = nullDecimal(cost.SellingPrice)
	}
	return m
}

// StockMovementModel is the persistence model for the append-only movement log.
type StockMovementModel struct {
	ID            uuid.UUID               `gorm:"type:uuid;primary_key"`
	BranchID      uuid.UUID               `gorm:"type:uuid;not null;index:idx_stock_movements_branch_product,priority:1"`
	ProductID     uuid.UUID               `gorm:"type:uuid;not null;index:idx_stock_movements_branch_product,priority:2"`
	BatchID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	Ledger        inventory.Ledger        `gorm:"type:varchar(10);not null"`
	MovementType  inventory.MovementType  `gorm:"type:varchar(20);not null;index"`
	Quantity      int64                   `gorm:"not null"`
	UnitCost      decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	ReferenceType inventory.ReferenceType `gorm:"type:varchar(30);not null;index:idx_stock_movements_reference,priority:1"`
	ReferenceID   uuid.UUID               `gorm:"type:uuid;not null;index:idx_stock_movements_reference,priority:2"`
	Reason        string                  `gorm:"type:varchar(500)"`
	ActorID       uuid.UUID               `gorm:"type:uuid"`
	CreatedAt     time.Time               `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:            m.ID,
		BranchID:      m.BranchID,
		ProductID:     m.ProductID,
		BatchID:       m.BatchID,
		Ledger:        m.Ledger,
		MovementType:  m.MovementType,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Reason:        m.Reason,
		ActorID:       m.ActorID,
		CreatedAt:     m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement.
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:            s.ID,
		BranchID:      s.BranchID,
		ProductID:     s.ProductID,
		BatchID:       s.BatchID,
		Ledger:        s.Ledger,
		MovementType:  s.MovementType,
		Quantity:      s.Quantity,
		UnitCost:      s.UnitCost,
		ReferenceType: s.ReferenceType,
		ReferenceID:   s.ReferenceID,
		Reason:        s.Reason,
		ActorID:       s.ActorID,
		CreatedAt:     s.CreatedAt,
	}
}

func nullDecimal(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
