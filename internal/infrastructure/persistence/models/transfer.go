package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/transfer"
)

// StockTransferModel is the persistence model for the StockTransfer aggregate root.
type StockTransferModel struct {
	AggregateModel
	TransferNumber string                      `gorm:"type:varchar(50);not null;uniqueIndex"`
	SourceBranchID uuid.UUID                   `gorm:"type:uuid;not null;index"`
	TargetBranchID uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Status         transfer.TransferStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Notes          string                      `gorm:"type:text"`
	Items          []StockTransferItemModel    `gorm:"foreignKey:TransferID;references:ID"`
	Shipment       []TransferShipmentLineModel `gorm:"foreignKey:TransferID;references:ID"`
	RequestedBy    uuid.UUID                   `gorm:"type:uuid"`
	ShippedBy      *uuid.UUID                  `gorm:"type:uuid"`
	ShippedAt      *time.Time
	ReceivedBy     *uuid.UUID `gorm:"type:uuid"`
	ReceivedAt     *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (StockTransferModel) TableName() string {
	return "stock_transfers"
}

// ToDomain converts the persistence model to a domain StockTransfer aggregate.
func (m *StockTransferModel) ToDomain() *transfer.StockTransfer {
	t := &transfer.StockTransfer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TransferNumber:    m.TransferNumber,
		SourceBranchID:    m.SourceBranchID,
		TargetBranchID:    m.TargetBranchID,
		Status:            m.Status,
		Notes:             m.Notes,
		RequestedBy:       m.RequestedBy,
		ShippedBy:         m.ShippedBy,
		ShippedAt:         m.ShippedAt,
		ReceivedBy:        m.ReceivedBy,
		ReceivedAt:        m.ReceivedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Items:             make([]transfer.StockTransferItem, len(m.Items)),
		Shipment:          make([]transfer.ShipmentLine, len(m.Shipment)),
	}
	for i, item := range m.Items {
		t.Items[i] = transfer.StockTransferItem{
			ID:         item.ID,
			TransferID: item.TransferID,
			ProductID:  item.ProductID,
			Ledger:     item.Ledger,
			Quantity:   item.Quantity,
		}
	}
	for i := range m.Shipment {
		t.Shipment[i] = *m.Shipment[i].ToDomain()
	}
	return t
}

// FromDomain populates the persistence model from a domain StockTransfer aggregate.
func (m *StockTransferModel) FromDomain(t *transfer.StockTransfer) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.TransferNumber = t.TransferNumber
	m.SourceBranchID = t.SourceBranchID
	m.TargetBranchID = t.TargetBranchID
	m.Status = t.Status
	m.Notes = t.Notes
	m.RequestedBy = t.RequestedBy
	m.ShippedBy = t.ShippedBy
	m.ShippedAt = t.ShippedAt
	m.ReceivedBy = t.ReceivedBy
	m.ReceivedAt = t.ReceivedAt
	m.CancelledAt = t.CancelledAt
	m.CancelReason = t.CancelReason
	m.Items = make([]StockTransferItemModel, len(t.Items))
	for i, item := range t.Items {
		m.Items[i] = StockTransferItemModel{
			ID:         item.ID,
			TransferID: item.TransferID,
			ProductID:  item.ProductID,
			Ledger:     item.Ledger,
			Quantity:   item.Quantity,
		}
	}
	m.Shipment = make([]TransferShipmentLineModel, len(t.Shipment))
	for i := range t.Shipment {
		m.Shipment[i] = *TransferShipmentLineModelFromDomain(&t.Shipment[i])
	}
}

// StockTransferModelFromDomain creates a new persistence model from a domain StockTransfer.
func StockTransferModelFromDomain(t *transfer.StockTransfer) *StockTransferModel {
	m := &StockTransferModel{}
	m.FromDomain(t)
	return m
}

// StockTransferItemModel is the persistence model for a requested transfer line.
type StockTransferItemModel struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key"`
	TransferID uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID        `gorm:"type:uuid;not null"`
	Ledger     inventory.Ledger `gorm:"type:varchar(10);not null;default:'VAT'"`
	Quantity   int64            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockTransferItemModel) TableName() string {
	return "stock_transfer_items"
}

// TransferShipmentLineModel stores one manifest line written at ship time.
// The cost columns mirror inventory_lines so receive can rebuild the source cost block.
type TransferShipmentLineModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key"`
	TransferID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	ItemID        uuid.UUID           `gorm:"type:uuid;not null"`
	ProductID     uuid.UUID           `gorm:"type:uuid;not null"`
	BatchID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	Ledger        inventory.Ledger    `gorm:"type:varchar(10);not null"`
	Quantity      int64               `gorm:"not null"`
	CostBeforeVat decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	VatRate       decimal.NullDecimal `gorm:"type:decimal(5,2)"`
	VatAmount     decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	CostWithVat   decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	CostPrice     decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	SellingPrice  decimal.NullDecimal `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (TransferShipmentLineModel) TableName() string {
	return "transfer_shipment_lines"
}

// ToDomain converts the persistence model to a domain ShipmentLine.
func (m *TransferShipmentLineModel) ToDomain() *transfer.ShipmentLine {
	line := &transfer.ShipmentLine{
		ID:         m.ID,
		TransferID: m.TransferID,
		ItemID:     m.ItemID,
		ProductID:  m.ProductID,
		BatchID:    m.BatchID,
		Ledger:     m.Ledger,
		Quantity:   m.Quantity,
	}
	if m.Ledger == inventory.LedgerNonVAT {
		line.Cost = inventory.NonVatCost{
			CostPrice:    m.CostPrice.Decimal,
			SellingPrice: m.SellingPrice.Decimal,
		}
	} else {
		line.Cost = inventory.VatCost{
			CostBeforeVat: m.CostBeforeVat.Decimal,
			VatRate:       m.VatRate.Decimal,
			VatAmount:     m.VatAmount.Decimal,
			CostWithVat:   m.CostWithVat.Decimal,
		}
	}
	return line
}

// TransferShipmentLineModelFromDomain creates a new persistence model from a domain ShipmentLine.
func TransferShipmentLineModelFromDomain(l *transfer.ShipmentLine) *TransferShipmentLineModel {
	m := &TransferShipmentLineModel{
		ID:         l.ID,
		TransferID: l.TransferID,
		ItemID:     l.ItemID,
		ProductID:  l.ProductID,
		BatchID:    l.BatchID,
		Ledger:     l.Ledger,
		Quantity:   l.Quantity,
	}
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
