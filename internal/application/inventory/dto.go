package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/inventory"
)

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	BatchNumber string          `json:"batch_number"`
	LotNumber   string          `json:"lot_number,omitempty"`
	ExpiryDate  time.Time       `json:"expiry_date"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Quantity    int64           `json:"quantity"`
	IsActive    bool            `json:"is_active"`
	IsExpired   bool            `json:"is_expired"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToBatchResponse converts a domain Batch to a response
func ToBatchResponse(b *inventory.Batch, asOf time.Time) BatchResponse {
	return BatchResponse{
		ID:          b.ID,
		ProductID:   b.ProductID,
		BatchNumber: b.BatchNumber,
		LotNumber:   b.LotNumber,
		ExpiryDate:  b.ExpiryDate,
		CostPrice:   b.CostPrice,
		Quantity:    b.Quantity,
		IsActive:    b.IsActive,
		IsExpired:   b.IsExpired(asOf),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// CostResponse is the cost block of a line. VAT fields are set on VAT lines
// and price fields on non-VAT lines.
type CostResponse struct {
	CostBeforeVat *decimal.Decimal `json:"cost_before_vat,omitempty"`
	VatRate       *decimal.Decimal `json:"vat_rate,omitempty"`
	VatAmount     *decimal.Decimal `json:"vat_amount,omitempty"`
	CostWithVat   *decimal.Decimal `json:"cost_with_vat,omitempty"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice  *decimal.Decimal `json:"selling_price,omitempty"`
}

// ToCostResponse converts a cost variant to a response
func ToCostResponse(cost inventory.Costing) CostResponse {
	switch c := cost.(type) {
	case inventory.VatCost:
		return CostResponse{
			CostBeforeVat: &c.CostBeforeVat,
			VatRate:       &c.VatRate,
			VatAmount:     &c.VatAmount,
			CostWithVat:   &c.CostWithVat,
		}
	case inventory.NonVatCost:
		return CostResponse{
			CostPrice:    &c.CostPrice,
			SellingPrice: &c.SellingPrice,
		}
	}
	return CostResponse{}
}

// InventoryLineResponse represents an inventory line in API responses
type InventoryLineResponse struct {
	ID         uuid.UUID        `json:"id"`
	BranchID   uuid.UUID        `json:"branch_id"`
	ProductID  uuid.UUID        `json:"product_id"`
	BatchID    uuid.UUID        `json:"batch_id"`
	Ledger     inventory.Ledger `json:"ledger"`
	Quantity   int64            `json:"quantity"`
	Location   string           `json:"location,omitempty"`
	Cost       CostResponse     `json:"cost"`
	StockValue decimal.Decimal  `json:"stock_value"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ToInventoryLineResponse converts a domain InventoryLine to a response
func ToInventoryLineResponse(l *inventory.InventoryLine) InventoryLineResponse {
	return InventoryLineResponse{
		ID:         l.ID,
		BranchID:   l.BranchID,
		ProductID:  l.ProductID,
		BatchID:    l.BatchID,
		Ledger:     l.Ledger(),
		Quantity:   l.Quantity,
		Location:   l.Location,
		Cost:       ToCostResponse(l.Cost),
		StockValue: l.StockValue(),
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

// ToInventoryLineResponses converts a slice of lines
func ToInventoryLineResponses(lines []inventory.InventoryLine) []InventoryLineResponse {
	responses := make([]InventoryLineResponse, len(lines))
	for i := range lines {
		responses[i] = ToInventoryLineResponse(&lines[i])
	}
	return responses
}

// StockSummaryResponse is a product's stock at one branch across both ledgers
type StockSummaryResponse struct {
	BranchID       uuid.UUID               `json:"branch_id"`
	ProductID      uuid.UUID               `json:"product_id"`
	VatQuantity    int64                   `json:"vat_quantity"`
	NonVatQuantity int64                   `json:"non_vat_quantity"`
	TotalQuantity  int64                   `json:"total_quantity"`
	TotalValue     decimal.Decimal         `json:"total_value"`
	Lines          []InventoryLineResponse `json:"lines"`
}

// StockMovementResponse represents a stock movement in API responses
type StockMovementResponse struct {
	ID            uuid.UUID               `json:"id"`
	BranchID      uuid.UUID               `json:"branch_id"`
	ProductID     uuid.UUID               `json:"product_id"`
	BatchID       uuid.UUID               `json:"batch_id"`
	Ledger        inventory.Ledger        `json:"ledger"`
	MovementType  inventory.MovementType  `json:"movement_type"`
	Quantity      int64                   `json:"quantity"`
	UnitCost      decimal.Decimal         `json:"unit_cost"`
	ReferenceType inventory.ReferenceType `json:"reference_type"`
	ReferenceID   uuid.UUID               `json:"reference_id"`
	Reason        string                  `json:"reason,omitempty"`
	ActorID       uuid.UUID               `json:"actor_id"`
	CreatedAt     time.Time               `json:"created_at"`
}

// ToStockMovementResponse converts a domain StockMovement to a response
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
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

// ReceiveStockRequest represents a direct goods receipt into a branch
type ReceiveStockRequest struct {
	BranchID    uuid.UUID       `json:"branch_id" binding:"required"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	BatchNumber string          `json:"batch_number" binding:"required,max=50,batchno"`
	LotNumber   string          `json:"lot_number" binding:"max=100"`
	ExpiryDate  time.Time       `json:"expiry_date" binding:"required"`
	Quantity    int64           `json:"quantity" binding:"required,gt=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" binding:"required"`
	Location    string          `json:"location" binding:"max=50"`
	ActorID     uuid.UUID       `json:"-"`
}

// ReceiveStockResponse is the result of a receipt
type ReceiveStockResponse struct {
	Batch    BatchResponse         `json:"batch"`
	Line     InventoryLineResponse `json:"line"`
	Movement StockMovementResponse `json:"movement"`
}

// AdjustStockRequest represents a manual correction of one line
type AdjustStockRequest struct {
	BranchID     uuid.UUID              `json:"branch_id" binding:"required"`
	ProductID    uuid.UUID              `json:"product_id" binding:"required"`
	BatchID      uuid.UUID              `json:"batch_id" binding:"required"`
	Ledger       inventory.Ledger       `json:"ledger" binding:"required,oneof=VAT NON_VAT"`
	MovementType inventory.MovementType `json:"movement_type" binding:"required,oneof=ADJUSTMENT_IN ADJUSTMENT_OUT EXPIRED DAMAGED"`
	Quantity     int64                  `json:"quantity" binding:"required,gt=0"`
	Reason       string                 `json:"reason" binding:"required,notblank,max=500"`
	ActorID      uuid.UUID              `json:"-"`
}

// LineListFilter represents filter options for a branch's lines
type LineListFilter struct {
	Ledger   inventory.Ledger `form:"ledger" binding:"omitempty,oneof=VAT NON_VAT"`
	InStock  bool             `form:"in_stock"`
	Page     int              `form:"page" binding:"omitempty,min=1"`
	PageSize int              `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string           `form:"order_by"`
	OrderDir string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementListFilter represents filter options for the movement log
type MovementListFilter struct {
	BranchID      *uuid.UUID              `form:"-"`
	ProductID     *uuid.UUID              `form:"-"`
	BatchID       *uuid.UUID              `form:"-"`
	Ledger        inventory.Ledger        `form:"ledger" binding:"omitempty,oneof=VAT NON_VAT"`
	MovementType  inventory.MovementType  `form:"movement_type"`
	ReferenceType inventory.ReferenceType `form:"reference_type"`
	ReferenceID   *uuid.UUID              `form:"-"`
	From          *time.Time              `form:"from" time_format:"2006-01-02"`
	To            *time.Time              `form:"to" time_format:"2006-01-02"`
	Page          int                     `form:"page" binding:"omitempty,min=1"`
	PageSize      int                     `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BatchListFilter represents filter options for a product's batches
type BatchListFilter struct {
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// endOfDay turns an inclusive date bound into the exclusive start of the next day
func endOfDay(day *time.Time) *time.Time {
	if day == nil {
		return nil
	}
	next := day.AddDate(0, 0, 1)
	return &next
}
