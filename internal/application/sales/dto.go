package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/sales"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// ==================== Checkout DTOs ====================

// CheckoutRequest represents a point-of-sale checkout
type CheckoutRequest struct {
	BranchID         uuid.UUID             `json:"branch_id" binding:"required"`
	Items            []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod    sales.PaymentMethod   `json:"payment_method" binding:"required,oneof=CASH CARD PROMPTPAY BANK_TRANSFER CREDIT"`
	AmountPaid       decimal.Decimal       `json:"amount_paid"`
	PaymentReference string                `json:"payment_reference" binding:"max=100"`
	CustomerName     string                `json:"customer_name" binding:"max=200"`
	IdempotencyKey   string                `json:"idempotency_key" binding:"max=100"`
	CashierID        uuid.UUID             `json:"-"`
}

// CheckoutItemRequest is one line of a checkout. Omitted prices and VAT
// settings default to the catalog values; an omitted batch is picked FEFO.
type CheckoutItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	BatchID   *uuid.UUID       `json:"batch_id"`
	Quantity  int64            `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal  `json:"discount"`
	VatRate   *decimal.Decimal `json:"vat_rate"`
	IsVat     *bool            `json:"is_vat"`
}

// CancelSaleRequest represents a request to cancel a completed sale
type CancelSaleRequest struct {
	Reason  string    `json:"reason" binding:"required,notblank,max=500"`
	ActorID uuid.UUID `json:"-"`
}

// SaleListFilter represents filter options for listing sales
type SaleListFilter struct {
	Search   string           `form:"search"`
	BranchID *uuid.UUID       `form:"-"`
	Status   sales.SaleStatus `form:"status" binding:"omitempty,oneof=COMPLETED CANCELLED"`
	From     *time.Time       `form:"from" time_format:"2006-01-02"`
	To       *time.Time       `form:"to" time_format:"2006-01-02"`
	Page     int              `form:"page" binding:"omitempty,min=1"`
	PageSize int              `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string           `form:"order_by"`
	OrderDir string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Response DTOs ====================

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID           `json:"id"`
	BranchID       uuid.UUID           `json:"branch_id"`
	InvoiceNumber  string              `json:"invoice_number"`
	CashierID      uuid.UUID           `json:"cashier_id"`
	CustomerName   string              `json:"customer_name,omitempty"`
	Items          []SaleItemResponse  `json:"items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	VatAmount      decimal.Decimal     `json:"vat_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	PaymentMethod  sales.PaymentMethod `json:"payment_method"`
	AmountPaid     decimal.Decimal     `json:"amount_paid"`
	ChangeAmount   decimal.Decimal     `json:"change_amount"`
	Payment        *PaymentResponse    `json:"payment,omitempty"`
	Status         sales.SaleStatus    `json:"status"`
	CancelReason   string              `json:"cancel_reason,omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
	CancelledBy    *uuid.UUID          `json:"cancelled_by,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Version        int                 `json:"version"`
}

// SaleItemResponse represents an invoice line in API responses
type SaleItemResponse struct {
	ID          uuid.UUID        `json:"id"`
	ProductID   uuid.UUID        `json:"product_id"`
	ProductSKU  string           `json:"product_sku"`
	ProductName string           `json:"product_name"`
	BatchID     *uuid.UUID       `json:"batch_id,omitempty"`
	Ledger      inventory.Ledger `json:"ledger"`
	IsVat       bool             `json:"is_vat"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Discount    decimal.Decimal  `json:"discount"`
	VatRate     decimal.Decimal  `json:"vat_rate"`
	VatAmount   decimal.Decimal  `json:"vat_amount"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
}

// PaymentResponse represents the settlement of a sale
type PaymentResponse struct {
	ID        uuid.UUID           `json:"id"`
	Method    sales.PaymentMethod `json:"method"`
	Amount    decimal.Decimal     `json:"amount"`
	Reference string              `json:"reference,omitempty"`
}

// ToSaleResponse converts a domain Sale to a response
func ToSaleResponse(s *sales.Sale) SaleResponse {
	resp := SaleResponse{
		ID:             s.ID,
		BranchID:       s.BranchID,
		InvoiceNumber:  s.InvoiceNumber,
		CashierID:      s.CashierID,
		CustomerName:   s.CustomerName,
		Items:          make([]SaleItemResponse, len(s.Items)),
		Subtotal:       s.Subtotal,
		DiscountAmount: s.DiscountAmount,
		VatAmount:      s.VatAmount,
		TotalAmount:    s.TotalAmount,
		PaymentMethod:  s.PaymentMethod,
		AmountPaid:     s.AmountPaid,
		ChangeAmount:   s.ChangeAmount,
		Status:         s.Status,
		CancelReason:   s.CancelReason,
		CancelledAt:    s.CancelledAt,
		CancelledBy:    s.CancelledBy,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		Version:        s.Version,
	}
	for i := range s.Items {
		item := &s.Items[i]
		resp.Items[i] = SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductSKU:  item.ProductSKU,
			ProductName: item.ProductName,
			BatchID:     item.BatchID,
			Ledger:      item.Ledger(),
			IsVat:       item.IsVat,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			VatRate:     item.VatRate,
			VatAmount:   item.VatAmount,
			TotalPrice:  item.TotalPrice,
		}
	}
	if s.Payment != nil {
		resp.Payment = &PaymentResponse{
			ID:        s.Payment.ID,
			Method:    s.Payment.Method,
			Amount:    s.Payment.Amount,
			Reference: s.Payment.Reference,
		}
	}
	return resp
}

// SaleListItemResponse is a sale header in list responses
type SaleListItemResponse struct {
	ID            uuid.UUID           `json:"id"`
	BranchID      uuid.UUID           `json:"branch_id"`
	InvoiceNumber string              `json:"invoice_number"`
	CustomerName  string              `json:"customer_name,omitempty"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaymentMethod sales.PaymentMethod `json:"payment_method"`
	Status        sales.SaleStatus    `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
}

// ToSaleListItemResponse converts a domain Sale to a list response
func ToSaleListItemResponse(s *sales.Sale) SaleListItemResponse {
	return SaleListItemResponse{
		ID:            s.ID,
		BranchID:      s.BranchID,
		InvoiceNumber: s.InvoiceNumber,
		CustomerName:  s.CustomerName,
		TotalAmount:   s.TotalAmount,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
	}
}

func (f SaleListFilter) toDomain() sales.SaleFilter {
	return sales.SaleFilter{
		Filter:   shared.NewPage(f.Page, f.PageSize, f.OrderBy, f.OrderDir).WithSearch(f.Search),
		BranchID: f.BranchID,
		Status:   f.Status,
		From:     f.From,
		To:       endOfDay(f.To),
	}
}

// endOfDay turns an inclusive date bound into the exclusive start of the next day
func endOfDay(day *time.Time) *time.Time {
	if day == nil {
		return nil
	}
	next := day.AddDate(0, 0, 1)
	return &next
}
