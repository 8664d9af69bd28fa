package oem

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/oem"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// ==================== Order DTOs ====================

// CreateOrderRequest places a production order with an OEM supplier
type CreateOrderRequest struct {
	SupplierID uuid.UUID          `json:"supplier_id" binding:"required"`
	BranchID   uuid.UUID          `json:"branch_id" binding:"required"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes      string             `json:"notes" binding:"max=500"`
	CreatedBy  uuid.UUID          `json:"-"`
}

// OrderItemRequest is one ordered product
type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CancelOrderRequest cancels an order that has received nothing
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,notblank,max=500"`
}

// OrderListFilter represents filter options for listing OEM orders
type OrderListFilter struct {
	Search     string          `form:"search"`
	BranchID   *uuid.UUID      `form:"-"`
	SupplierID *uuid.UUID      `form:"-"`
	Status     oem.OrderStatus `form:"status" binding:"omitempty,oneof=DRAFT CONFIRMED IN_PRODUCTION PARTIALLY_RECEIVED RECEIVED CANCELLED"`
	Page       int             `form:"page" binding:"omitempty,min=1"`
	PageSize   int             `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string          `form:"order_by"`
	OrderDir   string          `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f OrderListFilter) toDomain() oem.OrderFilter {
	return oem.OrderFilter{
		Filter:     shared.NewPage(f.Page, f.PageSize, f.OrderBy, f.OrderDir).WithSearch(f.Search),
		BranchID:   f.BranchID,
		SupplierID: f.SupplierID,
		Status:     f.Status,
	}
}

// OrderResponse represents an OEM order in API responses
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderNumber  string              `json:"order_number"`
	SupplierID   uuid.UUID           `json:"supplier_id"`
	BranchID     uuid.UUID           `json:"branch_id"`
	Status       oem.OrderStatus     `json:"status"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Items        []OrderItemResponse `json:"items"`
	Notes        string              `json:"notes,omitempty"`
	CreatedBy    uuid.UUID           `json:"created_by"`
	ConfirmedAt  *time.Time          `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Version      int                 `json:"version"`
}

// OrderItemResponse is an ordered product with its reconciliation counters
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ReceivedQty int64           `json:"received_qty"`
	AcceptedQty int64           `json:"accepted_qty"`
	RejectedQty int64           `json:"rejected_qty"`
	Outstanding int64           `json:"outstanding"`
}

// ToOrderResponse converts a domain Order to a response
func ToOrderResponse(o *oem.Order) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		SupplierID:   o.SupplierID,
		BranchID:     o.BranchID,
		Status:       o.Status,
		TotalAmount:  o.TotalAmount,
		Items:        make([]OrderItemResponse, len(o.Items)),
		Notes:        o.Notes,
		CreatedBy:    o.CreatedBy,
		ConfirmedAt:  o.ConfirmedAt,
		CancelledAt:  o.CancelledAt,
		CancelReason: o.CancelReason,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Version:      o.Version,
	}
	for i := range o.Items {
		item := &o.Items[i]
		resp.Items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			ReceivedQty: item.ReceivedQty,
			AcceptedQty: item.AcceptedQty,
			RejectedQty: item.RejectedQty,
			Outstanding: item.Outstanding(),
		}
	}
	return resp
}

// ==================== Goods Receiving DTOs ====================

// ReceiveGoodsRequest reports a delivery against an order. BranchID defaults
// to the order's receiving branch.
type ReceiveGoodsRequest struct {
	BranchID   *uuid.UUID             `json:"branch_id"`
	Items      []ReceivingItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes      string                 `json:"notes" binding:"max=500"`
	ReceivedAt *time.Time             `json:"received_at"`
	ReceivedBy uuid.UUID              `json:"-"`
}

// ReceivingItemRequest is one delivered batch of an order item
type ReceivingItemRequest struct {
	OrderItemID uuid.UUID `json:"order_item_id" binding:"required"`
	BatchNumber string    `json:"batch_number" binding:"required,max=50,batchno"`
	LotNumber   string    `json:"lot_number" binding:"max=50"`
	ExpiryDate  time.Time `json:"expiry_date" binding:"required"`
	ReceivedQty int64     `json:"received_qty" binding:"required,gt=0"`
	AcceptedQty int64     `json:"accepted_qty" binding:"gte=0"`
	RejectedQty int64     `json:"rejected_qty" binding:"gte=0"`
}

// GoodsReceivingResponse represents a goods receiving in API responses
type GoodsReceivingResponse struct {
	ID          uuid.UUID               `json:"id"`
	GRNumber    string                  `json:"gr_number"`
	OrderID     uuid.UUID               `json:"order_id"`
	BranchID    uuid.UUID               `json:"branch_id"`
	ReceivedBy  uuid.UUID               `json:"received_by"`
	ReceivedAt  time.Time               `json:"received_at"`
	Notes       string                  `json:"notes,omitempty"`
	Items       []ReceivingItemResponse `json:"items"`
	OrderStatus oem.OrderStatus         `json:"order_status,omitempty"`
}

// ReceivingItemResponse is one delivered batch in API responses
type ReceivingItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderItemID uuid.UUID       `json:"order_item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	BatchID     *uuid.UUID      `json:"batch_id,omitempty"`
	BatchNumber string          `json:"batch_number"`
	LotNumber   string          `json:"lot_number,omitempty"`
	ExpiryDate  time.Time       `json:"expiry_date"`
	ReceivedQty int64           `json:"received_qty"`
	AcceptedQty int64           `json:"accepted_qty"`
	RejectedQty int64           `json:"rejected_qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ToGoodsReceivingResponse converts a domain GoodsReceiving to a response
func ToGoodsReceivingResponse(gr *oem.GoodsReceiving) GoodsReceivingResponse {
	resp := GoodsReceivingResponse{
		ID:         gr.ID,
		GRNumber:   gr.GRNumber,
		OrderID:    gr.OrderID,
		BranchID:   gr.BranchID,
		ReceivedBy: gr.ReceivedBy,
		ReceivedAt: gr.ReceivedAt,
		Notes:      gr.Notes,
		Items:      make([]ReceivingItemResponse, len(gr.Items)),
	}
	for i, item := range gr.Items {
		resp.Items[i] = ReceivingItemResponse{
			ID:          item.ID,
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
	return resp
}
