package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/domain/transfer"
)

// ==================== Request DTOs ====================

// RequestTransferRequest asks for stock to move between two branches
type RequestTransferRequest struct {
	SourceBranchID uuid.UUID             `json:"source_branch_id" binding:"required"`
	TargetBranchID uuid.UUID             `json:"target_branch_id" binding:"required"`
	Items          []TransferItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes          string                `json:"notes" binding:"max=500"`
	RequestedBy    uuid.UUID             `json:"-"`
}

// TransferItemRequest is one requested product. Ledger defaults to VAT.
type TransferItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Ledger    inventory.Ledger `json:"ledger" binding:"omitempty,oneof=VAT NON_VAT"`
	Quantity  int64            `json:"quantity" binding:"required,gt=0"`
}

// BranchActionRequest carries the branch acting on a shipped transfer. Over
// HTTP an omitted branch defaults to the caller's home branch.
type BranchActionRequest struct {
	BranchID uuid.UUID `json:"branch_id"`
	Reason   string    `json:"reason" binding:"max=500"`
	ActorID  uuid.UUID `json:"-"`
}

// CancelTransferRequest withdraws a pending transfer
type CancelTransferRequest struct {
	Reason  string    `json:"reason" binding:"required,notblank,max=500"`
	ActorID uuid.UUID `json:"-"`
}

// TransferListFilter represents filter options for listing transfers
type TransferListFilter struct {
	BranchID *uuid.UUID              `form:"-"`
	Status   transfer.TransferStatus `form:"status" binding:"omitempty,oneof=PENDING SHIPPED COMPLETED CANCELLED REJECTED"`
	Page     int                     `form:"page" binding:"omitempty,min=1"`
	PageSize int                     `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string                  `form:"order_by"`
	OrderDir string                  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f TransferListFilter) toDomain() transfer.TransferFilter {
	return transfer.TransferFilter{
		Filter:   shared.NewPage(f.Page, f.PageSize, f.OrderBy, f.OrderDir),
		BranchID: f.BranchID,
		Status:   f.Status,
	}
}

// ==================== Response DTOs ====================

// TransferResponse represents a transfer in API responses
type TransferResponse struct {
	ID                uuid.UUID               `json:"id"`
	TransferNumber    string                  `json:"transfer_number"`
	SourceBranchID    uuid.UUID               `json:"source_branch_id"`
	TargetBranchID    uuid.UUID               `json:"target_branch_id"`
	Status            transfer.TransferStatus `json:"status"`
	Notes             string                  `json:"notes,omitempty"`
	Items             []TransferItemResponse  `json:"items"`
	Shipment          []ShipmentLineResponse  `json:"shipment,omitempty"`
	TotalQuantity     int64                   `json:"total_quantity"`
	InTransitQuantity int64                   `json:"in_transit_quantity"`
	RequestedBy       uuid.UUID               `json:"requested_by"`
	ShippedBy         *uuid.UUID              `json:"shipped_by,omitempty"`
	ShippedAt         *time.Time              `json:"shipped_at,omitempty"`
	ReceivedBy        *uuid.UUID              `json:"received_by,omitempty"`
	ReceivedAt        *time.Time              `json:"received_at,omitempty"`
	CancelledAt       *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason      string                  `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
	Version           int                     `json:"version"`
}

// TransferItemResponse is a requested product quantity
type TransferItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"product_id"`
	Ledger    inventory.Ledger `json:"ledger"`
	Quantity  int64            `json:"quantity"`
}

// ShipmentLineResponse is one manifest row: the batch a shipped quantity came from
type ShipmentLineResponse struct {
	ItemID    uuid.UUID        `json:"item_id"`
	ProductID uuid.UUID        `json:"product_id"`
	BatchID   uuid.UUID        `json:"batch_id"`
	Ledger    inventory.Ledger `json:"ledger"`
	Quantity  int64            `json:"quantity"`
}

// ToTransferResponse converts a domain StockTransfer to a response
func ToTransferResponse(t *transfer.StockTransfer) TransferResponse {
	resp := TransferResponse{
		ID:                t.ID,
		TransferNumber:    t.TransferNumber,
		SourceBranchID:    t.SourceBranchID,
		TargetBranchID:    t.TargetBranchID,
		Status:            t.Status,
		Notes:             t.Notes,
		Items:             make([]TransferItemResponse, len(t.Items)),
		TotalQuantity:     t.TotalQuantity(),
		InTransitQuantity: t.InTransitQuantity(),
		RequestedBy:       t.RequestedBy,
		ShippedBy:         t.ShippedBy,
		ShippedAt:         t.ShippedAt,
		ReceivedBy:        t.ReceivedBy,
		ReceivedAt:        t.ReceivedAt,
		CancelledAt:       t.CancelledAt,
		CancelReason:      t.CancelReason,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		Version:           t.Version,
	}
	for i, item := range t.Items {
		resp.Items[i] = TransferItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Ledger:    item.Ledger,
			Quantity:  item.Quantity,
		}
	}
	for _, line := range t.Shipment {
		resp.Shipment = append(resp.Shipment, ShipmentLineResponse{
			ItemID:    line.ItemID,
			ProductID: line.ProductID,
			BatchID:   line.BatchID,
			Ledger:    line.Ledger,
			Quantity:  line.Quantity,
		})
	}
	return resp
}
