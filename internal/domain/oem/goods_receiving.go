package oem

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// ReceivingLine is the caller's report of one delivered batch
type ReceivingLine struct {
	OrderItemID uuid.UUID
	BatchNumber string
	LotNumber   string
	ExpiryDate  time.Time
	ReceivedQty int64
	AcceptedQty int64
	RejectedQty int64
}

// Validate checks receivedQty = acceptedQty + rejectedQty and the batch identity
func (l ReceivingLine) Validate() error {
	if l.OrderItemID == uuid.Nil {
		return shared.InvalidInput("order item ID is required")
	}
	if strings.TrimSpace(l.BatchNumber) == "" {
		return shared.InvalidInput("batch number is required")
	}
	if l.ExpiryDate.IsZero() {
		return shared.InvalidInput("expiry date is required")
	}
	if l.ReceivedQty <= 0 || l.AcceptedQty < 0 || l.RejectedQty < 0 {
		return shared.InvalidInput("received quantity must be positive and accepted/rejected non-negative")
	}
	if l.AcceptedQty+l.RejectedQty != l.ReceivedQty {
		return shared.InvalidInput("received quantity %d must equal accepted %d plus rejected %d",
			l.ReceivedQty, l.AcceptedQty, l.RejectedQty)
	}
	return nil
}

// GoodsReceivingItem records one delivered batch against an order item
type GoodsReceivingItem struct {
	ID          uuid.UUID
	ReceivingID uuid.UUID
	OrderItemID uuid.UUID
	ProductID   uuid.UUID
	BatchID     *uuid.UUID
	BatchNumber string
	LotNumber   string
	ExpiryDate  time.Time
	ReceivedQty int64
	AcceptedQty int64
	RejectedQty int64
	UnitPrice   decimal.Decimal
}

// GoodsReceiving is one delivery against an OEM order
type GoodsReceiving struct {
	shared.BaseAggregateRoot
	GRNumber   string
	OrderID    uuid.UUID
	BranchID   uuid.UUID
	ReceivedBy uuid.UUID
	ReceivedAt time.Time
	Notes      string
	Items      []GoodsReceivingItem
}

// NewGoodsReceiving builds a receiving for order from the caller's lines. Unit
// price and product come from the order item.
func NewGoodsReceiving(number string, order *Order, branchID, receivedBy uuid.UUID, lines []ReceivingLine, notes string, receivedAt time.Time) (*GoodsReceiving, error) {
	if number == "" {
		return nil, shared.InvalidInput("goods receiving number is required")
	}
	if branchID == uuid.Nil {
		return nil, shared.InvalidInput("branch ID is required")
	}
	if len(lines) == 0 {
		return nil, shared.InvalidInput("goods receiving must have at least one item")
	}
	if !order.Status.CanReceive() {
		return nil, shared.InvalidTransition("OEM order "+order.OrderNumber, order.Status, OrderStatusPartiallyReceived)
	}

	gr := &GoodsReceiving{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		GRNumber:          number,
		OrderID:           order.ID,
		BranchID:          branchID,
		ReceivedBy:        receivedBy,
		ReceivedAt:        receivedAt,
		Notes:             notes,
	}
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
		item, ok := order.Item(line.OrderItemID)
		if !ok {
			return nil, shared.NotFound("OEM order item", line.OrderItemID)
		}
		gr.Items = append(gr.Items, GoodsReceivingItem{
			ID:          uuid.New(),
			ReceivingID: gr.ID,
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			BatchNumber: strings.TrimSpace(line.BatchNumber),
			LotNumber:   strings.TrimSpace(line.LotNumber),
			ExpiryDate:  line.ExpiryDate,
			ReceivedQty: line.ReceivedQty,
			AcceptedQty: line.AcceptedQty,
			RejectedQty: line.RejectedQty,
			UnitPrice:   item.UnitPrice,
		})
	}
	return gr, nil
}

// AcceptedQuantity returns the units that entered stock
func (g *GoodsReceiving) AcceptedQuantity() int64 {
	var n int64
	for _, item := range g.Items {
		n += item.AcceptedQty
	}
	return n
}
