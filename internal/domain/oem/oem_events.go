package oem

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeOemOrder       = "OemOrder"
	AggregateTypeGoodsReceiving = "GoodsReceiving"
)

// Event type constants
const (
	EventTypeOemOrderCreated   = "OemOrderCreated"
	EventTypeOemOrderConfirmed = "OemOrderConfirmed"
	EventTypeGoodsReceived     = "GoodsReceived"
)

// OrderEvent is raised on OEM order lifecycle steps
type OrderEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderEvent creates an order event of the given type
func NewOrderEvent(eventType string, o *Order) *OrderEvent {
	return &OrderEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeOemOrder, o.ID, o.BranchID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		SupplierID:      o.SupplierID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
	}
}

// GoodsReceivedEvent is raised after a goods receiving commits
type GoodsReceivedEvent struct {
	shared.BaseDomainEvent
	ReceivingID uuid.UUID   `json:"receiving_id"`
	GRNumber    string      `json:"gr_number"`
	OrderID     uuid.UUID   `json:"order_id"`
	OrderStatus OrderStatus `json:"order_status"`
	Accepted    int64       `json:"accepted"`
}

// NewGoodsReceivedEvent creates a GoodsReceivedEvent
func NewGoodsReceivedEvent(gr *GoodsReceiving, order *Order) *GoodsReceivedEvent {
	return &GoodsReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGoodsReceived, AggregateTypeGoodsReceiving, gr.ID, gr.BranchID),
		ReceivingID:     gr.ID,
		GRNumber:        gr.GRNumber,
		OrderID:         order.ID,
		OrderStatus:     order.Status,
		Accepted:        gr.AcceptedQuantity(),
	}
}
