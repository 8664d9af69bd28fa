// Package oem models purchase orders placed with OEM manufacturers and the
// goods receivings that reconcile delivered batches against them.
package oem

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// OrderStatus represents the status of an OEM order
type OrderStatus string

const (
	OrderStatusDraft             OrderStatus = "DRAFT"
	OrderStatusConfirmed         OrderStatus = "CONFIRMED"
	OrderStatusInProduction      OrderStatus = "IN_PRODUCTION"
	OrderStatusPartiallyReceived OrderStatus = "PARTIALLY_RECEIVED"
	OrderStatusReceived          OrderStatus = "RECEIVED"
	OrderStatusCancelled         OrderStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusInProduction,
		OrderStatusPartiallyReceived, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for RECEIVED and CANCELLED
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReceived || s == OrderStatusCancelled
}

// CanReceive returns true when goods may be received against the order.
// A draft order takes deliveries without being confirmed first.
func (s OrderStatus) CanReceive() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusInProduction, OrderStatusPartiallyReceived:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch target {
	case OrderStatusConfirmed:
		return s == OrderStatusDraft
	case OrderStatusInProduction:
		return s == OrderStatusConfirmed
	case OrderStatusPartiallyReceived, OrderStatusReceived:
		return s.CanReceive()
	case OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is one ordered product with its cumulative reconciliation counters
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Quantity    int64
	UnitPrice   decimal.Decimal
	ReceivedQty int64
	AcceptedQty int64
	RejectedQty int64
}

// Amount returns quantity * unit price
func (i *OrderItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Outstanding returns the quantity not yet received
func (i *OrderItem) Outstanding() int64 {
	if i.ReceivedQty >= i.Quantity {
		return 0
	}
	return i.Quantity - i.ReceivedQty
}

// IsFullyReceived returns true once cumulative receipts cover the ordered quantity
func (i *OrderItem) IsFullyReceived() bool {
	return i.ReceivedQty >= i.Quantity
}

// ItemInput is one requested line of a new order
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Order is a purchase order placed with an OEM supplier
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber  string
	SupplierID   uuid.UUID
	BranchID     uuid.UUID
	Status       OrderStatus
	TotalAmount  decimal.Decimal
	Items        []OrderItem
	Notes        string
	CreatedBy    uuid.UUID
	ConfirmedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewOrder creates a draft order. The caller has checked the supplier is an OEM.
func NewOrder(number string, supplierID, branchID uuid.UUID, items []ItemInput, createdBy uuid.UUID, notes string) (*Order, error) {
	if number == "" {
		return nil, shared.InvalidInput("order number is required")
	}
	if supplierID == uuid.Nil {
		return nil, shared.InvalidInput("supplier ID is required")
	}
	if branchID == uuid.Nil {
		return nil, shared.InvalidInput("branch ID is required")
	}
	if len(items) == 0 {
		return nil, shared.InvalidInput("order must have at least one item")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       number,
		SupplierID:        supplierID,
		BranchID:          branchID,
		Status:            OrderStatusDraft,
		Notes:             notes,
		CreatedBy:         createdBy,
		TotalAmount:       decimal.Zero,
	}
	for _, in := range items {
		if in.ProductID == uuid.Nil {
			return nil, shared.InvalidInput("product ID is required")
		}
		if in.Quantity <= 0 {
			return nil, shared.InvalidInput("order quantity must be positive")
		}
		if in.UnitPrice.IsNegative() {
			return nil, shared.InvalidInput("unit price cannot be negative")
		}
		item := OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		}
		o.TotalAmount = o.TotalAmount.Add(item.Amount())
		o.Items = append(o.Items, item)
	}

	o.AddDomainEvent(NewOrderEvent(EventTypeOemOrderCreated, o))
	return o, nil
}

// Confirm moves a draft order to CONFIRMED
func (o *Order) Confirm() error {
	if err := o.transition(OrderStatusConfirmed); err != nil {
		return err
	}
	now := time.Now()
	o.ConfirmedAt = &now
	o.AddDomainEvent(NewOrderEvent(EventTypeOemOrderConfirmed, o))
	return nil
}

// StartProduction records that the manufacturer has started the run
func (o *Order) StartProduction() error {
	return o.transition(OrderStatusInProduction)
}

// Cancel cancels an order that has not received anything
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.InvalidTransition("OEM order "+o.OrderNumber, o.Status, OrderStatusCancelled)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.InvalidInput("cancel reason is required")
	}
	for _, item := range o.Items {
		if item.ReceivedQty > 0 {
			return shared.RuleViolation("OEM order %s has received goods and cannot be cancelled", o.OrderNumber)
		}
	}
	if err := o.transition(OrderStatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	o.CancelReason = reason
	return nil
}

// Item returns the order item with the given id
func (o *Order) Item(id uuid.UUID) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// ApplyReceiving adds the receiving's quantities to the cumulative counters and
// moves the order to RECEIVED or PARTIALLY_RECEIVED.
func (o *Order) ApplyReceiving(gr *GoodsReceiving) error {
	if !o.Status.CanReceive() {
		return shared.InvalidTransition("OEM order "+o.OrderNumber, o.Status, OrderStatusPartiallyReceived)
	}
	if gr.OrderID != o.ID {
		return shared.InvalidInput("goods receiving %s does not belong to order %s", gr.GRNumber, o.OrderNumber)
	}
	for _, line := range gr.Items {
		item, ok := o.Item(line.OrderItemID)
		if !ok {
			return shared.NotFound("OEM order item", line.OrderItemID)
		}
		item.ReceivedQty += line.ReceivedQty
		item.AcceptedQty += line.AcceptedQty
		item.RejectedQty += line.RejectedQty
	}

	next := OrderStatusReceived
	for i := range o.Items {
		if !o.Items[i].IsFullyReceived() {
			next = OrderStatusPartiallyReceived
			break
		}
	}
	o.Status = next
	o.MarkModified(time.Now())
	return nil
}

// ReceivedQuantity returns cumulative received units across items
func (o *Order) ReceivedQuantity() int64 {
	var n int64
	for _, item := range o.Items {
		n += item.ReceivedQty
	}
	return n
}

func (o *Order) transition(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.InvalidTransition("OEM order "+o.OrderNumber, o.Status, target)
	}
	o.Status = target
	o.MarkModified(time.Now())
	return nil
}
