package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	return s == SaleStatusCompleted || s == SaleStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	return s == SaleStatusCompleted && target == SaleStatusCancelled
}

// PaymentMethod is how the customer settles the invoice
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodPromptPay    PaymentMethod = "PROMPTPAY"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCredit       PaymentMethod = "CREDIT"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodPromptPay,
		PaymentMethodBankTransfer, PaymentMethodCredit:
		return true
	}
	return false
}

// IsCredit reports whether the sale is on account, with no payment taken at the till
func (m PaymentMethod) IsCredit() bool {
	return m == PaymentMethodCredit
}

var hundred = decimal.NewFromInt(100)

// SaleItem is one invoice line
type SaleItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	ProductSKU  string
	ProductName string
	// BatchID is nil only on lines imported from systems that did not record batches
	BatchID    *uuid.UUID
	IsVat      bool
	Quantity   int64
	UnitPrice  decimal.Decimal
	Discount   decimal.Decimal
	VatRate    decimal.Decimal
	VatAmount  decimal.Decimal
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}

// SaleItemInput carries the fields of a new sale line
type SaleItemInput struct {
	ProductID   uuid.UUID
	ProductSKU  string
	ProductName string
	BatchID     uuid.UUID
	IsVat       bool
	Quantity    int64
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	VatRate     decimal.Decimal
}

// NewSaleItem validates a line and computes its VAT and total.
// VAT is charged on top of the discounted line amount and rounded to satang.
func NewSaleItem(in SaleItemInput) (*SaleItem, error) {
	if in.ProductID == uuid.Nil {
		return nil, shared.InvalidInput("product ID is required")
	}
	if in.BatchID == uuid.Nil {
		return nil, shared.InvalidInput("batch is required for product %s", in.ProductSKU)
	}
	if in.Quantity <= 0 {
		return nil, shared.InvalidInput("quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return nil, shared.InvalidInput("unit price cannot be negative")
	}
	if in.Discount.IsNegative() {
		return nil, shared.InvalidInput("discount cannot be negative")
	}
	if in.VatRate.IsNegative() || in.VatRate.GreaterThan(hundred) {
		return nil, shared.InvalidInput("VAT rate must be between 0 and 100")
	}

	gross := in.UnitPrice.Mul(decimal.NewFromInt(in.Quantity))
	if in.Discount.GreaterThan(gross) {
		return nil, shared.InvalidInput("discount exceeds line amount for %s", in.ProductSKU)
	}
	net := gross.Sub(in.Discount)

	vatRate := in.VatRate
	vatAmount := decimal.Zero
	if in.IsVat {
		vatAmount = net.Mul(vatRate).Div(hundred).Round(2)
	} else {
		vatRate = decimal.Zero
	}

	batchID := in.BatchID
	return &SaleItem{
		ID:          uuid.New(),
		ProductID:   in.ProductID,
		ProductSKU:  in.ProductSKU,
		ProductName: in.ProductName,
		BatchID:     &batchID,
		IsVat:       in.IsVat,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Discount:    in.Discount,
		VatRate:     vatRate,
		VatAmount:   vatAmount,
		TotalPrice:  net.Add(vatAmount),
		CreatedAt:   time.Now(),
	}, nil
}

// Ledger returns the inventory ledger the line was sold from
func (i *SaleItem) Ledger() inventory.Ledger {
	return inventory.LedgerFor(i.IsVat)
}

// NetAmount is the line amount before VAT
func (i *SaleItem) NetAmount() decimal.Decimal {
	return i.TotalPrice.Sub(i.VatAmount)
}

// Payment records settlement of a non-credit sale
type Payment struct {
	ID        uuid.UUID
	SaleID    uuid.UUID
	Method    PaymentMethod
	Amount    decimal.Decimal
	Reference string
	CreatedAt time.Time
}

// Sale is a point-of-sale invoice. It is created complete at checkout and can
// only move to CANCELLED afterwards.
type Sale struct {
	shared.BaseAggregateRoot
	BranchID       uuid.UUID
	InvoiceNumber  string
	CashierID      uuid.UUID
	CustomerName   string
	Items          []SaleItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	VatAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	PaymentMethod  PaymentMethod
	AmountPaid     decimal.Decimal
	ChangeAmount   decimal.Decimal
	Payment        *Payment
	Status         SaleStatus
	IdempotencyKey string
	CancelReason   string
	CancelledAt    *time.Time
	CancelledBy    *uuid.UUID
}

// NewSaleInput carries the header of a new sale
type NewSaleInput struct {
	BranchID         uuid.UUID
	InvoiceNumber    string
	CashierID        uuid.UUID
	CustomerName     string
	PaymentMethod    PaymentMethod
	AmountPaid       decimal.Decimal
	PaymentReference string
	IdempotencyKey   string
}

// NewSale builds a completed sale from its lines. It rejects a non-credit
// sale whose amount paid does not cover the total.
func NewSale(in NewSaleInput, items []SaleItem) (*Sale, error) {
	if in.BranchID == uuid.Nil {
		return nil, shared.InvalidInput("branch is required")
	}
	if strings.TrimSpace(in.InvoiceNumber) == "" {
		return nil, shared.InvalidInput("invoice number is required")
	}
	if len(items) == 0 {
		return nil, shared.InvalidInput("sale must have at least one item")
	}
	if !in.PaymentMethod.IsValid() {
		return nil, shared.InvalidInput("invalid payment method %q", in.PaymentMethod)
	}
	if in.AmountPaid.IsNegative() {
		return nil, shared.InvalidInput("amount paid cannot be negative")
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          in.BranchID,
		InvoiceNumber:     in.InvoiceNumber,
		CashierID:         in.CashierID,
		CustomerName:      strings.TrimSpace(in.CustomerName),
		PaymentMethod:     in.PaymentMethod,
		AmountPaid:        in.AmountPaid,
		Status:            SaleStatusCompleted,
		IdempotencyKey:    in.IdempotencyKey,
	}
	sale.Items = make([]SaleItem, len(items))
	for i := range items {
		items[i].SaleID = sale.ID
		sale.Items[i] = items[i]
	}
	sale.recalculateTotals()

	change := sale.AmountPaid.Sub(sale.TotalAmount)
	if !in.PaymentMethod.IsCredit() {
		if change.IsNegative() {
			return nil, shared.RuleViolation("amount paid %s does not cover total %s",
				sale.AmountPaid.StringFixed(2), sale.TotalAmount.StringFixed(2))
		}
		sale.ChangeAmount = change
		sale.Payment = &Payment{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			Method:    in.PaymentMethod,
			Amount:    sale.TotalAmount,
			Reference: in.PaymentReference,
			CreatedAt: sale.CreatedAt,
		}
	} else if change.IsPositive() {
		sale.ChangeAmount = change
	}

	sale.AddDomainEvent(NewSaleCreatedEvent(sale))
	return sale, nil
}

// Cancel marks the sale cancelled. Stock restoration is done by the caller in
// the same transaction.
func (s *Sale) Cancel(reason string, actorID uuid.UUID) error {
	if !s.Status.CanTransitionTo(SaleStatusCancelled) {
		return shared.InvalidTransition("sale "+s.InvoiceNumber, s.Status, SaleStatusCancelled)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.InvalidInput("cancel reason is required")
	}

	now := time.Now()
	s.Status = SaleStatusCancelled
	s.CancelReason = reason
	s.CancelledAt = &now
	s.CancelledBy = &actorID
	s.MarkModified(now)

	s.AddDomainEvent(NewSaleCancelledEvent(s))
	return nil
}

// IsCancelled returns true if the sale was cancelled
func (s *Sale) IsCancelled() bool {
	return s.Status == SaleStatusCancelled
}

// ItemCount returns the total number of units sold
func (s *Sale) ItemCount() int64 {
	var n int64
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

func (s *Sale) recalculateTotals() {
	subtotal := decimal.Zero
	discount := decimal.Zero
	vat := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.NetAmount())
		discount = discount.Add(item.Discount)
		vat = vat.Add(item.VatAmount)
	}
	s.Subtotal = subtotal
	s.DiscountAmount = discount
	s.VatAmount = vat
	s.TotalAmount = subtotal.Add(vat)
}
