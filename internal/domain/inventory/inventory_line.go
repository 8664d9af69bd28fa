package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// Ledger tags a stock line as VAT-bearing or VAT-exempt. Thai tax law requires
// the two to be reported separately, so every line and movement carries it.
type Ledger string

const (
	LedgerVAT    Ledger = "VAT"
	LedgerNonVAT Ledger = "NON_VAT"
)

// IsValid checks if the ledger tag is valid
func (l Ledger) IsValid() bool {
	return l == LedgerVAT || l == LedgerNonVAT
}

// String returns the string representation
func (l Ledger) String() string {
	return string(l)
}

// LedgerFor returns the ledger for a VAT flag.
func LedgerFor(isVat bool) Ledger {
	if isVat {
		return LedgerVAT
	}
	return LedgerNonVAT
}

// DefaultNonVatMarkup is applied to the cost price when a VAT-exempt product
// has no selling price in the catalog.
var DefaultNonVatMarkup = decimal.NewFromFloat(1.3)

var hundred = decimal.NewFromInt(100)

// Costing is the cost block of an InventoryLine. It is either VatCost or NonVatCost,
// and the variant decides which ledger the line belongs to.
type Costing interface {
	Ledger() Ledger
	UnitCost() decimal.Decimal
	isCosting()
}

// VatCost is the cost block of a VAT-bearing line.
type VatCost struct {
	CostBeforeVat decimal.Decimal
	VatRate       decimal.Decimal
	VatAmount     decimal.Decimal
	CostWithVat   decimal.Decimal
}

// NewVatCost computes vatAmount = costBeforeVat * vatRate / 100 and
// costWithVat = costBeforeVat + vatAmount.
func NewVatCost(costBeforeVat, vatRate decimal.Decimal) (VatCost, error) {
	if costBeforeVat.IsNegative() {
		return VatCost{}, shared.InvalidInput("cost before VAT cannot be negative")
	}
	if vatRate.IsNegative() || vatRate.GreaterThan(hundred) {
		return VatCost{}, shared.InvalidInput("VAT rate must be between 0 and 100")
	}
	vatAmount := costBeforeVat.Mul(vatRate).Div(hundred).Round(4)
	return VatCost{
		CostBeforeVat: costBeforeVat,
		VatRate:       vatRate,
		VatAmount:     vatAmount,
		CostWithVat:   costBeforeVat.Add(vatAmount),
	}, nil
}

// Ledger returns LedgerVAT
func (VatCost) Ledger() Ledger { return LedgerVAT }

// UnitCost returns the VAT-inclusive unit cost
func (c VatCost) UnitCost() decimal.Decimal { return c.CostWithVat }

func (VatCost) isCosting() {}

// NonVatCost is the cost block of a VAT-exempt line.
type NonVatCost struct {
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
}

// NewNonVatCost builds a VAT-exempt cost block. A nil sellingPrice falls back
// to costPrice * markup; a zero markup uses DefaultNonVatMarkup.
func NewNonVatCost(costPrice decimal.Decimal, sellingPrice *decimal.Decimal, markup decimal.Decimal) (NonVatCost, error) {
	if costPrice.IsNegative() {
		return NonVatCost{}, shared.InvalidInput("cost price cannot be negative")
	}
	if sellingPrice != nil {
		if sellingPrice.IsNegative() {
			return NonVatCost{}, shared.InvalidInput("selling price cannot be negative")
		}
		return NonVatCost{CostPrice: costPrice, SellingPrice: *sellingPrice}, nil
	}
	if markup.IsZero() {
		markup = DefaultNonVatMarkup
	}
	return NonVatCost{
		CostPrice:    costPrice,
		SellingPrice: costPrice.Mul(markup).Round(2),
	}, nil
}

// Ledger returns LedgerNonVAT
func (NonVatCost) Ledger() Ledger { return LedgerNonVAT }

// UnitCost returns the cost price
func (c NonVatCost) UnitCost() decimal.Decimal { return c.CostPrice }

func (NonVatCost) isCosting() {}

// InventoryLine is the on-hand quantity of one batch of one product at one
// branch in one ledger. There is exactly one line per (branch, product, batch, ledger).
type InventoryLine struct {
	shared.BaseEntity
	BranchID  uuid.UUID
	ProductID uuid.UUID
	BatchID   uuid.UUID
	Quantity  int64
	Location  string
	Cost      Costing
}

// NewInventoryLine creates a line for the first receipt into a combination.
func NewInventoryLine(branchID, productID, batchID uuid.UUID, quantity int64, location string, cost Costing) (*InventoryLine, error) {
	if branchID == uuid.Nil || productID == uuid.Nil || batchID == uuid.Nil {
		return nil, shared.InvalidInput("branch, product and batch are required")
	}
	if quantity < 0 {
		return nil, shared.InvalidInput("quantity cannot be negative")
	}
	if cost == nil {
		return nil, shared.InvalidInput("cost block is required")
	}
	return &InventoryLine{
		BaseEntity: shared.NewBaseEntity(),
		BranchID:   branchID,
		ProductID:  productID,
		BatchID:    batchID,
		Quantity:   quantity,
		Location:   strings.TrimSpace(location),
		Cost:       cost,
	}, nil
}

// Ledger returns the ledger implied by the cost variant
func (l *InventoryLine) Ledger() Ledger {
	if l.Cost == nil {
		return ""
	}
	return l.Cost.Ledger()
}

// VatCost returns the VAT cost block when the line is VAT-bearing
func (l *InventoryLine) VatCost() (VatCost, bool) {
	c, ok := l.Cost.(VatCost)
	return c, ok
}

// NonVatCost returns the VAT-exempt cost block when the line is VAT-exempt
func (l *InventoryLine) NonVatCost() (NonVatCost, bool) {
	c, ok := l.Cost.(NonVatCost)
	return c, ok
}

// StockValue returns quantity * unit cost
func (l *InventoryLine) StockValue() decimal.Decimal {
	if l.Cost == nil {
		return decimal.Zero
	}
	return l.Cost.UnitCost().Mul(decimal.NewFromInt(l.Quantity))
}
