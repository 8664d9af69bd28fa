// Package catalog holds the product view the inventory core reads from the
// catalog service. The core never mutates pricing or tax fields.
package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/shared"
)

// DrugType classifies a product under Thai drug regulation
type DrugType string

const (
	DrugTypeHousehold      DrugType = "HOUSEHOLD"
	DrugTypeDangerous      DrugType = "DANGEROUS"
	DrugTypeSpecialControl DrugType = "SPECIAL_CONTROL"
	DrugTypeGeneral        DrugType = "GENERAL"
	DrugTypeSupplement     DrugType = "SUPPLEMENT"
	DrugTypeMedicalDevice  DrugType = "MEDICAL_DEVICE"
)

// IsValid checks if the drug type is valid
func (t DrugType) IsValid() bool {
	switch t {
	case DrugTypeHousehold, DrugTypeDangerous, DrugTypeSpecialControl,
		DrugTypeGeneral, DrugTypeSupplement, DrugTypeMedicalDevice:
		return true
	}
	return false
}

// DefaultVatRate is the Thai standard VAT rate in percent
var DefaultVatRate = decimal.NewFromInt(7)

// Product is the catalog entry as seen by the inventory core
type Product struct {
	shared.BaseEntity
	SKU          string
	Name         string
	DrugType     DrugType
	IsVatExempt  bool
	VatRate      decimal.Decimal
	CostPrice    decimal.Decimal
	SellingPrice *decimal.Decimal
	ReorderPoint int64
	ReorderQty   int64
	IsActive     bool
}

// NewProduct creates a catalog product. Used by the catalog collaborator and tests.
func NewProduct(sku, name string, drugType DrugType, isVatExempt bool, costPrice decimal.Decimal) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.InvalidInput("SKU is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.InvalidInput("product name is required")
	}
	if drugType == "" {
		drugType = DrugTypeGeneral
	}
	if !drugType.IsValid() {
		return nil, shared.InvalidInput("invalid drug type %q", drugType)
	}
	if costPrice.IsNegative() {
		return nil, shared.InvalidInput("cost price cannot be negative")
	}
	vatRate := DefaultVatRate
	if isVatExempt {
		vatRate = decimal.Zero
	}
	return &Product{
		BaseEntity:  shared.NewBaseEntity(),
		SKU:         sku,
		Name:        strings.TrimSpace(name),
		DrugType:    drugType,
		IsVatExempt: isVatExempt,
		VatRate:     vatRate,
		CostPrice:   costPrice,
		IsActive:    true,
	}, nil
}

// IsVat reports whether sales and stock of the product fall in the VAT ledger
func (p *Product) IsVat() bool {
	return !p.IsVatExempt
}

// Label names the product in error messages
func (p *Product) Label() string {
	if p.Name == "" {
		return p.SKU
	}
	return p.SKU + " (" + p.Name + ")"
}

// BelowReorderPoint reports whether onHand has dropped below the reorder point
func (p *Product) BelowReorderPoint(onHand int64) bool {
	return p.ReorderPoint > 0 && onHand < p.ReorderPoint
}

// ProductReader reads products from the catalog
type ProductReader interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)
}

// ProductRepository is the catalog's own write side, used to seed and sync products
type ProductRepository interface {
	ProductReader

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}
