package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"github.com/thaipharm/backend/internal/domain/partner"
	"github.com/thaipharm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// TestOrganizationID returns the organization every seeded branch and supplier belongs to.
func TestOrganizationID() uuid.UUID {
	return NewTestUUID("test-organization")
}

// ProductOption customizes a seeded product.
type ProductOption func(*catalog.Product)

// WithSellingPrice sets the catalog selling price.
func WithSellingPrice(price string) ProductOption {
	return func(p *catalog.Product) {
		d := decimal.RequireFromString(price)
		p.SellingPrice = &d
	}
}

// WithReorderPoint sets the reorder threshold.
func WithReorderPoint(point int64) ProductOption {
	return func(p *catalog.Product) {
		p.ReorderPoint = point
	}
}

// Inactive marks the product inactive.
func Inactive() ProductOption {
	return func(p *catalog.Product) {
		p.IsActive = false
	}
}

// SeedProduct inserts a catalog product. vatExempt selects the NON_VAT ledger.
func SeedProduct(t *testing.T, db *gorm.DB, sku string, vatExempt bool, costPrice string, opts ...ProductOption) *catalog.Product {
	t.Helper()

	product, err := catalog.NewProduct(sku, "Product "+sku, catalog.DrugTypeGeneral, vatExempt, decimal.RequireFromString(costPrice))
	require.NoError(t, err)
	for _, opt := range opts {
		opt(product)
	}
	require.NoError(t, db.Create(models.ProductModelFromDomain(product)).Error)
	if !product.IsActive {
		// is_active carries a column default, so a false value is dropped on insert
		require.NoError(t, db.Model(&models.ProductModel{}).
			Where("id = ?", product.ID).
			Update("is_active", false).Error)
	}
	return product
}

// SeedBranch inserts an active branch with the given code.
func SeedBranch(t *testing.T, db *gorm.DB, code string) *partner.Branch {
	t.Helper()

	branch, err := partner.NewBranch(TestOrganizationID(), code, "Branch "+code)
	require.NoError(t, err)
	require.NoError(t, db.Create(models.BranchModelFromDomain(branch)).Error)
	return branch
}

// SeedSupplier inserts an active supplier of the given type.
func SeedSupplier(t *testing.T, db *gorm.DB, code string, supplierType partner.SupplierType) *partner.Supplier {
	t.Helper()

	supplier, err := partner.NewSupplier(TestOrganizationID(), code, "Supplier "+code, supplierType)
	require.NoError(t, err)
	require.NoError(t, db.Create(models.SupplierModelFromDomain(supplier)).Error)
	return supplier
}
