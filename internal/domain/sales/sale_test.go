package sales

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
)

func newTestItem(t *testing.T, qty int64, unitPrice string, isVat bool) SaleItem {
	t.Helper()
	item, err := NewSaleItem(SaleItemInput{
		ProductID:   uuid.New(),
		ProductSKU:  "PARA500",
		ProductName: "Paracetamol 500mg",
		BatchID:     uuid.New(),
		IsVat:       isVat,
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(unitPrice),
		VatRate:     decimal.NewFromInt(7),
	})
	require.NoError(t, err)
	return *item
}

func TestNewSaleItem(t *testing.T) {
	t.Run("VAT line", func(t *testing.T) {
		item := newTestItem(t, 10, "1.00", true)
		assert.True(t, item.VatAmount.Equal(decimal.RequireFromString("0.70")))
		assert.True(t, item.TotalPrice.Equal(decimal.RequireFromString("10.70")))
		assert.Equal(t, inventory.LedgerVAT, item.Ledger())
	})

	t.Run("exempt line carries no VAT", func(t *testing.T) {
		item := newTestItem(t, 3, "2.50", false)
		assert.True(t, item.VatAmount.IsZero())
		assert.True(t, item.VatRate.IsZero())
		assert.True(t, item.TotalPrice.Equal(decimal.RequireFromString("7.50")))
		assert.Equal(t, inventory.LedgerNonVAT, item.Ledger())
	})

	t.Run("VAT is charged after discount and rounded", func(t *testing.T) {
		item, err := NewSaleItem(SaleItemInput{
			ProductID: uuid.New(),
			BatchID:   uuid.New(),
			IsVat:     true,
			Quantity:  3,
			UnitPrice: decimal.RequireFromString("3.33"),
			Discount:  decimal.RequireFromString("0.99"),
			VatRate:   decimal.NewFromInt(7),
		})
		require.NoError(t, err)
		// net 9.00, VAT 0.63
		assert.True(t, item.NetAmount().Equal(decimal.RequireFromString("9.00")))
		assert.True(t, item.VatAmount.Equal(decimal.RequireFromString("0.63")))
	})

	t.Run("rejects invalid lines", func(t *testing.T) {
		_, err := NewSaleItem(SaleItemInput{ProductID: uuid.New(), BatchID: uuid.New(), Quantity: 0})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))

		_, err = NewSaleItem(SaleItemInput{ProductID: uuid.New(), Quantity: 1})
		assert.Error(t, err, "batch must be resolved before the line is built")

		_, err = NewSaleItem(SaleItemInput{
			ProductID: uuid.New(), BatchID: uuid.New(), Quantity: 1,
			UnitPrice: decimal.NewFromInt(1), Discount: decimal.NewFromInt(2),
		})
		assert.Error(t, err)
	})
}

func TestNewSale(t *testing.T) {
	branchID := uuid.New()

	t.Run("scenario B totals and change", func(t *testing.T) {
		sale, err := NewSale(NewSaleInput{
			BranchID:      branchID,
			InvoiceNumber: "INV-BR001-20240115-0001",
			PaymentMethod: PaymentMethodCash,
			AmountPaid:    decimal.NewFromInt(20),
		}, []SaleItem{newTestItem(t, 10, "1.00", true)})
		require.NoError(t, err)

		assert.True(t, sale.Subtotal.Equal(decimal.RequireFromString("10.00")))
		assert.True(t, sale.VatAmount.Equal(decimal.RequireFromString("0.70")))
		assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("10.70")))
		assert.True(t, sale.ChangeAmount.Equal(decimal.RequireFromString("9.30")))
		require.NotNil(t, sale.Payment)
		assert.True(t, sale.Payment.Amount.Equal(sale.TotalAmount))
		assert.Equal(t, SaleStatusCompleted, sale.Status)
		assert.Equal(t, sale.ID, sale.Items[0].SaleID)

		events := sale.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*SaleCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, "INV-BR001-20240115-0001", created.InvoiceNumber)
		assert.Equal(t, branchID, created.BranchID())
	})

	t.Run("underpayment is a business rule violation", func(t *testing.T) {
		_, err := NewSale(NewSaleInput{
			BranchID:      branchID,
			InvoiceNumber: "INV-1",
			PaymentMethod: PaymentMethodCard,
			AmountPaid:    decimal.NewFromInt(10),
		}, []SaleItem{newTestItem(t, 10, "1.00", true)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrBusinessRuleViolation))
	})

	t.Run("credit sale has no payment record", func(t *testing.T) {
		sale, err := NewSale(NewSaleInput{
			BranchID:      branchID,
			InvoiceNumber: "INV-2",
			PaymentMethod: PaymentMethodCredit,
		}, []SaleItem{newTestItem(t, 10, "1.00", true)})
		require.NoError(t, err)
		assert.Nil(t, sale.Payment)
		assert.True(t, sale.ChangeAmount.IsZero())
	})

	t.Run("rejects empty sales", func(t *testing.T) {
		_, err := NewSale(NewSaleInput{BranchID: branchID, InvoiceNumber: "INV-3", PaymentMethod: PaymentMethodCash}, nil)
		assert.Error(t, err)
	})
}

func TestSale_Cancel(t *testing.T) {
	sale, err := NewSale(NewSaleInput{
		BranchID:      uuid.New(),
		InvoiceNumber: "INV-4",
		PaymentMethod: PaymentMethodCash,
		AmountPaid:    decimal.NewFromInt(11),
	}, []SaleItem{newTestItem(t, 10, "1.00", true)})
	require.NoError(t, err)
	sale.ClearDomainEvents()
	actor := uuid.New()

	require.Error(t, sale.Cancel("  ", actor), "reason is required")

	require.NoError(t, sale.Cancel("customer changed mind", actor))
	assert.True(t, sale.IsCancelled())
	assert.Equal(t, 2, sale.Version)
	assert.Equal(t, &actor, sale.CancelledBy)
	require.Len(t, sale.GetDomainEvents(), 1)

	err = sale.Cancel("again", actor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition))
}
