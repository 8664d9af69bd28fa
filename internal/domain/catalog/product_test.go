package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("VAT product defaults to 7 percent", func(t *testing.T) {
		p, err := NewProduct("PARA500", "Paracetamol 500mg", DrugTypeHousehold, false, decimal.RequireFromString("0.50"))
		require.NoError(t, err)
		assert.True(t, p.IsVat())
		assert.True(t, p.VatRate.Equal(decimal.NewFromInt(7)))
		assert.Equal(t, "PARA500 (Paracetamol 500mg)", p.Label())
	})

	t.Run("exempt product has no VAT", func(t *testing.T) {
		p, err := NewProduct("HERB01", "Fah Talai Jone", "", true, decimal.NewFromInt(20))
		require.NoError(t, err)
		assert.False(t, p.IsVat())
		assert.True(t, p.VatRate.IsZero())
		assert.Equal(t, DrugTypeGeneral, p.DrugType)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewProduct("", "x", DrugTypeGeneral, false, decimal.Zero)
		assert.Error(t, err)
		_, err = NewProduct("X", "x", DrugType("POISON"), false, decimal.Zero)
		assert.Error(t, err)
		_, err = NewProduct("X", "x", DrugTypeGeneral, false, decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("reorder point", func(t *testing.T) {
		p, err := NewProduct("AMOX", "Amoxicillin", DrugTypeDangerous, false, decimal.NewFromInt(2))
		require.NoError(t, err)
		assert.False(t, p.BelowReorderPoint(0), "no reorder point configured")
		p.ReorderPoint = 100
		assert.True(t, p.BelowReorderPoint(99))
		assert.False(t, p.BelowReorderPoint(100))
	})
}
