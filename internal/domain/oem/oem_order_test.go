package oem

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thaipharm/backend/internal/domain/shared"
)

var expiry = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

func newConfirmedOrder(t *testing.T, qty int64) *Order {
	t.Helper()
	order, err := NewOrder("OEM-BR001-20240601-0001", uuid.New(), uuid.New(),
		[]ItemInput{{ProductID: uuid.New(), Quantity: qty, UnitPrice: decimal.RequireFromString("12.50")}},
		uuid.New(), "")
	require.NoError(t, err)
	require.NoError(t, order.Confirm())
	return order
}

func TestNewOrder(t *testing.T) {
	order, err := NewOrder("OEM-1", uuid.New(), uuid.New(), []ItemInput{
		{ProductID: uuid.New(), Quantity: 100, UnitPrice: decimal.RequireFromString("12.50")},
		{ProductID: uuid.New(), Quantity: 10, UnitPrice: decimal.RequireFromString("3.00")},
	}, uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusDraft, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("1280")))
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
	}

	_, err = NewOrder("OEM-2", uuid.New(), uuid.New(), []ItemInput{{ProductID: uuid.New(), Quantity: 0}}, uuid.New(), "")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestOrderStatusTransitions(t *testing.T) {
	order, err := NewOrder("OEM-3", uuid.New(), uuid.New(),
		[]ItemInput{{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(1)}}, uuid.New(), "")
	require.NoError(t, err)

	err = order.StartProduction()
	assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition), "draft cannot start production")

	require.NoError(t, order.Confirm())
	require.NoError(t, order.StartProduction())
	assert.Equal(t, OrderStatusInProduction, order.Status)
	assert.Equal(t, 3, order.Version)

	require.NoError(t, order.Cancel("supplier closed"))
	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.True(t, errors.Is(order.Confirm(), shared.ErrInvalidStateTransition))
}

func TestReceivingLine_Validate(t *testing.T) {
	base := ReceivingLine{OrderItemID: uuid.New(), BatchNumber: "OEM-B1", ExpiryDate: expiry, ReceivedQty: 100, AcceptedQty: 95, RejectedQty: 5}
	assert.NoError(t, base.Validate())

	bad := base
	bad.RejectedQty = 4
	assert.True(t, errors.Is(bad.Validate(), shared.ErrInvalidInput))

	bad = base
	bad.BatchNumber = " "
	assert.Error(t, bad.Validate())
}

func TestOrder_ApplyReceiving(t *testing.T) {
	t.Run("scenario E: full delivery with rejects", func(t *testing.T) {
		order := newConfirmedOrder(t, 100)
		item := order.Items[0]
		gr, err := NewGoodsReceiving("GR-BR001-20240601-0001", order, order.BranchID, uuid.New(), []ReceivingLine{
			{OrderItemID: item.ID, BatchNumber: "OEM-B1", ExpiryDate: expiry, ReceivedQty: 100, AcceptedQty: 95, RejectedQty: 5},
		}, "", time.Now())
		require.NoError(t, err)
		assert.True(t, gr.Items[0].UnitPrice.Equal(item.UnitPrice))
		assert.Equal(t, item.ProductID, gr.Items[0].ProductID)
		assert.Equal(t, int64(95), gr.AcceptedQuantity())

		require.NoError(t, order.ApplyReceiving(gr))
		assert.Equal(t, OrderStatusReceived, order.Status)
		got := order.Items[0]
		assert.Equal(t, int64(100), got.ReceivedQty)
		assert.Equal(t, int64(95), got.AcceptedQty)
		assert.Equal(t, int64(5), got.RejectedQty)
	})

	t.Run("partial deliveries accumulate", func(t *testing.T) {
		order := newConfirmedOrder(t, 100)
		item := order.Items[0]
		for i, qty := range []int64{40, 60} {
			gr, err := NewGoodsReceiving("GR-"+string(rune('A'+i)), order, order.BranchID, uuid.New(), []ReceivingLine{
				{OrderItemID: item.ID, BatchNumber: "OEM-B1", ExpiryDate: expiry, ReceivedQty: qty, AcceptedQty: qty},
			}, "", time.Now())
			require.NoError(t, err)
			require.NoError(t, order.ApplyReceiving(gr))
			if i == 0 {
				assert.Equal(t, OrderStatusPartiallyReceived, order.Status)
				assert.Equal(t, int64(60), order.Items[0].Outstanding())
			}
		}
		assert.Equal(t, OrderStatusReceived, order.Status)
		assert.Equal(t, int64(100), order.ReceivedQuantity())
	})

	t.Run("a draft order takes deliveries without confirmation", func(t *testing.T) {
		order, err := NewOrder("OEM-4", uuid.New(), uuid.New(),
			[]ItemInput{{ProductID: uuid.New(), Quantity: 1000, UnitPrice: decimal.NewFromInt(1)}}, uuid.New(), "")
		require.NoError(t, err)
		for i, qty := range []int64{400, 600} {
			gr, err := NewGoodsReceiving("GR-D"+string(rune('A'+i)), order, order.BranchID, uuid.New(), []ReceivingLine{
				{OrderItemID: order.Items[0].ID, BatchNumber: "B", ExpiryDate: expiry, ReceivedQty: qty, AcceptedQty: qty},
			}, "", time.Now())
			require.NoError(t, err)
			require.NoError(t, order.ApplyReceiving(gr))
			if i == 0 {
				assert.Equal(t, OrderStatusPartiallyReceived, order.Status)
			}
		}
		assert.Equal(t, OrderStatusReceived, order.Status)
	})

	t.Run("a cancelled order takes no deliveries", func(t *testing.T) {
		order := newConfirmedOrder(t, 10)
		require.NoError(t, order.Cancel("formula changed"))
		_, err := NewGoodsReceiving("GR-X", order, order.BranchID, uuid.New(), []ReceivingLine{
			{OrderItemID: order.Items[0].ID, BatchNumber: "B", ExpiryDate: expiry, ReceivedQty: 1, AcceptedQty: 1},
		}, "", time.Now())
		assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition))
	})

	t.Run("cannot cancel after receiving", func(t *testing.T) {
		order := newConfirmedOrder(t, 10)
		gr, err := NewGoodsReceiving("GR-Y", order, order.BranchID, uuid.New(), []ReceivingLine{
			{OrderItemID: order.Items[0].ID, BatchNumber: "B", ExpiryDate: expiry, ReceivedQty: 5, AcceptedQty: 5},
		}, "", time.Now())
		require.NoError(t, err)
		require.NoError(t, order.ApplyReceiving(gr))
		err = order.Cancel("late")
		assert.True(t, errors.Is(err, shared.ErrBusinessRuleViolation))
	})
}
