package oem_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appoem "github.com/thaipharm/backend/internal/application/oem"
	"github.com/thaipharm/backend/internal/domain/catalog"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/oem"
	"github.com/thaipharm/backend/internal/domain/partner"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/infrastructure/persistence"
	"github.com/thaipharm/backend/tests/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type oemFixture struct {
	db       *gorm.DB
	oem      *appoem.OemService
	branch   *partner.Branch
	supplier *partner.Supplier
	tablet   *catalog.Product
	herbal   *catalog.Product
	actor    uuid.UUID
	expiry   time.Time
}

func newOemFixture(t *testing.T) *oemFixture {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)

	f := &oemFixture{
		db:       db,
		branch:   testutil.SeedBranch(t, db, "BR001"),
		supplier: testutil.SeedSupplier(t, db, "OEM01", partner.SupplierTypeOEM),
		tablet:   testutil.SeedProduct(t, db, "CETI-10", false, "20"),
		herbal:   testutil.SeedProduct(t, db, "FAH-500", true, "20"),
		actor:    uuid.New(),
		expiry:   time.Now().UTC().AddDate(2, 0, 0).Truncate(24 * time.Hour),
	}
	f.oem = appoem.NewOemService(scope.Oem(),
		persistence.NewGormOemOrderRepository(db),
		persistence.NewGormGoodsReceivingRepository(db),
		persistence.NewGormSupplierRepository(db),
		persistence.NewGormBranchRepository(db),
		persistence.NewGormProductRepository(db),
		decimal.RequireFromString("1.5"),
		zap.NewNop())
	return f
}

// order places and confirms an order for 100 tablets at 25 and 50 herbal packs at 20
func (f *oemFixture) order(t *testing.T) *appoem.OrderResponse {
	t.Helper()
	ctx := context.Background()

	created, err := f.oem.CreateOrder(ctx, appoem.CreateOrderRequest{
		SupplierID: f.supplier.ID,
		BranchID:   f.branch.ID,
		Items: []appoem.OrderItemRequest{
			{ProductID: f.tablet.ID, Quantity: 100, UnitPrice: decimal.NewFromInt(25)},
			{ProductID: f.herbal.ID, Quantity: 50, UnitPrice: decimal.NewFromInt(20)},
		},
		CreatedBy: f.actor,
	})
	require.NoError(t, err)
	confirmed, err := f.oem.Confirm(ctx, created.ID)
	require.NoError(t, err)
	return confirmed
}

func (f *oemFixture) line(t *testing.T, batchID uuid.UUID, ledger inventory.Ledger, productID uuid.UUID) *inventory.InventoryLine {
	t.Helper()

	line, err := persistence.NewGormInventoryLineRepository(f.db).
		FindByKey(context.Background(), f.branch.ID, productID, batchID, ledger)
	require.NoError(t, err)
	return line
}

func (f *oemFixture) delivery(itemID uuid.UUID, batchNumber string, received, accepted, rejected int64) appoem.ReceivingItemRequest {
	return appoem.ReceivingItemRequest{
		OrderItemID: itemID,
		BatchNumber: batchNumber,
		ExpiryDate:  f.expiry,
		ReceivedQty: received,
		AcceptedQty: accepted,
		RejectedQty: rejected,
	}
}

func TestOemService_CreateOrder_SQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("drafts a numbered order", func(t *testing.T) {
		f := newOemFixture(t)
		created, err := f.oem.CreateOrder(ctx, appoem.CreateOrderRequest{
			SupplierID: f.supplier.ID,
			BranchID:   f.branch.ID,
			Items:      []appoem.OrderItemRequest{{ProductID: f.tablet.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(25)}},
			CreatedBy:  f.actor,
		})
		require.NoError(t, err)

		assert.Equal(t, oem.OrderStatusDraft, created.Status)
		assert.Equal(t, "OEM-BR001-"+time.Now().Format("20060102")+"-0001", created.OrderNumber)
		assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(250)))
		require.Len(t, created.Items, 1)
		assert.Equal(t, int64(10), created.Items[0].Outstanding)
	})

	t.Run("only OEM suppliers take production orders", func(t *testing.T) {
		f := newOemFixture(t)
		distributor := testutil.SeedSupplier(t, f.db, "DIST01", partner.SupplierTypeDistributor)

		_, err := f.oem.CreateOrder(ctx, appoem.CreateOrderRequest{
			SupplierID: distributor.ID,
			BranchID:   f.branch.ID,
			Items:      []appoem.OrderItemRequest{{ProductID: f.tablet.ID, Quantity: 10}},
			CreatedBy:  f.actor,
		})
		assert.True(t, errors.Is(err, shared.ErrBusinessRuleViolation))
	})

	t.Run("unknown supplier", func(t *testing.T) {
		f := newOemFixture(t)
		_, err := f.oem.CreateOrder(ctx, appoem.CreateOrderRequest{
			SupplierID: uuid.New(),
			BranchID:   f.branch.ID,
			Items:      []appoem.OrderItemRequest{{ProductID: f.tablet.ID, Quantity: 10}},
			CreatedBy:  f.actor,
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestOemService_StatusFlow_SQLite(t *testing.T) {
	ctx := context.Background()
	f := newOemFixture(t)
	confirmed := f.order(t)
	assert.Equal(t, oem.OrderStatusConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)

	_, err := f.oem.Confirm(ctx, confirmed.ID)
	assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition), "confirm is only valid from DRAFT")

	producing, err := f.oem.StartProduction(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, oem.OrderStatusInProduction, producing.Status)

	_, err = f.oem.StartProduction(ctx, confirmed.ID)
	assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition))
}

func TestOemService_Receive_SQLite(t *testing.T) {
	ctx := context.Background()
	f := newOemFixture(t)
	order := f.order(t)
	var tabletItem, herbalItem uuid.UUID
	for _, item := range order.Items {
		if item.ProductID == f.tablet.ID {
			tabletItem = item.ID
		} else {
			herbalItem = item.ID
		}
	}

	first, err := f.oem.Receive(ctx, order.ID, appoem.ReceiveGoodsRequest{
		Items: []appoem.ReceivingItemRequest{
			f.delivery(tabletItem, "LOT-A", 60, 55, 5),
			f.delivery(herbalItem, "LOT-H", 10, 0, 10),
		},
		ReceivedBy: f.actor,
	})
	require.NoError(t, err)

	assert.Equal(t, "GR-BR001-"+time.Now().Format("20060102")+"-0001", first.GRNumber)
	assert.Equal(t, f.branch.ID, first.BranchID, "the order branch receives by default")
	assert.Equal(t, oem.OrderStatusPartiallyReceived, first.OrderStatus)
	require.Len(t, first.Items, 2)
	require.NotNil(t, first.Items[0].BatchID)
	assert.Nil(t, first.Items[1].BatchID, "a fully rejected line creates no batch")
	batchID := *first.Items[0].BatchID

	line := f.line(t, batchID, inventory.LedgerVAT, f.tablet.ID)
	assert.Equal(t, int64(55), line.Quantity, "only accepted units enter stock")
	vat, ok := line.Cost.(inventory.VatCost)
	require.True(t, ok)
	assert.True(t, vat.CostBeforeVat.Equal(decimal.NewFromInt(25)), "the order price is the receipt cost")

	current, err := f.oem.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	items := map[uuid.UUID]appoem.OrderItemResponse{}
	for _, item := range current.Items {
		items[item.ID] = item
	}
	assert.Equal(t, int64(60), items[tabletItem].ReceivedQty)
	assert.Equal(t, int64(55), items[tabletItem].AcceptedQty)
	assert.Equal(t, int64(5), items[tabletItem].RejectedQty)
	assert.Equal(t, int64(40), items[tabletItem].Outstanding)
	assert.Equal(t, int64(40), items[herbalItem].Outstanding)
	testutil.AssertLedgerBalanced(t, f.db)

	t.Run("cancel is refused once goods arrived", func(t *testing.T) {
		_, err := f.oem.Cancel(ctx, order.ID, appoem.CancelOrderRequest{Reason: "supplier delay"})
		assert.True(t, errors.Is(err, shared.ErrBusinessRuleViolation))
	})

	second, err := f.oem.Receive(ctx, order.ID, appoem.ReceiveGoodsRequest{
		Items: []appoem.ReceivingItemRequest{
			f.delivery(tabletItem, "LOT-A", 40, 40, 0),
			f.delivery(herbalItem, "LOT-H", 40, 40, 0),
		},
		ReceivedBy: f.actor,
	})
	require.NoError(t, err)
	assert.Equal(t, oem.OrderStatusReceived, second.OrderStatus)
	require.NotNil(t, second.Items[0].BatchID)
	assert.Equal(t, batchID, *second.Items[0].BatchID, "a repeated batch number reuses the batch")
	assert.Equal(t, int64(95), f.line(t, batchID, inventory.LedgerVAT, f.tablet.ID).Quantity)

	require.NotNil(t, second.Items[1].BatchID)
	herbal := f.line(t, *second.Items[1].BatchID, inventory.LedgerNonVAT, f.herbal.ID)
	assert.Equal(t, int64(40), herbal.Quantity)
	nonVat, ok := herbal.Cost.(inventory.NonVatCost)
	require.True(t, ok, "VAT-exempt products are stocked on the NON_VAT ledger")
	assert.True(t, nonVat.CostPrice.Equal(decimal.NewFromInt(20)))
	assert.True(t, nonVat.SellingPrice.Equal(decimal.NewFromInt(30)), "selling price falls back to cost times markup")
	testutil.AssertLedgerBalanced(t, f.db)

	receivings, err := f.oem.ListReceivings(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, receivings, 2)

	fetched, err := f.oem.GetReceiving(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.GRNumber, fetched.GRNumber)

	t.Run("a received order takes no more deliveries", func(t *testing.T) {
		_, err := f.oem.Receive(ctx, order.ID, appoem.ReceiveGoodsRequest{
			Items:      []appoem.ReceivingItemRequest{f.delivery(tabletItem, "LOT-B", 1, 1, 0)},
			ReceivedBy: f.actor,
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition))
	})
}

func TestOemService_Receive_DraftOrder_SQLite(t *testing.T) {
	ctx := context.Background()
	f := newOemFixture(t)

	created, err := f.oem.CreateOrder(ctx, appoem.CreateOrderRequest{
		SupplierID: f.supplier.ID,
		BranchID:   f.branch.ID,
		Items:      []appoem.OrderItemRequest{{ProductID: f.tablet.ID, Quantity: 1000, UnitPrice: decimal.NewFromInt(25)}},
		CreatedBy:  f.actor,
	})
	require.NoError(t, err)
	require.Equal(t, oem.OrderStatusDraft, created.Status)
	itemID := created.Items[0].ID

	first, err := f.oem.Receive(ctx, created.ID, appoem.ReceiveGoodsRequest{
		Items:      []appoem.ReceivingItemRequest{f.delivery(itemID, "LOT-E", 400, 400, 0)},
		ReceivedBy: f.actor,
	})
	require.NoError(t, err)
	assert.Equal(t, oem.OrderStatusPartiallyReceived, first.OrderStatus)
	require.NotNil(t, first.Items[0].BatchID)
	batchID := *first.Items[0].BatchID
	assert.Equal(t, int64(400), f.line(t, batchID, inventory.LedgerVAT, f.tablet.ID).Quantity)
	testutil.AssertLedgerBalanced(t, f.db)

	second, err := f.oem.Receive(ctx, created.ID, appoem.ReceiveGoodsRequest{
		Items:      []appoem.ReceivingItemRequest{f.delivery(itemID, "LOT-E", 600, 600, 0)},
		ReceivedBy: f.actor,
	})
	require.NoError(t, err)
	assert.Equal(t, oem.OrderStatusReceived, second.OrderStatus)
	require.NotNil(t, second.Items[0].BatchID)
	assert.Equal(t, batchID, *second.Items[0].BatchID)
	assert.Equal(t, int64(1000), f.line(t, batchID, inventory.LedgerVAT, f.tablet.ID).Quantity)
	testutil.AssertLedgerBalanced(t, f.db)

	current, err := f.oem.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), current.Items[0].ReceivedQty)
	assert.Zero(t, current.Items[0].Outstanding)
}

func TestOemService_Receive_Rejections_SQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("a cancelled order cannot receive", func(t *testing.T) {
		f := newOemFixture(t)
		order := f.order(t)
		_, err := f.oem.Cancel(ctx, order.ID, appoem.CancelOrderRequest{Reason: "formula changed"})
		require.NoError(t, err)

		_, err = f.oem.Receive(ctx, order.ID, appoem.ReceiveGoodsRequest{
			Items:      []appoem.ReceivingItemRequest{f.delivery(order.Items[0].ID, "LOT-A", 10, 10, 0)},
			ReceivedBy: f.actor,
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition))
		testutil.AssertLedgerBalanced(t, f.db)
	})

	t.Run("received must equal accepted plus rejected", func(t *testing.T) {
		f := newOemFixture(t)
		order := f.order(t)

		_, err := f.oem.Receive(ctx, order.ID, appoem.ReceiveGoodsRequest{
			Items:      []appoem.ReceivingItemRequest{f.delivery(order.Items[0].ID, "LOT-A", 10, 8, 1)},
			ReceivedBy: f.actor,
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("an unknown order item rolls back the delivery", func(t *testing.T) {
		f := newOemFixture(t)
		order := f.order(t)

		_, err := f.oem.Receive(ctx, order.ID, appoem.ReceiveGoodsRequest{
			Items: []appoem.ReceivingItemRequest{
				f.delivery(order.Items[0].ID, "LOT-A", 10, 10, 0),
				f.delivery(uuid.New(), "LOT-B", 5, 5, 0),
			},
			ReceivedBy: f.actor,
		})
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		var n int64
		require.NoError(t, f.db.Table("inventory_lines").Count(&n).Error)
		assert.Zero(t, n)
		current, err := f.oem.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, oem.OrderStatusConfirmed, current.Status)
		testutil.AssertLedgerBalanced(t, f.db)
	})
}

func TestOemService_Cancel_SQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("an order without receipts is cancelled", func(t *testing.T) {
		f := newOemFixture(t)
		order := f.order(t)

		cancelled, err := f.oem.Cancel(ctx, order.ID, appoem.CancelOrderRequest{Reason: "formula changed"})
		require.NoError(t, err)
		assert.Equal(t, oem.OrderStatusCancelled, cancelled.Status)
		assert.Equal(t, "formula changed", cancelled.CancelReason)

		_, err = f.oem.Cancel(ctx, order.ID, appoem.CancelOrderRequest{Reason: "again"})
		assert.True(t, errors.Is(err, shared.ErrInvalidStateTransition))
	})

	t.Run("a reason is required", func(t *testing.T) {
		f := newOemFixture(t)
		order := f.order(t)

		_, err := f.oem.Cancel(ctx, order.ID, appoem.CancelOrderRequest{Reason: "  "})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestOemService_ListOrders_SQLite(t *testing.T) {
	ctx := context.Background()
	f := newOemFixture(t)
	f.order(t)
	f.order(t)

	list, total, err := f.oem.ListOrders(ctx, appoem.OrderListFilter{SupplierID: &f.supplier.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	list, total, err = f.oem.ListOrders(ctx, appoem.OrderListFilter{Status: oem.OrderStatusDraft})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}
