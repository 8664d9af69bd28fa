package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	inventoryapp "github.com/thaipharm/backend/internal/application/inventory"
	"github.com/thaipharm/backend/internal/domain/inventory"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/interfaces/http/dto"
)

func setupInventoryHandler() (*MockInventoryService, *MockBatchExpirer, *InventoryHandler) {
	svc := new(MockInventoryService)
	expiry := new(MockBatchExpirer)
	return svc, expiry, NewInventoryHandler(svc, expiry)
}

func TestInventoryHandler_ReceiveStock(t *testing.T) {
	branchID, productID, actorID := uuid.New(), uuid.New(), uuid.New()

	t.Run("receives into a new batch", func(t *testing.T) {
		svc, _, h := setupInventoryHandler()
		engine := newTestEngine(h.Routes())
		svc.On("ReceiveStock", mock.Anything, mock.MatchedBy(func(req inventoryapp.ReceiveStockRequest) bool {
			return req.BranchID == branchID &&
				req.BatchNumber == "PCM-2403/A" &&
				req.Quantity == 100 &&
				req.UnitCost.Equal(decimal.RequireFromString("1.25")) &&
				req.ExpiryDate.Equal(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)) &&
				req.ActorID == actorID
		})).Return(&inventoryapp.ReceiveStockResponse{
			Batch: inventoryapp.BatchResponse{BatchNumber: "PCM-2403/A", Quantity: 100},
		}, nil)

		w := call{
			method: http.MethodPost,
			target: "/api/v1/inventory/receipts",
			body: `{"branch_id":"` + branchID.String() + `","product_id":"` + productID.String() +
				`","batch_number":"PCM-2403/A","expiry_date":"2026-03-31T00:00:00Z","quantity":100,"unit_cost":"1.25"}`,
			userID: actorID,
		}.do(engine)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var got inventoryapp.ReceiveStockResponse
		decode(t, w, &got)
		assert.Equal(t, int64(100), got.Batch.Quantity)
		svc.AssertExpectations(t)
	})

	t.Run("validates batch number and cost", func(t *testing.T) {
		svc, _, h := setupInventoryHandler()
		engine := newTestEngine(h.Routes())

		w := call{
			method: http.MethodPost,
			target: "/api/v1/inventory/receipts",
			body: `{"branch_id":"` + branchID.String() + `","product_id":"` + productID.String() +
				`","batch_number":"lot 7","expiry_date":"2026-03-31T00:00:00Z","quantity":100,"unit_cost":"0"}`,
			userID: actorID,
		}.do(engine)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w, nil)
		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"batch_number", "unit_cost"}, fields)
		svc.AssertNotCalled(t, "ReceiveStock", mock.Anything, mock.Anything)
	})
}

func TestInventoryHandler_AdjustStock(t *testing.T) {
	svc, _, h := setupInventoryHandler()
	engine := newTestEngine(h.Routes())
	branchID, productID, batchID, actorID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	svc.On("AdjustStock", mock.Anything, inventoryapp.AdjustStockRequest{
		BranchID:     branchID,
		ProductID:    productID,
		BatchID:      batchID,
		Ledger:       inventory.LedgerVAT,
		MovementType: inventory.MovementExpired,
		Quantity:     4,
		Reason:       "expired on shelf",
		ActorID:      actorID,
	}).Return(nil, shared.InsufficientStock("batch PCM-2403/A", 4, 1))

	body := `{"branch_id":"` + branchID.String() + `","product_id":"` + productID.String() +
		`","batch_id":"` + batchID.String() + `","ledger":"VAT","movement_type":"EXPIRED","quantity":4,"reason":"expired on shelf"}`

	w := call{method: http.MethodPost, target: "/api/v1/inventory/adjustments", body: body, userID: actorID}.do(engine)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, errorCodeOf(t, w))
	svc.AssertExpectations(t)

	w = call{
		method: http.MethodPost,
		target: "/api/v1/inventory/adjustments",
		body: `{"branch_id":"` + branchID.String() + `","product_id":"` + productID.String() +
			`","batch_id":"` + batchID.String() + `","ledger":"VAT","movement_type":"OUT","quantity":4,"reason":"x"}`,
		userID: actorID,
	}.do(engine)
	assert.Equal(t, http.StatusBadRequest, w.Code, "sales movements cannot be posted as adjustments")
}

func TestInventoryHandler_Queries(t *testing.T) {
	svc, expiry, h := setupInventoryHandler()
	engine := newTestEngine(h.Routes())
	branchID, productID, batchID, saleID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	svc.On("GetStock", mock.Anything, branchID, productID).Return(&inventoryapp.StockSummaryResponse{
		BranchID: branchID, ProductID: productID, VatQuantity: 30, NonVatQuantity: 12, TotalQuantity: 42,
	}, nil)
	svc.On("ListLines", mock.Anything, branchID, inventoryapp.LineListFilter{
		Ledger: inventory.LedgerNonVAT, InStock: true,
	}).Return([]inventoryapp.InventoryLineResponse{}, int64(0), nil)
	svc.On("ListMovements", mock.Anything, mock.MatchedBy(func(f inventoryapp.MovementListFilter) bool {
		return f.ReferenceID != nil && *f.ReferenceID == saleID &&
			f.ReferenceType == inventory.ReferenceSale &&
			f.BranchID == nil
	})).Return([]inventoryapp.StockMovementResponse{{Quantity: 2}}, int64(1), nil)
	svc.On("GetBatch", mock.Anything, batchID).Return(nil, shared.NotFound("batch", batchID))
	expiry.On("DeactivateExpired", mock.Anything).Return(&inventoryapp.ExpiryStats{Deactivated: 3}, nil)

	w := call{method: http.MethodGet, target: "/api/v1/inventory/branches/" + branchID.String() + "/products/" + productID.String() + "/stock"}.do(engine)
	require.Equal(t, http.StatusOK, w.Code)
	var stock inventoryapp.StockSummaryResponse
	decode(t, w, &stock)
	assert.Equal(t, int64(42), stock.TotalQuantity)

	w = call{method: http.MethodGet, target: "/api/v1/inventory/branches/" + branchID.String() + "/lines?ledger=NON_VAT&in_stock=true"}.do(engine)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call{method: http.MethodGet, target: "/api/v1/inventory/movements?reference_type=SALE&reference_id=" + saleID.String()}.do(engine)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode(t, w, nil).Meta.Total)

	w = call{method: http.MethodGet, target: "/api/v1/inventory/movements?batch_id=oops"}.do(engine)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call{method: http.MethodGet, target: "/api/v1/inventory/batches/" + batchID.String()}.do(engine)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call{method: http.MethodPost, target: "/api/v1/inventory/batches/expire", userID: uuid.New()}.do(engine)
	require.Equal(t, http.StatusOK, w.Code)
	var stats inventoryapp.ExpiryStats
	decode(t, w, &stats)
	assert.Equal(t, int64(3), stats.Deactivated)

	svc.AssertExpectations(t)
	expiry.AssertExpectations(t)
}
