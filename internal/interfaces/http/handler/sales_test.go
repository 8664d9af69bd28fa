package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	salesapp "github.com/thaipharm/backend/internal/application/sales"
	"github.com/thaipharm/backend/internal/domain/sales"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/interfaces/http/dto"
)

func setupSaleHandler() (*MockSaleService, *SaleHandler) {
	svc := new(MockSaleService)
	return svc, NewSaleHandler(svc)
}

func TestSaleHandler_Checkout(t *testing.T) {
	branchID, productID, cashierID := uuid.New(), uuid.New(), uuid.New()
	body := `{
		"branch_id": "` + branchID.String() + `",
		"items": [{"product_id": "` + productID.String() + `", "quantity": 2}],
		"payment_method": "CASH",
		"amount_paid": "100.00",
		"idempotency_key": "from-body"
	}`

	t.Run("creates the sale with the header idempotency key", func(t *testing.T) {
		svc, h := setupSaleHandler()
		engine := newTestEngine(h.Routes())

		svc.On("Checkout", mock.Anything, mock.MatchedBy(func(req salesapp.CheckoutRequest) bool {
			return req.BranchID == branchID &&
				req.CashierID == cashierID &&
				req.IdempotencyKey == "pos-7-0042" &&
				len(req.Items) == 1 &&
				req.Items[0].Quantity == 2 &&
				req.AmountPaid.Equal(decimal.NewFromInt(100))
		})).Return(&salesapp.SaleResponse{
			ID:            uuid.New(),
			InvoiceNumber: "INV-BKK01-20240309-0001",
			TotalAmount:   decimal.RequireFromString("53.50"),
			Status:        sales.SaleStatusCompleted,
		}, nil)

		w := call{
			method:  http.MethodPost,
			target:  "/api/v1/sales",
			body:    body,
			userID:  cashierID,
			headers: map[string]string{IdempotencyKeyHeader: "pos-7-0042"},
		}.do(engine)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var sale salesapp.SaleResponse
		resp := decode(t, w, &sale)
		assert.True(t, resp.Success)
		assert.Equal(t, "INV-BKK01-20240309-0001", sale.InvoiceNumber)
		assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("53.50")))
		svc.AssertExpectations(t)
	})

	t.Run("rejects an empty basket before reaching the service", func(t *testing.T) {
		svc, h := setupSaleHandler()
		engine := newTestEngine(h.Routes())

		w := call{
			method: http.MethodPost,
			target: "/api/v1/sales",
			body:   `{"branch_id":"` + branchID.String() + `","items":[],"payment_method":"CASH"}`,
			userID: cashierID,
		}.do(engine)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorCodeOf(t, w))
		svc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
	})

	t.Run("rejects an unknown payment method", func(t *testing.T) {
		svc, h := setupSaleHandler()
		engine := newTestEngine(h.Routes())

		w := call{
			method: http.MethodPost,
			target: "/api/v1/sales",
			body: `{"branch_id":"` + branchID.String() + `","items":[{"product_id":"` +
				productID.String() + `","quantity":1}],"payment_method":"BITCOIN"}`,
			userID: cashierID,
		}.do(engine)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
	})

	t.Run("requires a cashier", func(t *testing.T) {
		svc, h := setupSaleHandler()
		engine := newTestEngine(h.Routes())

		w := call{method: http.MethodPost, target: "/api/v1/sales", body: body}.do(engine)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
	})

	t.Run("maps insufficient stock to 422", func(t *testing.T) {
		svc, h := setupSaleHandler()
		engine := newTestEngine(h.Routes())
		svc.On("Checkout", mock.Anything, mock.Anything).
			Return(nil, shared.InsufficientStock("Amoxicillin 500mg", 2, -1))

		w := call{method: http.MethodPost, target: "/api/v1/sales", body: body, userID: cashierID}.do(engine)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decode(t, w, nil)
		assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "Amoxicillin 500mg")
	})
}

func TestSaleHandler_Cancel(t *testing.T) {
	saleID, actorID := uuid.New(), uuid.New()

	t.Run("cancels with the acting user", func(t *testing.T) {
		svc, h := setupSaleHandler()
		engine := newTestEngine(h.Routes())
		svc.On("Cancel", mock.Anything, saleID, salesapp.CancelSaleRequest{
			Reason:  "customer returned goods",
			ActorID: actorID,
		}).Return(&salesapp.SaleResponse{ID: saleID, Status: sales.SaleStatusCancelled}, nil)

		w := call{
			method: http.MethodPost,
			target: "/api/v1/sales/" + saleID.String() + "/cancel",
			body:   `{"reason":"customer returned goods"}`,
			userID: actorID,
		}.do(engine)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var sale salesapp.SaleResponse
		decode(t, w, &sale)
		assert.Equal(t, sales.SaleStatusCancelled, sale.Status)
		svc.AssertExpectations(t)
	})

	t.Run("blank reason", func(t *testing.T) {
		svc, h := setupSaleHandler()
		engine := newTestEngine(h.Routes())

		w := call{
			method: http.MethodPost,
			target: "/api/v1/sales/" + saleID.String() + "/cancel",
			body:   `{"reason":"   "}`,
			userID: actorID,
		}.do(engine)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already cancelled is a conflict", func(t *testing.T) {
		svc, h := setupSaleHandler()
		engine := newTestEngine(h.Routes())
		svc.On("Cancel", mock.Anything, saleID, mock.Anything).
			Return(nil, shared.InvalidTransition("sale", sales.SaleStatusCancelled, sales.SaleStatusCancelled))

		w := call{
			method: http.MethodPost,
			target: "/api/v1/sales/" + saleID.String() + "/cancel",
			body:   `{"reason":"duplicate"}`,
			userID: actorID,
		}.do(engine)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidState, errorCodeOf(t, w))
	})
}

func TestSaleHandler_Get(t *testing.T) {
	svc, h := setupSaleHandler()
	engine := newTestEngine(h.Routes())
	saleID := uuid.New()

	svc.On("GetByID", mock.Anything, saleID).Return(&salesapp.SaleResponse{ID: saleID}, nil)
	svc.On("GetByInvoiceNumber", mock.Anything, "INV-BKK01-20240309-0001").
		Return(nil, shared.NotFound("sale", "INV-BKK01-20240309-0001"))

	w := call{method: http.MethodGet, target: "/api/v1/sales/" + saleID.String()}.do(engine)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call{method: http.MethodGet, target: "/api/v1/sales/not-a-uuid"}.do(engine)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call{method: http.MethodGet, target: "/api/v1/sales/invoices/INV-BKK01-20240309-0001"}.do(engine)
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}

func TestSaleHandler_List(t *testing.T) {
	svc, h := setupSaleHandler()
	engine := newTestEngine(h.Routes())
	branchID := uuid.New()

	svc.On("List", mock.Anything, mock.MatchedBy(func(f salesapp.SaleListFilter) bool {
		return f.BranchID != nil && *f.BranchID == branchID &&
			f.Status == sales.SaleStatusCancelled &&
			f.From != nil && f.From.Format("2006-01-02") == "2024-03-01" &&
			f.PageSize == 10
	})).Return([]salesapp.SaleListItemResponse{{ID: uuid.New()}}, int64(11), nil)

	w := call{
		method: http.MethodGet,
		target: "/api/v1/sales?branch_id=" + branchID.String() + "&status=CANCELLED&from=2024-03-01&page_size=10",
	}.do(engine)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(11), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	svc.AssertExpectations(t)

	w = call{method: http.MethodGet, target: "/api/v1/sales?status=VOID"}.do(engine)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
