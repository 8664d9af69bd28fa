package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appinventory "github.com/thaipharm/backend/internal/application/inventory"
	appsales "github.com/thaipharm/backend/internal/application/sales"
	apptransfer "github.com/thaipharm/backend/internal/application/transfer"
	"github.com/thaipharm/backend/internal/domain/sales"
	"github.com/thaipharm/backend/internal/domain/transfer"
	"github.com/thaipharm/backend/internal/interfaces/http/dto"
	"github.com/thaipharm/backend/internal/interfaces/http/handler"
	"github.com/thaipharm/backend/internal/interfaces/http/middleware"
	"github.com/thaipharm/backend/internal/interfaces/http/router"
	"github.com/thaipharm/backend/tests/testutil"
	"go.uber.org/zap"
)

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	user   uuid.UUID
}

func newAPI(t *testing.T, s *stack) *apiClient {
	t.Helper()

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(middleware.Authenticate(middleware.AuthConfig{Logger: zap.NewNop()})),
	)
	r.Register(handler.NewInventoryHandler(s.inventory, s.expiry).Routes()).
		Register(handler.NewSaleHandler(s.sales).Routes()).
		Register(handler.NewTransferHandler(s.transfers).Routes()).
		Register(handler.NewOemHandler(s.oem).Routes())
	r.Setup()

	return &apiClient{t: t, engine: engine, user: uuid.New()}
}

// do sends body on behalf of the client's user working at branchID
func (a *apiClient) do(method, path string, branchID uuid.UUID, body any, headers ...string) (int, testutil.Envelope) {
	a.t.Helper()

	headers = append(headers,
		middleware.UserIDHeader, a.user.String(),
		middleware.BranchIDHeader, branchID.String())
	return testutil.ServeJSON(a.t, a.engine, method, "/api/v1"+path, body, headers...)
}

func TestAPI_SaleLifecycle_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := newStack(t, NewSharedTestDB(t).DB)
	api := newAPI(t, s)
	branch := s.branch(t)
	product := s.product(t, false, testutil.WithSellingPrice("100"))

	code, env := api.do(http.MethodPost, "/inventory/receipts", branch.ID, map[string]any{
		"branch_id":    branch.ID,
		"product_id":   product.ID,
		"batch_number": "LOT-API-1",
		"expiry_date":  time.Now().AddDate(1, 0, 0),
		"quantity":     10,
		"unit_cost":    "40",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	receipt := testutil.DecodeData[appinventory.ReceiveStockResponse](t, env)
	assert.Equal(t, int64(10), receipt.Line.Quantity)

	checkout := map[string]any{
		"branch_id":      branch.ID,
		"items":          []map[string]any{{"product_id": product.ID, "quantity": 2}},
		"payment_method": sales.PaymentMethodCash,
		"amount_paid":    "300",
	}
	key := uuid.NewString()
	code, env = api.do(http.MethodPost, "/sales", branch.ID, checkout, "Idempotency-Key", key)
	require.Equal(t, http.StatusCreated, code, env.Error)
	sale := testutil.DecodeData[appsales.SaleResponse](t, env)
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("214")))
	assert.True(t, sale.ChangeAmount.Equal(decimal.RequireFromString("86")))

	_, env = api.do(http.MethodPost, "/sales", branch.ID, checkout, "Idempotency-Key", key)
	replay := testutil.DecodeData[appsales.SaleResponse](t, env)
	assert.Equal(t, sale.ID, replay.ID, "a repeated key returns the original sale")

	code, env = api.do(http.MethodGet, "/inventory/branches/"+branch.ID.String()+"/products/"+product.ID.String()+"/stock", branch.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(8), testutil.DecodeData[appinventory.StockSummaryResponse](t, env).TotalQuantity)

	code, env = api.do(http.MethodGet, "/sales/invoices/"+sale.InvoiceNumber, branch.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, sale.ID, testutil.DecodeData[appsales.SaleResponse](t, env).ID)

	code, env = api.do(http.MethodPost, "/sales/"+sale.ID.String()+"/cancel", branch.ID, map[string]any{"reason": "wrong item"})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, sales.SaleStatusCancelled, testutil.DecodeData[appsales.SaleResponse](t, env).Status)

	code, env = api.do(http.MethodPost, "/sales/"+sale.ID.String()+"/cancel", branch.ID, map[string]any{"reason": "again"})
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeInvalidState, env.Error.Code)

	checkout["items"] = []map[string]any{{"product_id": product.ID, "quantity": 50}}
	checkout["amount_paid"] = "10000"
	code, env = api.do(http.MethodPost, "/sales", branch.ID, checkout)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeInsufficientStock, env.Error.Code)
}

func TestAPI_TransferLifecycle_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := newStack(t, NewSharedTestDB(t).DB)
	api := newAPI(t, s)
	source, target := s.branch(t), s.branch(t)
	product := s.product(t, false)
	s.receive(t, source.ID, product.ID, "LOT-TRF", 6, 365)

	code, env := api.do(http.MethodPost, "/transfers", source.ID, map[string]any{
		"source_branch_id": source.ID,
		"target_branch_id": target.ID,
		"items":            []map[string]any{{"product_id": product.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	requested := testutil.DecodeData[apptransfer.TransferResponse](t, env)

	code, env = api.do(http.MethodPost, "/transfers/"+requested.ID.String()+"/ship", source.ID, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, int64(4), testutil.DecodeData[apptransfer.TransferResponse](t, env).InTransitQuantity)

	code, env = api.do(http.MethodGet, "/transfers/in-transit?branch_id="+target.ID.String(), target.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, testutil.DecodeData[[]apptransfer.TransferResponse](t, env), 1)

	code, env = api.do(http.MethodPost, "/transfers/"+requested.ID.String()+"/receive", source.ID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code, "only the target branch receives")
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeBusinessRule, env.Error.Code)

	code, env = api.do(http.MethodPost, "/transfers/"+requested.ID.String()+"/receive", target.ID, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, transfer.TransferStatusCompleted, testutil.DecodeData[apptransfer.TransferResponse](t, env).Status)

	code, env = api.do(http.MethodGet, "/inventory/branches/"+target.ID.String()+"/products/"+product.ID.String()+"/stock", target.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(4), testutil.DecodeData[appinventory.StockSummaryResponse](t, env).TotalQuantity)
}
