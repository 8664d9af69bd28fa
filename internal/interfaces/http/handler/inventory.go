package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/thaipharm/backend/internal/application/inventory"
	"github.com/thaipharm/backend/internal/interfaces/http/middleware"
	"github.com/thaipharm/backend/internal/interfaces/http/router"
)

// Roles allowed to correct stock by hand
const (
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// InventoryService is the part of the inventory application used over HTTP
type InventoryService interface {
	ReceiveStock(ctx context.Context, req inventoryapp.ReceiveStockRequest) (*inventoryapp.ReceiveStockResponse, error)
	AdjustStock(ctx context.Context, req inventoryapp.AdjustStockRequest) (*inventoryapp.StockMovementResponse, error)
	GetStock(ctx context.Context, branchID, productID uuid.UUID) (*inventoryapp.StockSummaryResponse, error)
	ListLines(ctx context.Context, branchID uuid.UUID, filter inventoryapp.LineListFilter) ([]inventoryapp.InventoryLineResponse, int64, error)
	ListMovements(ctx context.Context, filter inventoryapp.MovementListFilter) ([]inventoryapp.StockMovementResponse, int64, error)
	GetBatch(ctx context.Context, id uuid.UUID) (*inventoryapp.BatchResponse, error)
	ListBatches(ctx context.Context, productID uuid.UUID, filter inventoryapp.BatchListFilter) ([]inventoryapp.BatchResponse, error)
}

// BatchExpirer deactivates batches past their expiry date
type BatchExpirer interface {
	DeactivateExpired(ctx context.Context) (*inventoryapp.ExpiryStats, error)
}

// InventoryHandler serves receipts, adjustments and ledger queries
type InventoryHandler struct {
	BaseHandler
	inventory InventoryService
	expiry    BatchExpirer
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventory InventoryService, expiry BatchExpirer) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, expiry: expiry}
}

// Routes returns the inventory route group
func (h *InventoryHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("inventory", "/inventory")
	g.POST("/receipts", h.ReceiveStock)
	g.GET("/movements", h.ListMovements)
	g.GET("/branches/:branch_id/lines", h.ListLines)
	g.GET("/branches/:branch_id/products/:product_id/stock", h.GetStock)
	g.GET("/products/:product_id/batches", h.ListBatches)
	g.GET("/batches/:id", h.GetBatch)

	restricted := middleware.RequireRole(RoleManager, RoleAdmin)
	g.POST("/adjustments", restricted, h.AdjustStock)
	g.POST("/batches/expire", restricted, h.ExpireBatches)
	return g
}

// ReceiveStock godoc
// @Summary      Receive stock into a branch
// @Description  Creates the batch on first receipt and credits the VAT or non-VAT ledger by product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ReceiveStockRequest true "Receipt"
// @Success      201 {object} dto.Response{data=inventoryapp.ReceiveStockResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /inventory/receipts [post]
func (h *InventoryHandler) ReceiveStock(c *gin.Context) {
	var req inventoryapp.ReceiveStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	req.ActorID = actorID

	resp, err := h.inventory.ReceiveStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// AdjustStock godoc
// @Summary      Adjust one inventory line
// @Description  ADJUSTMENT_IN adds to an existing line; ADJUSTMENT_OUT, EXPIRED and DAMAGED remove stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.AdjustStockRequest true "Adjustment"
// @Success      201 {object} dto.Response{data=inventoryapp.StockMovementResponse}
// @Failure      422 {object} dto.Response
// @Router       /inventory/adjustments [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	req.ActorID = actorID

	resp, err := h.inventory.AdjustStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetStock godoc
// @Summary      Stock of a product at a branch
// @Tags         inventory
// @Produce      json
// @Param        branch_id path string true "Branch ID" format(uuid)
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.StockSummaryResponse}
// @Router       /inventory/branches/{branch_id}/products/{product_id}/stock [get]
func (h *InventoryHandler) GetStock(c *gin.Context) {
	branchID, ok := h.pathUUID(c, "branch_id")
	if !ok {
		return
	}
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}

	resp, err := h.inventory.GetStock(c.Request.Context(), branchID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListLines godoc
// @Summary      List the inventory lines of a branch
// @Tags         inventory
// @Produce      json
// @Param        branch_id path string true "Branch ID" format(uuid)
// @Param        ledger query string false "VAT or NON_VAT"
// @Param        in_stock query bool false "Only lines with quantity"
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]inventoryapp.InventoryLineResponse}
// @Router       /inventory/branches/{branch_id}/lines [get]
func (h *InventoryHandler) ListLines(c *gin.Context) {
	branchID, ok := h.pathUUID(c, "branch_id")
	if !ok {
		return
	}
	var filter inventoryapp.LineListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	lines, total, err := h.inventory.ListLines(c.Request.Context(), branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, lines, total, page, pageSize)
}

// ListMovements godoc
// @Summary      Query the stock movement log
// @Tags         inventory
// @Produce      json
// @Param        branch_id query string false "Branch ID" format(uuid)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        batch_id query string false "Batch ID" format(uuid)
// @Param        reference_id query string false "Reference ID" format(uuid)
// @Param        movement_type query string false "Movement type"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date, inclusive (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockMovementResponse}
// @Router       /inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filter inventoryapp.MovementListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"branch_id":    &filter.BranchID,
		"product_id":   &filter.ProductID,
		"batch_id":     &filter.BatchID,
		"reference_id": &filter.ReferenceID,
	}) {
		return
	}

	movements, total, err := h.inventory.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, movements, total, page, pageSize)
}

// GetBatch godoc
// @Summary      Get a batch
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Batch ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.BatchResponse}
// @Failure      404 {object} dto.Response
// @Router       /inventory/batches/{id} [get]
func (h *InventoryHandler) GetBatch(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.inventory.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListBatches godoc
// @Summary      List the batches of a product
// @Tags         inventory
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        active query bool false "Filter by active flag"
// @Success      200 {object} dto.Response{data=[]inventoryapp.BatchResponse}
// @Router       /inventory/products/{product_id}/batches [get]
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}
	var filter inventoryapp.BatchListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	batches, err := h.inventory.ListBatches(c.Request.Context(), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// ExpireBatches godoc
// @Summary      Deactivate expired batches now
// @Description  Runs the same sweep as the nightly batch expiry job
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=inventoryapp.ExpiryStats}
// @Router       /inventory/batches/expire [post]
func (h *InventoryHandler) ExpireBatches(c *gin.Context) {
	stats, err := h.expiry.DeactivateExpired(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// pageOf applies the list defaults used by the application services
func pageOf(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}
