package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/thaipharm/backend/internal/application/sales"
	"github.com/thaipharm/backend/internal/interfaces/http/router"
)

// IdempotencyKeyHeader lets a POS client retry a checkout safely
const IdempotencyKeyHeader = "Idempotency-Key"

// SaleService is the part of the sales application used over HTTP
type SaleService interface {
	Checkout(ctx context.Context, req salesapp.CheckoutRequest) (*salesapp.SaleResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req salesapp.CancelSaleRequest) (*salesapp.SaleResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*salesapp.SaleResponse, error)
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*salesapp.SaleResponse, error)
	List(ctx context.Context, filter salesapp.SaleListFilter) ([]salesapp.SaleListItemResponse, int64, error)
}

// SaleHandler serves point-of-sale checkout and cancellation
type SaleHandler struct {
	BaseHandler
	sales SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// Routes returns the sales route group
func (h *SaleHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("sales", "/sales").
		POST("", h.Checkout).
		GET("", h.List).
		GET("/invoices/:invoice_number", h.GetByInvoiceNumber).
		GET("/:id", h.GetByID).
		POST("/:id/cancel", h.Cancel)
}

// Checkout godoc
// @Summary      Check out a sale
// @Description  Deducts stock (FEFO when no batch is given), prices the invoice and records payment.
// @Description  A repeated Idempotency-Key returns the original sale.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body salesapp.CheckoutRequest true "Checkout"
// @Success      201 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /sales [post]
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req salesapp.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		req.IdempotencyKey = key
	}
	cashierID, ok := h.actor(c)
	if !ok {
		return
	}
	req.CashierID = cashierID

	resp, err := h.sales.Checkout(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Cancel godoc
// @Summary      Cancel a sale
// @Description  Returns every line to the batch it was sold from
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body salesapp.CancelSaleRequest true "Reason"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      409 {object} dto.Response
// @Router       /sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req salesapp.CancelSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	req.ActorID = actorID

	resp, err := h.sales.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      404 {object} dto.Response
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.sales.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByInvoiceNumber godoc
// @Summary      Get a sale by invoice number
// @Tags         sales
// @Produce      json
// @Param        invoice_number path string true "Invoice number"
// @Success      200 {object} dto.Response{data=salesapp.SaleResponse}
// @Failure      404 {object} dto.Response
// @Router       /sales/invoices/{invoice_number} [get]
func (h *SaleHandler) GetByInvoiceNumber(c *gin.Context) {
	resp, err := h.sales.GetByInvoiceNumber(c.Request.Context(), c.Param("invoice_number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        branch_id query string false "Branch ID" format(uuid)
// @Param        status query string false "COMPLETED or CANCELLED"
// @Param        from query string false "From date (YYYY-MM-DD)"
// @Param        to query string false "To date, inclusive (YYYY-MM-DD)"
// @Param        search query string false "Invoice number or customer"
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]salesapp.SaleListItemResponse}
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	var filter salesapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"branch_id": &filter.BranchID}) {
		return
	}

	items, total, err := h.sales.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}
