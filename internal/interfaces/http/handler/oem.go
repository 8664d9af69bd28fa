package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	oemapp "github.com/thaipharm/backend/internal/application/oem"
	"github.com/thaipharm/backend/internal/interfaces/http/router"
)

// OemService is the part of the OEM application used over HTTP
type OemService interface {
	CreateOrder(ctx context.Context, req oemapp.CreateOrderRequest) (*oemapp.OrderResponse, error)
	Confirm(ctx context.Context, id uuid.UUID) (*oemapp.OrderResponse, error)
	StartProduction(ctx context.Context, id uuid.UUID) (*oemapp.OrderResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req oemapp.CancelOrderRequest) (*oemapp.OrderResponse, error)
	Receive(ctx context.Context, orderID uuid.UUID, req oemapp.ReceiveGoodsRequest) (*oemapp.GoodsReceivingResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*oemapp.OrderResponse, error)
	ListOrders(ctx context.Context, filter oemapp.OrderListFilter) ([]oemapp.OrderResponse, int64, error)
	ListReceivings(ctx context.Context, orderID uuid.UUID) ([]oemapp.GoodsReceivingResponse, error)
	GetReceiving(ctx context.Context, id uuid.UUID) (*oemapp.GoodsReceivingResponse, error)
}

// OemHandler serves OEM production orders and their goods receivings
type OemHandler struct {
	BaseHandler
	oem OemService
}

// NewOemHandler creates a new OemHandler
func NewOemHandler(oem OemService) *OemHandler {
	return &OemHandler{oem: oem}
}

// Routes returns the OEM route group
func (h *OemHandler) Routes() *router.DomainGroup {
	g := router.NewDomainGroup("oem", "/oem")
	g.Group("orders", "/orders").
		POST("", h.CreateOrder).
		GET("", h.ListOrders).
		GET("/:id", h.GetOrder).
		POST("/:id/confirm", h.Confirm).
		POST("/:id/start-production", h.StartProduction).
		POST("/:id/cancel", h.Cancel).
		POST("/:id/receivings", h.Receive).
		GET("/:id/receivings", h.ListReceivings)
	g.Group("receivings", "/receivings").
		GET("/:id", h.GetReceiving)
	return g
}

// CreateOrder godoc
// @Summary      Place an OEM production order
// @Tags         oem
// @Accept       json
// @Produce      json
// @Param        request body oemapp.CreateOrderRequest true "Order"
// @Success      201 {object} dto.Response{data=oemapp.OrderResponse}
// @Failure      422 {object} dto.Response "Supplier is not an OEM"
// @Router       /oem/orders [post]
func (h *OemHandler) CreateOrder(c *gin.Context) {
	var req oemapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	req.CreatedBy = actorID

	resp, err := h.oem.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Confirm godoc
// @Summary      Confirm a draft order
// @Tags         oem
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=oemapp.OrderResponse}
// @Failure      409 {object} dto.Response
// @Router       /oem/orders/{id}/confirm [post]
func (h *OemHandler) Confirm(c *gin.Context) {
	h.transition(c, h.oem.Confirm)
}

// StartProduction godoc
// @Summary      Mark a confirmed order as in production
// @Tags         oem
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=oemapp.OrderResponse}
// @Failure      409 {object} dto.Response
// @Router       /oem/orders/{id}/start-production [post]
func (h *OemHandler) StartProduction(c *gin.Context) {
	h.transition(c, h.oem.StartProduction)
}

func (h *OemHandler) transition(c *gin.Context, change func(context.Context, uuid.UUID) (*oemapp.OrderResponse, error)) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.actor(c); !ok {
		return
	}

	resp, err := change(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Cancel an order that has received nothing
// @Tags         oem
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body oemapp.CancelOrderRequest true "Reason"
// @Success      200 {object} dto.Response{data=oemapp.OrderResponse}
// @Failure      409 {object} dto.Response
// @Router       /oem/orders/{id}/cancel [post]
func (h *OemHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req oemapp.CancelOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if _, ok := h.actor(c); !ok {
		return
	}

	resp, err := h.oem.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Receive godoc
// @Summary      Receive goods against an order
// @Description  Accepted quantities are stocked into batches of the receiving branch; rejected ones are only recorded
// @Tags         oem
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body oemapp.ReceiveGoodsRequest true "Delivery"
// @Success      201 {object} dto.Response{data=oemapp.GoodsReceivingResponse}
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /oem/orders/{id}/receivings [post]
func (h *OemHandler) Receive(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req oemapp.ReceiveGoodsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	req.ReceivedBy = actorID

	resp, err := h.oem.Receive(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetOrder godoc
// @Summary      Get an OEM order
// @Tags         oem
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=oemapp.OrderResponse}
// @Failure      404 {object} dto.Response
// @Router       /oem/orders/{id} [get]
func (h *OemHandler) GetOrder(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.oem.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListOrders godoc
// @Summary      List OEM orders
// @Tags         oem
// @Produce      json
// @Param        branch_id query string false "Receiving branch" format(uuid)
// @Param        supplier_id query string false "Supplier" format(uuid)
// @Param        status query string false "Status"
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]oemapp.OrderResponse}
// @Router       /oem/orders [get]
func (h *OemHandler) ListOrders(c *gin.Context) {
	var filter oemapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"branch_id":   &filter.BranchID,
		"supplier_id": &filter.SupplierID,
	}) {
		return
	}

	items, total, err := h.oem.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// ListReceivings godoc
// @Summary      List the goods receivings of an order
// @Tags         oem
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]oemapp.GoodsReceivingResponse}
// @Router       /oem/orders/{id}/receivings [get]
func (h *OemHandler) ListReceivings(c *gin.Context) {
	orderID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	items, err := h.oem.ListReceivings(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetReceiving godoc
// @Summary      Get a goods receiving
// @Tags         oem
// @Produce      json
// @Param        id path string true "Goods receiving ID" format(uuid)
// @Success      200 {object} dto.Response{data=oemapp.GoodsReceivingResponse}
// @Failure      404 {object} dto.Response
// @Router       /oem/receivings/{id} [get]
func (h *OemHandler) GetReceiving(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.oem.GetReceiving(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
