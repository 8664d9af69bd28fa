package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	transferapp "github.com/thaipharm/backend/internal/application/transfer"
	"github.com/thaipharm/backend/internal/interfaces/http/middleware"
	"github.com/thaipharm/backend/internal/interfaces/http/router"
)

// TransferService is the part of the transfer application used over HTTP
type TransferService interface {
	Request(ctx context.Context, req transferapp.RequestTransferRequest) (*transferapp.TransferResponse, error)
	Ship(ctx context.Context, id, actorID uuid.UUID) (*transferapp.TransferResponse, error)
	Receive(ctx context.Context, id uuid.UUID, req transferapp.BranchActionRequest) (*transferapp.TransferResponse, error)
	Reject(ctx context.Context, id uuid.UUID, req transferapp.BranchActionRequest) (*transferapp.TransferResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req transferapp.CancelTransferRequest) (*transferapp.TransferResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*transferapp.TransferResponse, error)
	List(ctx context.Context, filter transferapp.TransferListFilter) ([]transferapp.TransferResponse, int64, error)
	ListInTransit(ctx context.Context, branchID *uuid.UUID) ([]transferapp.TransferResponse, error)
}

// TransferHandler serves the inter-branch transfer workflow
type TransferHandler struct {
	BaseHandler
	transfers TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transfers TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Routes returns the transfer route group
func (h *TransferHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("transfers", "/transfers").
		POST("", h.Request).
		GET("", h.List).
		GET("/in-transit", h.ListInTransit).
		GET("/:id", h.GetByID).
		POST("/:id/ship", h.Ship).
		POST("/:id/receive", h.Receive).
		POST("/:id/reject", h.Reject).
		POST("/:id/cancel", h.Cancel)
}

// Request godoc
// @Summary      Request a transfer
// @Description  Records what the target branch needs from the source branch. Stock does not move until shipping.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body transferapp.RequestTransferRequest true "Transfer"
// @Success      201 {object} dto.Response{data=transferapp.TransferResponse}
// @Failure      400 {object} dto.Response
// @Router       /transfers [post]
func (h *TransferHandler) Request(c *gin.Context) {
	var req transferapp.RequestTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	req.RequestedBy = actorID

	resp, err := h.transfers.Request(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Ship godoc
// @Summary      Ship a pending transfer
// @Description  Deducts the source branch oldest lines first and records the batch manifest
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} dto.Response{data=transferapp.TransferResponse}
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.transfers.Ship(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Receive godoc
// @Summary      Receive a shipped transfer
// @Description  Only the target branch may receive. Stock is credited from the shipment manifest.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Param        request body transferapp.BranchActionRequest false "Acting branch"
// @Success      200 {object} dto.Response{data=transferapp.TransferResponse}
// @Failure      422 {object} dto.Response
// @Router       /transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *gin.Context) {
	h.settle(c, h.transfers.Receive)
}

// Reject godoc
// @Summary      Reject a shipped transfer
// @Description  The target branch refuses the shipment; stock returns to the source branch batches it left.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Param        request body transferapp.BranchActionRequest false "Acting branch and reason"
// @Success      200 {object} dto.Response{data=transferapp.TransferResponse}
// @Failure      422 {object} dto.Response
// @Router       /transfers/{id}/reject [post]
func (h *TransferHandler) Reject(c *gin.Context) {
	h.settle(c, h.transfers.Reject)
}

type settleFunc func(ctx context.Context, id uuid.UUID, req transferapp.BranchActionRequest) (*transferapp.TransferResponse, error)

func (h *TransferHandler) settle(c *gin.Context, action settleFunc) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req transferapp.BranchActionRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	if req.BranchID == uuid.Nil {
		branchID, ok := middleware.GetBranchID(c)
		if !ok {
			h.BadRequest(c, "branch_id is required")
			return
		}
		req.BranchID = branchID
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	req.ActorID = actorID

	resp, err := action(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Cancel a pending transfer
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Param        request body transferapp.CancelTransferRequest true "Reason"
// @Success      200 {object} dto.Response{data=transferapp.TransferResponse}
// @Failure      409 {object} dto.Response
// @Router       /transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req transferapp.CancelTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}
	req.ActorID = actorID

	resp, err := h.transfers.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID godoc
// @Summary      Get a transfer
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} dto.Response{data=transferapp.TransferResponse}
// @Failure      404 {object} dto.Response
// @Router       /transfers/{id} [get]
func (h *TransferHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.transfers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @Summary      List transfers
// @Tags         transfers
// @Produce      json
// @Param        branch_id query string false "Source or target branch" format(uuid)
// @Param        status query string false "Status"
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]transferapp.TransferResponse}
// @Router       /transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	var filter transferapp.TransferListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"branch_id": &filter.BranchID}) {
		return
	}

	items, total, err := h.transfers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// ListInTransit godoc
// @Summary      List shipped transfers not yet received
// @Description  Their quantities are counted in neither branch's stock
// @Tags         transfers
// @Produce      json
// @Param        branch_id query string false "Source or target branch" format(uuid)
// @Success      200 {object} dto.Response{data=[]transferapp.TransferResponse}
// @Router       /transfers/in-transit [get]
func (h *TransferHandler) ListInTransit(c *gin.Context) {
	var branchID *uuid.UUID
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"branch_id": &branchID}) {
		return
	}

	items, err := h.transfers.ListInTransit(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
