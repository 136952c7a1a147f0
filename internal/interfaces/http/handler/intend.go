package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	procurementapp "github.com/cafe/backend/internal/application/procurement"
)

// IntendService is the part of the intend service the HTTP layer uses
type IntendService interface {
	CreateIntend(ctx context.Context, req procurementapp.CreateIntendRequest) (*procurementapp.IntendResponse, error)
	GetIntend(ctx context.Context, intendID uuid.UUID) (*procurementapp.IntendResponse, error)
	RecomputeIntendStatus(ctx context.Context, intendID uuid.UUID) (*procurementapp.IntendResponse, error)
	DeleteIntendItem(ctx context.Context, intendID, itemID uuid.UUID) (*procurementapp.IntendResponse, error)
}

// IntendHandler serves /intends
type IntendHandler struct {
	BaseHandler
	service IntendService
}

// NewIntendHandler creates a new IntendHandler
func NewIntendHandler(service IntendService) *IntendHandler {
	return &IntendHandler{service: service}
}

// Create handles POST /intends
func (h *IntendHandler) Create(c *gin.Context) {
	var req procurementapp.CreateIntendRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.service.CreateIntend(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /intends/:id
func (h *IntendHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.GetIntend(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Recompute handles POST /intends/:id/recompute
func (h *IntendHandler) Recompute(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.RecomputeIntendStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteItem handles DELETE /intends/:id/items/:itemId
func (h *IntendHandler) DeleteItem(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.PathUUID(c, "itemId")
	if !ok {
		return
	}
	resp, err := h.service.DeleteIntendItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
