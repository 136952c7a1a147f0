package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/cafe/backend/internal/application/inventory"
)

// StockAdjustmentService is the part of the adjustment engine the HTTP layer uses
type StockAdjustmentService interface {
	AdjustStock(ctx context.Context, req inventoryapp.AdjustStockRequest) (*inventoryapp.StockAdjustmentResponse, error)
}

// IngredientQueryService is the ingredient read side
type IngredientQueryService interface {
	GetIngredient(ctx context.Context, id uuid.UUID) (*inventoryapp.IngredientResponse, error)
	ListMovements(ctx context.Context, ingredientID uuid.UUID, filter inventoryapp.MovementListFilter) ([]inventoryapp.StockMovementResponse, error)
}

// InventoryHandler serves /stock-adjustments and /ingredients
type InventoryHandler struct {
	BaseHandler
	adjustments StockAdjustmentService
	ingredients IngredientQueryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(adjustments StockAdjustmentService, ingredients IngredientQueryService) *InventoryHandler {
	return &InventoryHandler{adjustments: adjustments, ingredients: ingredients}
}

// AdjustStock handles POST /stock-adjustments
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.adjustments.AdjustStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetIngredient handles GET /ingredients/:id
func (h *InventoryHandler) GetIngredient(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.ingredients.GetIngredient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMovements handles GET /ingredients/:id/movements?limit=
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var filter inventoryapp.MovementListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	resp, err := h.ingredients.ListMovements(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
