package inventory

import (
	"time"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Stock Adjustment DTOs ====================

// AdjustStockRequest represents a request to record a physical count or correction
type AdjustStockRequest struct {
	AdjustmentType string                 `json:"adjustment_type" binding:"required,oneof=physical_count wastage damage correction"`
	AdjustmentDate time.Time              `json:"adjustment_date" binding:"required"`
	Notes          string                 `json:"notes" binding:"max=500"`
	Items          []AdjustStockItemInput `json:"items" binding:"required,min=1,dive"`
}

// AdjustStockItemInput represents one counted ingredient
type AdjustStockItemInput struct {
	IngredientID   uuid.UUID       `json:"ingredient_id" binding:"required"`
	SystemQuantity decimal.Decimal `json:"system_quantity"`
	ActualQuantity decimal.Decimal `json:"actual_quantity" binding:"decimal_gte0"`
	Remarks        string          `json:"remarks" binding:"max=200"`
}

// StockAdjustmentResponse represents a recorded stock adjustment
type StockAdjustmentResponse struct {
	ID               uuid.UUID                     `json:"id"`
	AdjustmentNumber string                        `json:"adjustment_number"`
	AdjustmentType   string                        `json:"adjustment_type"`
	AdjustmentDate   time.Time                     `json:"adjustment_date"`
	Notes            string                        `json:"notes,omitempty"`
	Items            []StockAdjustmentItemResponse `json:"items"`
	Movements        []StockMovementResponse       `json:"movements"`
	CreatedAt        time.Time                     `json:"created_at"`
}

// StockAdjustmentItemResponse represents one adjustment line with its variance
type StockAdjustmentItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	SystemQuantity decimal.Decimal `json:"system_quantity"`
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Variance       decimal.Decimal `json:"variance"`
	Remarks        string          `json:"remarks,omitempty"`
}

// ==================== Ingredient DTOs ====================

// IngredientResponse represents an ingredient with its on-hand stock
type IngredientResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	StockQuantity     decimal.Decimal `json:"stock_quantity"`
	LastPrice         decimal.Decimal `json:"last_price"`
	ReorderLevel      decimal.Decimal `json:"reorder_level"`
	BelowReorderLevel bool            `json:"below_reorder_level"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// StockMovementResponse represents one ledger entry
type StockMovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	IngredientID  uuid.UUID       `json:"ingredient_id"`
	MovementType  string          `json:"movement_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Remarks       string          `json:"remarks,omitempty"`
	MovementDate  time.Time       `json:"movement_date"`
}

// MovementListFilter limits and orders a movement listing
type MovementListFilter struct {
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=movement_date created_at quantity"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// ToIngredientResponse converts the domain entity to a response
func ToIngredientResponse(i *inventory.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:                i.ID,
		Name:              i.Name,
		Unit:              i.Unit,
		StockQuantity:     i.StockQuantity,
		LastPrice:         i.LastPrice,
		ReorderLevel:      i.ReorderLevel,
		BelowReorderLevel: i.IsBelowReorderLevel(),
		UpdatedAt:         i.UpdatedAt,
	}
}

// ToStockMovementResponse converts a ledger entry to a response
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		IngredientID:  m.IngredientID,
		MovementType:  m.MovementType.String(),
		Quantity:      m.Quantity,
		ReferenceType: string(m.ReferenceType),
		ReferenceID:   m.ReferenceID,
		UnitCost:      m.UnitCost,
		Remarks:       m.Remarks,
		MovementDate:  m.MovementDate,
	}
}

// ToStockMovementResponses converts a slice of ledger entries
func ToStockMovementResponses(movements []inventory.StockMovement) []StockMovementResponse {
	responses := make([]StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToStockMovementResponse(&movements[i])
	}
	return responses
}

// ToStockAdjustmentResponse converts an adjustment and the movements it produced
func ToStockAdjustmentResponse(a *inventory.StockAdjustment, movements []inventory.StockMovement) StockAdjustmentResponse {
	items := make([]StockAdjustmentItemResponse, len(a.Items))
	for i := range a.Items {
		item := &a.Items[i]
		items[i] = StockAdjustmentItemResponse{
			ID:             item.ID,
			IngredientID:   item.IngredientID,
			SystemQuantity: item.SystemQuantity,
			ActualQuantity: item.ActualQuantity,
			Variance:       item.Variance(),
			Remarks:        item.Remarks,
		}
	}
	return StockAdjustmentResponse{
		ID:               a.ID,
		AdjustmentNumber: a.AdjustmentNumber,
		AdjustmentType:   string(a.AdjustmentType),
		AdjustmentDate:   a.AdjustmentDate,
		Notes:            a.Notes,
		Items:            items,
		Movements:        ToStockMovementResponses(movements),
		CreatedAt:        a.CreatedAt,
	}
}
