package inventory

import (
	"time"

	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentType categorizes a stock adjustment
type AdjustmentType string

const (
	AdjustmentTypePhysicalCount AdjustmentType = "physical_count"
	AdjustmentTypeWastage       AdjustmentType = "wastage"
	AdjustmentTypeDamage        AdjustmentType = "damage"
	AdjustmentTypeCorrection    AdjustmentType = "correction"
)

// IsValid returns true if the adjustment type is valid
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentTypePhysicalCount, AdjustmentTypeWastage, AdjustmentTypeDamage, AdjustmentTypeCorrection:
		return true
	}
	return false
}

// StockAdjustment groups per-ingredient corrections made in one user action
type StockAdjustment struct {
	shared.BaseEntity
	AdjustmentNumber string
	AdjustmentType   AdjustmentType
	AdjustmentDate   time.Time
	Notes            string
	Items            []StockAdjustmentItem
}

// StockAdjustmentItem snapshots the recorded and the counted quantity of one ingredient
type StockAdjustmentItem struct {
	ID             uuid.UUID
	AdjustmentID   uuid.UUID
	IngredientID   uuid.UUID
	SystemQuantity decimal.Decimal
	ActualQuantity decimal.Decimal
	Remarks        string
}

// NewStockAdjustment creates an adjustment header without items
func NewStockAdjustment(adjustmentType AdjustmentType, adjustmentDate time.Time, notes string) (*StockAdjustment, error) {
	if !adjustmentType.IsValid() {
		return nil, shared.NewValidationError("adjustment_type", "Invalid adjustment type")
	}
	if adjustmentDate.IsZero() {
		return nil, shared.NewValidationError("adjustment_date", "Adjustment date is required")
	}
	return &StockAdjustment{
		BaseEntity:     shared.NewBaseEntity(),
		AdjustmentType: adjustmentType,
		AdjustmentDate: adjustmentDate,
		Notes:          notes,
	}, nil
}

// AddItem appends a counted line
func (a *StockAdjustment) AddItem(ingredientID uuid.UUID, systemQty, actualQty decimal.Decimal, remarks string) (*StockAdjustmentItem, error) {
	if ingredientID == uuid.Nil {
		return nil, shared.NewValidationError("ingredient_id", "Ingredient ID is required")
	}
	if systemQty.IsNegative() {
		return nil, shared.NewValidationError("system_quantity", "System quantity cannot be negative")
	}
	if actualQty.IsNegative() {
		return nil, shared.NewValidationError("actual_quantity", "Actual quantity cannot be negative")
	}
	for _, existing := range a.Items {
		if existing.IngredientID == ingredientID {
			return nil, shared.NewValidationError("ingredient_id", "Ingredient appears more than once in the adjustment")
		}
	}

	item := StockAdjustmentItem{
		ID:             uuid.New(),
		AdjustmentID:   a.ID,
		IngredientID:   ingredientID,
		SystemQuantity: systemQty,
		ActualQuantity: actualQty,
		Remarks:        remarks,
	}
	a.Items = append(a.Items, item)
	return &a.Items[len(a.Items)-1], nil
}

// Variance returns actual minus system quantity
func (i *StockAdjustmentItem) Variance() decimal.Decimal {
	return i.ActualQuantity.Sub(i.SystemQuantity)
}

// HasVariance reports whether the count differs from the record
func (i *StockAdjustmentItem) HasVariance() bool {
	return !i.Variance().IsZero()
}
