package inventory

import (
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Ingredient is a stocked raw material. StockQuantity is authoritative and only
// changes through the stock movement recorder.
type Ingredient struct {
	shared.BaseEntity
	Name          string
	Unit          string
	StockQuantity decimal.Decimal
	LastPrice     decimal.Decimal
	ReorderLevel  decimal.Decimal
}

// NewIngredient creates ingredient master data with zero stock
func NewIngredient(name, unit string, reorderLevel decimal.Decimal) (*Ingredient, error) {
	if name == "" {
		return nil, shared.NewValidationError("name", "Ingredient name is required")
	}
	if unit == "" {
		return nil, shared.NewValidationError("unit", "Ingredient unit is required")
	}
	if reorderLevel.IsNegative() {
		return nil, shared.NewValidationError("reorder_level", "Reorder level cannot be negative")
	}
	return &Ingredient{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		Unit:          unit,
		StockQuantity: decimal.Zero,
		LastPrice:     decimal.Zero,
		ReorderLevel:  reorderLevel,
	}, nil
}

// IsBelowReorderLevel reports whether stock has fallen to the reorder level
func (i *Ingredient) IsBelowReorderLevel() bool {
	return i.ReorderLevel.IsPositive() && i.StockQuantity.LessThanOrEqual(i.ReorderLevel)
}
