package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IngredientRepository defines the interface for ingredient persistence
type IngredientRepository interface {
	// FindByID finds an ingredient by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Ingredient, error)

	// FindByIDForUpdate finds an ingredient and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Ingredient, error)

	// Save creates or updates an ingredient
	Save(ctx context.Context, ingredient *Ingredient) error

	// UpdateLastPrice sets the most recently observed unit cost
	UpdateLastPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error

	// IncrementStock adds a signed delta to stock_quantity
	IncrementStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error

	// SetStock overwrites stock_quantity
	SetStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error
}

// MovementQuery shapes a movement listing. Unknown sort fields fall back to movement_date.
type MovementQuery struct {
	Limit     int
	SortBy    string
	SortOrder string
}

// StockMovementRepository is append-only: there is no update or delete
type StockMovementRepository interface {
	// Create appends a movement
	Create(ctx context.Context, movement *StockMovement) error

	// FindByIngredient lists movements of an ingredient, newest first unless q says otherwise
	FindByIngredient(ctx context.Context, ingredientID uuid.UUID, q MovementQuery) ([]StockMovement, error)

	// SumByIngredient returns the net signed quantity of all movements of an ingredient
	SumByIngredient(ctx context.Context, ingredientID uuid.UUID) (decimal.Decimal, error)
}

// StockAdjustmentRepository defines the interface for stock adjustment persistence
type StockAdjustmentRepository interface {
	// Create inserts the adjustment header
	Create(ctx context.Context, adjustment *StockAdjustment) error

	// CreateItems inserts adjustment items
	CreateItems(ctx context.Context, items []StockAdjustmentItem) error

	// FindByID loads an adjustment with its items
	FindByID(ctx context.Context, id uuid.UUID) (*StockAdjustment, error)
}
