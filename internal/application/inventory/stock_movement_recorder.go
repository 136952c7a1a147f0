package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovementRecorder is the single writer of Ingredient.StockQuantity.
// Every change is appended to the movement ledger and applied to stock through
// the same TransactionalRepositories, so both land in one transaction.
type StockMovementRecorder struct{}

// NewStockMovementRecorder creates a StockMovementRecorder
func NewStockMovementRecorder() *StockMovementRecorder {
	return &StockMovementRecorder{}
}

// Record appends the movement and adds its signed quantity to the ingredient's stock
func (r *StockMovementRecorder) Record(ctx context.Context, repos TransactionalRepositories, movement *inventory.StockMovement) error {
	if movement == nil {
		return shared.NewValidationError("movement", "Stock movement is required")
	}
	if err := repos.Movements().Create(ctx, movement); err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	if err := repos.Ingredients().IncrementStock(ctx, movement.IngredientID, movement.Quantity); err != nil {
		return stockWriteError(err)
	}
	return nil
}

// StockReceipt describes goods arriving for one ingredient
type StockReceipt struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	ReferenceID  uuid.UUID
	Remarks      string
	Date         time.Time
}

// RecordReceipt records an inbound movement referencing a goods receipt
func (r *StockMovementRecorder) RecordReceipt(ctx context.Context, repos TransactionalRepositories, receipt StockReceipt) (*inventory.StockMovement, error) {
	refID := receipt.ReferenceID
	movement, err := inventory.NewStockMovement(
		receipt.IngredientID,
		inventory.MovementTypeIn,
		receipt.Quantity,
		inventory.ReferenceTypeGRN,
		&refID,
		receipt.UnitCost,
		receipt.Remarks,
		receipt.Date,
	)
	if err != nil {
		return nil, err
	}
	if err := r.Record(ctx, repos, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// StockCount is the outcome of counting one ingredient. Previous is the stock
// read under the row lock, not the figure the counter was shown.
type StockCount struct {
	IngredientID uuid.UUID
	Counted      decimal.Decimal
	Previous     decimal.Decimal
	ReferenceID  uuid.UUID
	Remarks      string
	Date         time.Time
}

// RecordCount overwrites stock with the counted quantity and, when that changes
// stock, appends one adjustment movement carrying Counted - Previous. The
// returned movement is nil when stock is unchanged.
func (r *StockMovementRecorder) RecordCount(ctx context.Context, repos TransactionalRepositories, count StockCount) (*inventory.StockMovement, error) {
	if count.Counted.IsNegative() {
		return nil, shared.NewValidationError("actual_quantity", "Counted quantity cannot be negative")
	}
	if err := repos.Ingredients().SetStock(ctx, count.IngredientID, count.Counted); err != nil {
		return nil, stockWriteError(err)
	}
	change := count.Counted.Sub(count.Previous)
	if change.IsZero() {
		return nil, nil
	}

	refID := count.ReferenceID
	movement, err := inventory.NewStockMovement(
		count.IngredientID,
		inventory.MovementTypeAdjustment,
		change,
		inventory.ReferenceTypeStockAdjustment,
		&refID,
		decimal.Zero,
		count.Remarks,
		count.Date,
	)
	if err != nil {
		return nil, err
	}
	if err := repos.Movements().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("append stock movement: %w", err)
	}
	return movement, nil
}

func stockWriteError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError("ingredient")
	}
	return fmt.Errorf("update ingredient stock: %w", err)
}
