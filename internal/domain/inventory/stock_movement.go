package inventory

import (
	"time"

	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents why an ingredient's stock changed
type MovementType string

const (
	// MovementTypeIn is stock arriving, e.g. a goods receipt
	MovementTypeIn MovementType = "in"
	// MovementTypeOut is stock consumed or removed
	MovementTypeOut MovementType = "out"
	// MovementTypeAdjustment is a correction after a physical count
	MovementTypeAdjustment MovementType = "adjustment"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

// ReferenceType names the document that caused a movement
type ReferenceType string

const (
	ReferenceTypeGRN             ReferenceType = "grn"
	ReferenceTypeStockAdjustment ReferenceType = "stock_adjustment"
	ReferenceTypeSale            ReferenceType = "sale"
	ReferenceTypeManual          ReferenceType = "manual"
)

// StockMovement is an immutable ledger entry. Quantity is signed: positive adds
// stock, negative removes it. Corrections are new movements, never edits.
type StockMovement struct {
	ID            uuid.UUID
	IngredientID  uuid.UUID
	MovementType  MovementType
	Quantity      decimal.Decimal
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
	UnitCost      decimal.Decimal
	Remarks       string
	MovementDate  time.Time
	CreatedAt     time.Time
}

// NewStockMovement validates and creates a ledger entry
func NewStockMovement(
	ingredientID uuid.UUID,
	movementType MovementType,
	quantity decimal.Decimal,
	referenceType ReferenceType,
	referenceID *uuid.UUID,
	unitCost decimal.Decimal,
	remarks string,
	movementDate time.Time,
) (*StockMovement, error) {
	if ingredientID == uuid.Nil {
		return nil, shared.NewValidationError("ingredient_id", "Ingredient ID is required")
	}
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("movement_type", "Invalid movement type")
	}
	if quantity.IsZero() {
		return nil, shared.NewValidationError("quantity", "Movement quantity cannot be zero")
	}
	switch movementType {
	case MovementTypeIn:
		if quantity.IsNegative() {
			return nil, shared.NewValidationError("quantity", "Inbound movement quantity must be positive")
		}
	case MovementTypeOut:
		if quantity.IsPositive() {
			return nil, shared.NewValidationError("quantity", "Outbound movement quantity must be negative")
		}
	}
	if unitCost.IsNegative() {
		return nil, shared.NewValidationError("unit_cost", "Unit cost cannot be negative")
	}
	if movementDate.IsZero() {
		movementDate = time.Now()
	}

	return &StockMovement{
		ID:            uuid.New(),
		IngredientID:  ingredientID,
		MovementType:  movementType,
		Quantity:      quantity,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		UnitCost:      unitCost,
		Remarks:       remarks,
		MovementDate:  movementDate,
		CreatedAt:     time.Now(),
	}, nil
}

// IsIncrease returns true if the movement adds stock
func (m *StockMovement) IsIncrease() bool {
	return m.Quantity.IsPositive()
}
