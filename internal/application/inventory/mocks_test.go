package inventory

import (
	"context"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockIngredientRepository is a mock implementation of IngredientRepository
type MockIngredientRepository struct {
	mock.Mock
}

func (m *MockIngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Ingredient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Ingredient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) Save(ctx context.Context, ingredient *inventory.Ingredient) error {
	args := m.Called(ctx, ingredient)
	return args.Error(0)
}

func (m *MockIngredientRepository) UpdateLastPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}

func (m *MockIngredientRepository) IncrementStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockIngredientRepository) SetStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

// MockStockMovementRepository is a mock implementation of StockMovementRepository
type MockStockMovementRepository struct {
	mock.Mock
}

func (m *MockStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockStockMovementRepository) FindByIngredient(ctx context.Context, ingredientID uuid.UUID, q inventory.MovementQuery) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, ingredientID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) SumByIngredient(ctx context.Context, ingredientID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, ingredientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockStockAdjustmentRepository is a mock implementation of StockAdjustmentRepository
type MockStockAdjustmentRepository struct {
	mock.Mock
}

func (m *MockStockAdjustmentRepository) Create(ctx context.Context, adjustment *inventory.StockAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

func (m *MockStockAdjustmentRepository) CreateItems(ctx context.Context, items []inventory.StockAdjustmentItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockStockAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockAdjustment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockAdjustment), args.Error(1)
}

func decimalEq(v string) interface{} {
	want := decimal.RequireFromString(v)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}
