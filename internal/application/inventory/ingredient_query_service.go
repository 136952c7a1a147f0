package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/cafe/backend/internal/domain/inventory"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// IngredientQueryService reads ingredient stock and its movement ledger
type IngredientQueryService struct {
	scope TransactionScope
}

// NewIngredientQueryService creates a new IngredientQueryService
func NewIngredientQueryService(scope TransactionScope) *IngredientQueryService {
	return &IngredientQueryService{scope: scope}
}

// GetIngredient retrieves an ingredient by ID
func (s *IngredientQueryService) GetIngredient(ctx context.Context, id uuid.UUID) (*IngredientResponse, error) {
	ingredient, err := s.scope.Repositories().Ingredients().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToIngredientResponse(ingredient)
	return &response, nil
}

// ListMovements lists movements of an ingredient, newest first unless the filter sorts otherwise
func (s *IngredientQueryService) ListMovements(ctx context.Context, ingredientID uuid.UUID, filter MovementListFilter) ([]StockMovementResponse, error) {
	repos := s.scope.Repositories()
	if _, err := repos.Ingredients().FindByID(ctx, ingredientID); err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	if limit > maxMovementLimit {
		limit = maxMovementLimit
	}

	movements, err := repos.Movements().FindByIngredient(ctx, ingredientID, inventory.MovementQuery{
		Limit:     limit,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	})
	if err != nil {
		return nil, err
	}
	return ToStockMovementResponses(movements), nil
}
