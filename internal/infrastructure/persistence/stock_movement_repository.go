package persistence

import (
	"context"
	"fmt"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// It only inserts and reads; the ledger is never updated or deleted.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a movement
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	if err := r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(movement)).Error; err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// FindByIngredient lists movements of an ingredient, newest first by default
func (r *GormStockMovementRepository) FindByIngredient(ctx context.Context, ingredientID uuid.UUID, q inventory.MovementQuery) ([]inventory.StockMovement, error) {
	field := ValidateSortField(q.SortBy, StockMovementSortFields, "movement_date")
	dir := ValidateSortOrder(q.SortOrder)

	var rows []models.StockMovementModel
	query := r.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order(field + " " + dir)
	if field != "created_at" {
		query = query.Order("created_at " + dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, nil
}

// SumByIngredient returns the net signed quantity of all movements of an ingredient
func (r *GormStockMovementRepository) SumByIngredient(ctx context.Context, ingredientID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.StockMovementModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("ingredient_id = ?", ingredientID).
		Row().Scan(&sum)
	return sum, err
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
