package persistence

import (
	"context"
	"time"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormIngredientRepository implements IngredientRepository using GORM
type GormIngredientRepository struct {
	db *gorm.DB
}

// NewGormIngredientRepository creates a new GormIngredientRepository
func NewGormIngredientRepository(db *gorm.DB) *GormIngredientRepository {
	return &GormIngredientRepository{db: db}
}

// FindByID finds an ingredient by its ID
func (r *GormIngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Ingredient, error) {
	var model models.IngredientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an ingredient with a row lock (SELECT ... FOR UPDATE)
func (r *GormIngredientRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Ingredient, error) {
	var model models.IngredientModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates an ingredient
func (r *GormIngredientRepository) Save(ctx context.Context, ingredient *inventory.Ingredient) error {
	return r.db.WithContext(ctx).Save(models.IngredientModelFromDomain(ingredient)).Error
}

// UpdateLastPrice sets the most recently observed unit cost
func (r *GormIngredientRepository) UpdateLastPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	return requireAffected(r.db.WithContext(ctx).
		Model(&models.IngredientModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_price": price,
			"updated_at": time.Now(),
		}))
}

// IncrementStock adds a signed delta to stock_quantity in a single statement
func (r *GormIngredientRepository) IncrementStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	return requireAffected(r.db.WithContext(ctx).
		Model(&models.IngredientModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", delta),
			"updated_at":     time.Now(),
		}))
}

// SetStock overwrites stock_quantity
func (r *GormIngredientRepository) SetStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	return requireAffected(r.db.WithContext(ctx).
		Model(&models.IngredientModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock_quantity": quantity,
			"updated_at":     time.Now(),
		}))
}

// CountBelowReorderLevel counts ingredients with a reorder level whose stock has fallen to it
func (r *GormIngredientRepository) CountBelowReorderLevel(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.IngredientModel{}).
		Where("reorder_level > 0 AND stock_quantity <= reorder_level").
		Count(&count).Error
	return count, err
}

// Ensure GormIngredientRepository implements IngredientRepository
var _ inventory.IngredientRepository = (*GormIngredientRepository)(nil)
