package persistence

import (
	"context"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockAdjustmentRepository implements StockAdjustmentRepository using GORM
type GormStockAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormStockAdjustmentRepository creates a new GormStockAdjustmentRepository
func NewGormStockAdjustmentRepository(db *gorm.DB) *GormStockAdjustmentRepository {
	return &GormStockAdjustmentRepository{db: db}
}

// Create inserts the adjustment header
func (r *GormStockAdjustmentRepository) Create(ctx context.Context, adjustment *inventory.StockAdjustment) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(models.StockAdjustmentModelFromDomain(adjustment)).Error
	return numberTakenOr(err)
}

// CreateItems inserts adjustment items
func (r *GormStockAdjustmentRepository) CreateItems(ctx context.Context, items []inventory.StockAdjustmentItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]*models.StockAdjustmentItemModel, len(items))
	for i := range items {
		rows[i] = models.StockAdjustmentItemModelFromDomain(&items[i])
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByID loads an adjustment with its items
func (r *GormStockAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockAdjustment, error) {
	var model models.StockAdjustmentModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return model.ToDomain(), nil
}

// Ensure GormStockAdjustmentRepository implements StockAdjustmentRepository
var _ inventory.StockAdjustmentRepository = (*GormStockAdjustmentRepository)(nil)
