package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormIntendRepository implements IntendRepository using GORM.
// Whether an item is linked is always read from po_items, never stored on the item.
type GormIntendRepository struct {
	db *gorm.DB
}

// NewGormIntendRepository creates a new GormIntendRepository
func NewGormIntendRepository(db *gorm.DB) *GormIntendRepository {
	return &GormIntendRepository{db: db}
}

// FindByID loads an intend with its items
func (r *GormIntendRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Intend, error) {
	return r.find(ctx, id, false)
}

// FindByIDForUpdate loads an intend with its items, holding the header row lock
// until the transaction ends. Status recomputes for one intend run one at a time.
func (r *GormIntendRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*procurement.Intend, error) {
	return r.find(ctx, id, true)
}

func (r *GormIntendRepository) find(ctx context.Context, id uuid.UUID, lock bool) (*procurement.Intend, error) {
	header := r.db.WithContext(ctx)
	if lock {
		header = header.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.IntendModel
	if err := header.First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if err := r.db.WithContext(ctx).
		Where("intend_id = ?", id).
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts an intend and its items. A taken code returns shared.ErrDuplicateNumber.
func (r *GormIntendRepository) Create(ctx context.Context, intend *procurement.Intend) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(models.IntendModelFromDomain(intend)).Error; err != nil {
		return numberTakenOr(err)
	}
	if len(intend.Items) == 0 {
		return nil
	}
	rows := make([]*models.IntendItemModel, len(intend.Items))
	for i := range intend.Items {
		rows[i] = models.IntendItemModelFromDomain(&intend.Items[i])
	}
	return db.Create(&rows).Error
}

// UpdateStatus writes the derived status
func (r *GormIntendRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status procurement.IntendStatus) error {
	return requireAffected(r.db.WithContext(ctx).
		Model(&models.IntendModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		}))
}

// CountItems counts the items of an intend
func (r *GormIntendRepository) CountItems(ctx context.Context, intendID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.IntendItemModel{}).
		Where("intend_id = ?", intendID).
		Count(&count).Error
	return count, err
}

// CountLinkedItems counts the items referenced by at least one purchase order item
func (r *GormIntendRepository) CountLinkedItems(ctx context.Context, intendID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.IntendItemModel{}).
		Where("intend_items.intend_id = ?", intendID).
		Where("EXISTS (SELECT 1 FROM po_items WHERE po_items.intend_item_id = intend_items.id)").
		Count(&count).Error
	return count, err
}

// FindLinkedItemIDs returns which of the given intend items are referenced by a purchase order item
func (r *GormIntendRepository) FindLinkedItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	linked := make(map[uuid.UUID]bool, len(itemIDs))
	if len(itemIDs) == 0 {
		return linked, nil
	}

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.POItemModel{}).
		Where("intend_item_id IN ?", itemIDs).
		Pluck("intend_item_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		linked[id] = true
	}
	return linked, nil
}

// DeleteItem removes an intend item. The po_items foreign key rejects deleting
// a linked item even if the caller skipped the check.
func (r *GormIntendRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	err := requireAffected(r.db.WithContext(ctx).Delete(&models.IntendItemModel{}, "id = ?", itemID))
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return procurement.NewIntendItemLinkedError(itemID)
	}
	return err
}

// Ensure GormIntendRepository implements IntendRepository
var _ procurement.IntendRepository = (*GormIntendRepository)(nil)
