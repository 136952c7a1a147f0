package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID loads a purchase order with its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	return r.find(ctx, id, false)
}

// FindByIDForUpdate loads a purchase order with its items and locks the header row
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	return r.find(ctx, id, true)
}

func (r *GormPurchaseOrderRepository) find(ctx context.Context, id uuid.UUID, lock bool) (*procurement.PurchaseOrder, error) {
	header := r.db.WithContext(ctx)
	if lock {
		header = header.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.PurchaseOrderModel
	if err := header.First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", id).
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts the purchase order header
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, po *procurement.PurchaseOrder) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(models.PurchaseOrderModelFromDomain(po)).Error
	return numberTakenOr(err)
}

// CreateItems inserts purchase order items one by one so a unique violation
// on intend_item_id can be attributed to its intend item.
func (r *GormPurchaseOrderRepository) CreateItems(ctx context.Context, items []procurement.POItem) error {
	db := r.db.WithContext(ctx)
	for i := range items {
		err := db.Create(models.POItemModelFromDomain(&items[i])).Error
		if err == nil {
			continue
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && items[i].IntendItemID != nil {
			return procurement.NewIntendItemLinkedError(*items[i].IntendItemID)
		}
		return fmt.Errorf("create po item %s: %w", items[i].ID, err)
	}
	return nil
}

// AddReceivedQuantity adds to quantity_received in a single statement, so
// concurrent receipts accumulate rather than overwrite.
func (r *GormPurchaseOrderRepository) AddReceivedQuantity(ctx context.Context, itemID uuid.UUID, quantity decimal.Decimal) error {
	return requireAffected(r.db.WithContext(ctx).
		Model(&models.POItemModel{}).
		Where("id = ?", itemID).
		Update("quantity_received", gorm.Expr("quantity_received + ?", quantity)))
}

// UpdateReceiptProgress writes the receipt caches and status
func (r *GormPurchaseOrderRepository) UpdateReceiptProgress(ctx context.Context, po *procurement.PurchaseOrder) error {
	return r.updateHeader(ctx, po.ID, map[string]any{
		"total_items_count":    po.TotalItemsCount,
		"received_items_count": po.ReceivedItemsCount,
		"received_percentage":  po.ReceivedPercentage,
		"status":               po.Status,
	})
}

// UpdateStatus writes the status
func (r *GormPurchaseOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status procurement.PurchaseOrderStatus) error {
	return r.updateHeader(ctx, id, map[string]any{"status": status})
}

// UpdateTotalPaid writes the payment aggregate cache
func (r *GormPurchaseOrderRepository) UpdateTotalPaid(ctx context.Context, id uuid.UUID, totalPaid decimal.Decimal) error {
	return r.updateHeader(ctx, id, map[string]any{"total_paid": totalPaid})
}

// UpdateActualReceivable writes the receivable override
func (r *GormPurchaseOrderRepository) UpdateActualReceivable(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.updateHeader(ctx, id, map[string]any{"actual_receivable_amount": amount})
}

func (r *GormPurchaseOrderRepository) updateHeader(ctx context.Context, id uuid.UUID, values map[string]any) error {
	values["updated_at"] = time.Now()
	return requireAffected(r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("id = ?", id).
		Updates(values))
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
