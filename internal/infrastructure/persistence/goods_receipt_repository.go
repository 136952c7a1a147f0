package persistence

import (
	"context"
	"fmt"

	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGoodsReceiptRepository implements GoodsReceiptRepository using GORM
type GormGoodsReceiptRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceiptRepository creates a new GormGoodsReceiptRepository
func NewGormGoodsReceiptRepository(db *gorm.DB) *GormGoodsReceiptRepository {
	return &GormGoodsReceiptRepository{db: db}
}

// Create inserts the GRN header
func (r *GormGoodsReceiptRepository) Create(ctx context.Context, grn *procurement.GoodsReceipt) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(models.GoodsReceiptModelFromDomain(grn)).Error
	return numberTakenOr(err)
}

// CreateItem inserts one GRN item
func (r *GormGoodsReceiptRepository) CreateItem(ctx context.Context, item *procurement.GoodsReceiptItem) error {
	if err := r.db.WithContext(ctx).Create(models.GoodsReceiptItemModelFromDomain(item)).Error; err != nil {
		return fmt.Errorf("create grn item: %w", err)
	}
	return nil
}

// FindByPurchaseOrder lists GRNs of a purchase order with their items, oldest first
func (r *GormGoodsReceiptRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.GoodsReceipt, error) {
	var rows []models.GoodsReceiptModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("po_id = ?", purchaseOrderID).
		Order("received_date ASC").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	grns := make([]procurement.GoodsReceipt, len(rows))
	for i := range rows {
		grns[i] = *rows[i].ToDomain()
	}
	return grns, nil
}

// ExistsForPurchaseOrder checks if any GRN was recorded for the purchase order
func (r *GormGoodsReceiptRepository) ExistsForPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.GoodsReceiptModel{}).
		Where("po_id = ?", purchaseOrderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumReceivedValue returns Σ quantity_received × unit_price_actual over every GRN item of the purchase order
func (r *GormGoodsReceiptRepository) SumReceivedValue(ctx context.Context, purchaseOrderID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Table("grn_items").
		Select("COALESCE(SUM(grn_items.quantity_received * grn_items.unit_price_actual), 0)").
		Joins("JOIN grns ON grns.id = grn_items.grn_id").
		Where("grns.po_id = ?", purchaseOrderID).
		Row().Scan(&sum)
	return sum, err
}

// SumReceivedByPOItem returns Σ quantity_received over all GRN items of a purchase order item
func (r *GormGoodsReceiptRepository) SumReceivedByPOItem(ctx context.Context, poItemID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.GoodsReceiptItemModel{}).
		Select("COALESCE(SUM(quantity_received), 0)").
		Where("po_item_id = ?", poItemID).
		Row().Scan(&sum)
	return sum, err
}

// Ensure GormGoodsReceiptRepository implements GoodsReceiptRepository
var _ procurement.GoodsReceiptRepository = (*GormGoodsReceiptRepository)(nil)
