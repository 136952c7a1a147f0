package persistence

import (
	"context"

	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM.
// Payments are append-only.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *procurement.Payment) error {
	return numberTakenOr(r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error)
}

// FindByPurchaseOrder lists payments of a purchase order, oldest first
func (r *GormPaymentRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("po_id = ?", purchaseOrderID).
		Order("payment_date ASC").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	payments := make([]procurement.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// SumByPurchaseOrder returns the total paid against a purchase order
func (r *GormPaymentRepository) SumByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("po_id = ?", purchaseOrderID).
		Row().Scan(&sum)
	return sum, err
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ procurement.PaymentRepository = (*GormPaymentRepository)(nil)
