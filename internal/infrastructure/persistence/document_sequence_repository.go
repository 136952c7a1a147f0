package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/cafe/backend/internal/domain/numbering"
	"gorm.io/gorm"
)

const nextSequenceSQL = `INSERT INTO document_sequences (kind, sequence_date, last_value, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (kind, sequence_date)
DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = excluded.updated_at
RETURNING last_value`

// numberColumns maps each document kind to the table and column holding its numbers
var numberColumns = map[numbering.DocumentKind][2]string{
	numbering.KindIntend:          {"intends", "code"},
	numbering.KindPurchaseOrder:   {"purchase_orders", "po_number"},
	numbering.KindGoodsReceipt:    {"grns", "grn_number"},
	numbering.KindPayment:         {"payments", "payment_number"},
	numbering.KindStockAdjustment: {"stock_adjustments", "adjustment_number"},
}

// GormDocumentSequenceRepository is the store-side daily counter behind
// document numbers. Each Next is a single upsert, so concurrent callers
// never receive the same value.
type GormDocumentSequenceRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormDocumentSequenceRepository creates a new GormDocumentSequenceRepository
func NewGormDocumentSequenceRepository(db *gorm.DB) *GormDocumentSequenceRepository {
	return &GormDocumentSequenceRepository{db: db, now: time.Now}
}

// Next increments and returns the counter for (kind, day of date)
func (r *GormDocumentSequenceRepository) Next(ctx context.Context, kind numbering.DocumentKind, date time.Time) (int64, error) {
	if !kind.IsValid() {
		return 0, fmt.Errorf("unknown document kind %q", kind)
	}
	day := numbering.SequenceDate(date).Format(numbering.DateLayout)

	var value int64
	if err := r.db.WithContext(ctx).Raw(nextSequenceSQL, kind.String(), day, r.now()).Scan(&value).Error; err != nil {
		return 0, fmt.Errorf("next %s sequence for %s: %w", kind, day, err)
	}
	return value, nil
}

// CountForDay counts stored documents of kind numbered for the day of date.
// Fallback numbers carry the same prefix and are included.
func (r *GormDocumentSequenceRepository) CountForDay(ctx context.Context, kind numbering.DocumentKind, date time.Time) (int64, error) {
	target, ok := numberColumns[kind]
	if !ok {
		return 0, fmt.Errorf("unknown document kind %q", kind)
	}
	prefix := fmt.Sprintf("%s-%s-", kind, numbering.SequenceDate(date).Format(numbering.DateLayout))

	var count int64
	err := r.db.WithContext(ctx).
		Table(target[0]).
		Where(target[1]+" LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

// Ensure GormDocumentSequenceRepository implements Sequencer
var _ numbering.Sequencer = (*GormDocumentSequenceRepository)(nil)
