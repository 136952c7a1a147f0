package persistence

import (
	"context"

	appinv "github.com/cafe/backend/internal/application/inventory"
	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/domain/procurement"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// Repositories returns repositories on the plain connection, for reads outside a transaction.
func (s *GormTransactionScope) Repositories() appinv.TransactionalRepositories {
	return &gormTransactionalRepositories{tx: s.db}
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Ingredients() inventory.IngredientRepository {
	return NewGormIngredientRepository(r.tx)
}

func (r *gormTransactionalRepositories) Movements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Adjustments() inventory.StockAdjustmentRepository {
	return NewGormStockAdjustmentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Vendors() procurement.VendorRepository {
	return NewGormVendorRepository(r.tx)
}

func (r *gormTransactionalRepositories) Intends() procurement.IntendRepository {
	return NewGormIntendRepository(r.tx)
}

func (r *gormTransactionalRepositories) PurchaseOrders() procurement.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) GoodsReceipts() procurement.GoodsReceiptRepository {
	return NewGormGoodsReceiptRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() procurement.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
