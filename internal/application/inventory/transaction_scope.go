package inventory

import (
	"context"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/domain/procurement"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error

	// Repositories returns repositories bound to no transaction, for reads
	Repositories() TransactionalRepositories
}

// TransactionalRepositories provides access to all ledger repositories.
// Repositories returned from one Execute call share the same underlying transaction.
//
// Ingredients, Movements and Adjustments hold on-hand stock and its audit trail.
// Movements is append-only. The procurement repositories hold the document chain
// Intend -> PurchaseOrder -> GoodsReceipt -> Payment.
type TransactionalRepositories interface {
	Ingredients() inventory.IngredientRepository
	Movements() inventory.StockMovementRepository
	Adjustments() inventory.StockAdjustmentRepository
	Vendors() procurement.VendorRepository
	Intends() procurement.IntendRepository
	PurchaseOrders() procurement.PurchaseOrderRepository
	GoodsReceipts() procurement.GoodsReceiptRepository
	Payments() procurement.PaymentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing with mocked repositories.
type NoOpTransactionScope struct {
	ingredients    inventory.IngredientRepository
	movements      inventory.StockMovementRepository
	adjustments    inventory.StockAdjustmentRepository
	vendors        procurement.VendorRepository
	intends        procurement.IntendRepository
	purchaseOrders procurement.PurchaseOrderRepository
	goodsReceipts  procurement.GoodsReceiptRepository
	payments       procurement.PaymentRepository
}

// NoOpRepositories lists the repositories handed out by a NoOpTransactionScope.
// Nil entries are allowed for repositories a test does not touch.
type NoOpRepositories struct {
	Ingredients    inventory.IngredientRepository
	Movements      inventory.StockMovementRepository
	Adjustments    inventory.StockAdjustmentRepository
	Vendors        procurement.VendorRepository
	Intends        procurement.IntendRepository
	PurchaseOrders procurement.PurchaseOrderRepository
	GoodsReceipts  procurement.GoodsReceiptRepository
	Payments       procurement.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos NoOpRepositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ingredients:    repos.Ingredients,
		movements:      repos.Movements,
		adjustments:    repos.Adjustments,
		vendors:        repos.Vendors,
		intends:        repos.Intends,
		purchaseOrders: repos.PurchaseOrders,
		goodsReceipts:  repos.GoodsReceipts,
		payments:       repos.Payments,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Repositories returns the scope itself.
func (s *NoOpTransactionScope) Repositories() TransactionalRepositories {
	return s
}

func (s *NoOpTransactionScope) Ingredients() inventory.IngredientRepository { return s.ingredients }
func (s *NoOpTransactionScope) Movements() inventory.StockMovementRepository { return s.movements }
func (s *NoOpTransactionScope) Adjustments() inventory.StockAdjustmentRepository { return s.adjustments }
func (s *NoOpTransactionScope) Vendors() procurement.VendorRepository { return s.vendors }
func (s *NoOpTransactionScope) Intends() procurement.IntendRepository { return s.intends }
func (s *NoOpTransactionScope) PurchaseOrders() procurement.PurchaseOrderRepository { return s.purchaseOrders }
func (s *NoOpTransactionScope) GoodsReceipts() procurement.GoodsReceiptRepository { return s.goodsReceipts }
func (s *NoOpTransactionScope) Payments() procurement.PaymentRepository { return s.payments }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
