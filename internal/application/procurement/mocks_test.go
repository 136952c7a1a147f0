package procurement

import (
	"context"
	"time"

	appinventory "github.com/cafe/backend/internal/application/inventory"
	appnumbering "github.com/cafe/backend/internal/application/numbering"
	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/domain/numbering"
	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockVendorRepository is a mock implementation of VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Vendor), args.Error(1)
}

func (m *MockVendorRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockVendorRepository) Save(ctx context.Context, vendor *procurement.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

// MockIntendRepository is a mock implementation of IntendRepository
type MockIntendRepository struct {
	mock.Mock
}

func (m *MockIntendRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Intend, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Intend), args.Error(1)
}

func (m *MockIntendRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*procurement.Intend, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Intend), args.Error(1)
}

func (m *MockIntendRepository) Create(ctx context.Context, intend *procurement.Intend) error {
	args := m.Called(ctx, intend)
	return args.Error(0)
}

func (m *MockIntendRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status procurement.IntendStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockIntendRepository) CountItems(ctx context.Context, intendID uuid.UUID) (int64, error) {
	args := m.Called(ctx, intendID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIntendRepository) CountLinkedItems(ctx context.Context, intendID uuid.UUID) (int64, error) {
	args := m.Called(ctx, intendID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIntendRepository) FindLinkedItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

func (m *MockIntendRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, po *procurement.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) CreateItems(ctx context.Context, items []procurement.POItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) AddReceivedQuantity(ctx context.Context, itemID uuid.UUID, quantity decimal.Decimal) error {
	args := m.Called(ctx, itemID, quantity)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) UpdateReceiptProgress(ctx context.Context, po *procurement.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status procurement.PurchaseOrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) UpdateTotalPaid(ctx context.Context, id uuid.UUID, totalPaid decimal.Decimal) error {
	args := m.Called(ctx, id, totalPaid)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) UpdateActualReceivable(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

// MockGoodsReceiptRepository is a mock implementation of GoodsReceiptRepository
type MockGoodsReceiptRepository struct {
	mock.Mock
}

func (m *MockGoodsReceiptRepository) Create(ctx context.Context, grn *procurement.GoodsReceipt) error {
	args := m.Called(ctx, grn)
	return args.Error(0)
}

func (m *MockGoodsReceiptRepository) CreateItem(ctx context.Context, item *procurement.GoodsReceiptItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockGoodsReceiptRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.GoodsReceipt, error) {
	args := m.Called(ctx, purchaseOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.GoodsReceipt), args.Error(1)
}

func (m *MockGoodsReceiptRepository) ExistsForPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, purchaseOrderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGoodsReceiptRepository) SumReceivedValue(ctx context.Context, purchaseOrderID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, purchaseOrderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockGoodsReceiptRepository) SumReceivedByPOItem(ctx context.Context, poItemID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, poItemID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *procurement.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.Payment, error) {
	args := m.Called(ctx, purchaseOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, purchaseOrderID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockIngredientRepository is a mock implementation of IngredientRepository
type MockIngredientRepository struct {
	mock.Mock
}

func (m *MockIngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Ingredient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Ingredient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) Save(ctx context.Context, ingredient *inventory.Ingredient) error {
	args := m.Called(ctx, ingredient)
	return args.Error(0)
}

func (m *MockIngredientRepository) UpdateLastPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}

func (m *MockIngredientRepository) IncrementStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockIngredientRepository) SetStock(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

// MockStockMovementRepository is a mock implementation of StockMovementRepository
type MockStockMovementRepository struct {
	mock.Mock
}

func (m *MockStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockStockMovementRepository) FindByIngredient(ctx context.Context, ingredientID uuid.UUID, q inventory.MovementQuery) ([]inventory.StockMovement, error) {
	args := m.Called(ctx, ingredientID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepository) SumByIngredient(ctx context.Context, ingredientID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, ingredientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// procurementMocks bundles one mock per repository behind a NoOp scope
type procurementMocks struct {
	ingredients    *MockIngredientRepository
	movements      *MockStockMovementRepository
	vendors        *MockVendorRepository
	intends        *MockIntendRepository
	purchaseOrders *MockPurchaseOrderRepository
	goodsReceipts  *MockGoodsReceiptRepository
	payments       *MockPaymentRepository
	scope          *appinventory.NoOpTransactionScope
	allocator      *appnumbering.Allocator
}

func newProcurementMocks() *procurementMocks {
	m := &procurementMocks{
		ingredients:    new(MockIngredientRepository),
		movements:      new(MockStockMovementRepository),
		vendors:        new(MockVendorRepository),
		intends:        new(MockIntendRepository),
		purchaseOrders: new(MockPurchaseOrderRepository),
		goodsReceipts:  new(MockGoodsReceiptRepository),
		payments:       new(MockPaymentRepository),
	}
	m.scope = appinventory.NewNoOpTransactionScope(appinventory.NoOpRepositories{
		Ingredients:    m.ingredients,
		Movements:      m.movements,
		Vendors:        m.vendors,
		Intends:        m.intends,
		PurchaseOrders: m.purchaseOrders,
		GoodsReceipts:  m.goodsReceipts,
		Payments:       m.payments,
	})

	sequences := map[numbering.DocumentKind]int64{}
	sequencer := numbering.SequencerFunc(func(_ context.Context, kind numbering.DocumentKind, _ time.Time) (int64, error) {
		sequences[kind]++
		return sequences[kind], nil
	})
	m.allocator = appnumbering.NewAllocator(sequencer, zap.NewNop())
	return m
}

func decimalEq(v string) interface{} {
	want := decimal.RequireFromString(v)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func testDate() time.Time {
	return time.Date(2026, 1, 18, 10, 0, 0, 0, time.UTC)
}
