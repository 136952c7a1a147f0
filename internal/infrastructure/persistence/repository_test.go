package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/domain/numbering"
	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedIngredient(t *testing.T, db *gorm.DB, name string, stock, reorder int64) *inventory.Ingredient {
	t.Helper()
	ingredient, err := inventory.NewIngredient(name, "kg", decimal.NewFromInt(reorder))
	require.NoError(t, err)
	ingredient.StockQuantity = decimal.NewFromInt(stock)
	require.NoError(t, NewGormIngredientRepository(db).Save(context.Background(), ingredient))
	return ingredient
}

func seedVendor(t *testing.T, db *gorm.DB) *procurement.Vendor {
	t.Helper()
	vendor, err := procurement.NewVendor("Daily Dairy", "+91 98450 00000")
	require.NoError(t, err)
	require.NoError(t, NewGormVendorRepository(db).Save(context.Background(), vendor))
	return vendor
}

func seedIntend(t *testing.T, db *gorm.DB, code string, ingredients ...uuid.UUID) *procurement.Intend {
	t.Helper()
	intend, err := procurement.NewIntend(code, nil, "")
	require.NoError(t, err)
	for _, id := range ingredients {
		_, err := intend.AddItem(id, decimal.NewFromInt(5), "")
		require.NoError(t, err)
	}
	require.NoError(t, NewGormIntendRepository(db).Create(context.Background(), intend))
	return intend
}

func seedPurchaseOrder(t *testing.T, db *gorm.DB, number string, vendorID uuid.UUID, intend *procurement.Intend, items ...*procurement.IntendItem) *procurement.PurchaseOrder {
	t.Helper()
	po, err := procurement.NewPurchaseOrder(number, vendorID, &intend.ID, time.Now())
	require.NoError(t, err)
	for _, item := range items {
		id := item.ID
		_, err := po.AddItem(item.IngredientID, &id, item.Quantity, decimal.NewFromInt(50))
		require.NoError(t, err)
	}
	repo := NewGormPurchaseOrderRepository(db)
	require.NoError(t, repo.Create(context.Background(), po))
	require.NoError(t, repo.CreateItems(context.Background(), po.Items))
	return po
}

func TestGormIngredientRepository_StockUpdates(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormIngredientRepository(db)
	milk := seedIngredient(t, db, "Milk", 10, 0)

	require.NoError(t, repo.IncrementStock(ctx, milk.ID, decimal.NewFromInt(5)))
	require.NoError(t, repo.IncrementStock(ctx, milk.ID, decimal.NewFromInt(-2)))
	require.NoError(t, repo.UpdateLastPrice(ctx, milk.ID, decimal.RequireFromString("45.5")))

	found, err := repo.FindByID(ctx, milk.ID)
	require.NoError(t, err)
	assert.True(t, found.StockQuantity.Equal(decimal.NewFromInt(13)), "got %s", found.StockQuantity)
	assert.True(t, found.LastPrice.Equal(decimal.RequireFromString("45.5")))

	require.NoError(t, repo.SetStock(ctx, milk.ID, decimal.NewFromInt(92)))
	found, err = repo.FindByIDForUpdate(ctx, milk.ID)
	require.NoError(t, err)
	assert.True(t, found.StockQuantity.Equal(decimal.NewFromInt(92)))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.SetStock(ctx, uuid.New(), decimal.Zero), shared.ErrNotFound)
}

func TestGormIngredientRepository_CountBelowReorderLevel(t *testing.T) {
	db := newSQLiteDB(t)
	seedIngredient(t, db, "Milk", 5, 10)
	seedIngredient(t, db, "Sugar", 10, 10)
	seedIngredient(t, db, "Coffee", 30, 10)
	seedIngredient(t, db, "Salt", 0, 0)

	count, err := NewGormIngredientRepository(db).CountBelowReorderLevel(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormStockMovementRepository_Ledger(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormStockMovementRepository(db)
	milk := seedIngredient(t, db, "Milk", 0, 0)

	base := time.Date(2026, 1, 18, 9, 0, 0, 0, time.UTC)
	for i, qty := range []int64{5, -2, 4} {
		movementType := inventory.MovementTypeIn
		if qty < 0 {
			movementType = inventory.MovementTypeOut
		}
		movement, err := inventory.NewStockMovement(milk.ID, movementType, decimal.NewFromInt(qty),
			inventory.ReferenceTypeManual, nil, decimal.Zero, "", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, movement))
	}

	sum, err := repo.SumByIngredient(ctx, milk.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(7)))

	latest, err := repo.FindByIngredient(ctx, milk.ID, inventory.MovementQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[0].Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, latest[1].Quantity.Equal(decimal.NewFromInt(-2)))

	oldest, err := repo.FindByIngredient(ctx, milk.ID, inventory.MovementQuery{Limit: 1, SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, oldest, 1)
	assert.True(t, oldest[0].Quantity.Equal(decimal.NewFromInt(10)))

	// Unknown sort fields fall back to movement_date instead of reaching SQL
	fallback, err := repo.FindByIngredient(ctx, milk.ID, inventory.MovementQuery{Limit: 1, SortBy: "id; DROP TABLE stock_movements"})
	require.NoError(t, err)
	require.Len(t, fallback, 1)
	assert.True(t, fallback[0].Quantity.Equal(decimal.NewFromInt(4)))
}

func TestGormStockAdjustmentRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormStockAdjustmentRepository(db)
	milk := seedIngredient(t, db, "Milk", 100, 0)

	adjustment, err := inventory.NewStockAdjustment(inventory.AdjustmentTypePhysicalCount, time.Now(), "weekly count")
	require.NoError(t, err)
	adjustment.AdjustmentNumber = "ADJ-20260118-0001"
	_, err = adjustment.AddItem(milk.ID, decimal.NewFromInt(100), decimal.NewFromInt(92), "spill")
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, adjustment))
	require.NoError(t, repo.CreateItems(ctx, adjustment.Items))

	found, err := repo.FindByID(ctx, adjustment.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.True(t, found.Items[0].Variance().Equal(decimal.NewFromInt(-8)))

	duplicate, err := inventory.NewStockAdjustment(inventory.AdjustmentTypeWastage, time.Now(), "")
	require.NoError(t, err)
	duplicate.AdjustmentNumber = adjustment.AdjustmentNumber
	assert.ErrorIs(t, repo.Create(ctx, duplicate), shared.ErrDuplicateNumber)
}

func TestGormIntendRepository_LinkTracking(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormIntendRepository(db)
	milk := seedIngredient(t, db, "Milk", 0, 0)
	sugar := seedIngredient(t, db, "Sugar", 0, 0)
	vendor := seedVendor(t, db)
	intend := seedIntend(t, db, "IND-20260118-0001", milk.ID, sugar.ID)

	total, err := repo.CountItems(ctx, intend.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	linked, err := repo.CountLinkedItems(ctx, intend.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), linked)

	seedPurchaseOrder(t, db, "PO-20260118-0001", vendor.ID, intend, &intend.Items[0])

	linked, err = repo.CountLinkedItems(ctx, intend.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), linked)

	ids, err := repo.FindLinkedItemIDs(ctx, []uuid.UUID{intend.Items[0].ID, intend.Items[1].ID})
	require.NoError(t, err)
	assert.True(t, ids[intend.Items[0].ID])
	assert.False(t, ids[intend.Items[1].ID])

	require.NoError(t, repo.UpdateStatus(ctx, intend.ID, procurement.IntendStatusPartiallyFulfilled))
	require.NoError(t, repo.DeleteItem(ctx, intend.Items[1].ID))
	assert.ErrorIs(t, repo.DeleteItem(ctx, intend.Items[1].ID), shared.ErrNotFound)

	found, err := repo.FindByID(ctx, intend.ID)
	require.NoError(t, err)
	assert.Equal(t, procurement.IntendStatusPartiallyFulfilled, found.Status)
	assert.Len(t, found.Items, 1)
}

func TestGormIntendRepository_DuplicateCode(t *testing.T) {
	db := newSQLiteDB(t)
	milk := seedIngredient(t, db, "Milk", 0, 0)
	seedIntend(t, db, "IND-20260118-0001", milk.ID)

	again, err := procurement.NewIntend("IND-20260118-0001", nil, "")
	require.NoError(t, err)

	assert.ErrorIs(t, NewGormIntendRepository(db).Create(context.Background(), again), shared.ErrDuplicateNumber)
}

func TestGormPurchaseOrderRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	milk := seedIngredient(t, db, "Milk", 0, 0)
	vendor := seedVendor(t, db)
	intend := seedIntend(t, db, "IND-20260118-0001", milk.ID)
	po := seedPurchaseOrder(t, db, "PO-20260118-0001", vendor.ID, intend, &intend.Items[0])
	itemID := po.Items[0].ID

	require.NoError(t, repo.AddReceivedQuantity(ctx, itemID, decimal.NewFromInt(3)))
	require.NoError(t, repo.AddReceivedQuantity(ctx, itemID, decimal.NewFromInt(2)))
	require.NoError(t, repo.UpdateTotalPaid(ctx, po.ID, decimal.NewFromInt(100)))
	require.NoError(t, repo.UpdateActualReceivable(ctx, po.ID, decimal.NewFromInt(240)))
	require.NoError(t, repo.UpdateStatus(ctx, po.ID, procurement.PurchaseOrderStatusConfirmed))

	found, err := repo.FindByIDForUpdate(ctx, po.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.True(t, found.Items[0].QuantityReceived.Equal(decimal.NewFromInt(5)))
	assert.True(t, found.TotalPaid.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, found.ActualReceivableAmount)
	assert.True(t, found.ActualReceivableAmount.Equal(decimal.NewFromInt(240)))
	assert.Equal(t, procurement.PurchaseOrderStatusConfirmed, found.Status)

	found.RecomputeReceiptProgress()
	require.NoError(t, repo.UpdateReceiptProgress(ctx, found))
	reloaded, err := repo.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.ReceivedItemsCount)
	assert.Equal(t, procurement.PurchaseOrderStatusReceived, reloaded.Status)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPurchaseOrderRepository_UniquenessGuards(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	milk := seedIngredient(t, db, "Milk", 0, 0)
	vendor := seedVendor(t, db)
	intend := seedIntend(t, db, "IND-20260118-0001", milk.ID)
	seedPurchaseOrder(t, db, "PO-20260118-0001", vendor.ID, intend, &intend.Items[0])

	t.Run("taken PO number", func(t *testing.T) {
		po, err := procurement.NewPurchaseOrder("PO-20260118-0001", vendor.ID, nil, time.Now())
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, po), shared.ErrDuplicateNumber)
	})

	t.Run("intend item already ordered", func(t *testing.T) {
		po, err := procurement.NewPurchaseOrder("PO-20260118-0002", vendor.ID, &intend.ID, time.Now())
		require.NoError(t, err)
		intendItemID := intend.Items[0].ID
		_, err = po.AddItem(milk.ID, &intendItemID, decimal.NewFromInt(1), decimal.NewFromInt(50))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, po))

		err = repo.CreateItems(ctx, po.Items)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, procurement.CodeIntendItemLinked, domainErr.Code)
	})
}

func TestGormGoodsReceiptAndPaymentRepositories_Sums(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	milk := seedIngredient(t, db, "Milk", 0, 0)
	vendor := seedVendor(t, db)
	intend := seedIntend(t, db, "IND-20260118-0001", milk.ID)
	po := seedPurchaseOrder(t, db, "PO-20260118-0001", vendor.ID, intend, &intend.Items[0])
	grns := NewGormGoodsReceiptRepository(db)
	payments := NewGormPaymentRepository(db)

	exists, err := grns.ExistsForPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	actual := decimal.NewFromInt(48)
	for i, qty := range []int64{3, 2} {
		grn, err := procurement.NewGoodsReceipt(numbering.Format(numbering.KindGoodsReceipt, time.Now(), int64(i+1)), po.ID, time.Now(), "")
		require.NoError(t, err)
		item, err := grn.AddItem(&po.Items[0], decimal.NewFromInt(qty), &actual, "")
		require.NoError(t, err)
		require.NoError(t, grns.Create(ctx, grn))
		require.NoError(t, grns.CreateItem(ctx, item))
	}

	exists, err = grns.ExistsForPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	value, err := grns.SumReceivedValue(ctx, po.ID)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(240)), "got %s", value)

	received, err := grns.SumReceivedByPOItem(ctx, po.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, received.Equal(decimal.NewFromInt(5)))

	listed, err := grns.FindByPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Len(t, listed[0].Items, 1)

	for i, amount := range []int64{100, 40} {
		payment, err := procurement.NewPayment(numbering.Format(numbering.KindPayment, time.Now(), int64(i+1)), po,
			decimal.NewFromInt(amount), procurement.PaymentMethodCash, time.Now().Add(time.Duration(i)*time.Minute), "", "")
		require.NoError(t, err)
		require.NoError(t, payments.Create(ctx, payment))
	}

	paid, err := payments.SumByPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.True(t, paid.Equal(decimal.NewFromInt(140)))

	history, err := payments.FindByPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestGormDocumentSequenceRepository_DailyCounter(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	repo := NewGormDocumentSequenceRepository(db)
	day := time.Date(2026, 1, 18, 8, 0, 0, 0, time.UTC)

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Next(ctx, numbering.KindGoodsReceipt, day.Add(time.Duration(want)*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := repo.Next(ctx, numbering.KindPayment, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)

	nextDay, err := repo.Next(ctx, numbering.KindGoodsReceipt, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), nextDay)

	// the first day's counter carries on after another day was opened
	resumed, err := repo.Next(ctx, numbering.KindGoodsReceipt, day)
	require.NoError(t, err)
	assert.Equal(t, int64(4), resumed)
}

func TestGormDocumentSequenceRepository_CountForDay(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	milk := seedIngredient(t, db, "Milk", 0, 0)
	day := time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC)
	seedIntend(t, db, numbering.Format(numbering.KindIntend, day, 1), milk.ID)
	seedIntend(t, db, numbering.Format(numbering.KindIntend, day, 2), milk.ID)
	seedIntend(t, db, numbering.Format(numbering.KindIntend, day.AddDate(0, 0, 1), 1), milk.ID)

	count, err := NewGormDocumentSequenceRepository(db).CountForDay(ctx, numbering.KindIntend, day)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
