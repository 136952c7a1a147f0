package procurement

import (
	"context"
	"errors"
	"testing"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newFlourOrder returns a pending order with a single line of 5 kg at 50
func newFlourOrder(t *testing.T) *procurement.PurchaseOrder {
	t.Helper()
	po, err := procurement.NewPurchaseOrder("PO-20260118-0001", uuid.New(), nil, testDate())
	require.NoError(t, err)
	_, err = po.AddItem(uuid.New(), nil, decimal.NewFromInt(5), decimal.NewFromInt(50))
	require.NoError(t, err)
	po.RecomputeReceiptProgress()
	return po
}

func expectReceiptWrites(m *procurementMocks, ctx context.Context, po *procurement.PurchaseOrder) {
	m.purchaseOrders.On("FindByIDForUpdate", ctx, po.ID).Return(po, nil)
	m.goodsReceipts.On("Create", ctx, mock.AnythingOfType("*procurement.GoodsReceipt")).Return(nil)
	m.goodsReceipts.On("CreateItem", ctx, mock.AnythingOfType("*procurement.GoodsReceiptItem")).Return(nil)
	m.purchaseOrders.On("AddReceivedQuantity", ctx, po.Items[0].ID, mock.Anything).Return(nil)
	m.purchaseOrders.On("UpdateReceiptProgress", ctx, po).Return(nil)
}

func TestGoodsReceiptService_ReceiveGoods(t *testing.T) {
	ctx := context.Background()

	t.Run("partial then full delivery accumulates", func(t *testing.T) {
		m := newProcurementMocks()
		service := NewGoodsReceiptService(m.scope, m.allocator, zap.NewNop())
		po := newFlourOrder(t)
		line := po.Items[0]
		expectReceiptWrites(m, ctx, po)
		m.ingredients.On("UpdateLastPrice", ctx, line.IngredientID, mock.Anything).Return(nil)
		m.movements.On("Create", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		m.ingredients.On("IncrementStock", ctx, line.IngredientID, mock.Anything).Return(nil)

		first, err := service.ReceiveGoods(ctx, po.ID, ReceiveGoodsRequest{
			ReceivedDate: testDate(),
			Items:        []ReceiveGoodsItem{{POItemID: line.ID, QuantityReceived: decimal.NewFromInt(3)}},
		})

		require.NoError(t, err)
		assert.Equal(t, "GRN-20260118-0001", first.GoodsReceipt.GRNNumber)
		assert.Equal(t, "partially_received", first.PurchaseOrder.Status)
		assert.True(t, first.PurchaseOrder.ReceivedPercentage.IsZero())
		assert.Equal(t, 0, first.PurchaseOrder.ReceivedItemsCount)
		assert.True(t, first.PurchaseOrder.Items[0].QuantityReceived.Equal(decimal.NewFromInt(3)))
		assert.True(t, first.PurchaseOrder.Items[0].RemainingQuantity.Equal(decimal.NewFromInt(2)))
		assert.True(t, first.GoodsReceipt.Items[0].UnitPriceActual.Equal(decimal.NewFromInt(50)))
		assert.True(t, first.GoodsReceipt.Items[0].QuantityOrdered.Equal(decimal.NewFromInt(5)))
		assert.Empty(t, first.Advisories)

		second, err := service.ReceiveGoods(ctx, po.ID, ReceiveGoodsRequest{
			ReceivedDate: testDate(),
			Items:        []ReceiveGoodsItem{{POItemID: line.ID, QuantityReceived: decimal.NewFromInt(2), UnitPriceActual: decimalPtr("48")}},
		})

		require.NoError(t, err)
		assert.Equal(t, "GRN-20260118-0002", second.GoodsReceipt.GRNNumber)
		assert.Equal(t, "received", second.PurchaseOrder.Status)
		assert.True(t, second.PurchaseOrder.ReceivedPercentage.Equal(decimal.NewFromInt(100)))
		assert.True(t, second.PurchaseOrder.Items[0].QuantityReceived.Equal(decimal.NewFromInt(5)))
		assert.True(t, second.PurchaseOrder.Items[0].RemainingQuantity.IsZero())

		m.purchaseOrders.AssertCalled(t, "AddReceivedQuantity", ctx, line.ID, decimalEq("3"))
		m.purchaseOrders.AssertCalled(t, "AddReceivedQuantity", ctx, line.ID, decimalEq("2"))
		m.ingredients.AssertCalled(t, "UpdateLastPrice", ctx, line.IngredientID, decimalEq("48"))
		m.movements.AssertCalled(t, "Create", ctx, mock.MatchedBy(func(mv *inventory.StockMovement) bool {
			return mv.Quantity.Equal(decimal.NewFromInt(2)) &&
				mv.MovementType == inventory.MovementTypeIn &&
				mv.Remarks == "PO PO-20260118-0001 / GRN GRN-20260118-0002"
		}))
	})

	t.Run("over-receipt is accepted", func(t *testing.T) {
		m := newProcurementMocks()
		service := NewGoodsReceiptService(m.scope, m.allocator, zap.NewNop())
		po := newFlourOrder(t)
		line := po.Items[0]
		expectReceiptWrites(m, ctx, po)
		m.ingredients.On("UpdateLastPrice", ctx, line.IngredientID, mock.Anything).Return(nil)
		m.movements.On("Create", ctx, mock.Anything).Return(nil)
		m.ingredients.On("IncrementStock", ctx, line.IngredientID, mock.Anything).Return(nil)

		result, err := service.ReceiveGoods(ctx, po.ID, ReceiveGoodsRequest{
			ReceivedDate: testDate(),
			Items:        []ReceiveGoodsItem{{POItemID: line.ID, QuantityReceived: decimal.NewFromInt(7)}},
		})

		require.NoError(t, err)
		assert.Equal(t, "received", result.PurchaseOrder.Status)
		assert.True(t, result.PurchaseOrder.Items[0].QuantityReceived.Equal(decimal.NewFromInt(7)))
		assert.True(t, result.PurchaseOrder.Items[0].RemainingQuantity.IsZero())
	})

	t.Run("side effect failures are reported, not raised", func(t *testing.T) {
		m := newProcurementMocks()
		service := NewGoodsReceiptService(m.scope, m.allocator, zap.NewNop())
		po := newFlourOrder(t)
		line := po.Items[0]
		expectReceiptWrites(m, ctx, po)
		m.ingredients.On("UpdateLastPrice", ctx, line.IngredientID, mock.Anything).Return(errors.New("deadlock detected"))
		m.movements.On("Create", ctx, mock.Anything).Return(errors.New("deadlock detected"))

		result, err := service.ReceiveGoods(ctx, po.ID, ReceiveGoodsRequest{
			ReceivedDate: testDate(),
			Items:        []ReceiveGoodsItem{{POItemID: line.ID, QuantityReceived: decimal.NewFromInt(3)}},
		})

		require.NoError(t, err)
		require.Len(t, result.Advisories, 2)
		assert.Equal(t, EffectLastPrice, result.Advisories[0].Effect)
		assert.Equal(t, EffectStockMovement, result.Advisories[1].Effect)
		assert.Equal(t, "partially_received", result.PurchaseOrder.Status)
		m.ingredients.AssertNotCalled(t, "IncrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("line of another order is rejected", func(t *testing.T) {
		m := newProcurementMocks()
		service := NewGoodsReceiptService(m.scope, m.allocator, zap.NewNop())
		po := newFlourOrder(t)
		m.purchaseOrders.On("FindByIDForUpdate", ctx, po.ID).Return(po, nil)

		_, err := service.ReceiveGoods(ctx, po.ID, ReceiveGoodsRequest{
			ReceivedDate: testDate(),
			Items:        []ReceiveGoodsItem{{POItemID: uuid.New(), QuantityReceived: decimal.NewFromInt(1)}},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "po_item_id", domainErr.Field)
		m.goodsReceipts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("received quantity update failure aborts", func(t *testing.T) {
		m := newProcurementMocks()
		service := NewGoodsReceiptService(m.scope, m.allocator, zap.NewNop())
		po := newFlourOrder(t)
		line := po.Items[0]
		m.purchaseOrders.On("FindByIDForUpdate", ctx, po.ID).Return(po, nil)
		m.goodsReceipts.On("Create", ctx, mock.Anything).Return(nil)
		m.goodsReceipts.On("CreateItem", ctx, mock.Anything).Return(nil)
		m.purchaseOrders.On("AddReceivedQuantity", ctx, line.ID, mock.Anything).Return(errors.New("connection lost"))

		_, err := service.ReceiveGoods(ctx, po.ID, ReceiveGoodsRequest{
			ReceivedDate: testDate(),
			Items:        []ReceiveGoodsItem{{POItemID: line.ID, QuantityReceived: decimal.NewFromInt(1)}},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CategoryIntegrity, domainErr.Category)
		m.ingredients.AssertNotCalled(t, "UpdateLastPrice", mock.Anything, mock.Anything, mock.Anything)
		m.movements.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestGoodsReceiptService_ReceiveGoods_Validation(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()

	tests := []struct {
		name  string
		req   ReceiveGoodsRequest
		field string
	}{
		{"missing date", ReceiveGoodsRequest{Items: []ReceiveGoodsItem{{POItemID: itemID, QuantityReceived: decimal.NewFromInt(1)}}}, "received_date"},
		{"no items", ReceiveGoodsRequest{ReceivedDate: testDate()}, "items"},
		{"zero quantity", ReceiveGoodsRequest{ReceivedDate: testDate(), Items: []ReceiveGoodsItem{{POItemID: itemID}}}, "quantity_received"},
		{"negative price", ReceiveGoodsRequest{ReceivedDate: testDate(), Items: []ReceiveGoodsItem{
			{POItemID: itemID, QuantityReceived: decimal.NewFromInt(1), UnitPriceActual: decimalPtr("-1")},
		}}, "unit_price_actual"},
		{"repeated line", ReceiveGoodsRequest{ReceivedDate: testDate(), Items: []ReceiveGoodsItem{
			{POItemID: itemID, QuantityReceived: decimal.NewFromInt(1)},
			{POItemID: itemID, QuantityReceived: decimal.NewFromInt(1)},
		}}, "po_item_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newProcurementMocks()
			service := NewGoodsReceiptService(m.scope, m.allocator, zap.NewNop())

			_, err := service.ReceiveGoods(ctx, uuid.New(), tt.req)

			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.field, domainErr.Field)
			m.purchaseOrders.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
		})
	}
}
