package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	inventoryapp "github.com/cafe/backend/internal/application/inventory"
	procurementapp "github.com/cafe/backend/internal/application/procurement"
)

type mockIntendService struct{ mock.Mock }

func (m *mockIntendService) CreateIntend(ctx context.Context, req procurementapp.CreateIntendRequest) (*procurementapp.IntendResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*procurementapp.IntendResponse)
	return resp, args.Error(1)
}

func (m *mockIntendService) GetIntend(ctx context.Context, id uuid.UUID) (*procurementapp.IntendResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*procurementapp.IntendResponse)
	return resp, args.Error(1)
}

func (m *mockIntendService) RecomputeIntendStatus(ctx context.Context, id uuid.UUID) (*procurementapp.IntendResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*procurementapp.IntendResponse)
	return resp, args.Error(1)
}

func (m *mockIntendService) DeleteIntendItem(ctx context.Context, id, itemID uuid.UUID) (*procurementapp.IntendResponse, error) {
	args := m.Called(ctx, id, itemID)
	resp, _ := args.Get(0).(*procurementapp.IntendResponse)
	return resp, args.Error(1)
}

type mockPurchaseOrderService struct{ mock.Mock }

func (m *mockPurchaseOrderService) GeneratePurchaseOrder(ctx context.Context, req procurementapp.GeneratePurchaseOrderRequest) (*procurementapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*procurementapp.PurchaseOrderResponse)
	return resp, args.Error(1)
}

func (m *mockPurchaseOrderService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*procurementapp.PurchaseOrderResponse)
	return resp, args.Error(1)
}

func (m *mockPurchaseOrderService) ConfirmPurchaseOrder(ctx context.Context, id uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*procurementapp.PurchaseOrderResponse)
	return resp, args.Error(1)
}

func (m *mockPurchaseOrderService) SetActualReceivable(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*procurementapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, id, amount)
	resp, _ := args.Get(0).(*procurementapp.PurchaseOrderResponse)
	return resp, args.Error(1)
}

type mockGoodsReceiptService struct{ mock.Mock }

func (m *mockGoodsReceiptService) ReceiveGoods(ctx context.Context, poID uuid.UUID, req procurementapp.ReceiveGoodsRequest) (*procurementapp.ReceiveGoodsResponse, error) {
	args := m.Called(ctx, poID, req)
	resp, _ := args.Get(0).(*procurementapp.ReceiveGoodsResponse)
	return resp, args.Error(1)
}

func (m *mockGoodsReceiptService) ListGoodsReceipts(ctx context.Context, poID uuid.UUID) ([]procurementapp.GoodsReceiptResponse, error) {
	args := m.Called(ctx, poID)
	resp, _ := args.Get(0).([]procurementapp.GoodsReceiptResponse)
	return resp, args.Error(1)
}

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) RecordPayment(ctx context.Context, poID uuid.UUID, req procurementapp.RecordPaymentRequest) (*procurementapp.RecordPaymentResponse, error) {
	args := m.Called(ctx, poID, req)
	resp, _ := args.Get(0).(*procurementapp.RecordPaymentResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentService) ListPayments(ctx context.Context, poID uuid.UUID) ([]procurementapp.PaymentResponse, error) {
	args := m.Called(ctx, poID)
	resp, _ := args.Get(0).([]procurementapp.PaymentResponse)
	return resp, args.Error(1)
}

type mockStockAdjustmentService struct{ mock.Mock }

func (m *mockStockAdjustmentService) AdjustStock(ctx context.Context, req inventoryapp.AdjustStockRequest) (*inventoryapp.StockAdjustmentResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*inventoryapp.StockAdjustmentResponse)
	return resp, args.Error(1)
}

type mockIngredientQueryService struct{ mock.Mock }

func (m *mockIngredientQueryService) GetIngredient(ctx context.Context, id uuid.UUID) (*inventoryapp.IngredientResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*inventoryapp.IngredientResponse)
	return resp, args.Error(1)
}

func (m *mockIngredientQueryService) ListMovements(ctx context.Context, id uuid.UUID, filter inventoryapp.MovementListFilter) ([]inventoryapp.StockMovementResponse, error) {
	args := m.Called(ctx, id, filter)
	resp, _ := args.Get(0).([]inventoryapp.StockMovementResponse)
	return resp, args.Error(1)
}
