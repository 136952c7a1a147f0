package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	inventoryapp "github.com/cafe/backend/internal/application/inventory"
	procurementapp "github.com/cafe/backend/internal/application/procurement"
	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/cafe/backend/internal/interfaces/http/middleware"
)

type testServices struct {
	intends     *mockIntendService
	orders      *mockPurchaseOrderService
	receipts    *mockGoodsReceiptService
	payments    *mockPaymentService
	adjustments *mockStockAdjustmentService
	ingredients *mockIngredientQueryService
}

func newTestEngine(t *testing.T) (*gin.Engine, *testServices) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	s := &testServices{
		intends:     new(mockIntendService),
		orders:      new(mockPurchaseOrderService),
		receipts:    new(mockGoodsReceiptService),
		payments:    new(mockPaymentService),
		adjustments: new(mockStockAdjustmentService),
		ingredients: new(mockIngredientQueryService),
	}
	t.Cleanup(func() {
		s.intends.AssertExpectations(t)
		s.orders.AssertExpectations(t)
		s.receipts.AssertExpectations(t)
		s.payments.AssertExpectations(t)
		s.adjustments.AssertExpectations(t)
		s.ingredients.AssertExpectations(t)
	})

	ih := NewIntendHandler(s.intends)
	ph := NewPurchaseOrderHandler(s.orders, s.receipts, s.payments)
	vh := NewInventoryHandler(s.adjustments, s.ingredients)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1")
	api.POST("/intends", ih.Create)
	api.GET("/intends/:id", ih.Get)
	api.DELETE("/intends/:id/items/:itemId", ih.DeleteItem)
	api.POST("/purchase-orders", ph.Create)
	api.GET("/purchase-orders/:id", ph.Get)
	api.PUT("/purchase-orders/:id/receivable", ph.SetReceivable)
	api.POST("/purchase-orders/:id/grns", ph.ReceiveGoods)
	api.POST("/purchase-orders/:id/payments", ph.RecordPayment)
	api.POST("/stock-adjustments", vh.AdjustStock)
	api.GET("/ingredients/:id/movements", vh.ListMovements)
	return r, s
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		RequestID string         `json:"request_id"`
		Details   map[string]any `json:"details"`
		Fields    []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"fields"`
	} `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestPurchaseOrderHandler_Create(t *testing.T) {
	intendID, vendorID, itemID, ingredientID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	t.Run("valid request returns 201 with order", func(t *testing.T) {
		r, s := newTestEngine(t)
		s.orders.On("GeneratePurchaseOrder", mock.Anything, mock.MatchedBy(func(req procurementapp.GeneratePurchaseOrderRequest) bool {
			return req.IntendID == intendID && len(req.Items) == 1 &&
				req.Items[0].Quantity.Equal(decimal.NewFromInt(5)) &&
				req.Items[0].UnitPrice.Equal(decimal.RequireFromString("50.25"))
		})).Return(&procurementapp.PurchaseOrderResponse{PONumber: "PO-20260118-0001", Status: "pending"}, nil).Once()

		w, env := do(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"intend_id": intendID,
			"vendor_id": vendorID,
			"items": []map[string]any{
				{"intend_item_id": itemID, "ingredient_id": ingredientID, "quantity": "5", "unit_price": 50.25},
			},
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), `"po_number":"PO-20260118-0001"`)
	})

	t.Run("non-positive quantity is rejected before the service", func(t *testing.T) {
		r, _ := newTestEngine(t)

		w, env := do(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"intend_id": intendID,
			"vendor_id": vendorID,
			"items": []map[string]any{
				{"intend_item_id": itemID, "ingredient_id": ingredientID, "quantity": "0", "unit_price": "10"},
			},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
		require.Len(t, env.Error.Fields, 1)
		assert.Equal(t, "items[0].quantity", env.Error.Fields[0].Field)
		assert.NotEmpty(t, env.Error.RequestID)
	})

	t.Run("empty items", func(t *testing.T) {
		r, _ := newTestEngine(t)

		w, env := do(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"intend_id": intendID, "vendor_id": vendorID, "items": []any{},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "items", env.Error.Fields[0].Field)
	})

	t.Run("malformed json", func(t *testing.T) {
		r, _ := newTestEngine(t)

		w, env := do(t, r, http.MethodPost, "/api/v1/purchase-orders", `{"intend_id":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_JSON", env.Error.Code)
	})

	t.Run("already linked intend item is a 422", func(t *testing.T) {
		r, s := newTestEngine(t)
		s.orders.On("GeneratePurchaseOrder", mock.Anything, mock.Anything).
			Return(nil, shared.NewBusinessRuleError(procurement.CodeIntendItemLinked, "intend item already ordered",
				map[string]any{"intend_item_id": itemID.String()})).Once()

		w, env := do(t, r, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"intend_id": intendID,
			"vendor_id": vendorID,
			"items": []map[string]any{
				{"intend_item_id": itemID, "ingredient_id": ingredientID, "quantity": 1, "unit_price": 1},
			},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, procurement.CodeIntendItemLinked, env.Error.Code)
		assert.Equal(t, itemID.String(), env.Error.Details["intend_item_id"])
	})
}

func TestPurchaseOrderHandler_Get(t *testing.T) {
	t.Run("bad id", func(t *testing.T) {
		r, _ := newTestEngine(t)
		w, env := do(t, r, http.MethodGet, "/api/v1/purchase-orders/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		r, s := newTestEngine(t)
		id := uuid.New()
		s.orders.On("GetPurchaseOrder", mock.Anything, id).Return(nil, shared.NewNotFoundError("purchase order")).Once()

		w, env := do(t, r, http.MethodGet, "/api/v1/purchase-orders/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "purchase order not found", env.Error.Message)
	})

	t.Run("integrity failure is masked as 500", func(t *testing.T) {
		r, s := newTestEngine(t)
		id := uuid.New()
		s.orders.On("GetPurchaseOrder", mock.Anything, id).
			Return(nil, shared.NewIntegrityError("load purchase order", errors.New("pq: connection refused"))).Once()

		w, env := do(t, r, http.MethodGet, "/api/v1/purchase-orders/"+id.String(), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, env.Error.Message, "pq:")
	})
}

func TestPurchaseOrderHandler_SetReceivable(t *testing.T) {
	r, s := newTestEngine(t)
	id := uuid.New()
	s.orders.On("SetActualReceivable", mock.Anything, id, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(300))
	})).Return(&procurementapp.PurchaseOrderResponse{ID: id}, nil).Once()

	w, _ := do(t, r, http.MethodPut, "/api/v1/purchase-orders/"+id.String()+"/receivable",
		map[string]any{"actual_receivable_amount": "300"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, r, http.MethodPut, "/api/v1/purchase-orders/"+id.String()+"/receivable",
		map[string]any{"actual_receivable_amount": "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "actual_receivable_amount", env.Error.Fields[0].Field)
}

func TestPurchaseOrderHandler_ReceiveGoods(t *testing.T) {
	r, s := newTestEngine(t)
	poID, poItemID := uuid.New(), uuid.New()
	received := time.Date(2026, 1, 18, 9, 0, 0, 0, time.UTC)

	s.receipts.On("ReceiveGoods", mock.Anything, poID, mock.MatchedBy(func(req procurementapp.ReceiveGoodsRequest) bool {
		return req.ReceivedDate.Equal(received) && req.Items[0].POItemID == poItemID
	})).Return(&procurementapp.ReceiveGoodsResponse{
		GoodsReceipt: procurementapp.GoodsReceiptResponse{GRNNumber: "GRN-20260118-0001"},
		Advisories:   []procurementapp.Advisory{{Effect: procurementapp.EffectStockMovement, Message: "ledger unavailable"}},
	}, nil).Once()

	w, env := do(t, r, http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/grns", map[string]any{
		"received_date": received,
		"items":         []map[string]any{{"po_item_id": poItemID, "quantity_received": "3", "unit_price_actual": "50"}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(env.Data), `"grn_number":"GRN-20260118-0001"`)
	assert.Contains(t, string(env.Data), `"effect":"stock_movement"`)

	t.Run("missing received date", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/grns", map[string]any{
			"items": []map[string]any{{"po_item_id": poItemID, "quantity_received": "3"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "received_date", env.Error.Fields[0].Field)
	})
}

func TestPurchaseOrderHandler_RecordPayment(t *testing.T) {
	poID := uuid.New()

	t.Run("over outstanding is a 422 with figures", func(t *testing.T) {
		r, s := newTestEngine(t)
		s.payments.On("RecordPayment", mock.Anything, poID, mock.Anything).
			Return(nil, shared.NewBusinessRuleError(procurement.CodePaymentExceedsOutstanding, "payment exceeds outstanding amount",
				map[string]any{"outstanding": "30.00", "requested": "31.00"})).Once()

		w, env := do(t, r, http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/payments",
			map[string]any{"amount": "31", "payment_method": "cash"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, procurement.CodePaymentExceedsOutstanding, env.Error.Code)
		assert.Equal(t, "30.00", env.Error.Details["outstanding"])
	})

	t.Run("unknown method", func(t *testing.T) {
		r, _ := newTestEngine(t)

		w, env := do(t, r, http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/payments",
			map[string]any{"amount": "10", "payment_method": "barter"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "payment_method", env.Error.Fields[0].Field)
	})
}

func TestIntendHandler(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		r, s := newTestEngine(t)
		s.intends.On("CreateIntend", mock.Anything, mock.MatchedBy(func(req procurementapp.CreateIntendRequest) bool {
			return len(req.Items) == 2
		})).Return(&procurementapp.IntendResponse{Code: "IND-20260118-0001", Status: "pending"}, nil).Once()

		w, env := do(t, r, http.MethodPost, "/api/v1/intends", map[string]any{
			"items": []map[string]any{
				{"ingredient_id": uuid.New(), "quantity": "2.5"},
				{"ingredient_id": uuid.New(), "quantity": 1},
			},
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, string(env.Data), "IND-20260118-0001")
	})

	t.Run("deleting the last item", func(t *testing.T) {
		r, s := newTestEngine(t)
		id, itemID := uuid.New(), uuid.New()
		s.intends.On("DeleteIntendItem", mock.Anything, id, itemID).
			Return(nil, shared.NewBusinessRuleError(procurement.CodeLastIntendItem, "an intend must keep at least one item", nil)).Once()

		w, env := do(t, r, http.MethodDelete, "/api/v1/intends/"+id.String()+"/items/"+itemID.String(), nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, procurement.CodeLastIntendItem, env.Error.Code)
	})

	t.Run("bad item id", func(t *testing.T) {
		r, _ := newTestEngine(t)
		w, _ := do(t, r, http.MethodDelete, "/api/v1/intends/"+uuid.NewString()+"/items/x", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInventoryHandler(t *testing.T) {
	t.Run("adjust stock", func(t *testing.T) {
		r, s := newTestEngine(t)
		s.adjustments.On("AdjustStock", mock.Anything, mock.MatchedBy(func(req inventoryapp.AdjustStockRequest) bool {
			return req.AdjustmentType == "physical_count" && req.Items[0].ActualQuantity.Equal(decimal.NewFromInt(92))
		})).Return(&inventoryapp.StockAdjustmentResponse{AdjustmentNumber: "ADJ-20260118-0001"}, nil).Once()

		w, env := do(t, r, http.MethodPost, "/api/v1/stock-adjustments", map[string]any{
			"adjustment_type": "physical_count",
			"adjustment_date": time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC),
			"items": []map[string]any{
				{"ingredient_id": uuid.New(), "system_quantity": "100", "actual_quantity": "92"},
			},
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, string(env.Data), "ADJ-20260118-0001")
	})

	t.Run("stale snapshot is a 422", func(t *testing.T) {
		r, s := newTestEngine(t)
		s.adjustments.On("AdjustStock", mock.Anything, mock.Anything).
			Return(nil, shared.NewBusinessRuleError(inventoryapp.CodeStaleSystemQuantity, "system quantity is stale", nil)).Once()

		w, env := do(t, r, http.MethodPost, "/api/v1/stock-adjustments", map[string]any{
			"adjustment_type": "wastage",
			"adjustment_date": time.Now(),
			"items":           []map[string]any{{"ingredient_id": uuid.New(), "system_quantity": "1", "actual_quantity": "0"}},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, inventoryapp.CodeStaleSystemQuantity, env.Error.Code)
	})

	t.Run("negative actual quantity", func(t *testing.T) {
		r, _ := newTestEngine(t)

		w, env := do(t, r, http.MethodPost, "/api/v1/stock-adjustments", map[string]any{
			"adjustment_type": "correction",
			"adjustment_date": time.Now(),
			"items":           []map[string]any{{"ingredient_id": uuid.New(), "system_quantity": "1", "actual_quantity": "-2"}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "items[0].actual_quantity", env.Error.Fields[0].Field)
	})

	t.Run("movements limit", func(t *testing.T) {
		r, s := newTestEngine(t)
		id := uuid.New()
		s.ingredients.On("ListMovements", mock.Anything, id, inventoryapp.MovementListFilter{Limit: 10}).
			Return([]inventoryapp.StockMovementResponse{{MovementType: "in"}}, nil).Once()

		w, _ := do(t, r, http.MethodGet, "/api/v1/ingredients/"+id.String()+"/movements?limit=10", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, env := do(t, r, http.MethodGet, "/api/v1/ingredients/"+id.String()+"/movements?limit=5000", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "limit", env.Error.Fields[0].Field)

		w, env = do(t, r, http.MethodGet, "/api/v1/ingredients/"+id.String()+"/movements?sort_by=id", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "sort_by", env.Error.Fields[0].Field)

		w, _ = do(t, r, http.MethodGet, "/api/v1/ingredients/"+id.String()+"/movements?limit=abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("movements sorted oldest first", func(t *testing.T) {
		r, s := newTestEngine(t)
		id := uuid.New()
		s.ingredients.On("ListMovements", mock.Anything, id,
			inventoryapp.MovementListFilter{SortBy: "movement_date", SortOrder: "asc"}).
			Return([]inventoryapp.StockMovementResponse{}, nil).Once()

		w, _ := do(t, r, http.MethodGet, "/api/v1/ingredients/"+id.String()+"/movements?sort_by=movement_date&sort_order=asc", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(h *HealthHandler) (*httptest.ResponseRecorder, envelope) {
		r := gin.New()
		r.GET("/health", h.Health)
		return do(t, r, http.MethodGet, "/health", nil)
	}

	w, env := run(NewHealthHandler("1.2.3", HealthCheck{Name: "database", Check: func(context.Context) error { return nil }}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"database":"ok"`)

	w, env = run(NewHealthHandler("1.2.3",
		HealthCheck{Name: "database", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }},
	))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, string(env.Data), `"status":"unavailable"`)
}
