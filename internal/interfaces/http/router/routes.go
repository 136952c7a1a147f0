package router

import (
	"github.com/gin-gonic/gin"

	"github.com/cafe/backend/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers mounted by Mount.
type Handlers struct {
	Intends        *handler.IntendHandler
	PurchaseOrders *handler.PurchaseOrderHandler
	Inventory      *handler.InventoryHandler
	Health         *handler.HealthHandler
}

// IntendRoutes builds the intend route group.
func IntendRoutes(h *handler.IntendHandler) *DomainGroup {
	return NewDomainGroup("intends", "/intends").
		POST("", h.Create).
		GET("/:id", h.Get).
		POST("/:id/recompute", h.Recompute).
		DELETE("/:id/items/:itemId", h.DeleteItem)
}

// PurchaseOrderRoutes builds the purchase order route group, including goods receipts and payments.
func PurchaseOrderRoutes(h *handler.PurchaseOrderHandler) *DomainGroup {
	return NewDomainGroup("purchase-orders", "/purchase-orders").
		POST("", h.Create).
		GET("/:id", h.Get).
		POST("/:id/confirm", h.Confirm).
		PUT("/:id/receivable", h.SetReceivable).
		POST("/:id/grns", h.ReceiveGoods).
		GET("/:id/grns", h.ListGoodsReceipts).
		POST("/:id/payments", h.RecordPayment).
		GET("/:id/payments", h.ListPayments)
}

// StockAdjustmentRoutes builds the stock adjustment route group.
func StockAdjustmentRoutes(h *handler.InventoryHandler) *DomainGroup {
	return NewDomainGroup("stock-adjustments", "/stock-adjustments").
		POST("", h.AdjustStock)
}

// IngredientRoutes builds the ingredient route group.
func IngredientRoutes(h *handler.InventoryHandler) *DomainGroup {
	return NewDomainGroup("ingredients", "/ingredients").
		GET("/:id", h.GetIngredient).
		GET("/:id/movements", h.ListMovements)
}

// Mount registers every API route under /api/v1 and the health probe at /health.
func Mount(engine *gin.Engine, h Handlers) {
	r := NewRouter(engine)
	if h.Intends != nil {
		r.Register(IntendRoutes(h.Intends))
	}
	if h.PurchaseOrders != nil {
		r.Register(PurchaseOrderRoutes(h.PurchaseOrders))
	}
	if h.Inventory != nil {
		r.Register(StockAdjustmentRoutes(h.Inventory)).Register(IngredientRoutes(h.Inventory))
	}
	r.Setup()

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}
}
