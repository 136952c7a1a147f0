package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	procurementapp "github.com/cafe/backend/internal/application/procurement"
)

// PurchaseOrderService is the part of the purchase order service the HTTP layer uses
type PurchaseOrderService interface {
	GeneratePurchaseOrder(ctx context.Context, req procurementapp.GeneratePurchaseOrderRequest) (*procurementapp.PurchaseOrderResponse, error)
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)
	ConfirmPurchaseOrder(ctx context.Context, id uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)
	SetActualReceivable(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*procurementapp.PurchaseOrderResponse, error)
}

// GoodsReceiptService is the part of the goods receipt service the HTTP layer uses
type GoodsReceiptService interface {
	ReceiveGoods(ctx context.Context, purchaseOrderID uuid.UUID, req procurementapp.ReceiveGoodsRequest) (*procurementapp.ReceiveGoodsResponse, error)
	ListGoodsReceipts(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurementapp.GoodsReceiptResponse, error)
}

// PaymentService is the part of the payment service the HTTP layer uses
type PaymentService interface {
	RecordPayment(ctx context.Context, purchaseOrderID uuid.UUID, req procurementapp.RecordPaymentRequest) (*procurementapp.RecordPaymentResponse, error)
	ListPayments(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurementapp.PaymentResponse, error)
}

// PurchaseOrderHandler serves /purchase-orders and its GRN and payment sub-resources
type PurchaseOrderHandler struct {
	BaseHandler
	orders   PurchaseOrderService
	receipts GoodsReceiptService
	payments PaymentService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orders PurchaseOrderService, receipts GoodsReceiptService, payments PaymentService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders, receipts: receipts, payments: payments}
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req procurementapp.GeneratePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orders.GeneratePurchaseOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.orders.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Confirm handles POST /purchase-orders/:id/confirm
func (h *PurchaseOrderHandler) Confirm(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.orders.ConfirmPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetReceivable handles PUT /purchase-orders/:id/receivable
func (h *PurchaseOrderHandler) SetReceivable(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req procurementapp.SetReceivableRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.orders.SetActualReceivable(c.Request.Context(), id, req.ActualReceivableAmount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ReceiveGoods handles POST /purchase-orders/:id/grns
func (h *PurchaseOrderHandler) ReceiveGoods(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req procurementapp.ReceiveGoodsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.receipts.ReceiveGoods(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListGoodsReceipts handles GET /purchase-orders/:id/grns
func (h *PurchaseOrderHandler) ListGoodsReceipts(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.receipts.ListGoodsReceipts(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment handles POST /purchase-orders/:id/payments
func (h *PurchaseOrderHandler) RecordPayment(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	var req procurementapp.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.payments.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListPayments handles GET /purchase-orders/:id/payments
func (h *PurchaseOrderHandler) ListPayments(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.payments.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
