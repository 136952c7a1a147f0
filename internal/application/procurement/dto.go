package procurement

import (
	"time"

	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Advisory reports a best-effort side effect that failed after the core
// records were committed. The operation itself succeeded.
type Advisory struct {
	Effect       string     `json:"effect"`
	IngredientID *uuid.UUID `json:"ingredient_id,omitempty"`
	Message      string     `json:"message"`
}

const (
	// EffectLastPrice is the ingredient last_price refresh
	EffectLastPrice = "last_price"
	// EffectStockMovement is the inbound stock movement of a goods receipt
	EffectStockMovement = "stock_movement"
)

// ==================== Intend DTOs ====================

// CreateIntendRequest represents a request to raise an intend
type CreateIntendRequest struct {
	VendorID *uuid.UUID              `json:"vendor_id"`
	Notes    string                  `json:"notes" binding:"max=500"`
	Items    []CreateIntendItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateIntendItemInput represents one requested ingredient
type CreateIntendItemInput struct {
	IngredientID uuid.UUID       `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
	Remarks      string          `json:"remarks" binding:"max=200"`
}

// IntendResponse represents an intend with its items
type IntendResponse struct {
	ID        uuid.UUID            `json:"id"`
	Code      string               `json:"code"`
	VendorID  *uuid.UUID           `json:"vendor_id,omitempty"`
	Status    string               `json:"status"`
	Notes     string               `json:"notes,omitempty"`
	Items     []IntendItemResponse `json:"items"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// IntendItemResponse represents one intend item and whether a PO references it
type IntendItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	IngredientID uuid.UUID       `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Remarks      string          `json:"remarks,omitempty"`
	Linked       bool            `json:"linked"`
}

// ==================== Purchase Order DTOs ====================

// GeneratePurchaseOrderRequest represents a request to turn intend items into a purchase order
type GeneratePurchaseOrderRequest struct {
	IntendID  uuid.UUID                    `json:"intend_id" binding:"required"`
	VendorID  uuid.UUID                    `json:"vendor_id" binding:"required"`
	OrderDate time.Time                    `json:"order_date"`
	Notes     string                       `json:"notes" binding:"max=500"`
	Items     []GeneratePurchaseOrderInput `json:"items" binding:"required,min=1,dive"`
}

// GeneratePurchaseOrderInput represents one purchase order line
type GeneratePurchaseOrderInput struct {
	IntendItemID uuid.UUID       `json:"intend_item_id" binding:"required"`
	IngredientID uuid.UUID       `json:"ingredient_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required,decimal_gt0"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
}

// SetReceivableRequest represents a request to override the receivable amount
type SetReceivableRequest struct {
	ActualReceivableAmount decimal.Decimal `json:"actual_receivable_amount" binding:"required,decimal_gt0"`
}

// PurchaseOrderResponse represents a purchase order with its lines and caches
type PurchaseOrderResponse struct {
	ID                     uuid.UUID               `json:"id"`
	PONumber               string                  `json:"po_number"`
	IntendID               *uuid.UUID              `json:"intend_id,omitempty"`
	VendorID               uuid.UUID               `json:"vendor_id"`
	OrderDate              time.Time               `json:"order_date"`
	Status                 string                  `json:"status"`
	TotalAmount            decimal.Decimal         `json:"total_amount"`
	TotalItemsCount        int                     `json:"total_items_count"`
	ReceivedItemsCount     int                     `json:"received_items_count"`
	ReceivedPercentage     decimal.Decimal         `json:"received_percentage"`
	TotalPaid              decimal.Decimal         `json:"total_paid"`
	ActualReceivableAmount *decimal.Decimal        `json:"actual_receivable_amount,omitempty"`
	OutstandingAmount      decimal.Decimal         `json:"outstanding_amount"`
	Notes                  string                  `json:"notes,omitempty"`
	Items                  []PurchaseOrderItemResp `json:"items"`
	Advisories             []Advisory              `json:"advisories,omitempty"`
	CreatedAt              time.Time               `json:"created_at"`
	UpdatedAt              time.Time               `json:"updated_at"`
}

// PurchaseOrderItemResp represents one purchase order line
type PurchaseOrderItemResp struct {
	ID               uuid.UUID       `json:"id"`
	IngredientID     uuid.UUID       `json:"ingredient_id"`
	IntendItemID     *uuid.UUID      `json:"intend_item_id,omitempty"`
	QuantityOrdered   decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
}

// ==================== Goods Receipt DTOs ====================

// ReceiveGoodsRequest represents a delivery against a purchase order
type ReceiveGoodsRequest struct {
	ReceivedDate time.Time          `json:"received_date" binding:"required"`
	Remarks      string             `json:"remarks" binding:"max=500"`
	Items        []ReceiveGoodsItem `json:"items" binding:"required,min=1,dive"`
}

// ReceiveGoodsItem represents the delivered quantity of one purchase order line.
// Ordered quantity and price are read from the stored line. An omitted actual
// price means the ordered price.
type ReceiveGoodsItem struct {
	POItemID         uuid.UUID        `json:"po_item_id" binding:"required"`
	QuantityReceived decimal.Decimal  `json:"quantity_received" binding:"required,decimal_gt0"`
	UnitPriceActual  *decimal.Decimal `json:"unit_price_actual,omitempty" binding:"omitempty,decimal_gte0"`
	Remarks          string           `json:"remarks" binding:"max=200"`
}

// GoodsReceiptResponse represents a recorded GRN
type GoodsReceiptResponse struct {
	ID              uuid.UUID                  `json:"id"`
	GRNNumber       string                     `json:"grn_number"`
	PurchaseOrderID uuid.UUID                  `json:"po_id"`
	ReceivedDate    time.Time                  `json:"received_date"`
	Status          string                     `json:"status"`
	Remarks         string                     `json:"remarks,omitempty"`
	TotalValue      decimal.Decimal            `json:"total_value"`
	Items           []GoodsReceiptItemResponse `json:"items"`
	CreatedAt       time.Time                  `json:"created_at"`
}

// GoodsReceiptItemResponse represents one GRN line
type GoodsReceiptItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	POItemID         uuid.UUID       `json:"po_item_id"`
	IngredientID     uuid.UUID       `json:"ingredient_id"`
	QuantityOrdered  decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	UnitPriceOrdered decimal.Decimal `json:"unit_price_ordered"`
	UnitPriceActual  decimal.Decimal `json:"unit_price_actual"`
	Remarks          string          `json:"remarks,omitempty"`
}

// ReceiveGoodsResponse is the GRN together with the refreshed purchase order
type ReceiveGoodsResponse struct {
	GoodsReceipt  GoodsReceiptResponse  `json:"grn"`
	PurchaseOrder PurchaseOrderResponse `json:"purchase_order"`
	Advisories    []Advisory            `json:"advisories,omitempty"`
}

// ==================== Payment DTOs ====================

// RecordPaymentRequest represents a vendor payment against a purchase order
type RecordPaymentRequest struct {
	PaymentDate          time.Time       `json:"payment_date"`
	Amount               decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	PaymentMethod        string          `json:"payment_method" binding:"required,oneof=cash bank_transfer upi cheque card"`
	TransactionReference string          `json:"transaction_reference" binding:"max=100"`
	Remarks              string          `json:"remarks" binding:"max=500"`
}

// PaymentResponse represents a recorded payment
type PaymentResponse struct {
	ID                   uuid.UUID       `json:"id"`
	PaymentNumber        string          `json:"payment_number"`
	PurchaseOrderID      uuid.UUID       `json:"po_id"`
	VendorID             uuid.UUID       `json:"vendor_id"`
	PaymentDate          time.Time       `json:"payment_date"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentMethod        string          `json:"payment_method"`
	Status               string          `json:"status"`
	TransactionReference string          `json:"transaction_reference,omitempty"`
	Remarks              string          `json:"remarks,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// RecordPaymentResponse is the payment with the order's refreshed totals
type RecordPaymentResponse struct {
	Payment           PaymentResponse `json:"payment"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// ==================== Converters ====================

// ToIntendResponse converts an intend; linked marks items referenced by a PO line
func ToIntendResponse(i *procurement.Intend, linked map[uuid.UUID]bool) IntendResponse {
	items := make([]IntendItemResponse, len(i.Items))
	for n := range i.Items {
		item := &i.Items[n]
		items[n] = IntendItemResponse{
			ID:           item.ID,
			IngredientID: item.IngredientID,
			Quantity:     item.Quantity,
			Remarks:      item.Remarks,
			Linked:       linked[item.ID],
		}
	}
	return IntendResponse{
		ID:        i.ID,
		Code:      i.Code,
		VendorID:  i.VendorID,
		Status:    i.Status.String(),
		Notes:     i.Notes,
		Items:     items,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// ToPurchaseOrderResponse converts a purchase order
func ToPurchaseOrderResponse(po *procurement.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResp, len(po.Items))
	for n := range po.Items {
		item := &po.Items[n]
		items[n] = PurchaseOrderItemResp{
			ID:               item.ID,
			IngredientID:     item.IngredientID,
			IntendItemID:     item.IntendItemID,
			QuantityOrdered:   item.QuantityOrdered,
			QuantityReceived:  item.QuantityReceived,
			RemainingQuantity: item.RemainingQuantity(),
			UnitPrice:         item.UnitPrice,
			TotalPrice:        item.TotalPrice,
		}
	}
	return PurchaseOrderResponse{
		ID:                     po.ID,
		PONumber:               po.PONumber,
		IntendID:               po.IntendID,
		VendorID:               po.VendorID,
		OrderDate:              po.OrderDate,
		Status:                 po.Status.String(),
		TotalAmount:            po.TotalAmount,
		TotalItemsCount:        po.TotalItemsCount,
		ReceivedItemsCount:     po.ReceivedItemsCount,
		ReceivedPercentage:     po.ReceivedPercentage,
		TotalPaid:              po.TotalPaid,
		ActualReceivableAmount: po.ActualReceivableAmount,
		OutstandingAmount:      po.OutstandingAmount(),
		Notes:                  po.Notes,
		Items:                  items,
		CreatedAt:              po.CreatedAt,
		UpdatedAt:              po.UpdatedAt,
	}
}

// ToGoodsReceiptResponse converts a GRN
func ToGoodsReceiptResponse(g *procurement.GoodsReceipt) GoodsReceiptResponse {
	items := make([]GoodsReceiptItemResponse, len(g.Items))
	for n := range g.Items {
		item := &g.Items[n]
		items[n] = GoodsReceiptItemResponse{
			ID:               item.ID,
			POItemID:         item.POItemID,
			IngredientID:     item.IngredientID,
			QuantityOrdered:  item.QuantityOrdered,
			QuantityReceived: item.QuantityReceived,
			UnitPriceOrdered: item.UnitPriceOrdered,
			UnitPriceActual:  item.UnitPriceActual,
			Remarks:          item.Remarks,
		}
	}
	return GoodsReceiptResponse{
		ID:              g.ID,
		GRNNumber:       g.GRNNumber,
		PurchaseOrderID: g.PurchaseOrderID,
		ReceivedDate:    g.ReceivedDate,
		Status:          string(g.Status),
		Remarks:         g.Remarks,
		TotalValue:      g.TotalValue(),
		Items:           items,
		CreatedAt:       g.CreatedAt,
	}
}

// ToPaymentResponse converts a payment
func ToPaymentResponse(p *procurement.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID,
		PaymentNumber:        p.PaymentNumber,
		PurchaseOrderID:      p.PurchaseOrderID,
		VendorID:             p.VendorID,
		PaymentDate:          p.PaymentDate,
		Amount:               p.Amount,
		PaymentMethod:        string(p.Method),
		Status:               string(p.Status),
		TransactionReference: p.TransactionReference,
		Remarks:              p.Remarks,
		CreatedAt:            p.CreatedAt,
	}
}
