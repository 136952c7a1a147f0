package procurement

import (
	"time"

	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoodsReceiptStatus is the state of a GRN. A GRN is complete once recorded.
type GoodsReceiptStatus string

const (
	GoodsReceiptStatusCompleted GoodsReceiptStatus = "completed"
)

// GoodsReceipt (GRN) records one physical delivery against a purchase order
type GoodsReceipt struct {
	shared.BaseEntity
	GRNNumber       string
	PurchaseOrderID uuid.UUID
	ReceivedDate    time.Time
	Status          GoodsReceiptStatus
	Remarks         string
	Items           []GoodsReceiptItem
}

// GoodsReceiptItem is the quantity of one PO line delivered in this receipt,
// with the ordered quantity and price snapshotted at receipt time.
type GoodsReceiptItem struct {
	ID               uuid.UUID
	GRNID            uuid.UUID
	POItemID         uuid.UUID
	IngredientID     uuid.UUID
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	UnitPriceOrdered decimal.Decimal
	UnitPriceActual  decimal.Decimal
	Remarks          string
}

// NewGoodsReceipt creates a GRN header
func NewGoodsReceipt(grnNumber string, purchaseOrderID uuid.UUID, receivedDate time.Time, remarks string) (*GoodsReceipt, error) {
	if grnNumber == "" {
		return nil, shared.NewValidationError("grn_number", "GRN number is required")
	}
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewValidationError("po_id", "Purchase order ID is required")
	}
	if receivedDate.IsZero() {
		return nil, shared.NewValidationError("received_date", "Received date is required")
	}
	return &GoodsReceipt{
		BaseEntity:      shared.NewBaseEntity(),
		GRNNumber:       grnNumber,
		PurchaseOrderID: purchaseOrderID,
		ReceivedDate:    receivedDate,
		Status:          GoodsReceiptStatusCompleted,
		Remarks:         remarks,
	}, nil
}

// AddItem records a delivery for a PO line. A nil actual price falls back to
// the ordered price; an explicit zero is kept.
func (g *GoodsReceipt) AddItem(line *POItem, quantityReceived decimal.Decimal, unitPriceActual *decimal.Decimal, remarks string) (*GoodsReceiptItem, error) {
	if line == nil {
		return nil, shared.NewValidationError("po_item_id", "Purchase order item is required")
	}
	if line.PurchaseOrderID != g.PurchaseOrderID {
		return nil, shared.NewValidationError("po_item_id", "Item does not belong to this purchase order")
	}
	if !quantityReceived.IsPositive() {
		return nil, shared.NewValidationError("quantity_received", "Received quantity must be positive")
	}
	price := line.UnitPrice
	if unitPriceActual != nil {
		if unitPriceActual.IsNegative() {
			return nil, shared.NewValidationError("unit_price_actual", "Actual unit price cannot be negative")
		}
		price = *unitPriceActual
	}

	g.Items = append(g.Items, GoodsReceiptItem{
		ID:               uuid.New(),
		GRNID:            g.ID,
		POItemID:         line.ID,
		IngredientID:     line.IngredientID,
		QuantityOrdered:  line.QuantityOrdered,
		QuantityReceived: quantityReceived,
		UnitPriceOrdered: line.UnitPrice,
		UnitPriceActual:  price,
		Remarks:          remarks,
	})
	return &g.Items[len(g.Items)-1], nil
}

// LineValue returns quantity received times actual unit price
func (i *GoodsReceiptItem) LineValue() decimal.Decimal {
	return i.QuantityReceived.Mul(i.UnitPriceActual)
}

// TotalValue returns the value of everything received on this GRN
func (g *GoodsReceipt) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for i := range g.Items {
		total = total.Add(g.Items[i].LineValue())
	}
	return total
}
