package procurement

import (
	"time"

	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order.
// Statuses only move forward.
type PurchaseOrderStatus string

const (
	// PurchaseOrderStatusPending is a newly generated order
	PurchaseOrderStatusPending PurchaseOrderStatus = "pending"
	// PurchaseOrderStatusConfirmed has been confirmed with the vendor
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "confirmed"
	// PurchaseOrderStatusPartiallyReceived has at least one line with received goods
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "partially_received"
	// PurchaseOrderStatusReceived has every line fully received
	PurchaseOrderStatusReceived PurchaseOrderStatus = "received"
)

var purchaseOrderStatusRank = map[PurchaseOrderStatus]int{
	PurchaseOrderStatusPending:           0,
	PurchaseOrderStatusConfirmed:         1,
	PurchaseOrderStatusPartiallyReceived: 2,
	PurchaseOrderStatusReceived:          3,
}

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	_, ok := purchaseOrderStatusRank[s]
	return ok
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo returns true when target is strictly later than s
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	from, ok := purchaseOrderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := purchaseOrderStatusRank[target]
	if !ok {
		return false
	}
	return to > from
}

// POItem is a purchase order line with a locked-in unit price
type POItem struct {
	ID               uuid.UUID
	PurchaseOrderID  uuid.UUID
	IngredientID     uuid.UUID
	IntendItemID     *uuid.UUID
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
}

// NewPOItem creates a purchase order line
func NewPOItem(purchaseOrderID, ingredientID uuid.UUID, intendItemID *uuid.UUID, quantity, unitPrice decimal.Decimal) (*POItem, error) {
	if ingredientID == uuid.Nil {
		return nil, shared.NewValidationError("ingredient_id", "Ingredient ID is required")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("quantity", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("unit_price", "Unit price cannot be negative")
	}
	return &POItem{
		ID:               uuid.New(),
		PurchaseOrderID:  purchaseOrderID,
		IngredientID:     ingredientID,
		IntendItemID:     intendItemID,
		QuantityOrdered:  quantity,
		QuantityReceived: decimal.Zero,
		UnitPrice:        unitPrice,
		TotalPrice:       quantity.Mul(unitPrice),
	}, nil
}

// AddReceivedQuantity accumulates a receipt. Receiving more than ordered is allowed.
func (i *POItem) AddReceivedQuantity(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("quantity_received", "Received quantity must be positive")
	}
	i.QuantityReceived = i.QuantityReceived.Add(quantity)
	return nil
}

// IsFullyReceived returns true if received quantity reaches the ordered quantity
func (i *POItem) IsFullyReceived() bool {
	return i.QuantityReceived.GreaterThanOrEqual(i.QuantityOrdered)
}

// HasReceipt returns true if anything was received for this line
func (i *POItem) HasReceipt() bool {
	return i.QuantityReceived.IsPositive()
}

// RemainingQuantity returns the quantity still to be received, never negative
func (i *POItem) RemainingQuantity() decimal.Decimal {
	remaining := i.QuantityOrdered.Sub(i.QuantityReceived)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// PurchaseOrder is a vendor-facing commitment generated from intend items.
// TotalAmount is frozen at creation. The receipt counters and TotalPaid are caches
// recomputed from lines, receipts and payments.
type PurchaseOrder struct {
	shared.BaseEntity
	PONumber               string
	IntendID               *uuid.UUID
	VendorID               uuid.UUID
	OrderDate              time.Time
	Status                 PurchaseOrderStatus
	TotalAmount            decimal.Decimal
	TotalItemsCount        int
	ReceivedItemsCount     int
	ReceivedPercentage     decimal.Decimal
	TotalPaid              decimal.Decimal
	ActualReceivableAmount *decimal.Decimal
	Notes                  string
	Items                  []POItem
}

// NewPurchaseOrder creates a pending purchase order without lines
func NewPurchaseOrder(poNumber string, vendorID uuid.UUID, intendID *uuid.UUID, orderDate time.Time) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewValidationError("po_number", "PO number is required")
	}
	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("vendor_id", "Vendor ID is required")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	return &PurchaseOrder{
		BaseEntity:         shared.NewBaseEntity(),
		PONumber:           poNumber,
		IntendID:           intendID,
		VendorID:           vendorID,
		OrderDate:          orderDate,
		Status:             PurchaseOrderStatusPending,
		TotalAmount:        decimal.Zero,
		ReceivedPercentage: decimal.Zero,
		TotalPaid:          decimal.Zero,
	}, nil
}

// AddItem appends a line and refreshes the total and item counters
func (po *PurchaseOrder) AddItem(ingredientID uuid.UUID, intendItemID *uuid.UUID, quantity, unitPrice decimal.Decimal) (*POItem, error) {
	if intendItemID != nil {
		for _, existing := range po.Items {
			if existing.IntendItemID != nil && *existing.IntendItemID == *intendItemID {
				return nil, shared.NewValidationError("intend_item_id", "Intend item appears more than once in the order")
			}
		}
	}
	item, err := NewPOItem(po.ID, ingredientID, intendItemID, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	po.Items = append(po.Items, *item)
	po.recalculateTotals()
	return &po.Items[len(po.Items)-1], nil
}

// SetPONumber replaces the number, used when a generated number collided
func (po *PurchaseOrder) SetPONumber(number string) {
	po.PONumber = number
}

// FindItem returns the line with the given ID, or nil
func (po *PurchaseOrder) FindItem(itemID uuid.UUID) *POItem {
	for idx := range po.Items {
		if po.Items[idx].ID == itemID {
			return &po.Items[idx]
		}
	}
	return nil
}

// Confirm moves a pending order to confirmed
func (po *PurchaseOrder) Confirm() error {
	if po.Status != PurchaseOrderStatusPending {
		return shared.NewBusinessRuleError(shared.ErrInvalidState.Code, "Only pending purchase orders can be confirmed", map[string]any{
			"status": po.Status.String(),
		})
	}
	po.Status = PurchaseOrderStatusConfirmed
	po.Touch()
	return nil
}

// DeriveReceiptStatus returns the status implied by the lines alone
func (po *PurchaseOrder) DeriveReceiptStatus() PurchaseOrderStatus {
	if len(po.Items) == 0 {
		return PurchaseOrderStatusPending
	}
	allReceived, anyReceived := true, false
	for i := range po.Items {
		if po.Items[i].IsFullyReceived() {
			anyReceived = true
			continue
		}
		allReceived = false
		if po.Items[i].HasReceipt() {
			anyReceived = true
		}
	}
	switch {
	case allReceived:
		return PurchaseOrderStatusReceived
	case anyReceived:
		return PurchaseOrderStatusPartiallyReceived
	default:
		return PurchaseOrderStatusPending
	}
}

// RecomputeReceiptProgress refreshes the receipt counters and status from the lines.
// The status never moves backwards.
func (po *PurchaseOrder) RecomputeReceiptProgress() {
	po.TotalItemsCount = len(po.Items)
	po.ReceivedItemsCount = 0
	for i := range po.Items {
		if po.Items[i].IsFullyReceived() {
			po.ReceivedItemsCount++
		}
	}
	po.ReceivedPercentage = ReceivedPercentage(po.ReceivedItemsCount, po.TotalItemsCount)

	if derived := po.DeriveReceiptStatus(); po.Status.CanTransitionTo(derived) {
		po.Status = derived
	}
	po.Touch()
}

// ReceivedPercentage returns received/total*100 rounded to 2 places
func ReceivedPercentage(received, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(received)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}

// ReceivableAmount returns the override when set, else the contracted total
func (po *PurchaseOrder) ReceivableAmount() decimal.Decimal {
	if po.ActualReceivableAmount != nil {
		return *po.ActualReceivableAmount
	}
	return po.TotalAmount
}

// OutstandingAmount returns what may still be paid against the receivable
func (po *PurchaseOrder) OutstandingAmount() decimal.Decimal {
	return po.ReceivableAmount().Sub(po.TotalPaid)
}

// SetActualReceivable overrides the receivable amount
func (po *PurchaseOrder) SetActualReceivable(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("actual_receivable_amount", "Receivable amount must be positive")
	}
	if amount.LessThan(po.TotalPaid) {
		return shared.NewBusinessRuleError("RECEIVABLE_BELOW_PAID", "Receivable amount cannot be less than the amount already paid", map[string]any{
			"total_paid":         po.TotalPaid.String(),
			"requested_override": amount.String(),
		})
	}
	po.ActualReceivableAmount = &amount
	po.Touch()
	return nil
}

// ApplyTotalPaid sets the cached payment aggregate
func (po *PurchaseOrder) ApplyTotalPaid(total decimal.Decimal) {
	po.TotalPaid = total
	po.Touch()
}

func (po *PurchaseOrder) recalculateTotals() {
	total := decimal.Zero
	for _, item := range po.Items {
		total = total.Add(item.TotalPrice)
	}
	po.TotalAmount = total
	po.TotalItemsCount = len(po.Items)
}
