package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	// FindByID finds a vendor by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)

	// ExistsByID checks if a vendor exists
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// Save creates or updates a vendor
	Save(ctx context.Context, vendor *Vendor) error
}

// IntendRepository defines the interface for intend persistence
type IntendRepository interface {
	// FindByID loads an intend with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Intend, error)

	// FindByIDForUpdate loads an intend with its items and locks the header row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Intend, error)

	// Create inserts an intend and its items
	Create(ctx context.Context, intend *Intend) error

	// UpdateStatus writes the derived status
	UpdateStatus(ctx context.Context, id uuid.UUID, status IntendStatus) error

	// CountItems counts the items of an intend
	CountItems(ctx context.Context, intendID uuid.UUID) (int64, error)

	// CountLinkedItems counts the items referenced by at least one purchase order item
	CountLinkedItems(ctx context.Context, intendID uuid.UUID) (int64, error)

	// FindLinkedItemIDs returns which of the given intend items are referenced by a purchase order item
	FindLinkedItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	// DeleteItem removes an intend item
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID loads a purchase order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForUpdate loads a purchase order with its items and locks the header row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// Create inserts the purchase order header. Returns shared.ErrDuplicateNumber
	// when the PO number is taken.
	Create(ctx context.Context, po *PurchaseOrder) error

	// CreateItems inserts purchase order items
	CreateItems(ctx context.Context, items []POItem) error

	// AddReceivedQuantity atomically adds quantity to an item's quantity_received
	AddReceivedQuantity(ctx context.Context, itemID uuid.UUID, quantity decimal.Decimal) error

	// UpdateReceiptProgress writes the receipt caches and status
	UpdateReceiptProgress(ctx context.Context, po *PurchaseOrder) error

	// UpdateStatus writes the status
	UpdateStatus(ctx context.Context, id uuid.UUID, status PurchaseOrderStatus) error

	// UpdateTotalPaid writes the payment aggregate cache
	UpdateTotalPaid(ctx context.Context, id uuid.UUID, totalPaid decimal.Decimal) error

	// UpdateActualReceivable writes the receivable override
	UpdateActualReceivable(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// GoodsReceiptRepository defines the interface for GRN persistence
type GoodsReceiptRepository interface {
	// Create inserts the GRN header. Returns shared.ErrDuplicateNumber when the
	// GRN number is taken.
	Create(ctx context.Context, grn *GoodsReceipt) error

	// CreateItem inserts one GRN item
	CreateItem(ctx context.Context, item *GoodsReceiptItem) error

	// FindByPurchaseOrder lists GRNs of a purchase order with their items
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]GoodsReceipt, error)

	// ExistsForPurchaseOrder checks if any GRN was recorded for the purchase order
	ExistsForPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (bool, error)

	// SumReceivedValue returns Σ quantity_received × unit_price_actual over all GRN items of the purchase order
	SumReceivedValue(ctx context.Context, purchaseOrderID uuid.UUID) (decimal.Decimal, error)

	// SumReceivedByPOItem returns Σ quantity_received over all GRN items of a purchase order item
	SumReceivedByPOItem(ctx context.Context, poItemID uuid.UUID) (decimal.Decimal, error)
}

// PaymentRepository is append-only: payments are never updated or deleted
type PaymentRepository interface {
	// Create inserts a payment. Returns shared.ErrDuplicateNumber when the
	// payment number is taken.
	Create(ctx context.Context, payment *Payment) error

	// FindByPurchaseOrder lists payments of a purchase order, oldest first
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]Payment, error)

	// SumByPurchaseOrder returns the total paid against a purchase order
	SumByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (decimal.Decimal, error)
}
