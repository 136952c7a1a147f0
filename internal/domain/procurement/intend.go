package procurement

import (
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntendStatus is derived from how many items are linked to purchase order lines
type IntendStatus string

const (
	IntendStatusPending            IntendStatus = "pending"
	IntendStatusPartiallyFulfilled IntendStatus = "partially_fulfilled"
	IntendStatusFulfilled          IntendStatus = "fulfilled"
)

// String returns the string representation of IntendStatus
func (s IntendStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s IntendStatus) IsValid() bool {
	switch s {
	case IntendStatusPending, IntendStatusPartiallyFulfilled, IntendStatusFulfilled:
		return true
	}
	return false
}

// DeriveIntendStatus maps item counts to a status
func DeriveIntendStatus(totalItems, linkedItems int64) IntendStatus {
	switch {
	case linkedItems <= 0:
		return IntendStatusPending
	case linkedItems < totalItems:
		return IntendStatusPartiallyFulfilled
	default:
		return IntendStatusFulfilled
	}
}

// Intend is an internal stock request raised before procurement
type Intend struct {
	shared.BaseEntity
	Code     string
	VendorID *uuid.UUID
	Status   IntendStatus
	Notes    string
	Items    []IntendItem
}

// IntendItem is one requested ingredient. It counts as "in a PO" only while a
// purchase order item references its ID.
type IntendItem struct {
	ID           uuid.UUID
	IntendID     uuid.UUID
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
	Remarks      string
}

// NewIntend creates a pending intend
func NewIntend(code string, vendorID *uuid.UUID, notes string) (*Intend, error) {
	if code == "" {
		return nil, shared.NewValidationError("code", "Intend code is required")
	}
	return &Intend{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		VendorID:   vendorID,
		Status:     IntendStatusPending,
		Notes:      notes,
	}, nil
}

// AddItem appends a requested ingredient
func (i *Intend) AddItem(ingredientID uuid.UUID, quantity decimal.Decimal, remarks string) (*IntendItem, error) {
	if ingredientID == uuid.Nil {
		return nil, shared.NewValidationError("ingredient_id", "Ingredient ID is required")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("quantity", "Quantity must be positive")
	}
	i.Items = append(i.Items, IntendItem{
		ID:           uuid.New(),
		IntendID:     i.ID,
		IngredientID: ingredientID,
		Quantity:     quantity,
		Remarks:      remarks,
	})
	return &i.Items[len(i.Items)-1], nil
}

// FindItem returns the item with the given ID, or nil
func (i *Intend) FindItem(itemID uuid.UUID) *IntendItem {
	for idx := range i.Items {
		if i.Items[idx].ID == itemID {
			return &i.Items[idx]
		}
	}
	return nil
}

// OwnsItem reports whether itemID belongs to this intend
func (i *Intend) OwnsItem(itemID uuid.UUID) bool {
	return i.FindItem(itemID) != nil
}

// ApplyFulfillment sets the derived status from item counts.
// Returns true when the status changed.
func (i *Intend) ApplyFulfillment(totalItems, linkedItems int64) bool {
	next := DeriveIntendStatus(totalItems, linkedItems)
	if next == i.Status {
		return false
	}
	i.Status = next
	i.Touch()
	return true
}

const (
	// CodeIntendItemLinked is returned when an intend item is already referenced by a purchase order item
	CodeIntendItemLinked = "INTEND_ITEM_LINKED"
	// CodeLastIntendItem is returned when deleting would leave an intend without items
	CodeLastIntendItem = "LAST_INTEND_ITEM"
)

// NewIntendItemLinkedError reports that itemID already belongs to a purchase order
func NewIntendItemLinkedError(itemID uuid.UUID) error {
	return shared.NewBusinessRuleError(CodeIntendItemLinked, "Intend item is already linked to a purchase order", map[string]any{
		"intend_item_id": itemID.String(),
	})
}

// RemoveItem deletes an unlinked item. The last item of an intend cannot be removed.
func (i *Intend) RemoveItem(itemID uuid.UUID, linked bool) error {
	idx := -1
	for n := range i.Items {
		if i.Items[n].ID == itemID {
			idx = n
			break
		}
	}
	if idx < 0 {
		return shared.NewNotFoundError("intend item")
	}
	if linked {
		return NewIntendItemLinkedError(itemID)
	}
	if len(i.Items) == 1 {
		return shared.NewBusinessRuleError(CodeLastIntendItem, "An intend must keep at least one item", map[string]any{
			"intend_item_id": itemID.String(),
		})
	}
	i.Items = append(i.Items[:idx], i.Items[idx+1:]...)
	i.Touch()
	return nil
}
