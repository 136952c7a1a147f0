// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel shared by every header table
//   - inventory.go: ingredients, stock_movements, stock_adjustments, stock_adjustment_items
//   - procurement.go: vendors, intends, purchase_orders, grns, payments and their items
//   - sequence.go: document_sequences, the daily counter behind document numbers
package models

// All returns every model in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&IngredientModel{},
		&VendorModel{},
		&IntendModel{},
		&IntendItemModel{},
		&PurchaseOrderModel{},
		&POItemModel{},
		&GoodsReceiptModel{},
		&GoodsReceiptItemModel{},
		&PaymentModel{},
		&StockMovementModel{},
		&StockAdjustmentModel{},
		&StockAdjustmentItemModel{},
		&DocumentSequenceModel{},
	}
}
