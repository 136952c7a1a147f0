package models

import (
	"time"

	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorModel is the persistence model for the Vendor entity.
type VendorModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null"`
	Phone    string `gorm:"type:varchar(50)"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the persistence model to a domain Vendor entity.
func (m *VendorModel) ToDomain() *procurement.Vendor {
	return &procurement.Vendor{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Phone:      m.Phone,
		IsActive:   m.IsActive,
	}
}

// VendorModelFromDomain creates a new persistence model from a domain Vendor entity.
func VendorModelFromDomain(v *procurement.Vendor) *VendorModel {
	m := &VendorModel{Name: v.Name, Phone: v.Phone, IsActive: v.IsActive}
	m.FromDomainBaseEntity(v.BaseEntity)
	return m
}

// IntendModel is the persistence model for the Intend header.
// Status is a cache derived from how many items are linked to PO items.
type IntendModel struct {
	BaseModel
	Code     string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_intend_code"`
	VendorID *uuid.UUID               `gorm:"type:uuid;index"`
	Status   procurement.IntendStatus `gorm:"type:varchar(30);not null;default:'pending'"`
	Notes    string                   `gorm:"type:text"`
	Items    []IntendItemModel        `gorm:"foreignKey:IntendID;references:ID"`
}

// TableName returns the table name for GORM
func (IntendModel) TableName() string {
	return "intends"
}

// ToDomain converts the persistence model to a domain Intend.
func (m *IntendModel) ToDomain() *procurement.Intend {
	intend := &procurement.Intend{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		VendorID:   m.VendorID,
		Status:     m.Status,
		Notes:      m.Notes,
		Items:      make([]procurement.IntendItem, len(m.Items)),
	}
	for i, item := range m.Items {
		intend.Items[i] = *item.ToDomain()
	}
	return intend
}

// IntendModelFromDomain creates the header model. Items are stored separately.
func IntendModelFromDomain(i *procurement.Intend) *IntendModel {
	m := &IntendModel{Code: i.Code, VendorID: i.VendorID, Status: i.Status, Notes: i.Notes}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}

// IntendItemModel is the persistence model for one requested ingredient.
type IntendItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	IntendID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Remarks      string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (IntendItemModel) TableName() string {
	return "intend_items"
}

// ToDomain converts the persistence model to a domain IntendItem.
func (m *IntendItemModel) ToDomain() *procurement.IntendItem {
	return &procurement.IntendItem{
		ID:           m.ID,
		IntendID:     m.IntendID,
		IngredientID: m.IngredientID,
		Quantity:     m.Quantity,
		Remarks:      m.Remarks,
	}
}

// IntendItemModelFromDomain creates a new persistence model from a domain IntendItem.
func IntendItemModelFromDomain(i *procurement.IntendItem) *IntendItemModel {
	return &IntendItemModel{
		ID:           i.ID,
		IntendID:     i.IntendID,
		IngredientID: i.IngredientID,
		Quantity:     i.Quantity,
		Remarks:      i.Remarks,
	}
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder header.
type PurchaseOrderModel struct {
	BaseModel
	PONumber               string                          `gorm:"column:po_number;type:varchar(50);not null;uniqueIndex:idx_purchase_order_number"`
	IntendID               *uuid.UUID                      `gorm:"type:uuid;index"`
	VendorID               uuid.UUID                       `gorm:"type:uuid;not null;index"`
	OrderDate              time.Time                       `gorm:"not null"`
	Status                 procurement.PurchaseOrderStatus `gorm:"type:varchar(30);not null;default:'pending'"`
	TotalAmount            decimal.Decimal                 `gorm:"type:decimal(18,4);not null;default:0"`
	TotalItemsCount        int                             `gorm:"not null;default:0"`
	ReceivedItemsCount     int                             `gorm:"not null;default:0"`
	ReceivedPercentage     decimal.Decimal                 `gorm:"type:decimal(5,2);not null;default:0"`
	TotalPaid              decimal.Decimal                 `gorm:"type:decimal(18,4);not null;default:0"`
	ActualReceivableAmount *decimal.Decimal                `gorm:"type:decimal(18,4)"`
	Notes                  string                          `gorm:"type:text"`
	Items                  []POItemModel                   `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder.
func (m *PurchaseOrderModel) ToDomain() *procurement.PurchaseOrder {
	po := &procurement.PurchaseOrder{
		BaseEntity:             m.BaseModel.ToDomain(),
		PONumber:               m.PONumber,
		IntendID:               m.IntendID,
		VendorID:               m.VendorID,
		OrderDate:              m.OrderDate,
		Status:                 m.Status,
		TotalAmount:            m.TotalAmount,
		TotalItemsCount:        m.TotalItemsCount,
		ReceivedItemsCount:     m.ReceivedItemsCount,
		ReceivedPercentage:     m.ReceivedPercentage,
		TotalPaid:              m.TotalPaid,
		ActualReceivableAmount: m.ActualReceivableAmount,
		Notes:                  m.Notes,
		Items:                  make([]procurement.POItem, len(m.Items)),
	}
	for i, item := range m.Items {
		po.Items[i] = *item.ToDomain()
	}
	return po
}

// PurchaseOrderModelFromDomain creates the header model. Items are stored separately.
func PurchaseOrderModelFromDomain(po *procurement.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		PONumber:               po.PONumber,
		IntendID:               po.IntendID,
		VendorID:               po.VendorID,
		OrderDate:              po.OrderDate,
		Status:                 po.Status,
		TotalAmount:            po.TotalAmount,
		TotalItemsCount:        po.TotalItemsCount,
		ReceivedItemsCount:     po.ReceivedItemsCount,
		ReceivedPercentage:     po.ReceivedPercentage,
		TotalPaid:              po.TotalPaid,
		ActualReceivableAmount: po.ActualReceivableAmount,
		Notes:                  po.Notes,
	}
	m.FromDomainBaseEntity(po.BaseEntity)
	return m
}

// POItemModel is the persistence model for a purchase order line.
// The unique index on intend_item_id is the store-side guard that an intend
// item is ordered at most once.
type POItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	IntendItemID     *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_po_item_intend_item"`
	QuantityOrdered  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (POItemModel) TableName() string {
	return "po_items"
}

// ToDomain converts the persistence model to a domain POItem.
func (m *POItemModel) ToDomain() *procurement.POItem {
	return &procurement.POItem{
		ID:               m.ID,
		PurchaseOrderID:  m.PurchaseOrderID,
		IngredientID:     m.IngredientID,
		IntendItemID:     m.IntendItemID,
		QuantityOrdered:  m.QuantityOrdered,
		QuantityReceived: m.QuantityReceived,
		UnitPrice:        m.UnitPrice,
		TotalPrice:       m.TotalPrice,
	}
}

// POItemModelFromDomain creates a new persistence model from a domain POItem.
func POItemModelFromDomain(i *procurement.POItem) *POItemModel {
	return &POItemModel{
		ID:               i.ID,
		PurchaseOrderID:  i.PurchaseOrderID,
		IngredientID:     i.IngredientID,
		IntendItemID:     i.IntendItemID,
		QuantityOrdered:  i.QuantityOrdered,
		QuantityReceived: i.QuantityReceived,
		UnitPrice:        i.UnitPrice,
		TotalPrice:       i.TotalPrice,
	}
}

// GoodsReceiptModel is the persistence model for a GRN header.
type GoodsReceiptModel struct {
	BaseModel
	GRNNumber       string                         `gorm:"column:grn_number;type:varchar(60);not null;uniqueIndex:idx_grn_number"`
	PurchaseOrderID uuid.UUID                      `gorm:"column:po_id;type:uuid;not null;index"`
	ReceivedDate    time.Time                      `gorm:"not null"`
	Status          procurement.GoodsReceiptStatus `gorm:"type:varchar(20);not null;default:'completed'"`
	Remarks         string                         `gorm:"type:text"`
	Items           []GoodsReceiptItemModel        `gorm:"foreignKey:GRNID;references:ID"`
}

// TableName returns the table name for GORM
func (GoodsReceiptModel) TableName() string {
	return "grns"
}

// ToDomain converts the persistence model to a domain GoodsReceipt.
func (m *GoodsReceiptModel) ToDomain() *procurement.GoodsReceipt {
	grn := &procurement.GoodsReceipt{
		BaseEntity:      m.BaseModel.ToDomain(),
		GRNNumber:       m.GRNNumber,
		PurchaseOrderID: m.PurchaseOrderID,
		ReceivedDate:    m.ReceivedDate,
		Status:          m.Status,
		Remarks:         m.Remarks,
		Items:           make([]procurement.GoodsReceiptItem, len(m.Items)),
	}
	for i, item := range m.Items {
		grn.Items[i] = *item.ToDomain()
	}
	return grn
}

// GoodsReceiptModelFromDomain creates the header model. Items are stored separately.
func GoodsReceiptModelFromDomain(g *procurement.GoodsReceipt) *GoodsReceiptModel {
	m := &GoodsReceiptModel{
		GRNNumber:       g.GRNNumber,
		PurchaseOrderID: g.PurchaseOrderID,
		ReceivedDate:    g.ReceivedDate,
		Status:          g.Status,
		Remarks:         g.Remarks,
	}
	m.FromDomainBaseEntity(g.BaseEntity)
	return m
}

// GoodsReceiptItemModel is the persistence model for one received line.
type GoodsReceiptItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	GRNID            uuid.UUID       `gorm:"column:grn_id;type:uuid;not null;index"`
	POItemID         uuid.UUID       `gorm:"column:po_item_id;type:uuid;not null;index"`
	IngredientID     uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityOrdered  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPriceOrdered decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPriceActual  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Remarks          string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (GoodsReceiptItemModel) TableName() string {
	return "grn_items"
}

// ToDomain converts the persistence model to a domain GoodsReceiptItem.
func (m *GoodsReceiptItemModel) ToDomain() *procurement.GoodsReceiptItem {
	return &procurement.GoodsReceiptItem{
		ID:               m.ID,
		GRNID:            m.GRNID,
		POItemID:         m.POItemID,
		IngredientID:     m.IngredientID,
		QuantityOrdered:  m.QuantityOrdered,
		QuantityReceived: m.QuantityReceived,
		UnitPriceOrdered: m.UnitPriceOrdered,
		UnitPriceActual:  m.UnitPriceActual,
		Remarks:          m.Remarks,
	}
}

// GoodsReceiptItemModelFromDomain creates a new persistence model from a domain GoodsReceiptItem.
func GoodsReceiptItemModelFromDomain(i *procurement.GoodsReceiptItem) *GoodsReceiptItemModel {
	return &GoodsReceiptItemModel{
		ID:               i.ID,
		GRNID:            i.GRNID,
		POItemID:         i.POItemID,
		IngredientID:     i.IngredientID,
		QuantityOrdered:  i.QuantityOrdered,
		QuantityReceived: i.QuantityReceived,
		UnitPriceOrdered: i.UnitPriceOrdered,
		UnitPriceActual:  i.UnitPriceActual,
		Remarks:          i.Remarks,
	}
}

// PaymentModel is the persistence model for an append-only vendor payment.
type PaymentModel struct {
	BaseModel
	PaymentNumber        string                    `gorm:"type:varchar(60);not null;uniqueIndex:idx_payment_number"`
	PurchaseOrderID      uuid.UUID                 `gorm:"column:po_id;type:uuid;not null;index"`
	VendorID             uuid.UUID                 `gorm:"type:uuid;not null;index"`
	PaymentDate          time.Time                 `gorm:"not null"`
	Amount               decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Method               procurement.PaymentMethod `gorm:"column:payment_method;type:varchar(30);not null"`
	Status               procurement.PaymentStatus `gorm:"type:varchar(20);not null;default:'completed'"`
	TransactionReference string                    `gorm:"type:varchar(100)"`
	Remarks              string                    `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *procurement.Payment {
	return &procurement.Payment{
		BaseEntity:           m.BaseModel.ToDomain(),
		PaymentNumber:        m.PaymentNumber,
		PurchaseOrderID:      m.PurchaseOrderID,
		VendorID:             m.VendorID,
		PaymentDate:          m.PaymentDate,
		Amount:               m.Amount,
		Method:               m.Method,
		Status:               m.Status,
		TransactionReference: m.TransactionReference,
		Remarks:              m.Remarks,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *procurement.Payment) *PaymentModel {
	m := &PaymentModel{
		PaymentNumber:        p.PaymentNumber,
		PurchaseOrderID:      p.PurchaseOrderID,
		VendorID:             p.VendorID,
		PaymentDate:          p.PaymentDate,
		Amount:               p.Amount,
		Method:               p.Method,
		Status:               p.Status,
		TransactionReference: p.TransactionReference,
		Remarks:              p.Remarks,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
