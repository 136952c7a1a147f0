package models

import (
	"time"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IngredientModel is the persistence model for the Ingredient entity.
type IngredientModel struct {
	BaseModel
	Name          string          `gorm:"type:varchar(200);not null"`
	Unit          string          `gorm:"type:varchar(20);not null"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderLevel  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (IngredientModel) TableName() string {
	return "ingredients"
}

// ToDomain converts the persistence model to a domain Ingredient entity.
func (m *IngredientModel) ToDomain() *inventory.Ingredient {
	return &inventory.Ingredient{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		Unit:          m.Unit,
		StockQuantity: m.StockQuantity,
		LastPrice:     m.LastPrice,
		ReorderLevel:  m.ReorderLevel,
	}
}

// FromDomain populates the persistence model from a domain Ingredient entity.
func (m *IngredientModel) FromDomain(i *inventory.Ingredient) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.Name = i.Name
	m.Unit = i.Unit
	m.StockQuantity = i.StockQuantity
	m.LastPrice = i.LastPrice
	m.ReorderLevel = i.ReorderLevel
}

// IngredientModelFromDomain creates a new persistence model from a domain Ingredient entity.
func IngredientModelFromDomain(i *inventory.Ingredient) *IngredientModel {
	m := &IngredientModel{}
	m.FromDomain(i)
	return m
}

// StockMovementModel is the persistence model for the append-only stock ledger.
type StockMovementModel struct {
	ID            uuid.UUID               `gorm:"type:uuid;primary_key"`
	IngredientID  uuid.UUID               `gorm:"type:uuid;not null;index:idx_stock_movement_ingredient_date,priority:1"`
	MovementType  inventory.MovementType  `gorm:"type:varchar(20);not null"`
	Quantity      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	ReferenceType inventory.ReferenceType `gorm:"type:varchar(30)"`
	ReferenceID   *uuid.UUID              `gorm:"type:uuid;index"`
	UnitCost      decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Remarks       string                  `gorm:"type:varchar(500)"`
	MovementDate  time.Time               `gorm:"not null;index:idx_stock_movement_ingredient_date,priority:2"`
	CreatedAt     time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:            m.ID,
		IngredientID:  m.IngredientID,
		MovementType:  m.MovementType,
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		UnitCost:      m.UnitCost,
		Remarks:       m.Remarks,
		MovementDate:  m.MovementDate,
		CreatedAt:     m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement.
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:            s.ID,
		IngredientID:  s.IngredientID,
		MovementType:  s.MovementType,
		Quantity:      s.Quantity,
		ReferenceType: s.ReferenceType,
		ReferenceID:   s.ReferenceID,
		UnitCost:      s.UnitCost,
		Remarks:       s.Remarks,
		MovementDate:  s.MovementDate,
		CreatedAt:     s.CreatedAt,
	}
}

// StockAdjustmentModel is the persistence model for the StockAdjustment header.
type StockAdjustmentModel struct {
	BaseModel
	AdjustmentNumber string                     `gorm:"type:varchar(50);not null;uniqueIndex:idx_stock_adjustment_number"`
	AdjustmentType   inventory.AdjustmentType   `gorm:"type:varchar(30);not null"`
	AdjustmentDate   time.Time                  `gorm:"not null"`
	Notes            string                     `gorm:"type:text"`
	Items            []StockAdjustmentItemModel `gorm:"foreignKey:AdjustmentID;references:ID"`
}

// TableName returns the table name for GORM
func (StockAdjustmentModel) TableName() string {
	return "stock_adjustments"
}

// ToDomain converts the persistence model to a domain StockAdjustment.
func (m *StockAdjustmentModel) ToDomain() *inventory.StockAdjustment {
	adjustment := &inventory.StockAdjustment{
		BaseEntity:       m.BaseModel.ToDomain(),
		AdjustmentNumber: m.AdjustmentNumber,
		AdjustmentType:   m.AdjustmentType,
		AdjustmentDate:   m.AdjustmentDate,
		Notes:            m.Notes,
		Items:            make([]inventory.StockAdjustmentItem, len(m.Items)),
	}
	for i, item := range m.Items {
		adjustment.Items[i] = *item.ToDomain()
	}
	return adjustment
}

// StockAdjustmentModelFromDomain creates the header model. Items are stored separately.
func StockAdjustmentModelFromDomain(a *inventory.StockAdjustment) *StockAdjustmentModel {
	m := &StockAdjustmentModel{
		AdjustmentNumber: a.AdjustmentNumber,
		AdjustmentType:   a.AdjustmentType,
		AdjustmentDate:   a.AdjustmentDate,
		Notes:            a.Notes,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// StockAdjustmentItemModel is the persistence model for one counted line.
type StockAdjustmentItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	AdjustmentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SystemQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ActualQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Remarks        string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (StockAdjustmentItemModel) TableName() string {
	return "stock_adjustment_items"
}

// ToDomain converts the persistence model to a domain StockAdjustmentItem.
func (m *StockAdjustmentItemModel) ToDomain() *inventory.StockAdjustmentItem {
	return &inventory.StockAdjustmentItem{
		ID:             m.ID,
		AdjustmentID:   m.AdjustmentID,
		IngredientID:   m.IngredientID,
		SystemQuantity: m.SystemQuantity,
		ActualQuantity: m.ActualQuantity,
		Remarks:        m.Remarks,
	}
}

// StockAdjustmentItemModelFromDomain creates a new persistence model from a domain StockAdjustmentItem.
func StockAdjustmentItemModelFromDomain(i *inventory.StockAdjustmentItem) *StockAdjustmentItemModel {
	return &StockAdjustmentItemModel{
		ID:             i.ID,
		AdjustmentID:   i.AdjustmentID,
		IngredientID:   i.IngredientID,
		SystemQuantity: i.SystemQuantity,
		ActualQuantity: i.ActualQuantity,
		Remarks:        i.Remarks,
	}
}
