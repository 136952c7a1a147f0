package models

import "time"

// DocumentSequenceModel is the daily counter for one document kind.
// LastValue is the most recently issued sequence for (Kind, SequenceDate).
type DocumentSequenceModel struct {
	Kind         string    `gorm:"type:varchar(10);primaryKey"`
	SequenceDate string    `gorm:"type:varchar(8);primaryKey"`
	LastValue    int64     `gorm:"not null;default:0"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
