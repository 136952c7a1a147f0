package persistence

import (
	"errors"

	"github.com/cafe/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// notFoundOr maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// numberTakenOr maps a unique violation on a document number to shared.ErrDuplicateNumber
func numberTakenOr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrDuplicateNumber
	}
	return err
}

// requireAffected returns shared.ErrNotFound when an update matched no row
func requireAffected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
