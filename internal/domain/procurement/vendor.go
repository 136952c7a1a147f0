package procurement

import (
	"strings"

	"github.com/cafe/backend/internal/domain/shared"
)

// Vendor is a supplier of ingredients
type Vendor struct {
	shared.BaseEntity
	Name     string
	Phone    string
	IsActive bool
}

// NewVendor creates an active vendor
func NewVendor(name, phone string) (*Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "Vendor name is required")
	}
	return &Vendor{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Phone:      phone,
		IsActive:   true,
	}, nil
}
