package procurement

import (
	"context"
	"errors"
	"time"

	appinventory "github.com/cafe/backend/internal/application/inventory"
	"github.com/cafe/backend/internal/domain/numbering"
	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NumberAllocator hands generated document numbers to an insert callback and
// retries on collisions
type NumberAllocator interface {
	Allocate(ctx context.Context, kind numbering.DocumentKind, date time.Time, insert func(number string) error) (string, error)
}

// IntendService raises intends and keeps their fulfillment status in step with
// the purchase order items that reference them
type IntendService struct {
	scope   appinventory.TransactionScope
	numbers NumberAllocator
	logger  *zap.Logger
	now     func() time.Time
}

// NewIntendService creates a new IntendService
func NewIntendService(scope appinventory.TransactionScope, numbers NumberAllocator, logger *zap.Logger) *IntendService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntendService{
		scope:   scope,
		numbers: numbers,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateIntend raises a pending intend with an IND number
func (s *IntendService) CreateIntend(ctx context.Context, req CreateIntendRequest) (*IntendResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("items", "At least one item is required")
	}
	// placeholder code, replaced by the allocated number
	intend, err := procurement.NewIntend(string(numbering.KindIntend), req.VendorID, req.Notes)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if _, err := intend.AddItem(item.IngredientID, item.Quantity, item.Remarks); err != nil {
			return nil, err
		}
	}

	_, err = s.numbers.Allocate(ctx, numbering.KindIntend, s.now(), func(number string) error {
		intend.Code = number
		return s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			if req.VendorID != nil {
				if err := requireVendor(ctx, repos, *req.VendorID); err != nil {
					return err
				}
			}
			for _, item := range intend.Items {
				if _, err := repos.Ingredients().FindByID(ctx, item.IngredientID); err != nil {
					return notFound(err, "ingredient")
				}
			}
			if err := repos.Intends().Create(ctx, intend); err != nil {
				if errors.Is(err, shared.ErrDuplicateNumber) {
					return err
				}
				return shared.NewIntegrityError("insert intend", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Intend created",
		zap.String("intend_code", intend.Code),
		zap.String("intend_id", intend.ID.String()),
		zap.Int("items", len(intend.Items)),
	)
	response := ToIntendResponse(intend, nil)
	return &response, nil
}

// GetIntend retrieves an intend and flags the items already on a purchase order
func (s *IntendService) GetIntend(ctx context.Context, intendID uuid.UUID) (*IntendResponse, error) {
	repos := s.scope.Repositories()
	intend, err := repos.Intends().FindByID(ctx, intendID)
	if err != nil {
		return nil, notFound(err, "intend")
	}
	linked, err := repos.Intends().FindLinkedItemIDs(ctx, itemIDs(intend))
	if err != nil {
		return nil, err
	}
	response := ToIntendResponse(intend, linked)
	return &response, nil
}

// RecomputeIntendStatus derives the status from the item counts and stores it.
// Running it again without intervening changes is a no-op.
func (s *IntendService) RecomputeIntendStatus(ctx context.Context, intendID uuid.UUID) (*IntendResponse, error) {
	var intend *procurement.Intend
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		var err error
		intend, err = repos.Intends().FindByIDForUpdate(ctx, intendID)
		if err != nil {
			return notFound(err, "intend")
		}
		return recomputeIntendStatus(ctx, repos, intend)
	})
	if err != nil {
		return nil, err
	}
	return s.GetIntend(ctx, intend.ID)
}

// DeleteIntendItem removes an item that no purchase order references
func (s *IntendService) DeleteIntendItem(ctx context.Context, intendID, itemID uuid.UUID) (*IntendResponse, error) {
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		intend, err := repos.Intends().FindByIDForUpdate(ctx, intendID)
		if err != nil {
			return notFound(err, "intend")
		}
		linked, err := repos.Intends().FindLinkedItemIDs(ctx, []uuid.UUID{itemID})
		if err != nil {
			return err
		}
		if err := intend.RemoveItem(itemID, linked[itemID]); err != nil {
			return err
		}
		if err := repos.Intends().DeleteItem(ctx, itemID); err != nil {
			return notFound(err, "intend item")
		}
		return recomputeIntendStatus(ctx, repos, intend)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Intend item deleted",
		zap.String("intend_id", intendID.String()),
		zap.String("intend_item_id", itemID.String()),
	)
	return s.GetIntend(ctx, intendID)
}

// recomputeIntendStatus counts items and linked items through repos and writes
// the status when it changed
func recomputeIntendStatus(ctx context.Context, repos appinventory.TransactionalRepositories, intend *procurement.Intend) error {
	total, err := repos.Intends().CountItems(ctx, intend.ID)
	if err != nil {
		return err
	}
	linked, err := repos.Intends().CountLinkedItems(ctx, intend.ID)
	if err != nil {
		return err
	}
	if !intend.ApplyFulfillment(total, linked) {
		return nil
	}
	return repos.Intends().UpdateStatus(ctx, intend.ID, intend.Status)
}

func requireVendor(ctx context.Context, repos appinventory.TransactionalRepositories, vendorID uuid.UUID) error {
	exists, err := repos.Vendors().ExistsByID(ctx, vendorID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewNotFoundError("vendor")
	}
	return nil
}

func itemIDs(intend *procurement.Intend) []uuid.UUID {
	ids := make([]uuid.UUID, len(intend.Items))
	for i := range intend.Items {
		ids[i] = intend.Items[i].ID
	}
	return ids
}

// notFound names the missing resource when err is a bare not-found
func notFound(err error, resource string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return err
}
