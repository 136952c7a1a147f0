package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIntendService_CreateIntend(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending intend with an IND number", func(t *testing.T) {
		m := newProcurementMocks()
		service := NewIntendService(m.scope, m.allocator, zap.NewNop())
		service.now = func() time.Time { return testDate() }
		ingredient, err := inventory.NewIngredient("Milk", "l", decimal.Zero)
		require.NoError(t, err)
		vendorID := uuid.New()

		m.vendors.On("ExistsByID", ctx, vendorID).Return(true, nil)
		m.ingredients.On("FindByID", ctx, ingredient.ID).Return(ingredient, nil)
		m.intends.On("Create", ctx, mock.MatchedBy(func(i *procurement.Intend) bool {
			return i.Code == "IND-20260118-0001" && len(i.Items) == 1
		})).Return(nil)

		result, err := service.CreateIntend(ctx, CreateIntendRequest{
			VendorID: &vendorID,
			Items:    []CreateIntendItemInput{{IngredientID: ingredient.ID, Quantity: decimal.NewFromInt(12)}},
		})

		require.NoError(t, err)
		assert.Equal(t, "IND-20260118-0001", result.Code)
		assert.Equal(t, "pending", result.Status)
		require.Len(t, result.Items, 1)
		assert.False(t, result.Items[0].Linked)
		m.intends.AssertExpectations(t)
	})

	t.Run("unknown ingredient", func(t *testing.T) {
		m := newProcurementMocks()
		service := NewIntendService(m.scope, m.allocator, zap.NewNop())
		id := uuid.New()
		m.ingredients.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := service.CreateIntend(ctx, CreateIntendRequest{
			Items: []CreateIntendItemInput{{IngredientID: id, Quantity: decimal.NewFromInt(1)}},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ingredient not found", domainErr.Message)
		m.intends.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		m := newProcurementMocks()
		service := NewIntendService(m.scope, m.allocator, zap.NewNop())

		_, err := service.CreateIntend(ctx, CreateIntendRequest{
			Items: []CreateIntendItemInput{{IngredientID: uuid.New(), Quantity: decimal.NewFromInt(-3)}},
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "quantity", domainErr.Field)
	})
}

func TestIntendService_RecomputeIntendStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		linked     int64
		wantStatus procurement.IntendStatus
		wantWrite  bool
	}{
		{"nothing linked stays pending", 0, procurement.IntendStatusPending, false},
		{"some linked", 1, procurement.IntendStatusPartiallyFulfilled, true},
		{"all linked", 2, procurement.IntendStatusFulfilled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newProcurementMocks()
			service := NewIntendService(m.scope, m.allocator, zap.NewNop())
			f := newIntendFixture(t)

			m.intends.On("FindByIDForUpdate", ctx, f.intend.ID).Return(f.intend, nil)
			m.intends.On("FindByID", ctx, f.intend.ID).Return(f.intend, nil)
			m.intends.On("CountItems", ctx, f.intend.ID).Return(int64(2), nil)
			m.intends.On("CountLinkedItems", ctx, f.intend.ID).Return(tt.linked, nil)
			m.intends.On("UpdateStatus", ctx, f.intend.ID, tt.wantStatus).Return(nil)
			m.intends.On("FindLinkedItemIDs", ctx, mock.Anything).Return(map[uuid.UUID]bool{}, nil)

			result, err := service.RecomputeIntendStatus(ctx, f.intend.ID)
			require.NoError(t, err)
			assert.Equal(t, string(tt.wantStatus), result.Status)

			// a second run changes nothing
			_, err = service.RecomputeIntendStatus(ctx, f.intend.ID)
			require.NoError(t, err)

			if tt.wantWrite {
				m.intends.AssertNumberOfCalls(t, "UpdateStatus", 1)
			} else {
				m.intends.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestIntendService_DeleteIntendItem(t *testing.T) {
	ctx := context.Background()

	t.Run("linked item cannot be deleted", func(t *testing.T) {
		m := newProcurementMocks()
		service := NewIntendService(m.scope, m.allocator, zap.NewNop())
		f := newIntendFixture(t)

		m.intends.On("FindByIDForUpdate", ctx, f.intend.ID).Return(f.intend, nil)
		m.intends.On("FindLinkedItemIDs", ctx, []uuid.UUID{f.flour.ID}).Return(map[uuid.UUID]bool{f.flour.ID: true}, nil)

		_, err := service.DeleteIntendItem(ctx, f.intend.ID, f.flour.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, procurement.CodeIntendItemLinked, domainErr.Code)
		m.intends.AssertNotCalled(t, "DeleteItem", mock.Anything, mock.Anything)
	})

	t.Run("unlinked item is deleted and status recomputed", func(t *testing.T) {
		m := newProcurementMocks()
		service := NewIntendService(m.scope, m.allocator, zap.NewNop())
		f := newIntendFixture(t)
		f.intend.Status = procurement.IntendStatusPartiallyFulfilled

		m.intends.On("FindByIDForUpdate", ctx, f.intend.ID).Return(f.intend, nil)
		m.intends.On("FindByID", ctx, f.intend.ID).Return(f.intend, nil)
		m.intends.On("FindLinkedItemIDs", ctx, []uuid.UUID{f.sugar.ID}).Return(map[uuid.UUID]bool{}, nil).Once()
		m.intends.On("DeleteItem", ctx, f.sugar.ID).Return(nil)
		m.intends.On("CountItems", ctx, f.intend.ID).Return(int64(1), nil)
		m.intends.On("CountLinkedItems", ctx, f.intend.ID).Return(int64(1), nil)
		m.intends.On("UpdateStatus", ctx, f.intend.ID, procurement.IntendStatusFulfilled).Return(nil)
		m.intends.On("FindLinkedItemIDs", ctx, []uuid.UUID{f.flour.ID}).Return(map[uuid.UUID]bool{f.flour.ID: true}, nil)

		result, err := service.DeleteIntendItem(ctx, f.intend.ID, f.sugar.ID)

		require.NoError(t, err)
		assert.Equal(t, "fulfilled", result.Status)
		require.Len(t, result.Items, 1)
		assert.True(t, result.Items[0].Linked)
		m.intends.AssertExpectations(t)
	})
}
