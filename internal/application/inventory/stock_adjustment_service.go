package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/cafe/backend/internal/domain/inventory"
	"github.com/cafe/backend/internal/domain/numbering"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/cafe/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CodeStaleSystemQuantity is returned in strict snapshot mode when a counted
// line was prepared against a stock figure that has since changed
const CodeStaleSystemQuantity = "STALE_SYSTEM_QUANTITY"

// NumberAllocator hands generated document numbers to an insert callback and
// retries on collisions
type NumberAllocator interface {
	Allocate(ctx context.Context, kind numbering.DocumentKind, date time.Time, insert func(number string) error) (string, error)
}

// StockAdjustmentService records physical counts and corrections
type StockAdjustmentService struct {
	scope          TransactionScope
	numbers        NumberAllocator
	recorder       *StockMovementRecorder
	logger         *zap.Logger
	strictSnapshot bool
	metrics        *telemetry.ProcurementMetrics
}

// NewStockAdjustmentService creates a new StockAdjustmentService
func NewStockAdjustmentService(scope TransactionScope, numbers NumberAllocator, logger *zap.Logger) *StockAdjustmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockAdjustmentService{
		scope:    scope,
		numbers:  numbers,
		recorder: NewStockMovementRecorder(),
		logger:   logger,
	}
}

// SetStrictSnapshot makes AdjustStock reject lines whose system quantity no
// longer matches stored stock
func (s *StockAdjustmentService) SetStrictSnapshot(strict bool) {
	s.strictSnapshot = strict
}

// SetMetrics sets the metrics collector
func (s *StockAdjustmentService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.metrics = m
}

// AdjustStock records an adjustment. The header, its items, every stock
// overwrite and every variance movement commit together or not at all.
func (s *StockAdjustmentService) AdjustStock(ctx context.Context, req AdjustStockRequest) (_ *StockAdjustmentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_adjustment", "adjust",
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(req.Items)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	adjustment, err := s.buildAdjustment(req)
	if err != nil {
		return nil, err
	}

	var movements []inventory.StockMovement
	_, err = s.numbers.Allocate(ctx, numbering.KindStockAdjustment, adjustment.AdjustmentDate, func(number string) error {
		adjustment.AdjustmentNumber = number
		movements = movements[:0]
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			recorded, err := s.apply(ctx, repos, adjustment)
			if err != nil {
				return err
			}
			movements = recorded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock adjustment recorded",
		zap.String("adjustment_number", adjustment.AdjustmentNumber),
		zap.String("adjustment_id", adjustment.ID.String()),
		zap.Int("items", len(adjustment.Items)),
		zap.Int("movements", len(movements)),
	)
	if s.metrics != nil {
		s.metrics.RecordStockAdjustment(ctx, len(movements))
	}

	response := ToStockAdjustmentResponse(adjustment, movements)
	return &response, nil
}

func (s *StockAdjustmentService) buildAdjustment(req AdjustStockRequest) (*inventory.StockAdjustment, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("items", "At least one item is required")
	}
	adjustment, err := inventory.NewStockAdjustment(inventory.AdjustmentType(req.AdjustmentType), req.AdjustmentDate, req.Notes)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if _, err := adjustment.AddItem(item.IngredientID, item.SystemQuantity, item.ActualQuantity, item.Remarks); err != nil {
			return nil, err
		}
	}
	return adjustment, nil
}

// apply runs inside one transaction. Ingredients are locked before anything is
// written so the strict snapshot check and the overwrite see the same stock.
// Movements carry the change against locked stock; the submitted system
// quantity is kept on the item as the counter's snapshot.
func (s *StockAdjustmentService) apply(ctx context.Context, repos TransactionalRepositories, adjustment *inventory.StockAdjustment) ([]inventory.StockMovement, error) {
	stock := make(map[uuid.UUID]decimal.Decimal, len(adjustment.Items))
	for i := range adjustment.Items {
		item := &adjustment.Items[i]
		ingredient, err := repos.Ingredients().FindByIDForUpdate(ctx, item.IngredientID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewNotFoundError("ingredient")
			}
			return nil, err
		}
		if s.strictSnapshot && !ingredient.StockQuantity.Equal(item.SystemQuantity) {
			return nil, shared.NewBusinessRuleError(CodeStaleSystemQuantity,
				"System quantity no longer matches recorded stock",
				map[string]any{
					"ingredient_id":   item.IngredientID.String(),
					"system_quantity": item.SystemQuantity.String(),
					"stock_quantity":  ingredient.StockQuantity.String(),
				})
		}
		stock[item.IngredientID] = ingredient.StockQuantity
	}

	if err := repos.Adjustments().Create(ctx, adjustment); err != nil {
		if errors.Is(err, shared.ErrDuplicateNumber) {
			return nil, err
		}
		return nil, shared.NewIntegrityError("insert stock adjustment", err)
	}
	if err := repos.Adjustments().CreateItems(ctx, adjustment.Items); err != nil {
		return nil, shared.NewIntegrityError("insert stock adjustment items", err)
	}

	var movements []inventory.StockMovement
	for i := range adjustment.Items {
		item := &adjustment.Items[i]
		movement, err := s.recorder.RecordCount(ctx, repos, StockCount{
			IngredientID: item.IngredientID,
			Counted:      item.ActualQuantity,
			Previous:     stock[item.IngredientID],
			ReferenceID:  adjustment.ID,
			Remarks:      adjustmentRemark(adjustment, item),
			Date:         adjustment.AdjustmentDate,
		})
		if err != nil {
			return nil, err
		}
		if movement != nil {
			movements = append(movements, *movement)
		}
	}
	return movements, nil
}

func adjustmentRemark(adjustment *inventory.StockAdjustment, item *inventory.StockAdjustmentItem) string {
	remark := adjustment.AdjustmentNumber + " " + string(adjustment.AdjustmentType)
	if item.Remarks != "" {
		remark += ": " + item.Remarks
	}
	return remark
}
