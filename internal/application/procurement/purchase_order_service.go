package procurement

import (
	"context"
	"errors"
	"time"

	appinventory "github.com/cafe/backend/internal/application/inventory"
	"github.com/cafe/backend/internal/domain/numbering"
	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/cafe/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseOrderService generates purchase orders from intend items and manages
// their lifecycle
type PurchaseOrderService struct {
	scope   appinventory.TransactionScope
	numbers NumberAllocator
	logger  *zap.Logger
	metrics *telemetry.ProcurementMetrics
	now     func() time.Time
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(scope appinventory.TransactionScope, numbers NumberAllocator, logger *zap.Logger) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		scope:   scope,
		numbers: numbers,
		logger:  logger,
		now:     time.Now,
	}
}

// SetMetrics sets the metrics collector
func (s *PurchaseOrderService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.metrics = m
}

// GeneratePurchaseOrder creates a purchase order whose lines pin intend items.
// Any intend item that belongs to another intend or is already linked aborts
// the whole order. Ingredient last prices are refreshed after commit; failures
// there are logged and returned as advisories.
func (s *PurchaseOrderService) GeneratePurchaseOrder(ctx context.Context, req GeneratePurchaseOrderRequest) (_ *PurchaseOrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "generate",
		telemetry.WithAttribute(telemetry.SpanAttrIntendID, req.IntendID),
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(req.Items)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	po, err := s.draftPurchaseOrder(req)
	if err != nil {
		return nil, err
	}

	_, err = s.numbers.Allocate(ctx, numbering.KindPurchaseOrder, po.OrderDate, func(number string) error {
		po.SetPONumber(number)
		return s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			return s.insertPurchaseOrder(ctx, repos, req, po)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order generated",
		zap.String("po_number", po.PONumber),
		zap.String("po_id", po.ID.String()),
		zap.String("intend_id", req.IntendID.String()),
		zap.String("total_amount", po.TotalAmount.String()),
		zap.Int("items", len(po.Items)),
	)
	if s.metrics != nil {
		s.metrics.RecordPurchaseOrderCreated(ctx, len(po.Items), po.TotalAmount)
	}

	response := ToPurchaseOrderResponse(po)
	response.Advisories = s.refreshLastPrices(ctx, po)
	return &response, nil
}

// draftPurchaseOrder validates the request shape before any number is drawn
func (s *PurchaseOrderService) draftPurchaseOrder(req GeneratePurchaseOrderRequest) (*procurement.PurchaseOrder, error) {
	if req.IntendID == uuid.Nil {
		return nil, shared.NewValidationError("intend_id", "Intend ID is required")
	}
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("items", "At least one item is required")
	}
	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = s.now()
	}
	intendID := req.IntendID
	// placeholder number, replaced by the allocated one
	po, err := procurement.NewPurchaseOrder(string(numbering.KindPurchaseOrder), req.VendorID, &intendID, orderDate)
	if err != nil {
		return nil, err
	}
	po.Notes = req.Notes
	for _, line := range req.Items {
		if line.IntendItemID == uuid.Nil {
			return nil, shared.NewValidationError("intend_item_id", "Intend item ID is required")
		}
		intendItemID := line.IntendItemID
		if _, err := po.AddItem(line.IngredientID, &intendItemID, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
	}
	return po, nil
}

func (s *PurchaseOrderService) insertPurchaseOrder(ctx context.Context, repos appinventory.TransactionalRepositories, req GeneratePurchaseOrderRequest, po *procurement.PurchaseOrder) error {
	if err := requireVendor(ctx, repos, req.VendorID); err != nil {
		return err
	}
	// concurrent orders against one intend queue here so the status recompute sees every link
	intend, err := repos.Intends().FindByIDForUpdate(ctx, req.IntendID)
	if err != nil {
		return notFound(err, "intend")
	}

	ids := make([]uuid.UUID, 0, len(po.Items))
	for i := range po.Items {
		line := &po.Items[i]
		intendItem := intend.FindItem(*line.IntendItemID)
		if intendItem == nil {
			return shared.NewValidationError("intend_item_id", "Intend item does not belong to the intend")
		}
		if intendItem.IngredientID != line.IngredientID {
			return shared.NewValidationError("ingredient_id", "Ingredient does not match the intend item")
		}
		ids = append(ids, intendItem.ID)
	}
	linked, err := repos.Intends().FindLinkedItemIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if linked[id] {
			return procurement.NewIntendItemLinkedError(id)
		}
	}

	if err := repos.PurchaseOrders().Create(ctx, po); err != nil {
		if errors.Is(err, shared.ErrDuplicateNumber) {
			return err
		}
		return shared.NewIntegrityError("insert purchase order", err)
	}
	if err := repos.PurchaseOrders().CreateItems(ctx, po.Items); err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == procurement.CodeIntendItemLinked {
			return err
		}
		return shared.NewIntegrityError("insert purchase order items", err)
	}
	return recomputeIntendStatus(ctx, repos, intend)
}

// refreshLastPrices runs each update in its own transaction after the order committed
func (s *PurchaseOrderService) refreshLastPrices(ctx context.Context, po *procurement.PurchaseOrder) []Advisory {
	var advisories []Advisory
	for i := range po.Items {
		line := &po.Items[i]
		err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			return repos.Ingredients().UpdateLastPrice(ctx, line.IngredientID, line.UnitPrice)
		})
		if err == nil {
			continue
		}
		s.logger.Warn("Failed to update ingredient last price",
			zap.String("po_number", po.PONumber),
			zap.String("ingredient_id", line.IngredientID.String()),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordSideEffectFailure(ctx, EffectLastPrice)
		}
		ingredientID := line.IngredientID
		advisories = append(advisories, Advisory{
			Effect:       EffectLastPrice,
			IngredientID: &ingredientID,
			Message:      err.Error(),
		})
	}
	return advisories
}

// GetPurchaseOrder retrieves a purchase order with its lines
func (s *PurchaseOrderService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.scope.Repositories().PurchaseOrders().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "purchase order")
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// ConfirmPurchaseOrder moves a pending order to confirmed
func (s *PurchaseOrderService) ConfirmPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	var po *procurement.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "purchase order")
		}
		if err := po.Confirm(); err != nil {
			return err
		}
		return repos.PurchaseOrders().UpdateStatus(ctx, po.ID, po.Status)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order confirmed", zap.String("po_number", po.PONumber))
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// SetActualReceivable overrides the amount payable for the order
func (s *PurchaseOrderService) SetActualReceivable(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*PurchaseOrderResponse, error) {
	var po *procurement.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "purchase order")
		}
		if err := po.SetActualReceivable(amount); err != nil {
			return err
		}
		return repos.PurchaseOrders().UpdateActualReceivable(ctx, po.ID, amount)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order receivable overridden",
		zap.String("po_number", po.PONumber),
		zap.String("actual_receivable_amount", amount.String()),
	)
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}
