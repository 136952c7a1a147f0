package procurement

import (
	"context"
	"errors"
	"fmt"

	appinventory "github.com/cafe/backend/internal/application/inventory"
	"github.com/cafe/backend/internal/domain/numbering"
	"github.com/cafe/backend/internal/domain/procurement"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/cafe/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GoodsReceiptService records deliveries against purchase orders
type GoodsReceiptService struct {
	scope    appinventory.TransactionScope
	numbers  NumberAllocator
	recorder *appinventory.StockMovementRecorder
	logger   *zap.Logger
	metrics  *telemetry.ProcurementMetrics
}

// NewGoodsReceiptService creates a new GoodsReceiptService
func NewGoodsReceiptService(scope appinventory.TransactionScope, numbers NumberAllocator, logger *zap.Logger) *GoodsReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoodsReceiptService{
		scope:    scope,
		numbers:  numbers,
		recorder: appinventory.NewStockMovementRecorder(),
		logger:   logger,
	}
}

// SetMetrics sets the metrics collector
func (s *GoodsReceiptService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.metrics = m
}

// ReceiveGoods records a GRN. The GRN, its items, the accumulated line
// quantities and the receipt caches commit together. Ingredient last prices
// and inbound stock movements follow in their own transactions; their failures
// are logged and returned as advisories.
func (s *GoodsReceiptService) ReceiveGoods(ctx context.Context, purchaseOrderID uuid.UUID, req ReceiveGoodsRequest) (_ *ReceiveGoodsResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "goods_receipt", "receive",
		telemetry.WithAttribute(telemetry.SpanAttrPurchaseOrderID, purchaseOrderID),
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(req.Items)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validateReceiveGoods(req); err != nil {
		return nil, err
	}

	var (
		grn *procurement.GoodsReceipt
		po  *procurement.PurchaseOrder
	)
	_, err = s.numbers.Allocate(ctx, numbering.KindGoodsReceipt, req.ReceivedDate, func(number string) error {
		return s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			var err error
			po, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, purchaseOrderID)
			if err != nil {
				return notFound(err, "purchase order")
			}
			grn, err = buildGoodsReceipt(number, po, req)
			if err != nil {
				return err
			}
			return s.insertGoodsReceipt(ctx, repos, po, grn)
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Goods received",
		zap.String("grn_number", grn.GRNNumber),
		zap.String("po_number", po.PONumber),
		zap.Int("items", len(grn.Items)),
		zap.String("po_status", po.Status.String()),
		zap.String("received_percentage", po.ReceivedPercentage.String()),
	)
	if s.metrics != nil {
		s.metrics.RecordGoodsReceipt(ctx, len(grn.Items))
	}

	advisories := s.applySideEffects(ctx, po, grn)
	poResponse := ToPurchaseOrderResponse(po)
	return &ReceiveGoodsResponse{
		GoodsReceipt:  ToGoodsReceiptResponse(grn),
		PurchaseOrder: poResponse,
		Advisories:    advisories,
	}, nil
}

func validateReceiveGoods(req ReceiveGoodsRequest) error {
	if req.ReceivedDate.IsZero() {
		return shared.NewValidationError("received_date", "Received date is required")
	}
	if len(req.Items) == 0 {
		return shared.NewValidationError("items", "At least one item is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(req.Items))
	for _, item := range req.Items {
		if item.POItemID == uuid.Nil {
			return shared.NewValidationError("po_item_id", "Purchase order item ID is required")
		}
		if _, dup := seen[item.POItemID]; dup {
			return shared.NewValidationError("po_item_id", "Purchase order item appears more than once in the receipt")
		}
		seen[item.POItemID] = struct{}{}
		if !item.QuantityReceived.IsPositive() {
			return shared.NewValidationError("quantity_received", "Received quantity must be positive")
		}
		if item.UnitPriceActual != nil && item.UnitPriceActual.IsNegative() {
			return shared.NewValidationError("unit_price_actual", "Actual unit price cannot be negative")
		}
	}
	return nil
}

func buildGoodsReceipt(number string, po *procurement.PurchaseOrder, req ReceiveGoodsRequest) (*procurement.GoodsReceipt, error) {
	grn, err := procurement.NewGoodsReceipt(number, po.ID, req.ReceivedDate, req.Remarks)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		line := po.FindItem(item.POItemID)
		if line == nil {
			return nil, shared.NewValidationError("po_item_id", "Item does not belong to this purchase order")
		}
		if _, err := grn.AddItem(line, item.QuantityReceived, item.UnitPriceActual, item.Remarks); err != nil {
			return nil, err
		}
	}
	return grn, nil
}

func (s *GoodsReceiptService) insertGoodsReceipt(ctx context.Context, repos appinventory.TransactionalRepositories, po *procurement.PurchaseOrder, grn *procurement.GoodsReceipt) error {
	if err := repos.GoodsReceipts().Create(ctx, grn); err != nil {
		if errors.Is(err, shared.ErrDuplicateNumber) {
			return err
		}
		return shared.NewIntegrityError("insert goods receipt", err)
	}

	for i := range grn.Items {
		item := &grn.Items[i]
		if err := repos.GoodsReceipts().CreateItem(ctx, item); err != nil {
			return shared.NewIntegrityError("insert goods receipt item", err)
		}
		if err := repos.PurchaseOrders().AddReceivedQuantity(ctx, item.POItemID, item.QuantityReceived); err != nil {
			return shared.NewIntegrityError("update purchase order item received quantity", err)
		}
		if err := po.FindItem(item.POItemID).AddReceivedQuantity(item.QuantityReceived); err != nil {
			return err
		}
	}

	po.RecomputeReceiptProgress()
	if err := repos.PurchaseOrders().UpdateReceiptProgress(ctx, po); err != nil {
		return shared.NewIntegrityError("update purchase order receipt progress", err)
	}
	return nil
}

// applySideEffects refreshes last prices and appends inbound movements after the
// receipt committed, one transaction per effect
func (s *GoodsReceiptService) applySideEffects(ctx context.Context, po *procurement.PurchaseOrder, grn *procurement.GoodsReceipt) []Advisory {
	var advisories []Advisory
	remarks := fmt.Sprintf("PO %s / GRN %s", po.PONumber, grn.GRNNumber)

	for i := range grn.Items {
		item := grn.Items[i]

		err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			return repos.Ingredients().UpdateLastPrice(ctx, item.IngredientID, item.UnitPriceActual)
		})
		if err != nil {
			advisories = append(advisories, s.sideEffectFailed(ctx, EffectLastPrice, grn, item.IngredientID, err))
		}

		err = s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
			_, err := s.recorder.RecordReceipt(ctx, repos, appinventory.StockReceipt{
				IngredientID: item.IngredientID,
				Quantity:     item.QuantityReceived,
				UnitCost:     item.UnitPriceActual,
				ReferenceID:  grn.ID,
				Remarks:      remarks,
				Date:         grn.ReceivedDate,
			})
			return err
		})
		if err != nil {
			advisories = append(advisories, s.sideEffectFailed(ctx, EffectStockMovement, grn, item.IngredientID, err))
		}
	}
	return advisories
}

func (s *GoodsReceiptService) sideEffectFailed(ctx context.Context, effect string, grn *procurement.GoodsReceipt, ingredientID uuid.UUID, err error) Advisory {
	s.logger.Warn("Goods receipt side effect failed",
		zap.String("effect", effect),
		zap.String("grn_number", grn.GRNNumber),
		zap.String("po_id", grn.PurchaseOrderID.String()),
		zap.String("ingredient_id", ingredientID.String()),
		zap.Error(err),
	)
	if s.metrics != nil {
		s.metrics.RecordSideEffectFailure(ctx, effect)
	}
	return Advisory{
		Effect:       effect,
		IngredientID: &ingredientID,
		Message:      err.Error(),
	}
}

// ListGoodsReceipts lists the GRNs of a purchase order
func (s *GoodsReceiptService) ListGoodsReceipts(ctx context.Context, purchaseOrderID uuid.UUID) ([]GoodsReceiptResponse, error) {
	repos := s.scope.Repositories()
	if _, err := repos.PurchaseOrders().FindByID(ctx, purchaseOrderID); err != nil {
		return nil, notFound(err, "purchase order")
	}
	grns, err := repos.GoodsReceipts().FindByPurchaseOrder(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	responses := make([]GoodsReceiptResponse, len(grns))
	for i := range grns {
		responses[i] = ToGoodsReceiptResponse(&grns[i])
	}
	return responses, nil
}
