package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ProcurementMetrics counts procurement and inventory activity.
type ProcurementMetrics struct {
	logger *zap.Logger

	purchaseOrdersTotal   *Counter
	purchaseOrderValue    *FloatCounter
	goodsReceiptsTotal    *Counter
	goodsReceiptItems     *Counter
	paymentsTotal         *Counter
	paymentAmount         *FloatCounter
	paymentRejections     *Counter
	sideEffectFailures    *Counter
	stockAdjustmentsTotal *Counter
	adjustmentMovements   *Counter
	numberCollisions      *Counter
	lowStockIngredients   *Gauge

	lowStock    LowStockCounter
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// LowStockCounter reports how many ingredients sit at or below their reorder level.
type LowStockCounter interface {
	CountBelowReorderLevel(ctx context.Context) (int64, error)
}

// ProcurementMetricsConfig configures NewProcurementMetrics.
type ProcurementMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	LowStock LowStockCounter
}

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = &MetricsError{Op: "NewProcurementMetrics", Err: "meter cannot be nil"}

// MetricsError describes a metrics setup failure.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// NewProcurementMetrics registers the procurement instruments on cfg.Meter.
func NewProcurementMetrics(cfg ProcurementMetricsConfig) (*ProcurementMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &ProcurementMetrics{
		logger:   logger,
		lowStock: cfg.LowStock,
		stopChan: make(chan struct{}),
	}

	counters := []struct {
		target **Counter
		name   string
		desc   string
		unit   string
	}{
		{&pm.purchaseOrdersTotal, "cafe_purchase_orders_created_total", "Purchase orders generated from intends", "{orders}"},
		{&pm.goodsReceiptsTotal, "cafe_goods_receipts_total", "Goods receipts recorded", "{receipts}"},
		{&pm.goodsReceiptItems, "cafe_goods_receipt_items_total", "Goods receipt lines recorded", "{lines}"},
		{&pm.paymentsTotal, "cafe_payments_total", "Vendor payments accepted", "{payments}"},
		{&pm.paymentRejections, "cafe_payment_rejections_total", "Vendor payments rejected by bound checks", "{payments}"},
		{&pm.sideEffectFailures, "cafe_side_effect_failures_total", "Best-effort side effects that failed after commit", "{failures}"},
		{&pm.stockAdjustmentsTotal, "cafe_stock_adjustments_total", "Stock adjustments applied", "{adjustments}"},
		{&pm.adjustmentMovements, "cafe_adjustment_movements_total", "Ledger movements produced by stock adjustments", "{movements}"},
		{&pm.numberCollisions, "cafe_document_number_collisions_total", "Generated document numbers that collided and were retried", "{collisions}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	pm.purchaseOrderValue, err = NewFloatCounter(cfg.Meter, "cafe_purchase_order_value_total", "Contracted value of generated purchase orders", "{currency}")
	if err != nil {
		return nil, err
	}
	pm.paymentAmount, err = NewFloatCounter(cfg.Meter, "cafe_payment_amount_total", "Amount paid to vendors", "{currency}")
	if err != nil {
		return nil, err
	}
	pm.lowStockIngredients, err = NewGauge(cfg.Meter, "cafe_ingredients_low_stock", "Ingredients at or below their reorder level", "{ingredients}")
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordPurchaseOrderCreated counts a generated purchase order and its value.
func (pm *ProcurementMetrics) RecordPurchaseOrderCreated(ctx context.Context, itemCount int, total decimal.Decimal) {
	pm.purchaseOrdersTotal.Inc(ctx)
	pm.purchaseOrderValue.Add(ctx, total.InexactFloat64())
	pm.logger.Debug("purchase order metric recorded", zap.Int("items", itemCount))
}

// RecordGoodsReceipt counts a goods receipt and its lines.
func (pm *ProcurementMetrics) RecordGoodsReceipt(ctx context.Context, itemCount int) {
	pm.goodsReceiptsTotal.Inc(ctx)
	pm.goodsReceiptItems.Add(ctx, int64(itemCount))
}

// RecordPaymentAccepted counts an accepted payment by method.
func (pm *ProcurementMetrics) RecordPaymentAccepted(ctx context.Context, method string, amount decimal.Decimal) {
	pm.paymentsTotal.Inc(ctx, AttrPaymentMethod.String(method))
	pm.paymentAmount.Add(ctx, amount.InexactFloat64(), AttrPaymentMethod.String(method))
}

// RecordPaymentRejected counts a rejected payment by rule code.
func (pm *ProcurementMetrics) RecordPaymentRejected(ctx context.Context, reason string) {
	pm.paymentRejections.Inc(ctx, AttrRejectReason.String(reason))
}

// RecordSideEffectFailure counts a failed post-commit side effect.
func (pm *ProcurementMetrics) RecordSideEffectFailure(ctx context.Context, effect string) {
	pm.sideEffectFailures.Inc(ctx, AttrSideEffect.String(effect))
}

// RecordStockAdjustment counts an applied adjustment and the movements it produced.
func (pm *ProcurementMetrics) RecordStockAdjustment(ctx context.Context, movementCount int) {
	pm.stockAdjustmentsTotal.Inc(ctx)
	pm.adjustmentMovements.Add(ctx, int64(movementCount))
}

// RecordNumberCollision counts a document number that lost a uniqueness race.
func (pm *ProcurementMetrics) RecordNumberCollision(ctx context.Context, kind string) {
	pm.numberCollisions.Inc(ctx, AttrDocumentKind.String(kind))
}

// StartLowStockCollection samples the low-stock gauge every interval until
// Stop is called or ctx is done. It is a no-op without a LowStockCounter and
// only the first call starts a collector.
func (pm *ProcurementMetrics) StartLowStockCollection(ctx context.Context, interval time.Duration) {
	if pm.lowStock == nil {
		return
	}
	pm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go pm.runLowStockCollection(ctx, interval)
	})
}

func (pm *ProcurementMetrics) runLowStockCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pm.collectLowStock(ctx)
	for {
		select {
		case <-pm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.collectLowStock(ctx)
		}
	}
}

func (pm *ProcurementMetrics) collectLowStock(ctx context.Context) {
	count, err := pm.lowStock.CountBelowReorderLevel(ctx)
	if err != nil {
		pm.logger.Warn("Failed to count low stock ingredients", zap.Error(err))
		return
	}
	pm.lowStockIngredients.Record(ctx, count)
}

// Stop ends periodic collection.
func (pm *ProcurementMetrics) Stop() {
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
	})
}
