package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cafe/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newManualMetrics(t *testing.T, lowStock telemetry.LowStockCounter) (*telemetry.ProcurementMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	pm, err := telemetry.NewProcurementMetrics(telemetry.ProcurementMetricsConfig{
		Meter:    provider.Meter("test"),
		Logger:   zap.NewNop(),
		LowStock: lowStock,
	})
	require.NoError(t, err)
	return pm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumInt(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewProcurementMetrics(t *testing.T) {
	pm, err := telemetry.NewProcurementMetrics(telemetry.ProcurementMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("test"),
	})

	require.NoError(t, err)
	require.NotNil(t, pm)
}

func TestNewProcurementMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewProcurementMetrics(telemetry.ProcurementMetricsConfig{})

	require.Error(t, err)
	assert.Nil(t, pm)
	assert.Equal(t, "NewProcurementMetrics: meter cannot be nil", err.Error())
}

func TestProcurementMetrics_Counters(t *testing.T) {
	ctx := context.Background()
	pm, reader := newManualMetrics(t, nil)

	pm.RecordPurchaseOrderCreated(ctx, 2, decimal.NewFromInt(330))
	pm.RecordGoodsReceipt(ctx, 3)
	pm.RecordGoodsReceipt(ctx, 1)
	pm.RecordPaymentAccepted(ctx, "upi", decimal.NewFromInt(330))
	pm.RecordPaymentRejected(ctx, "PAYMENT_EXCEEDS_OUTSTANDING")
	pm.RecordSideEffectFailure(ctx, "last_price")
	pm.RecordSideEffectFailure(ctx, "stock_movement")
	pm.RecordStockAdjustment(ctx, 1)
	pm.RecordNumberCollision(ctx, "PO")

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumInt(t, data["cafe_purchase_orders_created_total"]))
	assert.Equal(t, int64(2), sumInt(t, data["cafe_goods_receipts_total"]))
	assert.Equal(t, int64(4), sumInt(t, data["cafe_goods_receipt_items_total"]))
	assert.Equal(t, int64(1), sumInt(t, data["cafe_payments_total"]))
	assert.Equal(t, int64(1), sumInt(t, data["cafe_payment_rejections_total"]))
	assert.Equal(t, int64(2), sumInt(t, data["cafe_side_effect_failures_total"]))
	assert.Equal(t, int64(1), sumInt(t, data["cafe_stock_adjustments_total"]))
	assert.Equal(t, int64(1), sumInt(t, data["cafe_adjustment_movements_total"]))
	assert.Equal(t, int64(1), sumInt(t, data["cafe_document_number_collisions_total"]))

	value, ok := data["cafe_purchase_order_value_total"].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, value.DataPoints, 1)
	assert.InDelta(t, 330.0, value.DataPoints[0].Value, 0.001)
}

type fakeLowStock struct {
	calls atomic.Int32
	count int64
	err   error
}

func (f *fakeLowStock) CountBelowReorderLevel(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	return f.count, f.err
}

func TestProcurementMetrics_LowStockCollection(t *testing.T) {
	lowStock := &fakeLowStock{count: 4}
	pm, reader := newManualMetrics(t, lowStock)

	pm.StartLowStockCollection(context.Background(), time.Hour)
	pm.StartLowStockCollection(context.Background(), time.Hour)
	defer pm.Stop()

	var value int64
	require.Eventually(t, func() bool {
		var ok bool
		value, ok = lowStockGauge(reader)
		return ok
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, int64(4), value)
	assert.Equal(t, int32(1), lowStock.calls.Load())
}

func lowStockGauge(reader *sdkmetric.ManualReader) (int64, bool) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		return 0, false
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			if m.Name == "cafe_ingredients_low_stock" && ok && len(gauge.DataPoints) == 1 {
				return gauge.DataPoints[0].Value, true
			}
		}
	}
	return 0, false
}

func TestProcurementMetrics_LowStockCollectionError(t *testing.T) {
	lowStock := &fakeLowStock{err: errors.New("connection refused")}
	pm, reader := newManualMetrics(t, lowStock)

	pm.StartLowStockCollection(context.Background(), time.Hour)
	defer pm.Stop()

	require.Eventually(t, func() bool { return lowStock.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)

	_, recorded := lowStockGauge(reader)
	assert.False(t, recorded)
}

func TestProcurementMetrics_StopIsIdempotent(t *testing.T) {
	pm, _ := newManualMetrics(t, nil)

	pm.StartLowStockCollection(context.Background(), time.Millisecond)
	pm.Stop()
	pm.Stop()
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{Op: "Register", Err: "duplicate instrument"}
	assert.Equal(t, "Register: duplicate instrument", err.Error())
}
