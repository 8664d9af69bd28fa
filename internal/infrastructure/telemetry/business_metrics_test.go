package telemetry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thaipharm/backend/internal/domain/shared"
	"github.com/thaipharm/backend/internal/infrastructure/telemetry"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*telemetry.BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := telemetry.NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return bm, reader
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

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(nil)

	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, bm)
}

func TestBusinessMetrics_RecordSale(t *testing.T) {
	bm, reader := newTestMetrics(t)
	ctx := context.Background()
	branch := uuid.New()

	bm.RecordSale(ctx, branch, decimal.RequireFromString("107.00"), 2)
	bm.RecordSale(ctx, branch, decimal.RequireFromString("53.50"), 1)
	bm.RecordSaleCancelled(ctx, branch)

	data := collect(t, reader)

	total, ok := data["pharmacy_sale_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(2), total.DataPoints[0].Value)
	v, ok := total.DataPoints[0].Attributes.Value(telemetry.AttrBranchID)
	require.True(t, ok)
	assert.Equal(t, branch.String(), v.AsString())

	amount, ok := data["pharmacy_sale_amount_total"].(metricdata.Sum[float64])
	require.True(t, ok)
	assert.InDelta(t, 160.5, amount.DataPoints[0].Value, 0.0001)

	lines, ok := data["pharmacy_sale_lines"].(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Equal(t, uint64(2), lines.DataPoints[0].Count)
	assert.Equal(t, int64(3), lines.DataPoints[0].Sum)

	cancelled, ok := data["pharmacy_sale_cancelled_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), cancelled.DataPoints[0].Value)
}

func TestBusinessMetrics_RecordStockRejection(t *testing.T) {
	bm, reader := newTestMetrics(t)
	ctx := context.Background()

	bm.RecordStockRejection(ctx, "checkout")
	bm.RecordStockRejection(ctx, "checkout")
	bm.RecordStockRejection(ctx, "transfer_ship")

	rejections, ok := collect(t, reader)["pharmacy_stock_rejection_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	byOp := map[string]int64{}
	for _, dp := range rejections.DataPoints {
		v, _ := dp.Attributes.Value(telemetry.AttrOperation)
		byOp[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"checkout": 2, "transfer_ship": 1}, byOp)
}

func TestBusinessMetrics_HandleEvent(t *testing.T) {
	bm, reader := newTestMetrics(t)
	branch := uuid.New()
	event := shared.NewBaseDomainEvent("TransferShipped", "StockTransfer", uuid.New(), branch)

	require.NoError(t, bm.Handle(context.Background(), &event))
	assert.Empty(t, bm.EventTypes())

	events, ok := collect(t, reader)["pharmacy_domain_event_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, events.DataPoints, 1)
	v, _ := events.DataPoints[0].Attributes.Value(telemetry.AttrEventType)
	assert.Equal(t, "TransferShipped", v.AsString())
}
