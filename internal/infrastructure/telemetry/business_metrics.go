package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thaipharm/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when NewBusinessMetrics gets no meter
var ErrMeterNil = errors.New("business metrics: meter cannot be nil")

var (
	AttrBranchID  = attribute.Key("branch_id")
	AttrOperation = attribute.Key("operation")
	AttrEventType = attribute.Key("event_type")
)

// BusinessMetrics records pharmacy activity: sales, stock rejections and
// the domain events published on the bus.
type BusinessMetrics struct {
	saleTotal      metric.Int64Counter
	saleAmount     metric.Float64Counter
	saleLines      metric.Int64Histogram
	saleCancelled  metric.Int64Counter
	stockRejection metric.Int64Counter
	domainEvents   metric.Int64Counter
}

// NewBusinessMetrics registers the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	var err error
	if bm.saleTotal, err = meter.Int64Counter("pharmacy_sale_total",
		metric.WithDescription("Completed checkouts"), metric.WithUnit("{sales}")); err != nil {
		return nil, fmt.Errorf("pharmacy_sale_total: %w", err)
	}
	if bm.saleAmount, err = meter.Float64Counter("pharmacy_sale_amount_total",
		metric.WithDescription("Checkout totals including VAT"), metric.WithUnit("THB")); err != nil {
		return nil, fmt.Errorf("pharmacy_sale_amount_total: %w", err)
	}
	if bm.saleLines, err = meter.Int64Histogram("pharmacy_sale_lines",
		metric.WithDescription("Sale lines per checkout after batch allocation"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 20, 50)); err != nil {
		return nil, fmt.Errorf("pharmacy_sale_lines: %w", err)
	}
	if bm.saleCancelled, err = meter.Int64Counter("pharmacy_sale_cancelled_total",
		metric.WithDescription("Cancelled sales"), metric.WithUnit("{sales}")); err != nil {
		return nil, fmt.Errorf("pharmacy_sale_cancelled_total: %w", err)
	}
	if bm.stockRejection, err = meter.Int64Counter("pharmacy_stock_rejection_total",
		metric.WithDescription("Operations rejected for insufficient stock")); err != nil {
		return nil, fmt.Errorf("pharmacy_stock_rejection_total: %w", err)
	}
	if bm.domainEvents, err = meter.Int64Counter("pharmacy_domain_event_total",
		metric.WithDescription("Domain events published"), metric.WithUnit("{events}")); err != nil {
		return nil, fmt.Errorf("pharmacy_domain_event_total: %w", err)
	}
	return bm, nil
}

// RecordSale counts a completed checkout and its total
func (bm *BusinessMetrics) RecordSale(ctx context.Context, branchID uuid.UUID, total decimal.Decimal, lines int) {
	attrs := metric.WithAttributes(AttrBranchID.String(branchID.String()))
	bm.saleTotal.Add(ctx, 1, attrs)
	bm.saleAmount.Add(ctx, total.InexactFloat64(), attrs)
	bm.saleLines.Record(ctx, int64(lines), attrs)
}

// RecordSaleCancelled counts a cancelled sale
func (bm *BusinessMetrics) RecordSaleCancelled(ctx context.Context, branchID uuid.UUID) {
	bm.saleCancelled.Add(ctx, 1, metric.WithAttributes(AttrBranchID.String(branchID.String())))
}

// RecordStockRejection counts an operation refused for insufficient stock
func (bm *BusinessMetrics) RecordStockRejection(ctx context.Context, operation string) {
	bm.stockRejection.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation)))
}

// Handle counts a published domain event by type and branch
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	bm.domainEvents.Add(ctx, 1, metric.WithAttributes(
		AttrEventType.String(event.EventType()),
		AttrBranchID.String(event.BranchID().String()),
	))
	return nil
}

// EventTypes is empty so the bus delivers every event
func (bm *BusinessMetrics) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
