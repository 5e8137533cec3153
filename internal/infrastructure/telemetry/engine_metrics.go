package telemetry

import (
	"context"
	"strconv"

	"github.com/assistec/backend/internal/domain/trade"
	"go.opentelemetry.io/otel/metric"
)

// EngineMetrics records order engine events as OpenTelemetry counters
type EngineMetrics struct {
	conversions        *Counter
	aggregationFailed  *Counter
	aggregationSkipped *Counter
	stockDecremented   *Counter
	recordsPosted      *Counter
}

// NewEngineMetrics creates the engine instruments on meter
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	conversions, err := NewCounter(meter, "engine_conversions_total",
		"Budget conversions by target and outcome", "{conversion}")
	if err != nil {
		return nil, err
	}
	aggregationFailed, err := NewCounter(meter, "engine_aggregation_failures_total",
		"Totals recomputations that could not be persisted", "{recompute}")
	if err != nil {
		return nil, err
	}
	aggregationSkipped, err := NewCounter(meter, "engine_aggregation_skipped_total",
		"Totals recomputations skipped because the container was missing", "{recompute}")
	if err != nil {
		return nil, err
	}
	stockDecremented, err := NewCounter(meter, "engine_stock_decremented_units_total",
		"Product units removed from stock by sales", "{unit}")
	if err != nil {
		return nil, err
	}
	recordsPosted, err := NewCounter(meter, "engine_financial_records_posted_total",
		"Financial record postings by whether a record was created", "{record}")
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		conversions:        conversions,
		aggregationFailed:  aggregationFailed,
		aggregationSkipped: aggregationSkipped,
		stockDecremented:   stockDecremented,
		recordsPosted:      recordsPosted,
	}, nil
}

// ConversionCompleted counts a successful conversion
func (m *EngineMetrics) ConversionCompleted(ctx context.Context, target trade.ContainerKind) {
	m.conversions.Inc(ctx, AttrTarget.String(target.String()), AttrOutcome.String("success"))
}

// ConversionFailed counts a rolled back conversion
func (m *EngineMetrics) ConversionFailed(ctx context.Context, target trade.ContainerKind) {
	m.conversions.Inc(ctx, AttrTarget.String(target.String()), AttrOutcome.String("failure"))
}

// AggregationFailed counts a totals write that failed
func (m *EngineMetrics) AggregationFailed(ctx context.Context, kind trade.ContainerKind) {
	m.aggregationFailed.Inc(ctx, AttrContainerKind.String(kind.String()))
}

// AggregationSkipped counts a recompute on a vanished container
func (m *EngineMetrics) AggregationSkipped(ctx context.Context, kind trade.ContainerKind) {
	m.aggregationSkipped.Inc(ctx, AttrContainerKind.String(kind.String()))
}

// StockDecremented adds the units removed from stock
func (m *EngineMetrics) StockDecremented(ctx context.Context, units int64) {
	m.stockDecremented.Add(ctx, units)
}

// FinancialRecordPosted counts a posting
func (m *EngineMetrics) FinancialRecordPosted(ctx context.Context, created bool) {
	m.recordsPosted.Inc(ctx, AttrCreated.String(strconv.FormatBool(created)))
}
