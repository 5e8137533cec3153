package trade

import (
	"context"

	"github.com/assistec/backend/internal/domain/trade"
)

// Metrics receives engine events for observability.
// The telemetry package provides the OpenTelemetry implementation.
type Metrics interface {
	ConversionCompleted(ctx context.Context, target trade.ContainerKind)
	ConversionFailed(ctx context.Context, target trade.ContainerKind)
	AggregationFailed(ctx context.Context, kind trade.ContainerKind)
	AggregationSkipped(ctx context.Context, kind trade.ContainerKind)
	StockDecremented(ctx context.Context, units int64)
	FinancialRecordPosted(ctx context.Context, created bool)
}

type noopMetrics struct{}

func (noopMetrics) ConversionCompleted(context.Context, trade.ContainerKind) {}
func (noopMetrics) ConversionFailed(context.Context, trade.ContainerKind)    {}
func (noopMetrics) AggregationFailed(context.Context, trade.ContainerKind)   {}
func (noopMetrics) AggregationSkipped(context.Context, trade.ContainerKind)  {}
func (noopMetrics) StockDecremented(context.Context, int64)                  {}
func (noopMetrics) FinancialRecordPosted(context.Context, bool)              {}

// NoopMetrics returns a Metrics that records nothing
func NoopMetrics() Metrics {
	return noopMetrics{}
}
