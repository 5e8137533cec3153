package trade

import (
	"context"
	"errors"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// Aggregator recomputes the derived totals of a container.
// It is the last step of every transaction that mutates line items, and it always
// re-reads the items through the transaction it writes with.
type Aggregator struct {
	logger  *zap.Logger
	metrics Metrics
}

// NewAggregator creates a new Aggregator
func NewAggregator(logger *zap.Logger, metrics Metrics) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &Aggregator{logger: logger, metrics: metrics}
}

// Recompute derives and persists the totals of the referenced container.
// A missing container is logged as an inconsistency and skipped (nil totals, nil error),
// so the triggering item mutation still commits. Any read or write failure is returned
// as AGGREGATION_FAILED and must roll back the caller's transaction.
func (a *Aggregator) Recompute(ctx context.Context, repos TransactionalRepositories, ref trade.ContainerRef) (*trade.Totals, error) {
	container, err := repos.Containers().Find(ctx, ref)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			a.logger.Warn("aggregation skipped: container not found",
				zap.String("container_kind", ref.Kind.String()),
				zap.String("container_id", ref.ID.String()),
			)
			a.metrics.AggregationSkipped(ctx, ref.Kind)
			return nil, nil
		}
		return nil, a.fail(ctx, ref, err)
	}

	items, err := repos.LineItems().FindByContainer(ctx, ref)
	if err != nil {
		return nil, a.fail(ctx, ref, err)
	}

	totals := trade.ComputeTotals(items, container.Adjustments())
	container.ApplyTotals(totals)

	if err := repos.Containers().SaveTotals(ctx, container); err != nil {
		return nil, a.fail(ctx, ref, err)
	}

	a.logger.Debug("container totals recomputed",
		zap.String("container_kind", ref.Kind.String()),
		zap.String("container_id", ref.ID.String()),
		zap.Int("items", len(items)),
		zap.String("total_amount", totals.TotalAmount.StringFixed(shared.MoneyPlaces)),
	)
	return &totals, nil
}

func (a *Aggregator) fail(ctx context.Context, ref trade.ContainerRef, err error) error {
	a.logger.Error("aggregation failed",
		zap.String("container_kind", ref.Kind.String()),
		zap.String("container_id", ref.ID.String()),
		zap.Error(err),
	)
	a.metrics.AggregationFailed(ctx, ref.Kind)
	return shared.NewAggregationError(err)
}
