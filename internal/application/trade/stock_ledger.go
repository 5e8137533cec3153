package trade

import (
	"context"
	"fmt"
	"slices"

	"github.com/assistec/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockLedger applies stock consumption for sold items.
// Only sale creation and budget-to-sale conversion call it.
type StockLedger struct {
	allowNegative bool
	logger        *zap.Logger
	metrics       Metrics
}

// NewStockLedger creates a new StockLedger
func NewStockLedger(allowNegative bool, logger *zap.Logger, metrics Metrics) *StockLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &StockLedger{allowNegative: allowNegative, logger: logger, metrics: metrics}
}

// DecrementForItems subtracts the quantity of every product item from its product's stock.
// Quantities of the same product are summed into one relative update, and products are
// updated in id order so concurrent sales lock rows in the same sequence.
func (l *StockLedger) DecrementForItems(ctx context.Context, repos TransactionalRepositories, items []trade.LineItem) error {
	quantities := make(map[uuid.UUID]int)
	for i := range items {
		productID := items[i].Ref.ProductID()
		if productID == nil {
			continue
		}
		quantities[*productID] += items[i].Quantity
	}
	if len(quantities) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})

	var units int64
	for _, id := range ids {
		qty := quantities[id]
		if err := repos.Products().DecrementStock(ctx, id, qty, l.allowNegative); err != nil {
			return fmt.Errorf("decrement stock of product %s: %w", id, err)
		}
		units += int64(qty)
		l.logger.Debug("stock decremented",
			zap.String("product_id", id.String()),
			zap.Int("quantity", qty),
		)
	}
	l.metrics.StockDecremented(ctx, units)
	return nil
}
