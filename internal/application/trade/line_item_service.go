package trade

import (
	"context"
	"errors"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LineItemService adds, updates and removes line items. Each operation is one
// transaction that locks the owning container, writes the item and recomputes totals.
type LineItemService struct {
	txScope    TransactionScope
	aggregator *Aggregator
	logger     *zap.Logger
}

// NewLineItemService creates a new LineItemService
func NewLineItemService(txScope TransactionScope, aggregator *Aggregator, logger *zap.Logger) *LineItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineItemService{
		txScope:    txScope,
		aggregator: aggregator,
		logger:     logger,
	}
}

// AddItem adds a line item to a budget or service order.
// Returns VALIDATION_ERROR for a bad reference or amounts, NOT_FOUND when the container
// does not exist and INVALID_STATE when its items are frozen.
func (s *LineItemService) AddItem(ctx context.Context, container trade.ContainerRef, in AddLineItemInput) (*LineItemResponse, error) {
	if err := container.Validate(); err != nil {
		return nil, err
	}
	if _, _, err := validateLineItemInput(in); err != nil {
		return nil, err
	}

	var (
		item   *trade.LineItem
		totals *trade.Totals
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Containers().Lock(ctx, container); err != nil {
			return err
		}
		owner, err := repos.Containers().Find(ctx, container)
		if err != nil {
			return err
		}
		if err := owner.EnsureItemsEditable(); err != nil {
			return err
		}

		item, err = buildLineItem(ctx, repos, container, in)
		if err != nil {
			return err
		}
		if err := repos.LineItems().Create(ctx, item); err != nil {
			return err
		}

		totals, err = s.aggregator.Recompute(ctx, repos, container)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("line item added",
		zap.String("item_id", item.ID.String()),
		zap.String("container", container.String()),
	)
	resp := ToLineItemResponse(item)
	resp.ContainerTotals = toTotalsResponse(totals)
	return &resp, nil
}

// UpdateItem changes the quantity and/or discount of an item and recomputes its total
// from the stored unit price. A discount above the subtotal is rejected and the item is
// left unchanged.
func (s *LineItemService) UpdateItem(ctx context.Context, itemID uuid.UUID, in UpdateLineItemInput) (*LineItemResponse, error) {
	if in.Quantity != nil && *in.Quantity < 1 {
		return nil, shared.NewValidationError("Quantity must be at least 1")
	}
	if in.Discount != nil && in.Discount.IsNegative() {
		return nil, shared.NewValidationError("Discount cannot be negative")
	}

	var (
		item   *trade.LineItem
		totals *trade.Totals
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = s.lockItem(ctx, repos, itemID)
		if err != nil {
			return err
		}
		if err := item.Update(in.Quantity, in.Discount); err != nil {
			return err
		}
		if err := repos.LineItems().Update(ctx, item); err != nil {
			return err
		}

		totals, err = s.aggregator.Recompute(ctx, repos, item.Container)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("line item updated",
		zap.String("item_id", item.ID.String()),
		zap.String("container", item.Container.String()),
	)
	resp := ToLineItemResponse(item)
	resp.ContainerTotals = toTotalsResponse(totals)
	return &resp, nil
}

// RemoveItem hard-deletes an item and recomputes its container's totals
func (s *LineItemService) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	var container trade.ContainerRef
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := s.lockItem(ctx, repos, itemID)
		if err != nil {
			return err
		}
		container = item.Container
		if err := repos.LineItems().Delete(ctx, item.ID); err != nil {
			return err
		}

		_, err = s.aggregator.Recompute(ctx, repos, container)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("line item removed",
		zap.String("item_id", itemID.String()),
		zap.String("container", container.String()),
	)
	return nil
}

// lockItem locks the item's container and re-reads the item under that lock.
// An item whose container row has vanished can still be changed; the aggregator
// then logs the inconsistency instead of failing the request.
func (s *LineItemService) lockItem(ctx context.Context, repos TransactionalRepositories, itemID uuid.UUID) (*trade.LineItem, error) {
	item, err := repos.LineItems().FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	err = repos.Containers().Lock(ctx, item.Container)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return item, nil
	case err != nil:
		return nil, err
	}

	owner, err := repos.Containers().Find(ctx, item.Container)
	if err != nil {
		return nil, err
	}
	if err := owner.EnsureItemsEditable(); err != nil {
		return nil, err
	}

	return repos.LineItems().FindByID(ctx, itemID)
}
