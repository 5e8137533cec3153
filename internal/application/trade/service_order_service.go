package trade

import (
	"context"
	"errors"
	"time"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServiceOrderService handles service order (OS) operations
type ServiceOrderService struct {
	txScope    TransactionScope
	aggregator *Aggregator
	poster     *FinancialPoster
	settings   Settings
	logger     *zap.Logger
}

// NewServiceOrderService creates a new ServiceOrderService
func NewServiceOrderService(txScope TransactionScope, aggregator *Aggregator, poster *FinancialPoster, settings Settings, logger *zap.Logger) *ServiceOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceOrderService{
		txScope:    txScope,
		aggregator: aggregator,
		poster:     poster,
		settings:   settings,
		logger:     logger,
	}
}

// Create opens a service order with optional adjustments and items.
// Service order items never touch stock.
func (s *ServiceOrderService) Create(ctx context.Context, in CreateServiceOrderInput) (*ServiceOrderResponse, error) {
	if in.CustomerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer ID cannot be empty")
	}
	if err := validateLineItemInputs(in.Items); err != nil {
		return nil, err
	}

	var order *trade.ServiceOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		seq, err := repos.Sequences().Next(ctx, trade.SequenceServiceOrder)
		if err != nil {
			return err
		}
		order, err = trade.NewServiceOrder(seq, s.settings.OrderNumber.Format(seq), in.CustomerID)
		if err != nil {
			return err
		}
		order.Description = in.Description
		if in.Priority != "" {
			if err := order.SetPriority(trade.Priority(in.Priority)); err != nil {
				return err
			}
		}
		if err := order.SetAdjustments(orZero(in.FreightAmount), orZero(in.OthersAmount), orZero(in.DiscountAmount)); err != nil {
			return err
		}
		if err := repos.ServiceOrders().Create(ctx, order); err != nil {
			return err
		}

		for i := range in.Items {
			item, err := buildLineItem(ctx, repos, order.Ref(), in.Items[i])
			if err != nil {
				return err
			}
			if err := repos.LineItems().Create(ctx, item); err != nil {
				return err
			}
			order.Items = append(order.Items, *item)
		}

		totals, err := s.aggregator.Recompute(ctx, repos, order.Ref())
		if err != nil {
			return err
		}
		if totals != nil {
			order.ApplyTotals(*totals)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service order created",
		zap.String("order_id", order.ID.String()),
		zap.String("number", order.Number),
		zap.String("total_amount", order.TotalAmount.StringFixed(shared.MoneyPlaces)),
	)
	resp := ToServiceOrderResponse(order)
	return &resp, nil
}

// GetByID returns a service order with its items and financial record
func (s *ServiceOrderService) GetByID(ctx context.Context, id uuid.UUID) (*ServiceOrderResponse, error) {
	var (
		order  *trade.ServiceOrder
		record *finance.FinancialRecord
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.ServiceOrders().FindByIDWithItems(ctx, id)
		if err != nil {
			return err
		}
		record, err = repos.FinancialRecords().FindBySource(ctx, finance.ServiceOrderSource(id))
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToServiceOrderResponse(order)
	resp.FinancialRecord = ToFinancialRecordResponse(record)
	return &resp, nil
}

// Update applies a full edit of the order: header fields, adjustments and payment.
// Totals are recomputed and the financial record re-posted in the same transaction.
func (s *ServiceOrderService) Update(ctx context.Context, id uuid.UUID, in UpdateServiceOrderInput) (*ServiceOrderResponse, error) {
	var method *finance.PaymentMethod
	if in.PaymentMethod != nil {
		m, ok := finance.ParsePaymentMethod(*in.PaymentMethod, s.settings.DefaultPaymentMethod)
		if !ok {
			return nil, shared.NewValidationError("Invalid payment method: " + *in.PaymentMethod)
		}
		method = &m
	}

	var (
		order  *trade.ServiceOrder
		record *finance.FinancialRecord
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = s.lockOrder(ctx, repos, id)
		if err != nil {
			return err
		}

		if in.Priority != nil {
			if err := order.SetPriority(trade.Priority(*in.Priority)); err != nil {
				return err
			}
		}
		if in.Description != nil {
			order.Description = *in.Description
		}
		if in.FreightAmount != nil || in.OthersAmount != nil || in.DiscountAmount != nil {
			if err := order.SetAdjustments(
				valueOr(in.FreightAmount, order.FreightAmount),
				valueOr(in.OthersAmount, order.OthersAmount),
				valueOr(in.DiscountAmount, order.DiscountAmount),
			); err != nil {
				return err
			}
		}
		if err := s.applyPayment(order, in.Paid, method, in.PaidAt); err != nil {
			return err
		}

		if err := repos.ServiceOrders().Update(ctx, order); err != nil {
			return err
		}
		record, err = s.recomputeAndPost(ctx, repos, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service order updated",
		zap.String("order_id", order.ID.String()),
		zap.String("total_amount", order.TotalAmount.StringFixed(shared.MoneyPlaces)),
		zap.Bool("paid", order.Paid),
	)
	resp := ToServiceOrderResponse(order)
	resp.FinancialRecord = ToFinancialRecordResponse(record)
	return &resp, nil
}

// UpdateStatus moves the order through its workflow and/or changes its payment.
// A payment change re-posts the financial record.
func (s *ServiceOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, in UpdateServiceOrderStatusInput) (*ServiceOrderResponse, error) {
	if in.Status == "" && in.Paid == nil {
		return nil, shared.NewValidationError("Nothing to update: provide a status or a payment")
	}
	var method *finance.PaymentMethod
	if in.PaymentMethod != nil {
		m, ok := finance.ParsePaymentMethod(*in.PaymentMethod, s.settings.DefaultPaymentMethod)
		if !ok {
			return nil, shared.NewValidationError("Invalid payment method: " + *in.PaymentMethod)
		}
		method = &m
	}

	var (
		order  *trade.ServiceOrder
		record *finance.FinancialRecord
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = s.lockOrder(ctx, repos, id)
		if err != nil {
			return err
		}
		if in.Status != "" {
			if err := order.ChangeStatus(trade.ServiceOrderStatus(in.Status)); err != nil {
				return err
			}
		}
		if err := s.applyPayment(order, in.Paid, method, in.PaidAt); err != nil {
			return err
		}
		if err := repos.ServiceOrders().Update(ctx, order); err != nil {
			return err
		}
		if in.Paid == nil {
			return nil
		}
		record, err = s.recomputeAndPost(ctx, repos, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("service order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", order.Status.String()),
		zap.Bool("paid", order.Paid),
	)
	resp := ToServiceOrderResponse(order)
	resp.FinancialRecord = ToFinancialRecordResponse(record)
	return &resp, nil
}

func (s *ServiceOrderService) lockOrder(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) (*trade.ServiceOrder, error) {
	if err := repos.Containers().Lock(ctx, trade.ServiceOrderRef(id)); err != nil {
		return nil, err
	}
	return repos.ServiceOrders().FindByIDWithItems(ctx, id)
}

func (s *ServiceOrderService) applyPayment(order *trade.ServiceOrder, paid *bool, method *finance.PaymentMethod, paidAt *time.Time) error {
	switch {
	case paid == nil:
		if method != nil {
			order.PaymentMethod = method
		}
		return nil
	case *paid:
		m := order.PaymentMethodOr(s.settings.DefaultPaymentMethod)
		if method != nil {
			m = *method
		}
		if paidAt == nil && order.Paid {
			paidAt = order.PaidAt
		}
		return order.MarkPaid(m, paidAt)
	default:
		order.MarkUnpaid()
		if method != nil {
			order.PaymentMethod = method
		}
		return nil
	}
}

// recomputeAndPost refreshes the order totals and syncs its financial record
func (s *ServiceOrderService) recomputeAndPost(ctx context.Context, repos TransactionalRepositories, order *trade.ServiceOrder) (*finance.FinancialRecord, error) {
	totals, err := s.aggregator.Recompute(ctx, repos, order.Ref())
	if err != nil {
		return nil, err
	}
	if totals != nil {
		order.ApplyTotals(*totals)
	}
	return s.poster.PostOrUpdate(ctx, repos, PostInput{
		Ref:           order.Ref(),
		Amount:        order.TotalAmount,
		PaymentMethod: order.PaymentMethodOr(s.settings.DefaultPaymentMethod),
		Paid:          order.Paid,
		PaidAt:        order.PaidAt,
		Description:   "OS " + order.Number,
	})
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	return valueOr(d, decimal.Zero)
}

func valueOr(d *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if d == nil {
		return fallback
	}
	return *d
}
