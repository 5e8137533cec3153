package trade

import (
	"context"
	"errors"
	"time"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/assistec/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConversionService turns a budget into a service order or a sale.
// Each conversion is a single transaction: the new container, its copied items, stock
// decrements, the financial record and the budget status flip commit together or not at all.
// The budget status is changed with a compare-and-swap, so a retried or double-clicked
// conversion fails instead of producing a second container.
type ConversionService struct {
	txScope    TransactionScope
	aggregator *Aggregator
	ledger     *StockLedger
	poster     *FinancialPoster
	settings   Settings
	logger     *zap.Logger
	metrics    Metrics
}

// NewConversionService creates a new ConversionService
func NewConversionService(
	txScope TransactionScope,
	aggregator *Aggregator,
	ledger *StockLedger,
	poster *FinancialPoster,
	settings Settings,
	logger *zap.Logger,
	metrics Metrics,
) *ConversionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &ConversionService{
		txScope:    txScope,
		aggregator: aggregator,
		ledger:     ledger,
		poster:     poster,
		settings:   settings,
		logger:     logger,
		metrics:    metrics,
	}
}

// ConvertToOrder opens a service order from a PENDING budget and marks the budget APPROVED.
// Items are copied verbatim; no stock is consumed and no financial record is posted.
func (s *ConversionService) ConvertToOrder(ctx context.Context, budgetID uuid.UUID) (*ConvertToOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "conversion", "to_order",
		telemetry.WithAttribute(telemetry.SpanAttrBudgetID, budgetID))
	defer span.End()

	var (
		result        ConvertToOrderResult
		budgetMissing bool
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		budget, err := repos.Budgets().FindByID(ctx, budgetID)
		if err != nil {
			budgetMissing = errors.Is(err, shared.ErrNotFound)
			return err
		}
		if err := repos.Budgets().TransitionStatus(ctx, budget.ID,
			trade.BudgetStatusApproved, trade.BudgetStatusPending); err != nil {
			return err
		}

		items, err := repos.LineItems().FindByContainer(ctx, budget.Ref())
		if err != nil {
			return err
		}

		seq, err := repos.Sequences().Next(ctx, trade.SequenceServiceOrder)
		if err != nil {
			return err
		}
		order, err := trade.NewServiceOrderFromBudget(seq, s.settings.OrderNumber.Format(seq), budget)
		if err != nil {
			return err
		}
		if err := repos.ServiceOrders().Create(ctx, order); err != nil {
			return err
		}

		copies := trade.CopyItems(items, order.Ref())
		if err := repos.LineItems().CreateBatch(ctx, copies); err != nil {
			return err
		}
		if _, err := s.aggregator.Recompute(ctx, repos, order.Ref()); err != nil {
			return err
		}

		result = ConvertToOrderResult{OrderID: order.ID, OrderNumber: order.Number}
		return nil
	})
	if err != nil {
		return nil, s.conversionError(ctx, trade.ContainerServiceOrder, budgetID, budgetMissing, err)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrNumber, result.OrderNumber)
	s.metrics.ConversionCompleted(ctx, trade.ContainerServiceOrder)
	s.logger.Info("budget converted to service order",
		zap.String("budget_id", budgetID.String()),
		zap.String("order_id", result.OrderID.String()),
		zap.String("order_number", result.OrderNumber),
	)
	return &result, nil
}

// ConvertToSale sells a budget that is not yet CONVERTED. The actor becomes the seller of
// record; without an actor the call fails with UNAUTHORIZED before anything is read.
// Product items decrement stock and a paid REVENUE record is posted for the full amount.
func (s *ConversionService) ConvertToSale(ctx context.Context, in ConvertToSaleInput) (*ConvertToSaleResult, error) {
	if in.ActorID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Converting a budget to a sale requires an authenticated seller")
	}
	method, ok := finance.ParsePaymentMethod(in.PaymentMethod, s.settings.DefaultPaymentMethod)
	if !ok {
		return nil, shared.NewValidationError("Invalid payment method: " + in.PaymentMethod)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "conversion", "to_sale",
		telemetry.WithAttribute(telemetry.SpanAttrBudgetID, in.BudgetID),
		telemetry.WithAttribute(telemetry.SpanAttrPaymentMethod, method.String()))
	defer span.End()

	var (
		result        ConvertToSaleResult
		budgetMissing bool
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		budget, err := repos.Budgets().FindByID(ctx, in.BudgetID)
		if err != nil {
			budgetMissing = errors.Is(err, shared.ErrNotFound)
			return err
		}
		if err := repos.Budgets().TransitionStatus(ctx, budget.ID,
			trade.BudgetStatusConverted, trade.StatusesConvertibleToSale()...); err != nil {
			return err
		}

		items, err := repos.LineItems().FindByContainer(ctx, budget.Ref())
		if err != nil {
			return err
		}

		seq, err := repos.Sequences().Next(ctx, trade.SequenceSale)
		if err != nil {
			return err
		}
		sale, err := trade.NewSaleFromBudget(seq, s.settings.SaleNumber.Format(seq), in.ActorID, budget, method)
		if err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return err
		}

		copies := trade.CopyItems(items, sale.Ref())
		if err := repos.LineItems().CreateBatch(ctx, copies); err != nil {
			return err
		}
		if err := s.ledger.DecrementForItems(ctx, repos, copies); err != nil {
			return err
		}

		totals, err := s.aggregator.Recompute(ctx, repos, sale.Ref())
		if err != nil {
			return err
		}
		if totals == nil {
			return shared.NewNotFoundError("Sale")
		}

		now := time.Now()
		record, err := s.poster.PostOrUpdate(ctx, repos, PostInput{
			Ref:           sale.Ref(),
			Amount:        totals.TotalAmount,
			PaymentMethod: method,
			Paid:          true,
			PaidAt:        &now,
			Description:   "Venda " + sale.Number,
		})
		if err != nil {
			return err
		}

		result = ConvertToSaleResult{SaleID: sale.ID, SaleNumber: sale.Number, FinancialRecordID: record.ID}
		return nil
	})
	if err != nil {
		return nil, s.conversionError(ctx, trade.ContainerSale, in.BudgetID, budgetMissing, err)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrNumber, result.SaleNumber)
	s.metrics.ConversionCompleted(ctx, trade.ContainerSale)
	s.logger.Info("budget converted to sale",
		zap.String("budget_id", in.BudgetID.String()),
		zap.String("sale_id", result.SaleID.String()),
		zap.String("sale_number", result.SaleNumber),
		zap.String("seller_id", in.ActorID.String()),
	)
	return &result, nil
}

// conversionError maps a failed conversion transaction to NOT_FOUND when the source budget
// is missing and to CONVERSION_FAILED for everything else.
func (s *ConversionService) conversionError(ctx context.Context, target trade.ContainerKind, budgetID uuid.UUID, budgetMissing bool, err error) error {
	s.metrics.ConversionFailed(ctx, target)
	telemetry.RecordError(telemetry.SpanFromContext(ctx), err)
	if budgetMissing {
		return shared.NewNotFoundError("Budget")
	}
	s.logger.Warn("budget conversion failed",
		zap.String("budget_id", budgetID.String()),
		zap.String("target", target.String()),
		zap.Error(err),
	)
	return shared.NewConversionError(err)
}
