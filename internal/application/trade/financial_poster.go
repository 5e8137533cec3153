package trade

import (
	"context"
	"errors"
	"time"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PostInput describes a ledger posting for a service order or sale
type PostInput struct {
	Ref           trade.ContainerRef
	Amount        decimal.Decimal
	PaymentMethod finance.PaymentMethod
	Paid          bool
	PaidAt        *time.Time
	Description   string
}

// FinancialPoster keeps the single financial record of a container in sync.
// Every call site (sale creation, conversion, order payment update, order full edit,
// standalone posting) goes through PostOrUpdate so they all behave the same way.
type FinancialPoster struct {
	logger  *zap.Logger
	metrics Metrics
}

// NewFinancialPoster creates a new FinancialPoster
func NewFinancialPoster(logger *zap.Logger, metrics Metrics) *FinancialPoster {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &FinancialPoster{logger: logger, metrics: metrics}
}

// PostOrUpdate looks up the record of the container and updates it in place, or creates a
// REVENUE record when none exists and the container is paid. An unpaid container without a
// record gets none: the result is (nil, nil).
func (p *FinancialPoster) PostOrUpdate(ctx context.Context, repos TransactionalRepositories, in PostInput) (*finance.FinancialRecord, error) {
	source, err := sourceOf(in.Ref)
	if err != nil {
		return nil, err
	}

	record, err := repos.FinancialRecords().FindBySource(ctx, source)
	switch {
	case err == nil:
		if err := record.Repost(in.Amount, in.PaymentMethod, in.Paid, in.PaidAt); err != nil {
			return nil, err
		}
		if err := repos.FinancialRecords().Update(ctx, record); err != nil {
			return nil, err
		}
		p.logger.Info("financial record updated",
			zap.String("record_id", record.ID.String()),
			zap.String("container", in.Ref.String()),
			zap.String("amount", record.Amount.StringFixed(shared.MoneyPlaces)),
			zap.Bool("paid", record.Paid),
		)
		p.metrics.FinancialRecordPosted(ctx, false)
		return record, nil

	case !errors.Is(err, shared.ErrNotFound):
		return nil, err

	case !in.Paid:
		return nil, nil
	}

	record, err = finance.NewRevenueRecord(source, in.Description, in.Amount, in.PaymentMethod, true, in.PaidAt)
	if err != nil {
		return nil, err
	}
	if err := repos.FinancialRecords().Create(ctx, record); err != nil {
		return nil, err
	}
	p.logger.Info("financial record created",
		zap.String("record_id", record.ID.String()),
		zap.String("container", in.Ref.String()),
		zap.String("amount", record.Amount.StringFixed(shared.MoneyPlaces)),
	)
	p.metrics.FinancialRecordPosted(ctx, true)
	return record, nil
}

func sourceOf(ref trade.ContainerRef) (finance.Source, error) {
	if err := ref.Validate(); err != nil {
		return finance.Source{}, err
	}
	switch ref.Kind {
	case trade.ContainerServiceOrder:
		return finance.ServiceOrderSource(ref.ID), nil
	case trade.ContainerSale:
		return finance.SaleSource(ref.ID), nil
	}
	return finance.Source{}, shared.NewValidationError("Financial records can only reference a service order or a sale")
}
