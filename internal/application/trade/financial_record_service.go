package trade

import (
	"context"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// FinancialRecordService exposes the poster as a standalone operation
type FinancialRecordService struct {
	txScope  TransactionScope
	poster   *FinancialPoster
	settings Settings
	logger   *zap.Logger
}

// NewFinancialRecordService creates a new FinancialRecordService
func NewFinancialRecordService(txScope TransactionScope, poster *FinancialPoster, settings Settings, logger *zap.Logger) *FinancialRecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinancialRecordService{
		txScope:  txScope,
		poster:   poster,
		settings: settings,
		logger:   logger,
	}
}

// Post creates or updates the record of a service order or sale in its own transaction.
// Posting an unpaid amount for a container without a record is a no-op and returns nil.
func (s *FinancialRecordService) Post(ctx context.Context, in PostFinancialRecordInput) (*FinancialRecordResponse, error) {
	kind := trade.ContainerKind(in.ContainerKind)
	if kind != trade.ContainerServiceOrder && kind != trade.ContainerSale {
		return nil, shared.NewValidationError("Financial records can only reference a service order or a sale")
	}
	ref := trade.ContainerRef{Kind: kind, ID: in.ContainerID}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if in.Amount.IsNegative() {
		return nil, shared.NewValidationError("Amount cannot be negative")
	}
	method, ok := finance.ParsePaymentMethod(in.PaymentMethod, s.settings.DefaultPaymentMethod)
	if !ok {
		return nil, shared.NewValidationError("Invalid payment method: " + in.PaymentMethod)
	}

	var record *finance.FinancialRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// concurrent first postings queue here instead of racing on the unique source index
		if err := repos.Containers().Lock(ctx, ref); err != nil {
			return err
		}
		container, err := repos.Containers().Find(ctx, ref)
		if err != nil {
			return err
		}
		record, err = s.poster.PostOrUpdate(ctx, repos, PostInput{
			Ref:           ref,
			Amount:        in.Amount,
			PaymentMethod: method,
			Paid:          in.Paid,
			PaidAt:        in.PaidAt,
			Description:   describe(container),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if record == nil {
		s.logger.Debug("unpaid posting without record skipped", zap.String("container", ref.String()))
	}
	return ToFinancialRecordResponse(record), nil
}

// GetBySource returns the record of a service order or sale
func (s *FinancialRecordService) GetBySource(ctx context.Context, source finance.Source) (*FinancialRecordResponse, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	var record *finance.FinancialRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.FinancialRecords().FindBySource(ctx, source)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToFinancialRecordResponse(record), nil
}

func describe(c trade.Container) string {
	switch v := c.(type) {
	case *trade.ServiceOrder:
		return "OS " + v.Number
	case *trade.Sale:
		return "Venda " + v.Number
	}
	return c.Ref().String()
}
