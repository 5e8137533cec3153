package trade

import (
	"context"
	"errors"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService records point-of-sale transactions
type SaleService struct {
	txScope    TransactionScope
	aggregator *Aggregator
	ledger     *StockLedger
	poster     *FinancialPoster
	settings   Settings
	logger     *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(txScope TransactionScope, aggregator *Aggregator, ledger *StockLedger, poster *FinancialPoster, settings Settings, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		txScope:    txScope,
		aggregator: aggregator,
		ledger:     ledger,
		poster:     poster,
		settings:   settings,
		logger:     logger,
	}
}

// Create records a paid sale: items, stock decrements and the REVENUE record commit together.
// The seller is the authenticated actor; without one the call fails with UNAUTHORIZED.
func (s *SaleService) Create(ctx context.Context, in CreateSaleInput) (*SaleResponse, error) {
	if in.SellerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Recording a sale requires an authenticated seller")
	}
	if len(in.Items) == 0 {
		return nil, shared.NewValidationError("A sale needs at least one item")
	}
	if err := validateLineItemInputs(in.Items); err != nil {
		return nil, err
	}
	method, ok := finance.ParsePaymentMethod(in.PaymentMethod, s.settings.DefaultPaymentMethod)
	if !ok {
		return nil, shared.NewValidationError("Invalid payment method: " + in.PaymentMethod)
	}

	var (
		sale   *trade.Sale
		record *finance.FinancialRecord
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		seq, err := repos.Sequences().Next(ctx, trade.SequenceSale)
		if err != nil {
			return err
		}
		sale, err = trade.NewSale(seq, s.settings.SaleNumber.Format(seq), in.SellerID, in.CustomerID, method)
		if err != nil {
			return err
		}
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return err
		}

		for i := range in.Items {
			item, err := buildLineItem(ctx, repos, sale.Ref(), in.Items[i])
			if err != nil {
				return err
			}
			sale.Items = append(sale.Items, *item)
		}
		if err := repos.LineItems().CreateBatch(ctx, sale.Items); err != nil {
			return err
		}
		if err := s.ledger.DecrementForItems(ctx, repos, sale.Items); err != nil {
			return err
		}

		totals, err := s.aggregator.Recompute(ctx, repos, sale.Ref())
		if err != nil {
			return err
		}
		if totals != nil {
			sale.ApplyTotals(*totals)
		}

		record, err = s.poster.PostOrUpdate(ctx, repos, PostInput{
			Ref:           sale.Ref(),
			Amount:        sale.TotalAmount,
			PaymentMethod: sale.PaymentMethod,
			Paid:          true,
			PaidAt:        sale.PaidAt,
			Description:   "Venda " + sale.Number,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("number", sale.Number),
		zap.String("seller_id", sale.SellerID.String()),
		zap.String("total_amount", sale.TotalAmount.StringFixed(shared.MoneyPlaces)),
	)
	resp := ToSaleResponse(sale)
	resp.FinancialRecord = ToFinancialRecordResponse(record)
	return &resp, nil
}

// GetByID returns a sale with its items and financial record
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	var (
		sale   *trade.Sale
		record *finance.FinancialRecord
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.Sales().FindByIDWithItems(ctx, id)
		if err != nil {
			return err
		}
		record, err = repos.FinancialRecords().FindBySource(ctx, finance.SaleSource(id))
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	resp.FinancialRecord = ToFinancialRecordResponse(record)
	return &resp, nil
}
