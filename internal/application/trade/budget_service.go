package trade

import (
	"context"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BudgetService handles budget (quote) operations outside of conversion
type BudgetService struct {
	txScope    TransactionScope
	aggregator *Aggregator
	settings   Settings
	logger     *zap.Logger
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(txScope TransactionScope, aggregator *Aggregator, settings Settings, logger *zap.Logger) *BudgetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetService{
		txScope:    txScope,
		aggregator: aggregator,
		settings:   settings,
		logger:     logger,
	}
}

// Create creates a pending budget with optional initial items.
// Budget items never touch stock.
func (s *BudgetService) Create(ctx context.Context, in CreateBudgetInput) (*BudgetResponse, error) {
	if in.CustomerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer ID cannot be empty")
	}
	if err := validateLineItemInputs(in.Items); err != nil {
		return nil, err
	}

	var budget *trade.Budget
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		seq, err := repos.Sequences().Next(ctx, trade.SequenceBudget)
		if err != nil {
			return err
		}
		budget, err = trade.NewBudget(seq, s.settings.BudgetNumber.Format(seq), in.CustomerID, in.ValidUntil)
		if err != nil {
			return err
		}
		budget.Notes = in.Notes
		if err := repos.Budgets().Create(ctx, budget); err != nil {
			return err
		}

		for i := range in.Items {
			item, err := buildLineItem(ctx, repos, budget.Ref(), in.Items[i])
			if err != nil {
				return err
			}
			if err := repos.LineItems().Create(ctx, item); err != nil {
				return err
			}
			budget.Items = append(budget.Items, *item)
		}

		totals, err := s.aggregator.Recompute(ctx, repos, budget.Ref())
		if err != nil {
			return err
		}
		if totals != nil {
			budget.ApplyTotals(*totals)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("budget created",
		zap.String("budget_id", budget.ID.String()),
		zap.String("number", budget.Number),
		zap.Int("items", len(budget.Items)),
	)
	resp := ToBudgetResponse(budget)
	return &resp, nil
}

// GetByID returns a budget with its items
func (s *BudgetService) GetByID(ctx context.Context, id uuid.UUID) (*BudgetResponse, error) {
	var budget *trade.Budget
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		budget, err = repos.Budgets().FindByIDWithItems(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToBudgetResponse(budget)
	return &resp, nil
}

// List returns budgets matching the filter, newest first
func (s *BudgetService) List(ctx context.Context, f BudgetListFilter) (shared.Paginated[BudgetResponse], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 && f.PageSize <= 100 {
		filter.PageSize = f.PageSize
	}
	if f.Status != "" {
		status := trade.BudgetStatus(f.Status)
		if !status.IsValid() {
			return shared.Paginated[BudgetResponse]{}, shared.NewValidationError("Invalid budget status: " + f.Status)
		}
		filter.Filters["status"] = status
	}
	if f.CustomerID != nil {
		filter.Filters["customer_id"] = *f.CustomerID
	}

	var (
		budgets []trade.Budget
		total   int64
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		budgets, total, err = repos.Budgets().FindAll(ctx, filter)
		return err
	})
	if err != nil {
		return shared.Paginated[BudgetResponse]{}, err
	}

	items := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		items[i] = ToBudgetResponse(&budgets[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ChangeStatus moves a budget through its workflow (approve, reject, expire).
// CONVERTED is reserved to the conversion service.
func (s *BudgetService) ChangeStatus(ctx context.Context, id uuid.UUID, in ChangeBudgetStatusInput) (*BudgetResponse, error) {
	target := trade.BudgetStatus(in.Status)
	if !target.IsValid() || target == trade.BudgetStatusConverted {
		return nil, shared.NewValidationError("Invalid budget status: " + in.Status)
	}

	var budget *trade.Budget
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Containers().Lock(ctx, trade.BudgetRef(id)); err != nil {
			return err
		}
		var err error
		budget, err = repos.Budgets().FindByIDWithItems(ctx, id)
		if err != nil {
			return err
		}
		if err := budget.ChangeStatus(target); err != nil {
			return err
		}
		return repos.Budgets().UpdateStatus(ctx, budget)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("budget status changed",
		zap.String("budget_id", id.String()),
		zap.String("status", target.String()),
	)
	resp := ToBudgetResponse(budget)
	return &resp, nil
}
