package persistence

import (
	"context"

	apptrade "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/domain/catalog"
	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db        *gorm.DB
	starts    SequenceStarts
	sequences trade.SequenceGenerator
}

// ScopeOption configures a GormTransactionScope
type ScopeOption func(*GormTransactionScope)

// WithSequenceStarts sets the first number of each numbering series
func WithSequenceStarts(starts SequenceStarts) ScopeOption {
	return func(s *GormTransactionScope) {
		s.starts = starts
	}
}

// WithSequenceGenerator replaces the table-backed counters with an external generator.
// Numbers from an external generator are not returned on rollback.
func WithSequenceGenerator(gen trade.SequenceGenerator) ScopeOption {
	return func(s *GormTransactionScope) {
		s.sequences = gen
	}
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, opts ...ScopeOption) *GormTransactionScope {
	s := &GormTransactionScope{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx, scope: s}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx    *gorm.DB
	scope *GormTransactionScope
}

// LineItems returns the line item repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LineItems() trade.LineItemRepository {
	return NewGormLineItemRepository(r.tx)
}

// Containers returns the container repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Containers() trade.ContainerRepository {
	return NewGormContainerRepository(r.tx)
}

// Budgets returns the budget repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Budgets() trade.BudgetRepository {
	return NewGormBudgetRepository(r.tx)
}

// ServiceOrders returns the service order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ServiceOrders() trade.ServiceOrderRepository {
	return NewGormServiceOrderRepository(r.tx)
}

// Sales returns the sale repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

// Products returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Services returns the service repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Services() catalog.ServiceRepository {
	return NewGormServiceRepository(r.tx)
}

// FinancialRecords returns the financial record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) FinancialRecords() finance.FinancialRecordRepository {
	return NewGormFinancialRecordRepository(r.tx)
}

// Sequences returns the number generator for the current transaction.
func (r *gormTransactionalRepositories) Sequences() trade.SequenceGenerator {
	if r.scope.sequences != nil {
		return r.scope.sequences
	}
	return NewGormSequenceGenerator(r.tx, r.scope.starts)
}

// Ensure GormTransactionScope implements TransactionScope
var _ apptrade.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ apptrade.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
