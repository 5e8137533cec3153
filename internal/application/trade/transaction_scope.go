package trade

import (
	"context"

	"github.com/assistec/backend/internal/domain/catalog"
	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the order repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	LineItems() trade.LineItemRepository
	Containers() trade.ContainerRepository
	Budgets() trade.BudgetRepository
	ServiceOrders() trade.ServiceOrderRepository
	Sales() trade.SaleRepository
	Products() catalog.ProductRepository
	Services() catalog.ServiceRepository
	FinancialRecords() finance.FinancialRecordRepository
	// Sequences returns the number generator bound to the current transaction
	Sequences() trade.SequenceGenerator
}
