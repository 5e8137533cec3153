package trade_test

import (
	"context"
	"testing"

	apptrade "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/infrastructure/persistence"
	"github.com/assistec/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// engine wires every service of the order engine on top of an in-memory database
type engine struct {
	db          *gorm.DB
	budgets     *apptrade.BudgetService
	orders      *apptrade.ServiceOrderService
	sales       *apptrade.SaleService
	items       *apptrade.LineItemService
	conversions *apptrade.ConversionService
	records     *apptrade.FinancialRecordService
}

func newEngine(t *testing.T, mutate ...func(*apptrade.Settings)) *engine {
	t.Helper()
	settings := apptrade.DefaultSettings()
	for _, m := range mutate {
		m(&settings)
	}

	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	metrics := apptrade.NoopMetrics()
	aggregator := apptrade.NewAggregator(nil, metrics)
	ledger := apptrade.NewStockLedger(settings.AllowNegativeStock, nil, metrics)
	poster := apptrade.NewFinancialPoster(nil, metrics)

	return &engine{
		db:          db,
		budgets:     apptrade.NewBudgetService(scope, aggregator, settings, nil),
		orders:      apptrade.NewServiceOrderService(scope, aggregator, poster, settings, nil),
		sales:       apptrade.NewSaleService(scope, aggregator, ledger, poster, settings, nil),
		items:       apptrade.NewLineItemService(scope, aggregator, nil),
		conversions: apptrade.NewConversionService(scope, aggregator, ledger, poster, settings, nil, metrics),
		records:     apptrade.NewFinancialRecordService(scope, poster, settings, nil),
	}
}

func productItem(id uuid.UUID, qty int) apptrade.AddLineItemInput {
	return apptrade.AddLineItemInput{ProductID: &id, Quantity: testutil.IntPtr(qty)}
}

func serviceItem(id uuid.UUID) apptrade.AddLineItemInput {
	return apptrade.AddLineItemInput{ServiceID: &id}
}

func (e *engine) createBudget(t *testing.T, items ...apptrade.AddLineItemInput) *apptrade.BudgetResponse {
	t.Helper()
	b, err := e.budgets.Create(context.Background(), apptrade.CreateBudgetInput{
		CustomerID: uuid.New(),
		Items:      items,
	})
	require.NoError(t, err)
	return b
}
