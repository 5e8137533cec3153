//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"

	tradeapp "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/assistec/backend/internal/infrastructure/persistence"
	"github.com/assistec/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type engine struct {
	db          *gorm.DB
	budgets     *tradeapp.BudgetService
	orders      *tradeapp.ServiceOrderService
	sales       *tradeapp.SaleService
	records     *tradeapp.FinancialRecordService
	conversions *tradeapp.ConversionService
}

func newEngine(t *testing.T, settings tradeapp.Settings) *engine {
	t.Helper()

	tdb := NewTestDB(t)
	log := zap.NewNop()
	scope := persistence.NewGormTransactionScope(tdb.DB)
	metrics := tradeapp.NoopMetrics()
	aggregator := tradeapp.NewAggregator(log, metrics)
	ledger := tradeapp.NewStockLedger(settings.AllowNegativeStock, log, metrics)
	poster := tradeapp.NewFinancialPoster(log, metrics)

	return &engine{
		db:          tdb.DB,
		budgets:     tradeapp.NewBudgetService(scope, aggregator, settings, log),
		orders:      tradeapp.NewServiceOrderService(scope, aggregator, poster, settings, log),
		sales:       tradeapp.NewSaleService(scope, aggregator, ledger, poster, settings, log),
		records:     tradeapp.NewFinancialRecordService(scope, poster, settings, log),
		conversions: tradeapp.NewConversionService(scope, aggregator, ledger, poster, settings, log, metrics),
	}
}

func productItem(id uuid.UUID, qty int) tradeapp.AddLineItemInput {
	return tradeapp.AddLineItemInput{ProductID: &id, Quantity: &qty}
}

// parallel runs fn n times concurrently and returns how many calls succeeded
func parallel(n int, fn func() error) int {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if fn() == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return succeeded
}

func TestConvertToSale_ConcurrentOnPostgres(t *testing.T) {
	e := newEngine(t, tradeapp.DefaultSettings())
	ctx := context.Background()
	part := testutil.CreateProduct(t, e.db, "SCR-01", "150.00", 10)

	budget, err := e.budgets.Create(ctx, tradeapp.CreateBudgetInput{
		CustomerID: uuid.New(),
		Items:      []tradeapp.AddLineItemInput{productItem(part.ID, 2)},
	})
	require.NoError(t, err)

	succeeded := parallel(6, func() error {
		_, err := e.conversions.ConvertToSale(ctx, tradeapp.ConvertToSaleInput{
			BudgetID: budget.ID,
			ActorID:  testutil.TestSellerID(),
		})
		if err != nil {
			assert.ErrorIs(t, err, shared.ErrConversionFailed)
		}
		return err
	})

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 8, testutil.StockOf(t, e.db, part.ID))
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "sales"))
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "financial_records"))
	assert.Equal(t, trade.BudgetStatusConverted, testutil.BudgetStatusOf(t, e.db, budget.ID))
}

func TestStockDecrement_NoLostUpdates(t *testing.T) {
	e := newEngine(t, tradeapp.DefaultSettings())
	ctx := context.Background()
	cable := testutil.CreateProduct(t, e.db, "CAB-01", "19.90", 10)

	succeeded := parallel(8, func() error {
		_, err := e.sales.Create(ctx, tradeapp.CreateSaleInput{
			SellerID: testutil.TestSellerID(),
			Items:    []tradeapp.AddLineItemInput{productItem(cable.ID, 1)},
		})
		return err
	})

	require.Equal(t, 8, succeeded)
	assert.Equal(t, 2, testutil.StockOf(t, e.db, cable.ID))
}

func TestStockDecrement_StrictStockNeverOversells(t *testing.T) {
	settings := tradeapp.DefaultSettings()
	settings.AllowNegativeStock = false
	e := newEngine(t, settings)
	ctx := context.Background()
	battery := testutil.CreateProduct(t, e.db, "BAT-01", "90.00", 3)

	succeeded := parallel(6, func() error {
		_, err := e.sales.Create(ctx, tradeapp.CreateSaleInput{
			SellerID: testutil.TestSellerID(),
			Items:    []tradeapp.AddLineItemInput{productItem(battery.ID, 1)},
		})
		return err
	})

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, testutil.StockOf(t, e.db, battery.ID))
	assert.Equal(t, int64(3), testutil.CountRows(t, e.db, "sales"))
}

func TestSaleNumbers_RollbackReturnsNumber(t *testing.T) {
	settings := tradeapp.DefaultSettings()
	settings.AllowNegativeStock = false
	e := newEngine(t, settings)
	ctx := context.Background()
	lcd := testutil.CreateProduct(t, e.db, "LCD-01", "300.00", 1)

	_, err := e.sales.Create(ctx, tradeapp.CreateSaleInput{
		SellerID: testutil.TestSellerID(),
		Items:    []tradeapp.AddLineItemInput{productItem(lcd.ID, 2)},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	sale, err := e.sales.Create(ctx, tradeapp.CreateSaleInput{
		SellerID: testutil.TestSellerID(),
		Items:    []tradeapp.AddLineItemInput{productItem(lcd.ID, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "VDA-000001", sale.Number)
}

func TestFinancialRecord_ConcurrentPostsKeepOneRecord(t *testing.T) {
	e := newEngine(t, tradeapp.DefaultSettings())
	ctx := context.Background()

	order, err := e.orders.Create(ctx, tradeapp.CreateServiceOrderInput{
		CustomerID:    uuid.New(),
		FreightAmount: testutil.DecPtr("40.00"),
	})
	require.NoError(t, err)

	succeeded := parallel(5, func() error {
		_, err := e.records.Post(ctx, tradeapp.PostFinancialRecordInput{
			ContainerKind: string(trade.ContainerServiceOrder),
			ContainerID:   order.ID,
			Amount:        testutil.Dec("40.00"),
			PaymentMethod: "PIX",
			Paid:          true,
		})
		return err
	})

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "financial_records"))
}

func TestSchema_LineItemReferencesOneCatalogEntry(t *testing.T) {
	e := newEngine(t, tradeapp.DefaultSettings())
	part := testutil.CreateProduct(t, e.db, "KB-01", "35.00", 1)
	labour := testutil.CreateService(t, e.db, "Cleaning", "25.00")

	err := e.db.Exec(`
		INSERT INTO line_items (id, container_kind, container_id, ref_kind, product_id, service_id,
			quantity, unit_price, discount, total_price)
		VALUES (?, 'BUDGET', ?, 'PRODUCT', ?, ?, 1, 35, 0, 35)
	`, uuid.New(), uuid.New(), part.ID, labour.ID).Error
	assert.Error(t, err)
}
