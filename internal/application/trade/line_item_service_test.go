package trade_test

import (
	"context"
	"testing"

	apptrade "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/assistec/backend/internal/infrastructure/persistence/models"
	"github.com/assistec/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItemService_Lifecycle(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, e.db, "P1", "10.00", 5)
	budget := e.createBudget(t)
	ref := trade.BudgetRef(budget.ID)

	added, err := e.items.AddItem(ctx, ref, productItem(p.ID, 3))
	require.NoError(t, err)
	assert.True(t, testutil.Dec("30.00").Equal(added.TotalPrice))
	require.NotNil(t, added.ContainerTotals)
	assert.True(t, testutil.Dec("30.00").Equal(added.ContainerTotals.TotalAmount))

	free, err := e.items.AddItem(ctx, ref, apptrade.AddLineItemInput{
		Description: "Cleaning",
		UnitPrice:   testutil.DecPtr("12.345"),
		TotalPrice:  testutil.DecPtr("999.00"),
	})
	require.NoError(t, err)
	assert.True(t, testutil.Dec("12.34").Equal(free.TotalPrice), "totals are truncated to cents and client totals ignored")
	assert.True(t, testutil.Dec("42.34").Equal(free.ContainerTotals.TotalAmount))

	updated, err := e.items.UpdateItem(ctx, added.ID, apptrade.UpdateLineItemInput{
		Quantity: testutil.IntPtr(1),
		Discount: testutil.DecPtr("2.50"),
	})
	require.NoError(t, err)
	assert.True(t, testutil.Dec("7.50").Equal(updated.TotalPrice))
	assert.True(t, testutil.Dec("19.84").Equal(updated.ContainerTotals.TotalAmount))

	require.NoError(t, e.items.RemoveItem(ctx, free.ID))
	reloaded, err := e.budgets.GetByID(ctx, budget.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Items, 1)
	assert.True(t, testutil.Dec("7.50").Equal(reloaded.TotalAmount))

	require.NoError(t, e.items.RemoveItem(ctx, added.ID))
	reloaded, err = e.budgets.GetByID(ctx, budget.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items)
	assert.True(t, reloaded.TotalAmount.IsZero())

	assert.Equal(t, 5, testutil.StockOf(t, e.db, p.ID), "budget items never touch stock")
}

func TestLineItemService_PriceSnapshot(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, e.db, "P1", "10.00", 5)
	budget := e.createBudget(t, productItem(p.ID, 1))

	require.NoError(t, e.db.Model(&models.ProductModel{}).Where("id = ?", p.ID).
		Update("sale_price", testutil.Dec("99.00")).Error)

	item := budget.Items[0]
	updated, err := e.items.UpdateItem(ctx, item.ID, apptrade.UpdateLineItemInput{Quantity: testutil.IntPtr(2)})
	require.NoError(t, err)
	assert.True(t, testutil.Dec("10.00").Equal(updated.UnitPrice))
	assert.True(t, testutil.Dec("20.00").Equal(updated.TotalPrice))
}

func TestLineItemService_Rejections(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, e.db, "P1", "10.00", 5)
	svc := testutil.CreateService(t, e.db, "Diagnosis", "30.00")
	budget := e.createBudget(t, productItem(p.ID, 1))
	ref := trade.BudgetRef(budget.ID)
	itemID := budget.Items[0].ID

	t.Run("both references", func(t *testing.T) {
		_, err := e.items.AddItem(ctx, ref, apptrade.AddLineItemInput{ProductID: &p.ID, ServiceID: &svc.ID})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("free text without description", func(t *testing.T) {
		_, err := e.items.AddItem(ctx, ref, apptrade.AddLineItemInput{UnitPrice: testutil.DecPtr("1.00")})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown service is a validation error", func(t *testing.T) {
		_, err := e.items.AddItem(ctx, ref, serviceItem(uuid.New()))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("missing container", func(t *testing.T) {
		_, err := e.items.AddItem(ctx, trade.ServiceOrderRef(uuid.New()), productItem(p.ID, 1))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("discount a fraction of a cent above subtotal", func(t *testing.T) {
		before := testutil.CountRows(t, e.db, "line_items")
		in := productItem(p.ID, 2)
		in.Discount = testutil.DecPtr("20.009")

		_, err := e.items.AddItem(ctx, ref, in)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Equal(t, before, testutil.CountRows(t, e.db, "line_items"))

		_, err = e.items.UpdateItem(ctx, itemID, apptrade.UpdateLineItemInput{
			Quantity: testutil.IntPtr(2),
			Discount: testutil.DecPtr("20.009"),
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("discount above subtotal leaves the item unchanged", func(t *testing.T) {
		_, err := e.items.UpdateItem(ctx, itemID, apptrade.UpdateLineItemInput{Discount: testutil.DecPtr("10.01")})
		assert.ErrorIs(t, err, shared.ErrValidation)

		reloaded, err := e.budgets.GetByID(ctx, budget.ID)
		require.NoError(t, err)
		assert.True(t, testutil.Dec("10.00").Equal(reloaded.Items[0].TotalPrice))
	})

	t.Run("discount equal to subtotal is allowed", func(t *testing.T) {
		updated, err := e.items.UpdateItem(ctx, itemID, apptrade.UpdateLineItemInput{Discount: testutil.DecPtr("10.00")})
		require.NoError(t, err)
		assert.True(t, updated.TotalPrice.IsZero())
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := e.items.UpdateItem(ctx, itemID, apptrade.UpdateLineItemInput{Quantity: testutil.IntPtr(0)})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("unknown item", func(t *testing.T) {
		assert.ErrorIs(t, e.items.RemoveItem(ctx, uuid.New()), shared.ErrNotFound)
	})
}

func TestLineItemService_AggregationFailureRollsBackItem(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, e.db, "P1", "10.00", 5)
	budget := e.createBudget(t, productItem(p.ID, 1))
	itemID := budget.Items[0].ID

	require.NoError(t, e.db.Exec(`
		CREATE TRIGGER budgets_totals_fail BEFORE UPDATE OF total_amount ON budgets
		BEGIN SELECT RAISE(ABORT, 'disk full'); END
	`).Error)

	assertUnchanged := func(t *testing.T) {
		t.Helper()
		assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "line_items"))
		reloaded, err := e.budgets.GetByID(ctx, budget.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Items, 1)
		assert.Equal(t, 1, reloaded.Items[0].Quantity)
		assert.True(t, testutil.Dec("10.00").Equal(reloaded.TotalAmount))
	}

	t.Run("add", func(t *testing.T) {
		_, err := e.items.AddItem(ctx, trade.BudgetRef(budget.ID), productItem(p.ID, 2))
		assert.ErrorIs(t, err, shared.ErrAggregationFailed)
		assertUnchanged(t)
	})

	t.Run("update", func(t *testing.T) {
		_, err := e.items.UpdateItem(ctx, itemID, apptrade.UpdateLineItemInput{Quantity: testutil.IntPtr(3)})
		assert.ErrorIs(t, err, shared.ErrAggregationFailed)
		assertUnchanged(t)
	})

	t.Run("remove", func(t *testing.T) {
		assert.ErrorIs(t, e.items.RemoveItem(ctx, itemID), shared.ErrAggregationFailed)
		assertUnchanged(t)
	})
}

func TestLineItemService_OrphanedItem(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	budget := e.createBudget(t, apptrade.AddLineItemInput{Description: "Labour", UnitPrice: testutil.DecPtr("5.00")})

	require.NoError(t, e.db.Delete(&models.BudgetModel{}, "id = ?", budget.ID).Error)

	updated, err := e.items.UpdateItem(ctx, budget.Items[0].ID, apptrade.UpdateLineItemInput{Quantity: testutil.IntPtr(2)})
	require.NoError(t, err, "the item still updates when its container is gone")
	assert.True(t, testutil.Dec("10.00").Equal(updated.TotalPrice))
	assert.Nil(t, updated.ContainerTotals)
}

func TestLineItemService_ConvertedBudgetIsFrozen(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, e.db, "P1", "10.00", 5)
	budget := e.createBudget(t, productItem(p.ID, 1))

	_, err := e.conversions.ConvertToSale(ctx, apptrade.ConvertToSaleInput{BudgetID: budget.ID, ActorID: testutil.TestSellerID()})
	require.NoError(t, err)

	_, err = e.items.AddItem(ctx, trade.BudgetRef(budget.ID), productItem(p.ID, 1))
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
