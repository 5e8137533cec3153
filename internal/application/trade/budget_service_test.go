package trade_test

import (
	"context"
	"testing"

	apptrade "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/assistec/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetService_Create(t *testing.T) {
	e := newEngine(t)
	p := testutil.CreateProduct(t, e.db, "P1", "10.00", 5)
	svc := testutil.CreateService(t, e.db, "Diagnosis", "30.00")

	budget := e.createBudget(t, productItem(p.ID, 2), serviceItem(svc.ID))

	assert.Equal(t, "PENDING", budget.Status)
	assert.NotEmpty(t, budget.Number)
	assert.Len(t, budget.Items, 2)
	assert.True(t, testutil.Dec("50.00").Equal(budget.TotalAmount))
	assert.Equal(t, 5, testutil.StockOf(t, e.db, p.ID))

	next := e.createBudget(t)
	assert.NotEqual(t, budget.Number, next.Number)
}

func TestBudgetService_Create_RollsBackOnBadItem(t *testing.T) {
	e := newEngine(t)
	p := testutil.CreateProduct(t, e.db, "P1", "10.00", 5)

	_, err := e.budgets.Create(context.Background(), apptrade.CreateBudgetInput{
		CustomerID: uuid.New(),
		Items:      []apptrade.AddLineItemInput{productItem(p.ID, 1), productItem(uuid.New(), 1)},
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, int64(0), testutil.CountRows(t, e.db, "budgets"))
	assert.Equal(t, int64(0), testutil.CountRows(t, e.db, "line_items"))

	_, err = e.budgets.Create(context.Background(), apptrade.CreateBudgetInput{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestBudgetService_List(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		e.createBudget(t)
	}
	approved := e.createBudget(t)
	_, err := e.budgets.ChangeStatus(ctx, approved.ID, apptrade.ChangeBudgetStatusInput{Status: "APPROVED"})
	require.NoError(t, err)

	page, err := e.budgets.List(ctx, apptrade.BudgetListFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)

	filtered, err := e.budgets.List(ctx, apptrade.BudgetListFilter{Status: "APPROVED"})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, approved.ID, filtered.Items[0].ID)

	_, err = e.budgets.List(ctx, apptrade.BudgetListFilter{Status: "LOST"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestBudgetService_ChangeStatus(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	budget := e.createBudget(t)

	rejected, err := e.budgets.ChangeStatus(ctx, budget.ID, apptrade.ChangeBudgetStatusInput{Status: "REJECTED"})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", rejected.Status)
	assert.Equal(t, trade.BudgetStatusRejected, testutil.BudgetStatusOf(t, e.db, budget.ID))

	_, err = e.budgets.ChangeStatus(ctx, budget.ID, apptrade.ChangeBudgetStatusInput{Status: "APPROVED"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = e.budgets.ChangeStatus(ctx, budget.ID, apptrade.ChangeBudgetStatusInput{Status: "CONVERTED"})
	assert.ErrorIs(t, err, shared.ErrValidation, "conversion has its own operation")

	_, err = e.budgets.ChangeStatus(ctx, uuid.New(), apptrade.ChangeBudgetStatusInput{Status: "APPROVED"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
