package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(t *testing.T, container trade.ContainerRef, ref trade.LineRef, qty int, price string) *trade.LineItem {
	t.Helper()
	item, err := trade.NewLineItem(container, ref, "item", qty, dec(price), decimal.Zero)
	require.NoError(t, err)
	return item
}

func TestGormLineItemRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLineItemRepository(db)
	ctx := context.Background()

	budget := seedBudget(t, db, 1)
	other := seedBudget(t, db, 2)
	product := seedProduct(t, db, "P1", "10.00", 5)

	first := newItem(t, budget.Ref(), trade.ProductRef(product.ID), 2, "10.00")
	second := newItem(t, budget.Ref(), trade.ServiceRef(uuid.New()), 1, "30.00")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	third := newItem(t, budget.Ref(), trade.NoRef(), 1, "3.00")
	third.CreatedAt = first.CreatedAt.Add(2 * time.Second)
	foreign := newItem(t, other.Ref(), trade.NoRef(), 1, "99.00")

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.CreateBatch(ctx, []trade.LineItem{*third, *second, *foreign}))
	require.NoError(t, repo.CreateBatch(ctx, nil))

	t.Run("FindByContainer keeps creation order and reference kinds", func(t *testing.T) {
		items, err := repo.FindByContainer(ctx, budget.Ref())
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, first.ID, items[0].ID)
		assert.True(t, items[0].Ref.IsProduct())
		assert.Equal(t, product.ID, *items[0].Ref.ProductID())
		assert.True(t, items[1].Ref.IsService())
		assert.Equal(t, trade.RefKindNone, items[2].Ref.Kind())
		assert.True(t, dec("20.00").Equal(items[0].TotalPrice))
	})

	t.Run("Update writes the recomputed total", func(t *testing.T) {
		qty := 3
		discount := dec("5.00")
		require.NoError(t, first.Update(&qty, &discount))
		require.NoError(t, repo.Update(ctx, first))

		found, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, found.Quantity)
		assert.True(t, dec("25.00").Equal(found.TotalPrice))
	})

	t.Run("Delete removes the row", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, third.ID))
		_, err := repo.FindByID(ctx, third.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, third.ID), shared.ErrNotFound)
	})

	t.Run("Update of a missing item", func(t *testing.T) {
		ghost := newItem(t, budget.Ref(), trade.NoRef(), 1, "1.00")
		assert.ErrorIs(t, repo.Update(ctx, ghost), shared.ErrNotFound)
	})
}
