package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormContainerRepository_Lock_SQL(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	id := uuid.New()

	mock.ExpectExec(`UPDATE "service_orders" SET "version"=version \+ 1 WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewGormContainerRepository(db).Lock(context.Background(), trade.ServiceOrderRef(id))
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormContainerRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormContainerRepository(db)
	ctx := context.Background()

	order, err := trade.NewServiceOrder(1, "1", uuid.New())
	require.NoError(t, err)
	require.NoError(t, NewGormServiceOrderRepository(db).Create(ctx, order))

	t.Run("Lock bumps the version", func(t *testing.T) {
		require.NoError(t, repo.Lock(ctx, order.Ref()))
		found, err := repo.Find(ctx, order.Ref())
		require.NoError(t, err)
		assert.Equal(t, order.Version+1, found.(*trade.ServiceOrder).Version)
	})

	t.Run("SaveTotals writes the derived columns only", func(t *testing.T) {
		order.ApplyTotals(trade.Totals{
			ProductsAmount: dec("13.00"),
			ServicesAmount: dec("30.00"),
			TotalAmount:    dec("46.00"),
		})
		order.Description = "not persisted by SaveTotals"
		require.NoError(t, repo.SaveTotals(ctx, order))

		found, err := NewGormServiceOrderRepository(db).FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, dec("46.00").Equal(found.TotalAmount))
		assert.True(t, dec("13.00").Equal(found.ProductsAmount))
		assert.True(t, dec("30.00").Equal(found.ServicesAmount))
		assert.Empty(t, found.Description)
	})

	t.Run("missing containers", func(t *testing.T) {
		ref := trade.SaleRef(uuid.New())
		assert.ErrorIs(t, repo.Lock(ctx, ref), shared.ErrNotFound)
		c, err := repo.Find(ctx, ref)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, c)
	})

	t.Run("invalid kind", func(t *testing.T) {
		ref := trade.ContainerRef{Kind: "INVOICE", ID: uuid.New()}
		assert.ErrorIs(t, repo.Lock(ctx, ref), shared.ErrValidation)
	})
}
