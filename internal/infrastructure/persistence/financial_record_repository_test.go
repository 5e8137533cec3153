package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormFinancialRecordRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormFinancialRecordRepository(db)
	ctx := context.Background()

	saleID := uuid.New()
	source := finance.SaleSource(saleID)
	paidAt := time.Now().Add(-time.Hour)

	record, err := finance.NewRevenueRecord(source, "Venda VDA-000001", dec("20.00"), finance.PaymentMethodPix, true, &paidAt)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, record))

	t.Run("finds by source", func(t *testing.T) {
		found, err := repo.FindBySource(ctx, source)
		require.NoError(t, err)
		assert.Equal(t, record.ID, found.ID)
		assert.Equal(t, finance.RecordTypeRevenue, found.Type)
		assert.True(t, dec("20.00").Equal(found.Amount))
		assert.True(t, found.Paid)
		require.NotNil(t, found.Source.SaleID)
		assert.Equal(t, saleID, *found.Source.SaleID)
	})

	t.Run("update overwrites payment fields", func(t *testing.T) {
		require.NoError(t, record.Repost(dec("35.50"), finance.PaymentMethodCash, true, nil))
		require.NoError(t, repo.Update(ctx, record))

		found, err := repo.FindBySource(ctx, source)
		require.NoError(t, err)
		assert.True(t, dec("35.50").Equal(found.Amount))
		assert.Equal(t, finance.PaymentMethodCash, found.PaymentMethod)

		count, err := repo.CountBySource(ctx, source)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("one record per source", func(t *testing.T) {
		dup, err := finance.NewRevenueRecord(source, "dup", dec("1.00"), finance.PaymentMethodCash, true, nil)
		require.NoError(t, err)
		assert.Error(t, repo.Create(ctx, dup))
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := repo.FindBySource(ctx, finance.ServiceOrderSource(uuid.New()))
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindBySource(ctx, finance.Source{})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}
