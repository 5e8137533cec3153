package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Validate(t *testing.T) {
	soID := uuid.New()
	saleID := uuid.New()

	assert.NoError(t, ServiceOrderSource(soID).Validate())
	assert.NoError(t, SaleSource(saleID).Validate())

	both := Source{ServiceOrderID: &soID, SaleID: &saleID}
	assert.True(t, errors.Is(both.Validate(), shared.ErrValidation))
	assert.True(t, errors.Is(Source{}.Validate(), shared.ErrValidation))
	assert.Error(t, SaleSource(uuid.Nil).Validate())
}

func TestNewRevenueRecord(t *testing.T) {
	t.Run("creates paid revenue", func(t *testing.T) {
		paidAt := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
		record, err := NewRevenueRecord(SaleSource(uuid.New()), "Venda VDA-000001",
			decimal.RequireFromString("20.009"), PaymentMethodCash, true, &paidAt)
		require.NoError(t, err)

		assert.Equal(t, RecordTypeRevenue, record.Type)
		assert.Equal(t, "20.00", record.Amount.StringFixed(2))
		assert.True(t, record.Paid)
		assert.Equal(t, paidAt, *record.PaidAt)
	})

	t.Run("defaults paidAt to now when paid", func(t *testing.T) {
		record, err := NewRevenueRecord(SaleSource(uuid.New()), "", decimal.NewFromInt(1), PaymentMethodPix, true, nil)
		require.NoError(t, err)
		require.NotNil(t, record.PaidAt)
		assert.WithinDuration(t, time.Now(), *record.PaidAt, time.Second)
	})

	t.Run("rejects invalid payment method", func(t *testing.T) {
		_, err := NewRevenueRecord(SaleSource(uuid.New()), "", decimal.NewFromInt(1), "BARTER", true, nil)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewRevenueRecord(SaleSource(uuid.New()), "", decimal.NewFromInt(-1), PaymentMethodCash, true, nil)
		assert.Error(t, err)
	})
}

func TestFinancialRecord_Repost(t *testing.T) {
	record, err := NewRevenueRecord(ServiceOrderSource(uuid.New()), "OS 1001", decimal.NewFromInt(46), PaymentMethodCash, true, nil)
	require.NoError(t, err)
	version := record.Version

	require.NoError(t, record.Repost(decimal.NewFromInt(50), PaymentMethodCreditCard, false, nil))
	assert.Equal(t, "50.00", record.Amount.StringFixed(2))
	assert.Equal(t, PaymentMethodCreditCard, record.PaymentMethod)
	assert.False(t, record.Paid)
	assert.Nil(t, record.PaidAt)
	assert.Equal(t, version+1, record.Version)
}

func TestParsePaymentMethod(t *testing.T) {
	m, ok := ParsePaymentMethod("", PaymentMethodCash)
	assert.True(t, ok)
	assert.Equal(t, PaymentMethodCash, m)

	m, ok = ParsePaymentMethod("PIX", PaymentMethodCash)
	assert.True(t, ok)
	assert.Equal(t, PaymentMethodPix, m)

	_, ok = ParsePaymentMethod("GOLD", PaymentMethodCash)
	assert.False(t, ok)
}
