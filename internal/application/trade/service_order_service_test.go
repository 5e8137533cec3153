package trade_test

import (
	"context"
	"testing"
	"time"

	apptrade "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func createOrder(t *testing.T, e *engine) *apptrade.ServiceOrderResponse {
	t.Helper()
	p := testutil.CreateProduct(t, e.db, "BAT-01", "13.00", 2)
	svc := testutil.CreateService(t, e.db, "Battery swap", "30.00")

	order, err := e.orders.Create(context.Background(), apptrade.CreateServiceOrderInput{
		CustomerID:     uuid.New(),
		Priority:       "HIGH",
		Description:    "Phone does not charge",
		FreightAmount:  testutil.DecPtr("5.00"),
		DiscountAmount: testutil.DecPtr("2.00"),
		Items:          []apptrade.AddLineItemInput{productItem(p.ID, 1), serviceItem(svc.ID)},
	})
	require.NoError(t, err)
	return order
}

func TestServiceOrderService_Create_Totals(t *testing.T) {
	e := newEngine(t)
	order := createOrder(t, e)

	assert.Equal(t, "1", order.Number)
	assert.Equal(t, "HIGH", order.Priority)
	assert.True(t, testutil.Dec("13.00").Equal(order.ProductsAmount))
	assert.True(t, testutil.Dec("30.00").Equal(order.ServicesAmount))
	assert.True(t, testutil.Dec("46.00").Equal(order.TotalAmount))
	assert.False(t, order.Paid)
	assert.Nil(t, order.FinancialRecord)
	assert.Zero(t, testutil.CountRows(t, e.db, "financial_records"))
}

func TestServiceOrderService_Payment(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := createOrder(t, e)

	paidAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	paid, err := e.orders.UpdateStatus(ctx, order.ID, apptrade.UpdateServiceOrderStatusInput{
		Paid:          boolPtr(true),
		PaymentMethod: strPtr("PIX"),
		PaidAt:        &paidAt,
	})
	require.NoError(t, err)
	require.NotNil(t, paid.FinancialRecord)
	assert.True(t, testutil.Dec("46.00").Equal(paid.FinancialRecord.Amount))
	assert.Equal(t, "PIX", paid.FinancialRecord.PaymentMethod)
	assert.Equal(t, "OS 1", paid.FinancialRecord.Description)
	recordID := paid.FinancialRecord.ID

	t.Run("full edit re-posts the same record", func(t *testing.T) {
		updated, err := e.orders.Update(ctx, order.ID, apptrade.UpdateServiceOrderInput{
			FreightAmount: testutil.DecPtr("10.00"),
		})
		require.NoError(t, err)
		assert.True(t, testutil.Dec("51.00").Equal(updated.TotalAmount))
		require.NotNil(t, updated.FinancialRecord)
		assert.Equal(t, recordID, updated.FinancialRecord.ID)
		assert.True(t, testutil.Dec("51.00").Equal(updated.FinancialRecord.Amount))
		require.NotNil(t, updated.PaidAt)
		assert.True(t, paidAt.Equal(*updated.PaidAt), "paid date is kept on re-post")
		assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "financial_records"))
	})

	t.Run("unpaying keeps the record but clears the payment", func(t *testing.T) {
		unpaid, err := e.orders.UpdateStatus(ctx, order.ID, apptrade.UpdateServiceOrderStatusInput{Paid: boolPtr(false)})
		require.NoError(t, err)
		require.NotNil(t, unpaid.FinancialRecord)
		assert.False(t, unpaid.FinancialRecord.Paid)
		assert.Nil(t, unpaid.FinancialRecord.PaidAt)
		assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "financial_records"))
	})
}

func TestServiceOrderService_UpdateStatus(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := createOrder(t, e)

	moved, err := e.orders.UpdateStatus(ctx, order.ID, apptrade.UpdateServiceOrderStatusInput{Status: "IN_PROGRESS"})
	require.NoError(t, err)
	assert.Equal(t, "IN_PROGRESS", moved.Status)
	assert.Nil(t, moved.FinancialRecord)

	_, err = e.orders.UpdateStatus(ctx, order.ID, apptrade.UpdateServiceOrderStatusInput{Status: "DELIVERED"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = e.orders.UpdateStatus(ctx, order.ID, apptrade.UpdateServiceOrderStatusInput{})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = e.orders.UpdateStatus(ctx, uuid.New(), apptrade.UpdateServiceOrderStatusInput{Status: "IN_PROGRESS"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestServiceOrderService_CancelledFreezesItems(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := createOrder(t, e)

	_, err := e.orders.UpdateStatus(ctx, order.ID, apptrade.UpdateServiceOrderStatusInput{Status: "CANCELLED"})
	require.NoError(t, err)

	_, err = e.items.UpdateItem(ctx, order.Items[0].ID, apptrade.UpdateLineItemInput{Quantity: testutil.IntPtr(2)})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
