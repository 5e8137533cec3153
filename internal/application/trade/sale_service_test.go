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

func TestSaleService_Create(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	p1 := testutil.CreateProduct(t, e.db, "P1", "10.00", 5)

	sale, err := e.sales.Create(ctx, apptrade.CreateSaleInput{
		SellerID: testutil.TestSellerID(),
		Items:    []apptrade.AddLineItemInput{productItem(p1.ID, 2)},
	})
	require.NoError(t, err)

	assert.Equal(t, "VDA-000001", sale.Number)
	assert.True(t, testutil.Dec("20.00").Equal(sale.TotalAmount))
	assert.True(t, sale.Paid)
	assert.Equal(t, "CASH", sale.PaymentMethod)
	require.Len(t, sale.Items, 1)
	assert.True(t, testutil.Dec("10.00").Equal(sale.Items[0].UnitPrice), "price snapshotted from the catalog")
	assert.Equal(t, 3, testutil.StockOf(t, e.db, p1.ID))

	require.NotNil(t, sale.FinancialRecord)
	assert.Equal(t, "REVENUE", sale.FinancialRecord.Type)
	assert.True(t, testutil.Dec("20.00").Equal(sale.FinancialRecord.Amount))
	assert.True(t, sale.FinancialRecord.Paid)
	assert.Equal(t, "Venda VDA-000001", sale.FinancialRecord.Description)

	next, err := e.sales.Create(ctx, apptrade.CreateSaleInput{
		SellerID:      testutil.TestSellerID(),
		PaymentMethod: "DEBIT_CARD",
		Items: []apptrade.AddLineItemInput{{
			Description: "Screen protector",
			UnitPrice:   testutil.DecPtr("15.00"),
			Discount:    testutil.DecPtr("5.00"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "VDA-000002", next.Number)
	assert.True(t, testutil.Dec("10.00").Equal(next.TotalAmount))
	assert.Equal(t, 3, testutil.StockOf(t, e.db, p1.ID), "free-text items never touch stock")
}

func TestSaleService_Create_SameProductTwice(t *testing.T) {
	e := newEngine(t)
	p := testutil.CreateProduct(t, e.db, "P1", "2.50", 10)

	_, err := e.sales.Create(context.Background(), apptrade.CreateSaleInput{
		SellerID: testutil.TestSellerID(),
		Items:    []apptrade.AddLineItemInput{productItem(p.ID, 3), productItem(p.ID, 4)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, testutil.StockOf(t, e.db, p.ID))
}

func TestSaleService_Create_Rejections(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, e.db, "P1", "10.00", 5)

	tests := []struct {
		name string
		in   apptrade.CreateSaleInput
		want error
	}{
		{"no seller", apptrade.CreateSaleInput{Items: []apptrade.AddLineItemInput{productItem(p.ID, 1)}}, shared.ErrUnauthorized},
		{"no items", apptrade.CreateSaleInput{SellerID: testutil.TestSellerID()}, shared.ErrValidation},
		{"zero quantity", apptrade.CreateSaleInput{
			SellerID: testutil.TestSellerID(),
			Items:    []apptrade.AddLineItemInput{productItem(p.ID, 0)},
		}, shared.ErrValidation},
		{"unknown product", apptrade.CreateSaleInput{
			SellerID: testutil.TestSellerID(),
			Items:    []apptrade.AddLineItemInput{productItem(uuid.New(), 1)},
		}, shared.ErrValidation},
		{"bad payment method", apptrade.CreateSaleInput{
			SellerID:      testutil.TestSellerID(),
			PaymentMethod: "IOU",
			Items:         []apptrade.AddLineItemInput{productItem(p.ID, 1)},
		}, shared.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.sales.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 5, testutil.StockOf(t, e.db, p.ID))
	assert.Zero(t, testutil.CountRows(t, e.db, "sales"))
	assert.Zero(t, testutil.CountRows(t, e.db, "financial_records"))
}

func TestSaleService_ItemsAreFrozen(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, e.db, "P1", "10.00", 5)
	sale, err := e.sales.Create(ctx, apptrade.CreateSaleInput{
		SellerID: testutil.TestSellerID(),
		Items:    []apptrade.AddLineItemInput{productItem(p.ID, 1)},
	})
	require.NoError(t, err)

	_, err = e.items.AddItem(ctx, trade.SaleRef(sale.ID), productItem(p.ID, 1))
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = e.items.UpdateItem(ctx, sale.Items[0].ID, apptrade.UpdateLineItemInput{Quantity: testutil.IntPtr(3)})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	assert.ErrorIs(t, e.items.RemoveItem(ctx, sale.Items[0].ID), shared.ErrInvalidState)
	assert.Equal(t, 4, testutil.StockOf(t, e.db, p.ID))
}
