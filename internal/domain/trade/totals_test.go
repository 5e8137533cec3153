package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(ref LineRef, total string) LineItem {
	return LineItem{Ref: ref, TotalPrice: dec(total)}
}

func TestComputeTotals(t *testing.T) {
	t.Run("service order folds in adjustments", func(t *testing.T) {
		items := []LineItem{
			item(ProductRef(uuid.New()), "30.00"),
			item(ServiceRef(uuid.New()), "13.00"),
		}
		totals := ComputeTotals(items, Adjustments{
			Freight:  dec("5.00"),
			Others:   decimal.Zero,
			Discount: dec("2.00"),
		})

		assert.Equal(t, "30.00", totals.ProductsAmount.StringFixed(2))
		assert.Equal(t, "13.00", totals.ServicesAmount.StringFixed(2))
		assert.Equal(t, "43.00", totals.ItemsAmount.StringFixed(2))
		assert.Equal(t, "46.00", totals.TotalAmount.StringFixed(2))
	})

	t.Run("free text counts as services", func(t *testing.T) {
		totals := ComputeTotals([]LineItem{item(NoRef(), "8.00"), item(ProductRef(uuid.New()), "2.00")}, Adjustments{})
		assert.Equal(t, "8.00", totals.ServicesAmount.StringFixed(2))
		assert.Equal(t, "2.00", totals.ProductsAmount.StringFixed(2))
		assert.Equal(t, "10.00", totals.TotalAmount.StringFixed(2))
	})

	t.Run("no items and no adjustments is zero", func(t *testing.T) {
		totals := ComputeTotals(nil, Adjustments{})
		assert.True(t, totals.TotalAmount.IsZero())
	})

	t.Run("is idempotent", func(t *testing.T) {
		items := []LineItem{item(ProductRef(uuid.New()), "0.33"), item(NoRef(), "0.33"), item(NoRef(), "0.34")}
		first := ComputeTotals(items, Adjustments{Freight: dec("1")})
		second := ComputeTotals(items, Adjustments{Freight: dec("1")})
		assert.True(t, first.Equal(second))
		assert.Equal(t, "2.00", first.TotalAmount.StringFixed(2))
	})
}
