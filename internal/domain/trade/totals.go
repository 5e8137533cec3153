package trade

import (
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Adjustments are container-level charges applied on top of the item sum.
// Only service orders carry non-zero adjustments.
type Adjustments struct {
	Freight  decimal.Decimal
	Others   decimal.Decimal
	Discount decimal.Decimal
}

// Totals is the derived financial state of a container
type Totals struct {
	ProductsAmount decimal.Decimal
	ServicesAmount decimal.Decimal
	ItemsAmount    decimal.Decimal
	TotalAmount    decimal.Decimal
}

// ComputeTotals derives container totals from its items and adjustments.
// Product items go to ProductsAmount; service and free-text items go to ServicesAmount,
// so ProductsAmount + ServicesAmount always equals the item sum.
func ComputeTotals(items []LineItem, adj Adjustments) Totals {
	products := decimal.Zero
	services := decimal.Zero
	for i := range items {
		if items[i].Ref.IsProduct() {
			products = products.Add(items[i].TotalPrice)
		} else {
			services = services.Add(items[i].TotalPrice)
		}
	}
	products = shared.Cents(products)
	services = shared.Cents(services)
	itemsAmount := products.Add(services)

	return Totals{
		ProductsAmount: products,
		ServicesAmount: services,
		ItemsAmount:    itemsAmount,
		TotalAmount: shared.Cents(itemsAmount.
			Add(adj.Freight).
			Add(adj.Others).
			Sub(adj.Discount)),
	}
}

// Equal reports whether two totals hold the same amounts
func (t Totals) Equal(o Totals) bool {
	return t.ProductsAmount.Equal(o.ProductsAmount) &&
		t.ServicesAmount.Equal(o.ServicesAmount) &&
		t.ItemsAmount.Equal(o.ItemsAmount) &&
		t.TotalAmount.Equal(o.TotalAmount)
}
