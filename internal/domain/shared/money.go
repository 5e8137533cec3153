package shared

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places kept on every monetary value
const MoneyPlaces int32 = 2

// Cents truncates a monetary value at the cent. Values are never rounded
// so repeated recomputation cannot drift.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(MoneyPlaces)
}

// SumCents adds the given values and truncates the result at the cent
func SumCents(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return Cents(total)
}
