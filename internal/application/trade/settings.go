package trade

import (
	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/trade"
)

// Settings holds the business switches of the order engine
type Settings struct {
	// AllowNegativeStock lets sales oversell; when false a sale that would take a
	// product below zero fails with INSUFFICIENT_STOCK.
	AllowNegativeStock bool
	// DefaultPaymentMethod is used when a sale or conversion does not name one
	DefaultPaymentMethod finance.PaymentMethod
	BudgetNumber         trade.NumberFormat
	OrderNumber          trade.NumberFormat
	SaleNumber           trade.NumberFormat
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		AllowNegativeStock:   true,
		DefaultPaymentMethod: finance.PaymentMethodCash,
		BudgetNumber:         trade.NumberFormat{},
		OrderNumber:          trade.NumberFormat{},
		SaleNumber:           trade.NumberFormat{Prefix: "VDA-", Width: 6},
	}
}
