package catalog

import (
	"strings"
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is a stocked part or accessory sold over the counter or used in repairs.
// StockQty may go negative: sales are not blocked by missing stock unless configured.
type Product struct {
	shared.BaseAggregateRoot
	Code      string
	Name      string
	SalePrice decimal.Decimal
	StockQty  int
	Status    ProductStatus
}

// NewProduct creates a new active product
func NewProduct(code, name string, salePrice decimal.Decimal, stockQty int) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("Product code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("Product code cannot exceed 50 characters")
	}
	if err := validateName("Product", name); err != nil {
		return nil, err
	}
	if salePrice.IsNegative() {
		return nil, shared.NewValidationError("Sale price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		SalePrice:         salePrice,
		StockQty:          stockQty,
		Status:            ProductStatusActive,
	}, nil
}

// SetSalePrice changes the price used for new line items.
// Existing line items keep the price they were created with.
func (p *Product) SetSalePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("Sale price cannot be negative")
	}
	p.SalePrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsActive reports whether the product can be added to new line items
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func validateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError(kind + " name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError(kind + " name cannot exceed 200 characters")
	}
	return nil
}
