package catalog

import (
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Service is a billable labour item (diagnosis, screen replacement, cleaning)
type Service struct {
	shared.BaseAggregateRoot
	Name   string
	Price  decimal.Decimal
	Active bool
}

// NewService creates a new active service
func NewService(name string, price decimal.Decimal) (*Service, error) {
	if err := validateName("Service", name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("Service price cannot be negative")
	}
	return &Service{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price,
		Active:            true,
	}, nil
}

// SetPrice changes the price used for new line items
func (s *Service) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("Service price cannot be negative")
	}
	s.Price = price
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}
