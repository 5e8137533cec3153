package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Create persists a new product
	Create(ctx context.Context, product *Product) error

	// Update persists price and status changes
	Update(ctx context.Context, product *Product) error

	// DecrementStock subtracts qty from the product's stock with a single relative update.
	// Returns shared.ErrNotFound when the product does not exist, and
	// shared.ErrInsufficientStock when allowNegative is false and stock would go below zero.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int, allowNegative bool) error
}

// ServiceRepository defines the interface for service persistence
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)
	Create(ctx context.Context, service *Service) error
	Update(ctx context.Context, service *Service) error
}
