package trade

import (
	"context"
	"errors"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// validateLineItemInput runs the checks that need no database access
func validateLineItemInput(in AddLineItemInput) (trade.LineRef, int, error) {
	ref, err := trade.NewLineRef(in.ProductID, in.ServiceID)
	if err != nil {
		return trade.LineRef{}, 0, err
	}
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	if quantity < 1 {
		return trade.LineRef{}, 0, shared.NewValidationError("Quantity must be at least 1")
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return trade.LineRef{}, 0, shared.NewValidationError("Unit price cannot be negative")
	}
	if in.Discount != nil && in.Discount.IsNegative() {
		return trade.LineRef{}, 0, shared.NewValidationError("Discount cannot be negative")
	}
	if ref.Kind() == trade.RefKindNone && in.UnitPrice == nil {
		return trade.LineRef{}, 0, shared.NewValidationError("Free-text items require a unit price")
	}
	return ref, quantity, nil
}

// buildLineItem turns the input into a line item of container. When no unit price is
// given it snapshots the current catalog price; later price changes never touch the item.
// An unknown product or service is a validation error, not a not-found.
func buildLineItem(ctx context.Context, repos TransactionalRepositories, container trade.ContainerRef, in AddLineItemInput) (*trade.LineItem, error) {
	ref, quantity, err := validateLineItemInput(in)
	if err != nil {
		return nil, err
	}

	description := in.Description
	var catalogPrice decimal.Decimal

	switch {
	case ref.IsProduct():
		product, err := repos.Products().FindByID(ctx, *ref.ProductID())
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("Invalid product reference: " + ref.ProductID().String())
			}
			return nil, err
		}
		if !product.IsActive() {
			return nil, shared.NewValidationError("Product is inactive: " + product.Code)
		}
		catalogPrice = product.SalePrice
		if description == "" {
			description = product.Name
		}

	case ref.IsService():
		service, err := repos.Services().FindByID(ctx, *ref.ServiceID())
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewValidationError("Invalid service reference: " + ref.ServiceID().String())
			}
			return nil, err
		}
		if !service.Active {
			return nil, shared.NewValidationError("Service is inactive: " + service.Name)
		}
		catalogPrice = service.Price
		if description == "" {
			description = service.Name
		}
	}

	unitPrice := catalogPrice
	if in.UnitPrice != nil {
		unitPrice = *in.UnitPrice
	}
	discount := decimal.Zero
	if in.Discount != nil {
		discount = *in.Discount
	}

	return trade.NewLineItem(container, ref, description, quantity, unitPrice, discount)
}

// validateLineItemInputs checks a batch of inputs before a transaction is opened
func validateLineItemInputs(inputs []AddLineItemInput) error {
	for i := range inputs {
		if _, _, err := validateLineItemInput(inputs[i]); err != nil {
			return err
		}
	}
	return nil
}
