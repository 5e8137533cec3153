package trade

import (
	"strings"
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is a single billable row of a budget, service order or sale.
// TotalPrice always equals Quantity*UnitPrice - Discount, truncated at the cent.
type LineItem struct {
	ID          uuid.UUID
	Container   ContainerRef
	Ref         LineRef
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TotalPrice  decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewLineItem creates a line item, computing its total from the other fields.
// unitPrice must already be resolved (caller-supplied or snapshotted from the catalog).
func NewLineItem(container ContainerRef, ref LineRef, description string, quantity int, unitPrice, discount decimal.Decimal) (*LineItem, error) {
	if err := container.Validate(); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if ref.Kind() == RefKindNone && description == "" {
		return nil, shared.NewValidationError("Free-text items require a description")
	}
	if len(description) > 500 {
		return nil, shared.NewValidationError("Description cannot exceed 500 characters")
	}
	total, err := ComputeLineTotal(quantity, unitPrice, discount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &LineItem{
		ID:          uuid.New(),
		Container:   container,
		Ref:         ref,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Discount:    shared.Cents(discount),
		TotalPrice:  total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ComputeLineTotal validates the pricing fields and returns quantity*unitPrice - discount
func ComputeLineTotal(quantity int, unitPrice, discount decimal.Decimal) (decimal.Decimal, error) {
	if quantity < 1 {
		return decimal.Zero, shared.NewValidationError("Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, shared.NewValidationError("Unit price cannot be negative")
	}
	if discount.IsNegative() {
		return decimal.Zero, shared.NewValidationError("Discount cannot be negative")
	}
	subtotal := decimal.NewFromInt(int64(quantity)).Mul(unitPrice)
	// compared before rounding so a fraction of a cent over the subtotal is not clamped
	if discount.GreaterThan(subtotal) {
		return decimal.Zero, shared.NewValidationError("Discount cannot exceed quantity * unit price")
	}
	return shared.Cents(subtotal.Sub(shared.Cents(discount))), nil
}

// Subtotal returns quantity * unit price before discount
func (i *LineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(int64(i.Quantity)).Mul(i.UnitPrice)
}

// Update changes quantity and/or discount and recomputes the total against the stored
// unit price. The item is left untouched when validation fails.
func (i *LineItem) Update(quantity *int, discount *decimal.Decimal) error {
	newQuantity := i.Quantity
	if quantity != nil {
		newQuantity = *quantity
	}
	newDiscount := i.Discount
	if discount != nil {
		newDiscount = *discount
	}

	total, err := ComputeLineTotal(newQuantity, i.UnitPrice, newDiscount)
	if err != nil {
		return err
	}

	i.Quantity = newQuantity
	i.Discount = shared.Cents(newDiscount)
	i.TotalPrice = total
	i.UpdatedAt = time.Now()
	return nil
}

// CopyTo returns a verbatim copy of the item owned by another container
func (i *LineItem) CopyTo(container ContainerRef) LineItem {
	now := time.Now()
	return LineItem{
		ID:          uuid.New(),
		Container:   container,
		Ref:         i.Ref,
		Description: i.Description,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		Discount:    i.Discount,
		TotalPrice:  i.TotalPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CopyItems copies all items to the target container
func CopyItems(items []LineItem, target ContainerRef) []LineItem {
	copies := make([]LineItem, 0, len(items))
	for i := range items {
		copies = append(copies, items[i].CopyTo(target))
	}
	return copies
}
