package trade

import (
	"time"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a point-of-sale transaction. Sales are paid on creation and their items are
// fixed: they are only written by sale creation or budget conversion, which also
// decrement stock.
type Sale struct {
	shared.BaseAggregateRoot
	Number        string
	SequenceNo    int64
	SellerID      uuid.UUID
	CustomerID    *uuid.UUID
	BudgetID      *uuid.UUID
	Items         []LineItem
	TotalAmount   decimal.Decimal
	Paid          bool
	PaidAt        *time.Time
	PaymentMethod finance.PaymentMethod
}

// NewSale creates a paid sale recorded by the given seller
func NewSale(sequenceNo int64, number string, sellerID uuid.UUID, customerID *uuid.UUID, method finance.PaymentMethod) (*Sale, error) {
	if number == "" {
		return nil, shared.NewValidationError("Sale number cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("Invalid payment method: " + string(method))
	}

	now := time.Now()
	return &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		SequenceNo:        sequenceNo,
		SellerID:          sellerID,
		CustomerID:        customerID,
		Items:             make([]LineItem, 0),
		TotalAmount:       decimal.Zero,
		Paid:              true,
		PaidAt:            &now,
		PaymentMethod:     method,
	}, nil
}

// NewSaleFromBudget creates a paid sale for the budget's customer
func NewSaleFromBudget(sequenceNo int64, number string, sellerID uuid.UUID, budget *Budget, method finance.PaymentMethod) (*Sale, error) {
	customerID := budget.CustomerID
	sale, err := NewSale(sequenceNo, number, sellerID, &customerID, method)
	if err != nil {
		return nil, err
	}
	budgetID := budget.ID
	sale.BudgetID = &budgetID
	return sale, nil
}

// Ref returns the container reference of the sale
func (s *Sale) Ref() ContainerRef {
	return SaleRef(s.ID)
}

// Adjustments returns zero adjustments; sales total their items only
func (s *Sale) Adjustments() Adjustments {
	return Adjustments{}
}

// ApplyTotals stores the recomputed total
func (s *Sale) ApplyTotals(t Totals) {
	s.TotalAmount = t.TotalAmount
	s.UpdatedAt = time.Now()
}

// CurrentTotals returns the totals currently held by the sale
func (s *Sale) CurrentTotals() Totals {
	return Totals{ItemsAmount: s.TotalAmount, TotalAmount: s.TotalAmount}
}

// EnsureItemsEditable always fails: sale items are fixed once the stock was consumed
func (s *Sale) EnsureItemsEditable() error {
	return shared.NewDomainError(shared.CodeInvalidState, "Sale items cannot be changed after the sale")
}
