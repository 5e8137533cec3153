package trade

import (
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetStatus represents the status of a budget (quote)
type BudgetStatus string

const (
	BudgetStatusPending   BudgetStatus = "PENDING"
	BudgetStatusApproved  BudgetStatus = "APPROVED"
	BudgetStatusRejected  BudgetStatus = "REJECTED"
	BudgetStatusExpired   BudgetStatus = "EXPIRED"
	BudgetStatusConverted BudgetStatus = "CONVERTED"
)

// AllBudgetStatuses lists every budget status
var AllBudgetStatuses = []BudgetStatus{
	BudgetStatusPending,
	BudgetStatusApproved,
	BudgetStatusRejected,
	BudgetStatusExpired,
	BudgetStatusConverted,
}

// IsValid checks if the status is a valid BudgetStatus
func (s BudgetStatus) IsValid() bool {
	switch s {
	case BudgetStatusPending, BudgetStatusApproved, BudgetStatusRejected, BudgetStatusExpired, BudgetStatusConverted:
		return true
	}
	return false
}

// String returns the string representation of BudgetStatus
func (s BudgetStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s BudgetStatus) CanTransitionTo(target BudgetStatus) bool {
	switch s {
	case BudgetStatusPending:
		return target == BudgetStatusApproved || target == BudgetStatusRejected ||
			target == BudgetStatusExpired || target == BudgetStatusConverted
	case BudgetStatusApproved, BudgetStatusRejected, BudgetStatusExpired:
		// Conversion to a sale is allowed from any non-converted status
		return target == BudgetStatusConverted
	case BudgetStatusConverted:
		return false
	}
	return false
}

// StatusesConvertibleToSale returns the statuses a budget may hold before being sold
func StatusesConvertibleToSale() []BudgetStatus {
	return []BudgetStatus{BudgetStatusPending, BudgetStatusApproved, BudgetStatusRejected, BudgetStatusExpired}
}

// Budget is a customer quote. It owns line items until it is converted,
// after which it is immutable.
type Budget struct {
	shared.BaseAggregateRoot
	Number      string
	SequenceNo  int64
	CustomerID  uuid.UUID
	Status      BudgetStatus
	ValidUntil  *time.Time
	Notes       string
	Items       []LineItem
	TotalAmount decimal.Decimal
	ConvertedAt *time.Time
}

// NewBudget creates a new pending budget
func NewBudget(sequenceNo int64, number string, customerID uuid.UUID, validUntil *time.Time) (*Budget, error) {
	if number == "" {
		return nil, shared.NewValidationError("Budget number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer ID cannot be empty")
	}

	return &Budget{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		SequenceNo:        sequenceNo,
		CustomerID:        customerID,
		Status:            BudgetStatusPending,
		ValidUntil:        validUntil,
		Items:             make([]LineItem, 0),
		TotalAmount:       decimal.Zero,
	}, nil
}

// Ref returns the container reference of the budget
func (b *Budget) Ref() ContainerRef {
	return BudgetRef(b.ID)
}

// Adjustments returns zero adjustments; budgets total their items only
func (b *Budget) Adjustments() Adjustments {
	return Adjustments{}
}

// ApplyTotals stores the recomputed total
func (b *Budget) ApplyTotals(t Totals) {
	b.TotalAmount = t.TotalAmount
	b.UpdatedAt = time.Now()
}

// CurrentTotals returns the totals currently held by the budget
func (b *Budget) CurrentTotals() Totals {
	return Totals{ItemsAmount: b.TotalAmount, TotalAmount: b.TotalAmount}
}

// EnsureItemsEditable rejects item changes on a converted budget
func (b *Budget) EnsureItemsEditable() error {
	if b.Status == BudgetStatusConverted {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot change items of a converted budget")
	}
	return nil
}

// IsExpired reports whether ValidUntil has passed at the given time
func (b *Budget) IsExpired(at time.Time) bool {
	return b.ValidUntil != nil && at.After(*b.ValidUntil)
}

// ChangeStatus moves the budget to a new workflow status
func (b *Budget) ChangeStatus(target BudgetStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("Invalid budget status: " + string(target))
	}
	if !b.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Cannot change budget status from "+b.Status.String()+" to "+target.String())
	}
	b.Status = target
	if target == BudgetStatusConverted {
		now := time.Now()
		b.ConvertedAt = &now
	}
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}
