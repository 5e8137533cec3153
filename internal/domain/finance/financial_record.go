package finance

import (
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordType is the direction of a ledger posting
type RecordType string

const (
	RecordTypeRevenue RecordType = "REVENUE"
	RecordTypeExpense RecordType = "EXPENSE"
)

// IsValid checks if the type is a valid RecordType
func (t RecordType) IsValid() bool {
	return t == RecordTypeRevenue || t == RecordTypeExpense
}

// Source is the container a financial record belongs to.
// Exactly one of ServiceOrderID and SaleID is set.
type Source struct {
	ServiceOrderID *uuid.UUID
	SaleID         *uuid.UUID
}

// ServiceOrderSource returns the source of a service order posting
func ServiceOrderSource(id uuid.UUID) Source {
	return Source{ServiceOrderID: &id}
}

// SaleSource returns the source of a sale posting
func SaleSource(id uuid.UUID) Source {
	return Source{SaleID: &id}
}

// Validate checks that exactly one back-reference is set
func (s Source) Validate() error {
	if (s.ServiceOrderID == nil) == (s.SaleID == nil) {
		return shared.NewValidationError("A financial record references exactly one service order or sale")
	}
	if s.ServiceOrderID != nil && *s.ServiceOrderID == uuid.Nil {
		return shared.NewValidationError("Service order ID cannot be empty")
	}
	if s.SaleID != nil && *s.SaleID == uuid.Nil {
		return shared.NewValidationError("Sale ID cannot be empty")
	}
	return nil
}

// FinancialRecord is the ledger entry of a paid service order or sale.
// A container has at most one record; re-posting updates it in place.
type FinancialRecord struct {
	shared.BaseAggregateRoot
	Type          RecordType
	Description   string
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	Paid          bool
	PaidAt        *time.Time
	Source        Source
}

// NewRevenueRecord creates a REVENUE record for a container
func NewRevenueRecord(source Source, description string, amount decimal.Decimal, method PaymentMethod, paid bool, paidAt *time.Time) (*FinancialRecord, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	r := &FinancialRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              RecordTypeRevenue,
		Description:       description,
		Source:            source,
	}
	if err := r.Repost(amount, method, paid, paidAt); err != nil {
		return nil, err
	}
	return r, nil
}

// Repost overwrites the payment fields of the record
func (r *FinancialRecord) Repost(amount decimal.Decimal, method PaymentMethod, paid bool, paidAt *time.Time) error {
	if amount.IsNegative() {
		return shared.NewValidationError("Amount cannot be negative")
	}
	if !method.IsValid() {
		return shared.NewValidationError("Invalid payment method: " + string(method))
	}

	r.Amount = shared.Cents(amount)
	r.PaymentMethod = method
	r.Paid = paid
	switch {
	case !paid:
		r.PaidAt = nil
	case paidAt != nil:
		at := *paidAt
		r.PaidAt = &at
	default:
		now := time.Now()
		r.PaidAt = &now
	}
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}
