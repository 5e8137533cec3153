package trade

import (
	"time"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceOrderStatus represents the workflow status of a service order
type ServiceOrderStatus string

const (
	ServiceOrderStatusOpened         ServiceOrderStatus = "OPENED"
	ServiceOrderStatusInQueue        ServiceOrderStatus = "IN_QUEUE"
	ServiceOrderStatusInProgress     ServiceOrderStatus = "IN_PROGRESS"
	ServiceOrderStatusAwaitingParts  ServiceOrderStatus = "AWAITING_PARTS"
	ServiceOrderStatusReady          ServiceOrderStatus = "READY"
	ServiceOrderStatusDelivered      ServiceOrderStatus = "DELIVERED"
	ServiceOrderStatusCancelled      ServiceOrderStatus = "CANCELLED"
	ServiceOrderStatusWarrantyReturn ServiceOrderStatus = "WARRANTY_RETURN"
)

// IsValid checks if the status is a valid ServiceOrderStatus
func (s ServiceOrderStatus) IsValid() bool {
	switch s {
	case ServiceOrderStatusOpened, ServiceOrderStatusInQueue, ServiceOrderStatusInProgress,
		ServiceOrderStatusAwaitingParts, ServiceOrderStatusReady, ServiceOrderStatusDelivered,
		ServiceOrderStatusCancelled, ServiceOrderStatusWarrantyReturn:
		return true
	}
	return false
}

// String returns the string representation of ServiceOrderStatus
func (s ServiceOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ServiceOrderStatus) CanTransitionTo(target ServiceOrderStatus) bool {
	switch s {
	case ServiceOrderStatusOpened:
		return target == ServiceOrderStatusInQueue || target == ServiceOrderStatusInProgress ||
			target == ServiceOrderStatusCancelled
	case ServiceOrderStatusInQueue:
		return target == ServiceOrderStatusInProgress || target == ServiceOrderStatusCancelled
	case ServiceOrderStatusInProgress:
		return target == ServiceOrderStatusAwaitingParts || target == ServiceOrderStatusReady ||
			target == ServiceOrderStatusCancelled
	case ServiceOrderStatusAwaitingParts:
		return target == ServiceOrderStatusInProgress || target == ServiceOrderStatusCancelled
	case ServiceOrderStatusReady:
		return target == ServiceOrderStatusDelivered || target == ServiceOrderStatusInProgress
	case ServiceOrderStatusDelivered:
		return target == ServiceOrderStatusWarrantyReturn
	case ServiceOrderStatusWarrantyReturn:
		return target == ServiceOrderStatusInProgress || target == ServiceOrderStatusDelivered
	case ServiceOrderStatusCancelled:
		return false // Terminal state
	}
	return false
}

// Priority represents the urgency of a service order
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid checks if the priority is a valid Priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ServiceOrder ("OS") is a repair job. Its total is the item sum plus freight and
// other charges minus the order-level discount.
type ServiceOrder struct {
	shared.BaseAggregateRoot
	Number         string
	SequenceNo     int64
	CustomerID     uuid.UUID
	BudgetID       *uuid.UUID
	Status         ServiceOrderStatus
	Priority       Priority
	Description    string
	Items          []LineItem
	ProductsAmount decimal.Decimal
	ServicesAmount decimal.Decimal
	FreightAmount  decimal.Decimal
	OthersAmount   decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Paid           bool
	PaidAt         *time.Time
	PaymentMethod  *finance.PaymentMethod
	DeliveredAt    *time.Time
}

// NewServiceOrder creates an OPENED service order with NORMAL priority
func NewServiceOrder(sequenceNo int64, number string, customerID uuid.UUID) (*ServiceOrder, error) {
	if number == "" {
		return nil, shared.NewValidationError("Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer ID cannot be empty")
	}

	return &ServiceOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		SequenceNo:        sequenceNo,
		CustomerID:        customerID,
		Status:            ServiceOrderStatusOpened,
		Priority:          PriorityNormal,
		Items:             make([]LineItem, 0),
		ProductsAmount:    decimal.Zero,
		ServicesAmount:    decimal.Zero,
		FreightAmount:     decimal.Zero,
		OthersAmount:      decimal.Zero,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
	}, nil
}

// NewServiceOrderFromBudget opens a service order for the budget's customer
func NewServiceOrderFromBudget(sequenceNo int64, number string, budget *Budget) (*ServiceOrder, error) {
	order, err := NewServiceOrder(sequenceNo, number, budget.CustomerID)
	if err != nil {
		return nil, err
	}
	budgetID := budget.ID
	order.BudgetID = &budgetID
	order.Description = budget.Notes
	return order, nil
}

// Ref returns the container reference of the order
func (o *ServiceOrder) Ref() ContainerRef {
	return ServiceOrderRef(o.ID)
}

// Adjustments returns the freight, other charges and discount of the order
func (o *ServiceOrder) Adjustments() Adjustments {
	return Adjustments{
		Freight:  o.FreightAmount,
		Others:   o.OthersAmount,
		Discount: o.DiscountAmount,
	}
}

// ApplyTotals stores the recomputed totals
func (o *ServiceOrder) ApplyTotals(t Totals) {
	o.ProductsAmount = t.ProductsAmount
	o.ServicesAmount = t.ServicesAmount
	o.TotalAmount = t.TotalAmount
	o.UpdatedAt = time.Now()
}

// CurrentTotals returns the totals currently held by the order
func (o *ServiceOrder) CurrentTotals() Totals {
	return Totals{
		ProductsAmount: o.ProductsAmount,
		ServicesAmount: o.ServicesAmount,
		ItemsAmount:    o.ProductsAmount.Add(o.ServicesAmount),
		TotalAmount:    o.TotalAmount,
	}
}

// EnsureItemsEditable rejects item changes on a cancelled order
func (o *ServiceOrder) EnsureItemsEditable() error {
	if o.Status == ServiceOrderStatusCancelled {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot change items of a cancelled service order")
	}
	return nil
}

// SetAdjustments replaces freight, other charges and discount
func (o *ServiceOrder) SetAdjustments(freight, others, discount decimal.Decimal) error {
	if freight.IsNegative() {
		return shared.NewValidationError("Freight amount cannot be negative")
	}
	if others.IsNegative() {
		return shared.NewValidationError("Others amount cannot be negative")
	}
	if discount.IsNegative() {
		return shared.NewValidationError("Discount amount cannot be negative")
	}
	o.FreightAmount = shared.Cents(freight)
	o.OthersAmount = shared.Cents(others)
	o.DiscountAmount = shared.Cents(discount)
	o.UpdatedAt = time.Now()
	return nil
}

// SetPriority changes the priority
func (o *ServiceOrder) SetPriority(p Priority) error {
	if !p.IsValid() {
		return shared.NewValidationError("Invalid priority: " + string(p))
	}
	o.Priority = p
	o.UpdatedAt = time.Now()
	return nil
}

// ChangeStatus moves the order through its workflow
func (o *ServiceOrder) ChangeStatus(target ServiceOrderStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("Invalid service order status: " + string(target))
	}
	if o.Status == target {
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Cannot change service order status from "+o.Status.String()+" to "+target.String())
	}
	o.Status = target
	now := time.Now()
	if target == ServiceOrderStatusDelivered {
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// MarkPaid records payment of the order
func (o *ServiceOrder) MarkPaid(method finance.PaymentMethod, paidAt *time.Time) error {
	if !method.IsValid() {
		return shared.NewValidationError("Invalid payment method: " + string(method))
	}
	at := time.Now()
	if paidAt != nil {
		at = *paidAt
	}
	o.Paid = true
	o.PaidAt = &at
	o.PaymentMethod = &method
	o.UpdatedAt = time.Now()
	return nil
}

// MarkUnpaid clears the payment of the order
func (o *ServiceOrder) MarkUnpaid() {
	o.Paid = false
	o.PaidAt = nil
	o.UpdatedAt = time.Now()
}

// PaymentMethodOr returns the payment method, or fallback when none is set
func (o *ServiceOrder) PaymentMethodOr(fallback finance.PaymentMethod) finance.PaymentMethod {
	if o.PaymentMethod == nil {
		return fallback
	}
	return *o.PaymentMethod
}
