package trade

import (
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContainerKind identifies the aggregate that owns a set of line items
type ContainerKind string

const (
	ContainerBudget       ContainerKind = "BUDGET"
	ContainerServiceOrder ContainerKind = "SERVICE_ORDER"
	ContainerSale         ContainerKind = "SALE"
)

// IsValid checks if the kind is a valid ContainerKind
func (k ContainerKind) IsValid() bool {
	switch k {
	case ContainerBudget, ContainerServiceOrder, ContainerSale:
		return true
	}
	return false
}

// String returns the string representation of ContainerKind
func (k ContainerKind) String() string {
	return string(k)
}

// ContainerRef addresses one container
type ContainerRef struct {
	Kind ContainerKind
	ID   uuid.UUID
}

// BudgetRef returns a reference to a budget
func BudgetRef(id uuid.UUID) ContainerRef {
	return ContainerRef{Kind: ContainerBudget, ID: id}
}

// ServiceOrderRef returns a reference to a service order
func ServiceOrderRef(id uuid.UUID) ContainerRef {
	return ContainerRef{Kind: ContainerServiceOrder, ID: id}
}

// SaleRef returns a reference to a sale
func SaleRef(id uuid.UUID) ContainerRef {
	return ContainerRef{Kind: ContainerSale, ID: id}
}

// Validate checks the reference is addressable
func (r ContainerRef) Validate() error {
	if !r.Kind.IsValid() {
		return shared.NewValidationError("Invalid container kind: " + string(r.Kind))
	}
	if r.ID == uuid.Nil {
		return shared.NewValidationError("Container ID cannot be empty")
	}
	return nil
}

// String returns a compact form used in logs
func (r ContainerRef) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}

// Container is the capability shared by Budget, ServiceOrder and Sale:
// it owns line items and carries a derived total.
type Container interface {
	Ref() ContainerRef
	// Adjustments returns the container-level charges folded into the total
	Adjustments() Adjustments
	// ApplyTotals stores freshly computed totals on the container
	ApplyTotals(t Totals)
	// CurrentTotals returns the totals currently held by the container
	CurrentTotals() Totals
	// EnsureItemsEditable returns an error when line items may no longer change
	EnsureItemsEditable() error
}
