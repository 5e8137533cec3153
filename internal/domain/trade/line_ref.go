package trade

import (
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RefKind identifies what a line item points at
type RefKind string

const (
	RefKindNone    RefKind = "NONE"
	RefKindProduct RefKind = "PRODUCT"
	RefKindService RefKind = "SERVICE"
)

// IsValid checks if the kind is a valid RefKind
func (k RefKind) IsValid() bool {
	switch k {
	case RefKindNone, RefKindProduct, RefKindService:
		return true
	}
	return false
}

// LineRef is the catalog reference of a line item: a product, a service, or nothing
// (free text). A LineRef can never reference both a product and a service.
type LineRef struct {
	kind RefKind
	id   uuid.UUID
}

// ProductRef references a stocked product
func ProductRef(id uuid.UUID) LineRef {
	return LineRef{kind: RefKindProduct, id: id}
}

// ServiceRef references a catalog service
func ServiceRef(id uuid.UUID) LineRef {
	return LineRef{kind: RefKindService, id: id}
}

// NoRef is the reference of a free-text line item
func NoRef() LineRef {
	return LineRef{kind: RefKindNone}
}

// NewLineRef builds a reference from the two optional ids a caller may send
func NewLineRef(productID, serviceID *uuid.UUID) (LineRef, error) {
	switch {
	case productID != nil && serviceID != nil:
		return LineRef{}, shared.NewValidationError("A line item may reference a product or a service, not both")
	case productID != nil:
		if *productID == uuid.Nil {
			return LineRef{}, shared.NewValidationError("Product ID cannot be empty")
		}
		return ProductRef(*productID), nil
	case serviceID != nil:
		if *serviceID == uuid.Nil {
			return LineRef{}, shared.NewValidationError("Service ID cannot be empty")
		}
		return ServiceRef(*serviceID), nil
	}
	return NoRef(), nil
}

// RestoreLineRef rebuilds a reference from its persisted kind and id
func RestoreLineRef(kind RefKind, id *uuid.UUID) (LineRef, error) {
	switch kind {
	case RefKindProduct:
		if id == nil {
			return LineRef{}, shared.NewValidationError("Product reference without id")
		}
		return ProductRef(*id), nil
	case RefKindService:
		if id == nil {
			return LineRef{}, shared.NewValidationError("Service reference without id")
		}
		return ServiceRef(*id), nil
	case RefKindNone, "":
		return NoRef(), nil
	}
	return LineRef{}, shared.NewValidationError("Unknown line reference kind: " + string(kind))
}

// Kind returns the reference kind
func (r LineRef) Kind() RefKind {
	if r.kind == "" {
		return RefKindNone
	}
	return r.kind
}

// ID returns the referenced id, or nil for a free-text item
func (r LineRef) ID() *uuid.UUID {
	if r.Kind() == RefKindNone {
		return nil
	}
	id := r.id
	return &id
}

// ProductID returns the product id when the reference is a product
func (r LineRef) ProductID() *uuid.UUID {
	if r.kind != RefKindProduct {
		return nil
	}
	return r.ID()
}

// ServiceID returns the service id when the reference is a service
func (r LineRef) ServiceID() *uuid.UUID {
	if r.kind != RefKindService {
		return nil
	}
	return r.ID()
}

// IsProduct reports whether the reference is a product
func (r LineRef) IsProduct() bool {
	return r.kind == RefKindProduct
}

// IsService reports whether the reference is a service
func (r LineRef) IsService() bool {
	return r.kind == RefKindService
}
