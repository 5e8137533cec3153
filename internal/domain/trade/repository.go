package trade

import (
	"context"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LineItemRepository persists line items of every container kind
type LineItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LineItem, error)
	// FindByContainer returns the items of a container in creation order
	FindByContainer(ctx context.Context, ref ContainerRef) ([]LineItem, error)
	Create(ctx context.Context, item *LineItem) error
	CreateBatch(ctx context.Context, items []LineItem) error
	Update(ctx context.Context, item *LineItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContainerRepository gives kind-agnostic access to budgets, service orders and sales
type ContainerRepository interface {
	// Lock bumps the container version, holding its row lock until the transaction ends.
	// Returns shared.ErrNotFound when the container does not exist.
	Lock(ctx context.Context, ref ContainerRef) error
	Find(ctx context.Context, ref ContainerRef) (Container, error)
	SaveTotals(ctx context.Context, c Container) error
}

// BudgetRepository persists budgets
type BudgetRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Budget, error)
	// FindByIDWithItems loads the budget together with its line items
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*Budget, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Budget, int64, error)
	Create(ctx context.Context, budget *Budget) error
	UpdateStatus(ctx context.Context, budget *Budget) error
	// TransitionStatus sets status to target only while the current status is one of from.
	// Returns shared.ErrInvalidState when no row matched.
	TransitionStatus(ctx context.Context, id uuid.UUID, target BudgetStatus, from ...BudgetStatus) error
}

// ServiceOrderRepository persists service orders
type ServiceOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceOrder, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*ServiceOrder, error)
	Create(ctx context.Context, order *ServiceOrder) error
	Update(ctx context.Context, order *ServiceOrder) error
	CountByBudget(ctx context.Context, budgetID uuid.UUID) (int64, error)
}

// SaleRepository persists sales
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*Sale, error)
	Create(ctx context.Context, sale *Sale) error
	CountByBudget(ctx context.Context, budgetID uuid.UUID) (int64, error)
}
