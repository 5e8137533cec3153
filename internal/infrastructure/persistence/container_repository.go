package persistence

import (
	"context"
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/assistec/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContainerRepository gives kind-agnostic access to budgets, service orders and sales
type GormContainerRepository struct {
	db *gorm.DB
}

// NewGormContainerRepository creates a new GormContainerRepository
func NewGormContainerRepository(db *gorm.DB) *GormContainerRepository {
	return &GormContainerRepository{db: db}
}

func containerTable(kind trade.ContainerKind) (string, error) {
	switch kind {
	case trade.ContainerBudget:
		return models.BudgetModel{}.TableName(), nil
	case trade.ContainerServiceOrder:
		return models.ServiceOrderModel{}.TableName(), nil
	case trade.ContainerSale:
		return models.SaleModel{}.TableName(), nil
	}
	return "", shared.NewValidationError("Invalid container kind: " + string(kind))
}

func containerName(kind trade.ContainerKind) string {
	switch kind {
	case trade.ContainerBudget:
		return "Budget"
	case trade.ContainerServiceOrder:
		return "Service order"
	case trade.ContainerSale:
		return "Sale"
	}
	return "Container"
}

// Lock bumps the container version. The row stays write-locked until the surrounding
// transaction ends, which serializes concurrent item mutations of the same container.
func (r *GormContainerRepository) Lock(ctx context.Context, ref trade.ContainerRef) error {
	table, err := containerTable(ref.Kind)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Table(table).
		Where("id = ?", ref.ID).
		Update("version", gorm.Expr("version + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(containerName(ref.Kind))
	}
	return nil
}

// Find loads the container header (without items)
func (r *GormContainerRepository) Find(ctx context.Context, ref trade.ContainerRef) (trade.Container, error) {
	var (
		container trade.Container
		err       error
	)
	switch ref.Kind {
	case trade.ContainerBudget:
		var b *trade.Budget
		b, err = NewGormBudgetRepository(r.db).FindByID(ctx, ref.ID)
		container = b
	case trade.ContainerServiceOrder:
		var o *trade.ServiceOrder
		o, err = NewGormServiceOrderRepository(r.db).FindByID(ctx, ref.ID)
		container = o
	case trade.ContainerSale:
		var s *trade.Sale
		s, err = NewGormSaleRepository(r.db).FindByID(ctx, ref.ID)
		container = s
	default:
		return nil, shared.NewValidationError("Invalid container kind: " + string(ref.Kind))
	}
	if err != nil {
		return nil, err
	}
	return container, nil
}

// SaveTotals writes only the derived total columns of the container
func (r *GormContainerRepository) SaveTotals(ctx context.Context, c trade.Container) error {
	ref := c.Ref()
	table, err := containerTable(ref.Kind)
	if err != nil {
		return err
	}

	totals := c.CurrentTotals()
	updates := map[string]any{
		"total_amount": totals.TotalAmount,
		"updated_at":   time.Now(),
	}
	if ref.Kind == trade.ContainerServiceOrder {
		updates["products_amount"] = totals.ProductsAmount
		updates["services_amount"] = totals.ServicesAmount
	}

	result := r.db.WithContext(ctx).Table(table).Where("id = ?", ref.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(containerName(ref.Kind))
	}
	return nil
}

// Ensure GormContainerRepository implements ContainerRepository
var _ trade.ContainerRepository = (*GormContainerRepository)(nil)
