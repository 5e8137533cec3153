package persistence

import (
	"context"
	"errors"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/assistec/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormServiceOrderRepository implements ServiceOrderRepository using GORM
type GormServiceOrderRepository struct {
	db *gorm.DB
}

// NewGormServiceOrderRepository creates a new GormServiceOrderRepository
func NewGormServiceOrderRepository(db *gorm.DB) *GormServiceOrderRepository {
	return &GormServiceOrderRepository{db: db}
}

// FindByID finds a service order by its ID
func (r *GormServiceOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.ServiceOrder, error) {
	var model models.ServiceOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Service order")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDWithItems finds a service order and loads its line items
func (r *GormServiceOrderRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*trade.ServiceOrder, error) {
	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := NewGormLineItemRepository(r.db).FindByContainer(ctx, order.Ref())
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// Create persists a new service order (items are written separately)
func (r *GormServiceOrderRepository) Create(ctx context.Context, order *trade.ServiceOrder) error {
	return r.db.WithContext(ctx).Create(models.ServiceOrderModelFromDomain(order)).Error
}

// Update persists every header column of the order
func (r *GormServiceOrderRepository) Update(ctx context.Context, order *trade.ServiceOrder) error {
	model := models.ServiceOrderModelFromDomain(order)
	result := r.db.WithContext(ctx).
		Model(&models.ServiceOrderModel{}).
		Where("id = ?", order.ID).
		Select("*").
		Omit("id", "created_at", "number", "sequence_no").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Service order")
	}
	return nil
}

// CountByBudget returns how many service orders were opened from a budget
func (r *GormServiceOrderRepository) CountByBudget(ctx context.Context, budgetID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ServiceOrderModel{}).
		Where("budget_id = ?", budgetID).
		Count(&count).Error
	return count, err
}

// Ensure GormServiceOrderRepository implements ServiceOrderRepository
var _ trade.ServiceOrderRepository = (*GormServiceOrderRepository)(nil)
