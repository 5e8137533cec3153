package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/assistec/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BudgetSortFields contains allowed sort fields for budgets
var BudgetSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"sequence_no":  true,
	"status":       true,
	"total_amount": true,
	"valid_until":  true,
}

// GormBudgetRepository implements BudgetRepository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new GormBudgetRepository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

// FindByID finds a budget by its ID
func (r *GormBudgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Budget, error) {
	var model models.BudgetModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Budget")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDWithItems finds a budget and loads its line items
func (r *GormBudgetRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*trade.Budget, error) {
	budget, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := NewGormLineItemRepository(r.db).FindByContainer(ctx, budget.Ref())
	if err != nil {
		return nil, err
	}
	budget.Items = items
	return budget, nil
}

// FindAll returns one page of budgets and the total number of matches
func (r *GormBudgetRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Budget, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BudgetModel{})
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}
	if filter.Search != "" {
		query = query.Where("number LIKE ?", "%"+strings.TrimSpace(filter.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, BudgetSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var budgetModels []models.BudgetModel
	if err := query.Find(&budgetModels).Error; err != nil {
		return nil, 0, err
	}

	budgets := make([]trade.Budget, len(budgetModels))
	for i := range budgetModels {
		budgets[i] = *budgetModels[i].ToDomain()
	}
	return budgets, total, nil
}

// Create persists a new budget (items are written separately)
func (r *GormBudgetRepository) Create(ctx context.Context, budget *trade.Budget) error {
	return r.db.WithContext(ctx).Create(models.BudgetModelFromDomain(budget)).Error
}

// UpdateStatus persists the workflow status of a budget
func (r *GormBudgetRepository) UpdateStatus(ctx context.Context, budget *trade.Budget) error {
	result := r.db.WithContext(ctx).
		Model(&models.BudgetModel{}).
		Where("id = ?", budget.ID).
		Updates(map[string]any{
			"status":       budget.Status,
			"converted_at": budget.ConvertedAt,
			"updated_at":   budget.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Budget")
	}
	return nil
}

// TransitionStatus is a compare-and-swap on the budget status: the update only applies
// while the current status is one of from. Two concurrent conversions of the same budget
// cannot both succeed; the loser gets INVALID_STATE.
func (r *GormBudgetRepository) TransitionStatus(ctx context.Context, id uuid.UUID, target trade.BudgetStatus, from ...trade.BudgetStatus) error {
	if len(from) == 0 {
		return shared.NewValidationError("TransitionStatus requires at least one source status")
	}
	now := time.Now()
	updates := map[string]any{
		"status":     target,
		"version":    gorm.Expr("version + 1"),
		"updated_at": now,
	}
	if target == trade.BudgetStatusConverted {
		updates["converted_at"] = now
	}

	result := r.db.WithContext(ctx).
		Model(&models.BudgetModel{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeInvalidState,
			"Budget cannot move to "+target.String()+" from its current status")
	}
	return nil
}

// Ensure GormBudgetRepository implements BudgetRepository
var _ trade.BudgetRepository = (*GormBudgetRepository)(nil)
