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

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Sale")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDWithItems finds a sale and loads its line items
func (r *GormSaleRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	sale, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := NewGormLineItemRepository(r.db).FindByContainer(ctx, sale.Ref())
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

// Create persists a new sale (items are written separately)
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Create(models.SaleModelFromDomain(sale)).Error
}

// CountByBudget returns how many sales were made from a budget
func (r *GormSaleRepository) CountByBudget(ctx context.Context, budgetID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("budget_id = ?", budgetID).
		Count(&count).Error
	return count, err
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
