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

// GormLineItemRepository implements LineItemRepository using GORM
type GormLineItemRepository struct {
	db *gorm.DB
}

// NewGormLineItemRepository creates a new GormLineItemRepository
func NewGormLineItemRepository(db *gorm.DB) *GormLineItemRepository {
	return &GormLineItemRepository{db: db}
}

// FindByID finds a line item by its ID
func (r *GormLineItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.LineItem, error) {
	var model models.LineItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Line item")
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByContainer returns the items of a container in creation order
func (r *GormLineItemRepository) FindByContainer(ctx context.Context, ref trade.ContainerRef) ([]trade.LineItem, error) {
	var itemModels []models.LineItemModel
	if err := r.db.WithContext(ctx).
		Where("container_kind = ? AND container_id = ?", ref.Kind, ref.ID).
		Order("created_at ASC, id ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return models.LineItemsToDomain(itemModels)
}

// Create persists a new line item
func (r *GormLineItemRepository) Create(ctx context.Context, item *trade.LineItem) error {
	return r.db.WithContext(ctx).Create(models.LineItemModelFromDomain(item)).Error
}

// CreateBatch persists several line items in one statement
func (r *GormLineItemRepository) CreateBatch(ctx context.Context, items []trade.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	itemModels := make([]*models.LineItemModel, len(items))
	for i := range items {
		itemModels[i] = models.LineItemModelFromDomain(&items[i])
	}
	return r.db.WithContext(ctx).CreateInBatches(itemModels, 100).Error
}

// Update persists quantity, discount and total of an item
func (r *GormLineItemRepository) Update(ctx context.Context, item *trade.LineItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.LineItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity":    item.Quantity,
			"discount":    item.Discount,
			"total_price": item.TotalPrice,
			"updated_at":  item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Line item")
	}
	return nil
}

// Delete hard-deletes a line item
func (r *GormLineItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LineItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Line item")
	}
	return nil
}

// Ensure GormLineItemRepository implements LineItemRepository
var _ trade.LineItemRepository = (*GormLineItemRepository)(nil)
