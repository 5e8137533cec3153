package persistence

import (
	"context"
	"errors"

	"github.com/assistec/backend/internal/domain/catalog"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormServiceRepository implements ServiceRepository using GORM
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

// FindByID finds a service by its ID
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var model models.ServiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Service")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create persists a new service
func (r *GormServiceRepository) Create(ctx context.Context, service *catalog.Service) error {
	return r.db.WithContext(ctx).Create(models.ServiceModelFromDomain(service)).Error
}

// Update persists name, price and active flag
func (r *GormServiceRepository) Update(ctx context.Context, service *catalog.Service) error {
	result := r.db.WithContext(ctx).
		Model(&models.ServiceModel{}).
		Where("id = ?", service.ID).
		Updates(map[string]any{
			"name":       service.Name,
			"price":      service.Price,
			"active":     service.Active,
			"version":    service.Version,
			"updated_at": service.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Service")
	}
	return nil
}

// Ensure GormServiceRepository implements ServiceRepository
var _ catalog.ServiceRepository = (*GormServiceRepository)(nil)
