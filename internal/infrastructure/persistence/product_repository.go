package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/assistec/backend/internal/domain/catalog"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Product")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create persists a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Create(models.ProductModelFromDomain(product)).Error
}

// Update persists name, price and status. Stock is never written from the aggregate;
// only DecrementStock changes it.
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":       product.Name,
			"sale_price": product.SalePrice,
			"status":     product.Status,
			"version":    product.Version,
			"updated_at": product.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Product")
	}
	return nil
}

// DecrementStock runs a relative UPDATE (stock_qty = stock_qty - qty) so concurrent sales
// of the same product never lose an update. With allowNegative false the row is only
// updated while enough stock remains.
func (r *GormProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int, allowNegative bool) error {
	if qty <= 0 {
		return shared.NewValidationError("Quantity must be at least 1")
	}

	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", id)
	if !allowNegative {
		query = query.Where("stock_qty >= ?", qty)
	}
	result := query.Updates(map[string]any{
		"stock_qty":  gorm.Expr("stock_qty - ?", qty),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.NewNotFoundError("Product")
	}
	return shared.NewDomainError(shared.CodeInsufficientStock, "Insufficient stock for product "+id.String())
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
