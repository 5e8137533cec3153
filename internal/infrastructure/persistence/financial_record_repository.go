package persistence

import (
	"context"
	"errors"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/assistec/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFinancialRecordRepository implements FinancialRecordRepository using GORM
type GormFinancialRecordRepository struct {
	db *gorm.DB
}

// NewGormFinancialRecordRepository creates a new GormFinancialRecordRepository
func NewGormFinancialRecordRepository(db *gorm.DB) *GormFinancialRecordRepository {
	return &GormFinancialRecordRepository{db: db}
}

func (r *GormFinancialRecordRepository) sourceQuery(ctx context.Context, source finance.Source) (*gorm.DB, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&models.FinancialRecordModel{})
	if source.ServiceOrderID != nil {
		return query.Where("service_order_id = ?", *source.ServiceOrderID), nil
	}
	return query.Where("sale_id = ?", *source.SaleID), nil
}

// FindBySource returns the record of a service order or sale
func (r *GormFinancialRecordRepository) FindBySource(ctx context.Context, source finance.Source) (*finance.FinancialRecord, error) {
	query, err := r.sourceQuery(ctx, source)
	if err != nil {
		return nil, err
	}
	var model models.FinancialRecordModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Financial record")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create persists a new financial record
func (r *GormFinancialRecordRepository) Create(ctx context.Context, record *finance.FinancialRecord) error {
	return r.db.WithContext(ctx).Create(models.FinancialRecordModelFromDomain(record)).Error
}

// Update overwrites the payment fields of an existing record
func (r *GormFinancialRecordRepository) Update(ctx context.Context, record *finance.FinancialRecord) error {
	result := r.db.WithContext(ctx).
		Model(&models.FinancialRecordModel{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"amount":         record.Amount,
			"payment_method": record.PaymentMethod,
			"paid":           record.Paid,
			"paid_at":        record.PaidAt,
			"version":        record.Version,
			"updated_at":     record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Financial record")
	}
	return nil
}

// CountBySource returns how many records reference a container
func (r *GormFinancialRecordRepository) CountBySource(ctx context.Context, source finance.Source) (int64, error) {
	query, err := r.sourceQuery(ctx, source)
	if err != nil {
		return 0, err
	}
	var count int64
	err = query.Count(&count).Error
	return count, err
}

// Ensure GormFinancialRecordRepository implements FinancialRecordRepository
var _ finance.FinancialRecordRepository = (*GormFinancialRecordRepository)(nil)
