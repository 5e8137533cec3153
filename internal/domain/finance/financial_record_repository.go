package finance

import (
	"context"
)

// FinancialRecordRepository persists financial records
type FinancialRecordRepository interface {
	// FindBySource returns the record of a container, or shared.ErrNotFound
	FindBySource(ctx context.Context, source Source) (*FinancialRecord, error)
	Create(ctx context.Context, record *FinancialRecord) error
	Update(ctx context.Context, record *FinancialRecord) error
	// CountBySource returns how many records reference a container
	CountBySource(ctx context.Context, source Source) (int64, error)
}
