package persistence

import (
	"context"
	"fmt"

	"github.com/assistec/backend/internal/domain/trade"
	"github.com/assistec/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceStarts maps a numbering series to the first number it hands out
type SequenceStarts map[trade.SequenceName]int64

// GormSequenceGenerator hands out document numbers from the sequences table.
// The counter row is incremented with a relative UPDATE inside the caller's transaction,
// so the row lock serializes allocation and a rollback gives the number back.
type GormSequenceGenerator struct {
	db     *gorm.DB
	starts SequenceStarts
}

// NewGormSequenceGenerator creates a generator bound to db (usually a transaction)
func NewGormSequenceGenerator(db *gorm.DB, starts SequenceStarts) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db, starts: starts}
}

// Next increments and returns the counter of the series
func (g *GormSequenceGenerator) Next(ctx context.Context, name trade.SequenceName) (int64, error) {
	db := g.db.WithContext(ctx)
	for attempt := 0; attempt < 2; attempt++ {
		result := db.Model(&models.SequenceModel{}).
			Where("name = ?", name).
			Update("value", gorm.Expr("value + 1"))
		if result.Error != nil {
			return 0, fmt.Errorf("increment sequence %s: %w", name, result.Error)
		}
		if result.RowsAffected == 1 {
			var seq models.SequenceModel
			if err := db.First(&seq, "name = ?", name).Error; err != nil {
				return 0, fmt.Errorf("read sequence %s: %w", name, err)
			}
			return seq.Value, nil
		}
		if err := g.seed(ctx, name); err != nil {
			return 0, err
		}
	}
	return 0, fmt.Errorf("sequence %s could not be initialised", name)
}

// seed creates the counter row at Floor
func (g *GormSequenceGenerator) seed(ctx context.Context, name trade.SequenceName) error {
	value, err := g.Floor(ctx, name)
	if err != nil {
		return err
	}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SequenceModel{Name: string(name), Value: value}).Error
}

// Floor returns the value a fresh counter starts from: the highest number already in
// use, or one below the configured start, whichever is greater.
func (g *GormSequenceGenerator) Floor(ctx context.Context, name trade.SequenceName) (int64, error) {
	table, err := sequenceTable(name)
	if err != nil {
		return 0, err
	}

	var maxUsed int64
	if err := g.db.WithContext(ctx).Table(table).
		Select("COALESCE(MAX(sequence_no), 0)").
		Scan(&maxUsed).Error; err != nil {
		return 0, fmt.Errorf("scan %s numbers: %w", table, err)
	}

	if start := g.starts[name]; start-1 > maxUsed {
		return start - 1, nil
	}
	return maxUsed, nil
}

func sequenceTable(name trade.SequenceName) (string, error) {
	switch name {
	case trade.SequenceBudget:
		return models.BudgetModel{}.TableName(), nil
	case trade.SequenceServiceOrder:
		return models.ServiceOrderModel{}.TableName(), nil
	case trade.SequenceSale:
		return models.SaleModel{}.TableName(), nil
	}
	return "", fmt.Errorf("unknown sequence %q", name)
}

// Ensure GormSequenceGenerator implements SequenceGenerator
var _ trade.SequenceGenerator = (*GormSequenceGenerator)(nil)
