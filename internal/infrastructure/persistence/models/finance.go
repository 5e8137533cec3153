package models

import (
	"time"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialRecordModel is the persistence model for the FinancialRecord aggregate root.
// The unique indexes on the back-references keep one record per service order or sale.
type FinancialRecordModel struct {
	AggregateModel
	Type           finance.RecordType    `gorm:"type:varchar(20);not null;default:'REVENUE'"`
	Description    string                `gorm:"type:varchar(500)"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentMethod  finance.PaymentMethod `gorm:"type:varchar(30);not null"`
	Paid           bool                  `gorm:"not null;default:false"`
	PaidAt         *time.Time
	ServiceOrderID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_financial_record_service_order"`
	SaleID         *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_financial_record_sale"`
}

// TableName returns the table name for GORM
func (FinancialRecordModel) TableName() string {
	return "financial_records"
}

// ToDomain converts the persistence model to a domain FinancialRecord entity.
func (m *FinancialRecordModel) ToDomain() *finance.FinancialRecord {
	r := &finance.FinancialRecord{
		Type:          m.Type,
		Description:   m.Description,
		Amount:        m.Amount,
		PaymentMethod: m.PaymentMethod,
		Paid:          m.Paid,
		PaidAt:        m.PaidAt,
		Source: finance.Source{
			ServiceOrderID: m.ServiceOrderID,
			SaleID:         m.SaleID,
		},
	}
	m.PopulateAggregateRoot(&r.BaseAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain FinancialRecord entity.
func (m *FinancialRecordModel) FromDomain(r *finance.FinancialRecord) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Type = r.Type
	m.Description = r.Description
	m.Amount = r.Amount
	m.PaymentMethod = r.PaymentMethod
	m.Paid = r.Paid
	m.PaidAt = r.PaidAt
	m.ServiceOrderID = r.Source.ServiceOrderID
	m.SaleID = r.Source.SaleID
}

// FinancialRecordModelFromDomain creates a new persistence model from a domain FinancialRecord entity.
func FinancialRecordModelFromDomain(r *finance.FinancialRecord) *FinancialRecordModel {
	m := &FinancialRecordModel{}
	m.FromDomain(r)
	return m
}
