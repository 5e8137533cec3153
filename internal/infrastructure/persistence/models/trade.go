package models

import (
	"time"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemModel is the persistence model for line items of every container kind.
// (container_kind, container_id) addresses the owning budget, service order or sale.
type LineItemModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key"`
	ContainerKind trade.ContainerKind `gorm:"type:varchar(20);not null;index:idx_line_item_container,priority:1"`
	ContainerID   uuid.UUID           `gorm:"type:uuid;not null;index:idx_line_item_container,priority:2"`
	RefKind       trade.RefKind       `gorm:"type:varchar(20);not null;default:'NONE'"`
	ProductID     *uuid.UUID          `gorm:"type:uuid;index"`
	ServiceID     *uuid.UUID          `gorm:"type:uuid;index"`
	Description   string              `gorm:"type:varchar(500)"`
	Quantity      int                 `gorm:"not null"`
	UnitPrice     decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Discount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPrice    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	CreatedAt     time.Time           `gorm:"not null"`
	UpdatedAt     time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts the persistence model to a domain LineItem.
// Fails only when the stored reference columns are inconsistent.
func (m *LineItemModel) ToDomain() (*trade.LineItem, error) {
	id := m.ProductID
	if m.RefKind == trade.RefKindService {
		id = m.ServiceID
	}
	ref, err := trade.RestoreLineRef(m.RefKind, id)
	if err != nil {
		return nil, err
	}
	return &trade.LineItem{
		ID:          m.ID,
		Container:   trade.ContainerRef{Kind: m.ContainerKind, ID: m.ContainerID},
		Ref:         ref,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Discount:    m.Discount,
		TotalPrice:  m.TotalPrice,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// FromDomain populates the persistence model from a domain LineItem.
func (m *LineItemModel) FromDomain(item *trade.LineItem) {
	m.ID = item.ID
	m.ContainerKind = item.Container.Kind
	m.ContainerID = item.Container.ID
	m.RefKind = item.Ref.Kind()
	m.ProductID = item.Ref.ProductID()
	m.ServiceID = item.Ref.ServiceID()
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.Discount = item.Discount
	m.TotalPrice = item.TotalPrice
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt
}

// LineItemModelFromDomain creates a new persistence model from a domain LineItem.
func LineItemModelFromDomain(item *trade.LineItem) *LineItemModel {
	m := &LineItemModel{}
	m.FromDomain(item)
	return m
}

// LineItemsToDomain converts a slice of models, preserving order
func LineItemsToDomain(models []LineItemModel) ([]trade.LineItem, error) {
	items := make([]trade.LineItem, 0, len(models))
	for i := range models {
		item, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// BudgetModel is the persistence model for the Budget aggregate root.
type BudgetModel struct {
	AggregateModel
	Number      string             `gorm:"type:varchar(50);not null;uniqueIndex:idx_budget_number"`
	SequenceNo  int64              `gorm:"not null;default:0"`
	CustomerID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	Status      trade.BudgetStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ValidUntil  *time.Time
	Notes       string          `gorm:"type:text"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ConvertedAt *time.Time
}

// TableName returns the table name for GORM
func (BudgetModel) TableName() string {
	return "budgets"
}

// ToDomain converts the persistence model to a domain Budget (without items).
func (m *BudgetModel) ToDomain() *trade.Budget {
	b := &trade.Budget{
		Number:      m.Number,
		SequenceNo:  m.SequenceNo,
		CustomerID:  m.CustomerID,
		Status:      m.Status,
		ValidUntil:  m.ValidUntil,
		Notes:       m.Notes,
		Items:       make([]trade.LineItem, 0),
		TotalAmount: m.TotalAmount,
		ConvertedAt: m.ConvertedAt,
	}
	m.PopulateAggregateRoot(&b.BaseAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain Budget.
func (m *BudgetModel) FromDomain(b *trade.Budget) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Number = b.Number
	m.SequenceNo = b.SequenceNo
	m.CustomerID = b.CustomerID
	m.Status = b.Status
	m.ValidUntil = b.ValidUntil
	m.Notes = b.Notes
	m.TotalAmount = b.TotalAmount
	m.ConvertedAt = b.ConvertedAt
}

// BudgetModelFromDomain creates a new persistence model from a domain Budget.
func BudgetModelFromDomain(b *trade.Budget) *BudgetModel {
	m := &BudgetModel{}
	m.FromDomain(b)
	return m
}

// ServiceOrderModel is the persistence model for the ServiceOrder aggregate root.
type ServiceOrderModel struct {
	AggregateModel
	Number         string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_service_order_number"`
	SequenceNo     int64                    `gorm:"not null;default:0"`
	CustomerID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	BudgetID       *uuid.UUID               `gorm:"type:uuid;index"`
	Status         trade.ServiceOrderStatus `gorm:"type:varchar(20);not null;default:'OPENED';index"`
	Priority       trade.Priority           `gorm:"type:varchar(20);not null;default:'NORMAL'"`
	Description    string                   `gorm:"type:text"`
	ProductsAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	ServicesAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	FreightAmount  decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	OthersAmount   decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Paid           bool                     `gorm:"not null;default:false"`
	PaidAt         *time.Time
	PaymentMethod  *finance.PaymentMethod `gorm:"type:varchar(30)"`
	DeliveredAt    *time.Time
}

// TableName returns the table name for GORM
func (ServiceOrderModel) TableName() string {
	return "service_orders"
}

// ToDomain converts the persistence model to a domain ServiceOrder (without items).
func (m *ServiceOrderModel) ToDomain() *trade.ServiceOrder {
	o := &trade.ServiceOrder{
		Number:         m.Number,
		SequenceNo:     m.SequenceNo,
		CustomerID:     m.CustomerID,
		BudgetID:       m.BudgetID,
		Status:         m.Status,
		Priority:       m.Priority,
		Description:    m.Description,
		Items:          make([]trade.LineItem, 0),
		ProductsAmount: m.ProductsAmount,
		ServicesAmount: m.ServicesAmount,
		FreightAmount:  m.FreightAmount,
		OthersAmount:   m.OthersAmount,
		DiscountAmount: m.DiscountAmount,
		TotalAmount:    m.TotalAmount,
		Paid:           m.Paid,
		PaidAt:         m.PaidAt,
		PaymentMethod:  m.PaymentMethod,
		DeliveredAt:    m.DeliveredAt,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	return o
}

// FromDomain populates the persistence model from a domain ServiceOrder.
func (m *ServiceOrderModel) FromDomain(o *trade.ServiceOrder) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Number = o.Number
	m.SequenceNo = o.SequenceNo
	m.CustomerID = o.CustomerID
	m.BudgetID = o.BudgetID
	m.Status = o.Status
	m.Priority = o.Priority
	m.Description = o.Description
	m.ProductsAmount = o.ProductsAmount
	m.ServicesAmount = o.ServicesAmount
	m.FreightAmount = o.FreightAmount
	m.OthersAmount = o.OthersAmount
	m.DiscountAmount = o.DiscountAmount
	m.TotalAmount = o.TotalAmount
	m.Paid = o.Paid
	m.PaidAt = o.PaidAt
	m.PaymentMethod = o.PaymentMethod
	m.DeliveredAt = o.DeliveredAt
}

// ServiceOrderModelFromDomain creates a new persistence model from a domain ServiceOrder.
func ServiceOrderModelFromDomain(o *trade.ServiceOrder) *ServiceOrderModel {
	m := &ServiceOrderModel{}
	m.FromDomain(o)
	return m
}

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	AggregateModel
	Number        string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_sale_number"`
	SequenceNo    int64                 `gorm:"not null;default:0"`
	SellerID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerID    *uuid.UUID            `gorm:"type:uuid;index"`
	BudgetID      *uuid.UUID            `gorm:"type:uuid;index"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Paid          bool                  `gorm:"not null;default:true"`
	PaidAt        *time.Time            `gorm:"index"`
	PaymentMethod finance.PaymentMethod `gorm:"type:varchar(30);not null"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale (without items).
func (m *SaleModel) ToDomain() *trade.Sale {
	s := &trade.Sale{
		Number:        m.Number,
		SequenceNo:    m.SequenceNo,
		SellerID:      m.SellerID,
		CustomerID:    m.CustomerID,
		BudgetID:      m.BudgetID,
		Items:         make([]trade.LineItem, 0),
		TotalAmount:   m.TotalAmount,
		Paid:          m.Paid,
		PaidAt:        m.PaidAt,
		PaymentMethod: m.PaymentMethod,
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Sale.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Number = s.Number
	m.SequenceNo = s.SequenceNo
	m.SellerID = s.SellerID
	m.CustomerID = s.CustomerID
	m.BudgetID = s.BudgetID
	m.TotalAmount = s.TotalAmount
	m.Paid = s.Paid
	m.PaidAt = s.PaidAt
	m.PaymentMethod = s.PaymentMethod
}

// SaleModelFromDomain creates a new persistence model from a domain Sale.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// AllModels lists every persisted model, in dependency order for AutoMigrate
func AllModels() []any {
	return []any{
		&ProductModel{},
		&ServiceModel{},
		&BudgetModel{},
		&ServiceOrderModel{},
		&SaleModel{},
		&LineItemModel{},
		&FinancialRecordModel{},
		&SequenceModel{},
	}
}
