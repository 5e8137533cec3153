package models

import (
	"github.com/assistec/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Code      string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_code"`
	Name      string                `gorm:"type:varchar(200);not null"`
	SalePrice decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	StockQty  int                   `gorm:"not null;default:0"`
	Status    catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		Code:      m.Code,
		Name:      m.Name,
		SalePrice: m.SalePrice,
		StockQty:  m.StockQty,
		Status:    m.Status,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.SalePrice = p.SalePrice
	m.StockQty = p.StockQty
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ServiceModel is the persistence model for the Service domain entity.
type ServiceModel struct {
	AggregateModel
	Name   string          `gorm:"type:varchar(200);not null"`
	Price  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ServiceModel) TableName() string {
	return "services"
}

// ToDomain converts the persistence model to a domain Service entity.
func (m *ServiceModel) ToDomain() *catalog.Service {
	s := &catalog.Service{
		Name:   m.Name,
		Price:  m.Price,
		Active: m.Active,
	}
	m.PopulateAggregateRoot(&s.BaseAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain Service entity.
func (m *ServiceModel) FromDomain(s *catalog.Service) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Price = s.Price
	m.Active = s.Active
}

// ServiceModelFromDomain creates a new persistence model from a domain Service entity.
func ServiceModelFromDomain(s *catalog.Service) *ServiceModel {
	m := &ServiceModel{}
	m.FromDomain(s)
	return m
}
