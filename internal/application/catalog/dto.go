package catalog

import (
	"time"

	"github.com/assistec/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code      string          `json:"code" binding:"required,min=1,max=50"`
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	SalePrice decimal.Decimal `json:"sale_price" binding:"gte=0"`
	StockQty  int             `json:"stock_qty" binding:"gte=0"`
}

// UpdateProductRequest represents a request to update a product.
// Line items already created keep the price they were created with.
type UpdateProductRequest struct {
	Name      *string          `json:"name" binding:"omitempty,min=1,max=200"`
	SalePrice *decimal.Decimal `json:"sale_price" binding:"omitempty,gte=0"`
	Status    *string          `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	SalePrice decimal.Decimal `json:"sale_price"`
	StockQty  int             `json:"stock_qty"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateServiceRequest represents a request to create a billable service
type CreateServiceRequest struct {
	Name  string          `json:"name" binding:"required,min=1,max=200"`
	Price decimal.Decimal `json:"price" binding:"gte=0"`
}

// ServiceResponse represents a service in API responses
type ServiceResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Code:      p.Code,
		Name:      p.Name,
		SalePrice: p.SalePrice,
		StockQty:  p.StockQty,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToServiceResponse converts a domain Service to ServiceResponse
func ToServiceResponse(s *catalog.Service) ServiceResponse {
	return ServiceResponse{
		ID:        s.ID,
		Name:      s.Name,
		Price:     s.Price,
		Active:    s.Active,
		CreatedAt: s.CreatedAt,
	}
}
