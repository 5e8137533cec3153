package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/assistec/backend/internal/domain/catalog"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles product and service catalog operations.
// Stock is only changed by sales; there is no direct stock adjustment here.
type ProductService struct {
	productRepo catalog.ProductRepository
	serviceRepo catalog.ServiceRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, serviceRepo catalog.ServiceRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Code, req.Name, req.SalePrice, req.StockQty)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code),
	)
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Update changes name, price or status of a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, shared.NewValidationError("Product name cannot be empty")
		}
		product.Name = *req.Name
	}
	if req.SalePrice != nil {
		if err := product.SetSalePrice(*req.SalePrice); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		status := catalog.ProductStatus(*req.Status)
		if status != catalog.ProductStatusActive && status != catalog.ProductStatusInactive {
			return nil, shared.NewValidationError("Invalid product status: " + *req.Status)
		}
		product.Status = status
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// CreateService creates a new billable service
func (s *ProductService) CreateService(ctx context.Context, req CreateServiceRequest) (*ServiceResponse, error) {
	service, err := catalog.NewService(req.Name, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.serviceRepo.Create(ctx, service); err != nil {
		return nil, err
	}
	s.logger.Info("service created", zap.String("service_id", service.ID.String()))
	resp := ToServiceResponse(service)
	return &resp, nil
}

// GetService retrieves a service by ID
func (s *ProductService) GetService(ctx context.Context, id uuid.UUID) (*ServiceResponse, error) {
	service, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToServiceResponse(service)
	return &resp, nil
}
