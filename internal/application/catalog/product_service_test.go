package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/assistec/backend/internal/domain/catalog"
	"github.com/assistec/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int, allowNegative bool) error {
	args := m.Called(ctx, id, qty, allowNegative)
	return args.Error(0)
}

// MockServiceRepository is a mock implementation of ServiceRepository
type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Service), args.Error(1)
}

func (m *MockServiceRepository) Create(ctx context.Context, service *catalog.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func (m *MockServiceRepository) Update(ctx context.Context, service *catalog.Service) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

func newTestService() (*ProductService, *MockProductRepository, *MockServiceRepository) {
	products := new(MockProductRepository)
	services := new(MockServiceRepository)
	return NewProductService(products, services, nil), products, services
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product", func(t *testing.T) {
		svc, products, _ := newTestService()
		products.On("Create", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.Create(ctx, CreateProductRequest{
			Code:      "p1",
			Name:      "Película 3D",
			SalePrice: decimal.RequireFromString("10.00"),
			StockQty:  5,
		})
		require.NoError(t, err)
		assert.Equal(t, "P1", resp.Code)
		assert.Equal(t, 5, resp.StockQty)
		assert.Equal(t, "active", resp.Status)
		products.AssertExpectations(t)
	})

	t.Run("rejects negative price without touching the repository", func(t *testing.T) {
		svc, products, _ := newTestService()

		_, err := svc.Create(ctx, CreateProductRequest{Code: "P1", Name: "X", SalePrice: decimal.NewFromInt(-1)})
		assert.True(t, errors.Is(err, shared.ErrValidation))
		products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newTestService()

	product, err := catalog.NewProduct("P1", "Cabo USB-C", decimal.NewFromInt(10), 3)
	require.NoError(t, err)
	products.On("FindByID", ctx, product.ID).Return(product, nil)
	products.On("Update", ctx, product).Return(nil)

	price := decimal.RequireFromString("12.50")
	inactive := "inactive"
	resp, err := svc.Update(ctx, product.ID, UpdateProductRequest{SalePrice: &price, Status: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "12.5", resp.SalePrice.String())
	assert.Equal(t, "inactive", resp.Status)
	products.AssertExpectations(t)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, products, _ := newTestService()

	id := uuid.New()
	products.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := svc.GetByID(ctx, id)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestProductService_CreateService(t *testing.T) {
	ctx := context.Background()
	svc, _, services := newTestService()
	services.On("Create", ctx, mock.AnythingOfType("*catalog.Service")).Return(nil)

	resp, err := svc.CreateService(ctx, CreateServiceRequest{Name: "Diagnóstico", Price: decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.Equal(t, "50", resp.Price.String())
}
