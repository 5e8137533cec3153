package handler

import (
	catalogapp "github.com/assistec/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles the product and service catalog
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// Create godoc
// @Summary      Create a new product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product creation request"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID godoc
// @Summary      Get product by ID
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, ok := h.parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Update godoc
// @Summary      Update a product
// @Description  Price changes do not affect line items already created
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.parseIDParam(c, "id", "product")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// CreateService godoc
// @Summary      Create a billable service
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateServiceRequest true "Service creation request"
// @Success      201 {object} dto.Response{data=catalogapp.ServiceResponse}
// @Router       /services [post]
func (h *ProductHandler) CreateService(c *gin.Context) {
	var req catalogapp.CreateServiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	service, err := h.productService.CreateService(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, service)
}

// GetService godoc
// @Summary      Get service by ID
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Service ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ServiceResponse}
// @Router       /services/{id} [get]
func (h *ProductHandler) GetService(c *gin.Context) {
	serviceID, ok := h.parseIDParam(c, "id", "service")
	if !ok {
		return
	}

	service, err := h.productService.GetService(c.Request.Context(), serviceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, service)
}
