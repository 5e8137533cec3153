package handler

import (
	tradeapp "github.com/assistec/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// ServiceOrderHandler handles service order endpoints
type ServiceOrderHandler struct {
	BaseHandler
	orderService *tradeapp.ServiceOrderService
}

// NewServiceOrderHandler creates a new ServiceOrderHandler
func NewServiceOrderHandler(orderService *tradeapp.ServiceOrderService) *ServiceOrderHandler {
	return &ServiceOrderHandler{orderService: orderService}
}

// Create godoc
// @Summary      Open a service order
// @Tags         service-orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateServiceOrderInput true "Service order creation request"
// @Success      201 {object} dto.Response{data=tradeapp.ServiceOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /service-orders [post]
func (h *ServiceOrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreateServiceOrderInput
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @Summary      Get a service order with its items and financial record
// @Tags         service-orders
// @Produce      json
// @Param        id path string true "Service order ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.ServiceOrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /service-orders/{id} [get]
func (h *ServiceOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "service order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Update godoc
// @Summary      Edit a service order
// @Description  Recomputes totals and reposts the REVENUE record when the order is paid
// @Tags         service-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Service order ID" format(uuid)
// @Param        request body tradeapp.UpdateServiceOrderInput true "Fields to change"
// @Success      200 {object} dto.Response{data=tradeapp.ServiceOrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /service-orders/{id} [put]
func (h *ServiceOrderHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "service order")
	if !ok {
		return
	}
	var req tradeapp.UpdateServiceOrderInput
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// UpdateStatus godoc
// @Summary      Change the status and payment of a service order
// @Tags         service-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Service order ID" format(uuid)
// @Param        request body tradeapp.UpdateServiceOrderStatusInput true "Status and payment"
// @Success      200 {object} dto.Response{data=tradeapp.ServiceOrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /service-orders/{id}/status [patch]
func (h *ServiceOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "service order")
	if !ok {
		return
	}
	var req tradeapp.UpdateServiceOrderStatusInput
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
