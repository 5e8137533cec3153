package handler

import (
	tradeapp "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LineItemHandler handles line items of budgets and service orders.
// Every mutation answers with the item and the recomputed totals of its container.
type LineItemHandler struct {
	BaseHandler
	itemService *tradeapp.LineItemService
}

// NewLineItemHandler creates a new LineItemHandler
func NewLineItemHandler(itemService *tradeapp.LineItemService) *LineItemHandler {
	return &LineItemHandler{itemService: itemService}
}

// AddToBudget godoc
// @Summary      Add a line item to a budget
// @Tags         line-items
// @Accept       json
// @Produce      json
// @Param        id path string true "Budget ID" format(uuid)
// @Param        request body tradeapp.AddLineItemInput true "Line item"
// @Success      201 {object} dto.Response{data=tradeapp.LineItemResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /budgets/{id}/items [post]
func (h *LineItemHandler) AddToBudget(c *gin.Context) {
	h.add(c, "budget", trade.BudgetRef)
}

// AddToServiceOrder godoc
// @Summary      Add a line item to a service order
// @Tags         line-items
// @Accept       json
// @Produce      json
// @Param        id path string true "Service order ID" format(uuid)
// @Param        request body tradeapp.AddLineItemInput true "Line item"
// @Success      201 {object} dto.Response{data=tradeapp.LineItemResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /service-orders/{id}/items [post]
func (h *LineItemHandler) AddToServiceOrder(c *gin.Context) {
	h.add(c, "service order", trade.ServiceOrderRef)
}

func (h *LineItemHandler) add(c *gin.Context, resource string, ref func(uuid.UUID) trade.ContainerRef) {
	id, ok := h.parseIDParam(c, "id", resource)
	if !ok {
		return
	}
	var req tradeapp.AddLineItemInput
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.itemService.AddItem(c.Request.Context(), ref(id), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, item)
}

// Update godoc
// @Summary      Change quantity or discount of a line item
// @Description  The total is recomputed from the stored unit price
// @Tags         line-items
// @Accept       json
// @Produce      json
// @Param        id path string true "Line item ID" format(uuid)
// @Param        request body tradeapp.UpdateLineItemInput true "Fields to change"
// @Success      200 {object} dto.Response{data=tradeapp.LineItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /items/{id} [patch]
func (h *LineItemHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "line item")
	if !ok {
		return
	}
	var req tradeapp.UpdateLineItemInput
	if !h.bindJSON(c, &req) {
		return
	}

	item, err := h.itemService.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Remove godoc
// @Summary      Remove a line item
// @Tags         line-items
// @Param        id path string true "Line item ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /items/{id} [delete]
func (h *LineItemHandler) Remove(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "line item")
	if !ok {
		return
	}

	if err := h.itemService.RemoveItem(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
