package handler

import (
	"errors"
	"net/http"

	tradeapp "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BudgetHandler handles budget endpoints and the two budget conversions
type BudgetHandler struct {
	BaseHandler
	budgetService     *tradeapp.BudgetService
	conversionService *tradeapp.ConversionService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *tradeapp.BudgetService, conversionService *tradeapp.ConversionService) *BudgetHandler {
	return &BudgetHandler{
		budgetService:     budgetService,
		conversionService: conversionService,
	}
}

// ConvertToSaleRequest is the optional body of a budget-to-sale conversion
type ConvertToSaleRequest struct {
	PaymentMethod string `json:"payment_method" binding:"omitempty,max=30"`
}

type budgetListQuery struct {
	dto.ListRequest
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
}

// Create godoc
// @Summary      Create a budget
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateBudgetInput true "Budget creation request"
// @Success      201 {object} dto.Response{data=tradeapp.BudgetResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	var req tradeapp.CreateBudgetInput
	if !h.bindJSON(c, &req) {
		return
	}

	budget, err := h.budgetService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, budget)
}

// GetByID godoc
// @Summary      Get a budget with its items
// @Tags         budgets
// @Produce      json
// @Param        id path string true "Budget ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.BudgetResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /budgets/{id} [get]
func (h *BudgetHandler) GetByID(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "budget")
	if !ok {
		return
	}

	budget, err := h.budgetService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, budget)
}

// List godoc
// @Summary      List budgets
// @Tags         budgets
// @Produce      json
// @Param        status query string false "Budget status"
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]tradeapp.BudgetResponse,meta=dto.Meta}
// @Router       /budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	var query budgetListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	filter := tradeapp.BudgetListFilter{
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.CustomerID != "" {
		customerID, err := uuid.Parse(query.CustomerID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "Invalid customer ID format")
			return
		}
		filter.CustomerID = &customerID
	}

	result, err := h.budgetService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ChangeStatus godoc
// @Summary      Move a budget through its workflow
// @Description  CONVERTED is reachable only through the conversion endpoints
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        id path string true "Budget ID" format(uuid)
// @Param        request body tradeapp.ChangeBudgetStatusInput true "Target status"
// @Success      200 {object} dto.Response{data=tradeapp.BudgetResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /budgets/{id}/status [patch]
func (h *BudgetHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "budget")
	if !ok {
		return
	}
	var req tradeapp.ChangeBudgetStatusInput
	if !h.bindJSON(c, &req) {
		return
	}

	budget, err := h.budgetService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, budget)
}

// ConvertToOrder godoc
// @Summary      Convert a pending budget into a service order
// @Description  Approves the budget and copies its items onto a new service order
// @Tags         budgets
// @Produce      json
// @Param        id path string true "Budget ID" format(uuid)
// @Param        Idempotency-Key header string false "Replay-safe retry key"
// @Success      201 {object} dto.Response{data=tradeapp.ConvertToOrderResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /budgets/{id}/convert-to-order [post]
func (h *BudgetHandler) ConvertToOrder(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "budget")
	if !ok {
		return
	}

	result, err := h.conversionService.ConvertToOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ConvertToSale godoc
// @Summary      Convert a budget into a paid sale
// @Description  Decrements stock for product items, posts a paid REVENUE record and marks the budget CONVERTED
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        id path string true "Budget ID" format(uuid)
// @Param        Idempotency-Key header string false "Replay-safe retry key"
// @Param        request body ConvertToSaleRequest false "Payment method"
// @Success      201 {object} dto.Response{data=tradeapp.ConvertToSaleResult}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /budgets/{id}/convert-to-sale [post]
func (h *BudgetHandler) ConvertToSale(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "budget")
	if !ok {
		return
	}

	// A missing actor is reported by the service as UNAUTHORIZED; a malformed one is a 400
	actorID, err := getUserID(c)
	if err != nil && !errors.Is(err, errNoActor) {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	var req ConvertToSaleRequest
	if c.Request.ContentLength > 0 {
		if !h.bindJSON(c, &req) {
			return
		}
	}

	result, err := h.conversionService.ConvertToSale(c.Request.Context(), tradeapp.ConvertToSaleInput{
		BudgetID:      id,
		ActorID:       actorID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}
