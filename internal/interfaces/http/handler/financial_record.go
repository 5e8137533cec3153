package handler

import (
	"net/http"

	tradeapp "github.com/assistec/backend/internal/application/trade"
	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FinancialRecordHandler handles the revenue ledger
type FinancialRecordHandler struct {
	BaseHandler
	recordService *tradeapp.FinancialRecordService
}

// NewFinancialRecordHandler creates a new FinancialRecordHandler
func NewFinancialRecordHandler(recordService *tradeapp.FinancialRecordService) *FinancialRecordHandler {
	return &FinancialRecordHandler{recordService: recordService}
}

// Post godoc
// @Summary      Post the REVENUE record of a service order or sale
// @Description  Creates the record or updates the existing one for the same source
// @Tags         financial-records
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.PostFinancialRecordInput true "Posting"
// @Success      200 {object} dto.Response{data=tradeapp.FinancialRecordResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /financial-records [post]
func (h *FinancialRecordHandler) Post(c *gin.Context) {
	var req tradeapp.PostFinancialRecordInput
	if !h.bindJSON(c, &req) {
		return
	}

	record, err := h.recordService.Post(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// GetBySource godoc
// @Summary      Find the REVENUE record of a service order or sale
// @Tags         financial-records
// @Produce      json
// @Param        service_order_id query string false "Service order ID" format(uuid)
// @Param        sale_id query string false "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.FinancialRecordResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /financial-records [get]
func (h *FinancialRecordHandler) GetBySource(c *gin.Context) {
	orderID := c.Query("service_order_id")
	saleID := c.Query("sale_id")
	if (orderID == "") == (saleID == "") {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "Exactly one of service_order_id or sale_id is required")
		return
	}

	var source finance.Source
	if orderID != "" {
		id, err := uuid.Parse(orderID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "Invalid service order ID format")
			return
		}
		source = finance.ServiceOrderSource(id)
	} else {
		id, err := uuid.Parse(saleID)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "Invalid sale ID format")
			return
		}
		source = finance.SaleSource(id)
	}

	record, err := h.recordService.GetBySource(c.Request.Context(), source)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}
