package handler

import (
	tradeapp "github.com/assistec/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles direct counter sales
type SaleHandler struct {
	BaseHandler
	saleService *tradeapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *tradeapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create godoc
// @Summary      Register a paid counter sale
// @Description  The seller is the authenticated user. Stock is decremented and a paid REVENUE record posted.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay-safe retry key"
// @Param        request body tradeapp.CreateSaleInput true "Sale"
// @Success      201 {object} dto.Response{data=tradeapp.SaleResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	sellerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "A sale requires an authenticated seller")
		return
	}

	var req tradeapp.CreateSaleInput
	if !h.bindJSON(c, &req) {
		return
	}
	req.SellerID = sellerID

	sale, err := h.saleService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// GetByID godoc
// @Summary      Get a sale with its items and financial record
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.SaleResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}
