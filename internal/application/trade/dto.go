package trade

import (
	"time"

	"github.com/assistec/backend/internal/domain/finance"
	"github.com/assistec/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Line items
// ============================================================================

// AddLineItemInput represents a request to add an item to a container
type AddLineItemInput struct {
	ProductID   *uuid.UUID       `json:"product_id"`
	ServiceID   *uuid.UUID       `json:"service_id"`
	Description string           `json:"description" binding:"max=500"`
	Quantity    *int             `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Discount    *decimal.Decimal `json:"discount"`
	// TotalPrice is accepted for client compatibility and ignored
	TotalPrice *decimal.Decimal `json:"total_price,omitempty"`
}

// UpdateLineItemInput represents a request to change an item's quantity and/or discount
type UpdateLineItemInput struct {
	Quantity   *int             `json:"quantity"`
	Discount   *decimal.Decimal `json:"discount"`
	TotalPrice *decimal.Decimal `json:"total_price,omitempty"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ContainerKind   string          `json:"container_kind"`
	ContainerID     uuid.UUID       `json:"container_id"`
	RefKind         string          `json:"ref_kind"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	ServiceID       *uuid.UUID      `json:"service_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Discount        decimal.Decimal `json:"discount"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ContainerTotals *TotalsResponse `json:"container_totals,omitempty"`
}

// TotalsResponse represents the recomputed totals of a container
type TotalsResponse struct {
	ProductsAmount decimal.Decimal `json:"products_amount"`
	ServicesAmount decimal.Decimal `json:"services_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// ToLineItemResponse converts a domain line item to a response
func ToLineItemResponse(item *trade.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:            item.ID,
		ContainerKind: item.Container.Kind.String(),
		ContainerID:   item.Container.ID,
		RefKind:       string(item.Ref.Kind()),
		ProductID:     item.Ref.ProductID(),
		ServiceID:     item.Ref.ServiceID(),
		Description:   item.Description,
		Quantity:      item.Quantity,
		UnitPrice:     item.UnitPrice,
		Discount:      item.Discount,
		TotalPrice:    item.TotalPrice,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

// ToLineItemResponses converts a slice of line items to responses
func ToLineItemResponses(items []trade.LineItem) []LineItemResponse {
	responses := make([]LineItemResponse, len(items))
	for i := range items {
		responses[i] = ToLineItemResponse(&items[i])
	}
	return responses
}

func toTotalsResponse(t *trade.Totals) *TotalsResponse {
	if t == nil {
		return nil
	}
	return &TotalsResponse{
		ProductsAmount: t.ProductsAmount,
		ServicesAmount: t.ServicesAmount,
		TotalAmount:    t.TotalAmount,
	}
}

// ============================================================================
// Budgets
// ============================================================================

// CreateBudgetInput represents a request to create a budget
type CreateBudgetInput struct {
	CustomerID uuid.UUID          `json:"customer_id" binding:"required"`
	ValidUntil *time.Time         `json:"valid_until"`
	Notes      string             `json:"notes" binding:"max=2000"`
	Items      []AddLineItemInput `json:"items"`
}

// ChangeBudgetStatusInput represents a workflow status change of a budget
type ChangeBudgetStatusInput struct {
	Status string `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED EXPIRED"`
}

// BudgetListFilter represents budget list query parameters
type BudgetListFilter struct {
	Status     string     `form:"status"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID          uuid.UUID          `json:"id"`
	Number      string             `json:"number"`
	CustomerID  uuid.UUID          `json:"customer_id"`
	Status      string             `json:"status"`
	ValidUntil  *time.Time         `json:"valid_until,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Items       []LineItemResponse `json:"items"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	ConvertedAt *time.Time         `json:"converted_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Version     int                `json:"version"`
}

// ToBudgetResponse converts a domain budget to a response
func ToBudgetResponse(b *trade.Budget) BudgetResponse {
	return BudgetResponse{
		ID:          b.ID,
		Number:      b.Number,
		CustomerID:  b.CustomerID,
		Status:      b.Status.String(),
		ValidUntil:  b.ValidUntil,
		Notes:       b.Notes,
		Items:       ToLineItemResponses(b.Items),
		TotalAmount: b.TotalAmount,
		ConvertedAt: b.ConvertedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Version:     b.Version,
	}
}

// ============================================================================
// Service orders
// ============================================================================

// CreateServiceOrderInput represents a request to open a service order
type CreateServiceOrderInput struct {
	CustomerID     uuid.UUID          `json:"customer_id" binding:"required"`
	Priority       string             `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Description    string             `json:"description" binding:"max=2000"`
	FreightAmount  *decimal.Decimal   `json:"freight_amount"`
	OthersAmount   *decimal.Decimal   `json:"others_amount"`
	DiscountAmount *decimal.Decimal   `json:"discount_amount"`
	Items          []AddLineItemInput `json:"items"`
}

// UpdateServiceOrderInput represents a full edit of a service order.
// Omitted fields keep their current value.
type UpdateServiceOrderInput struct {
	Priority       *string          `json:"priority" binding:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Description    *string          `json:"description" binding:"omitempty,max=2000"`
	FreightAmount  *decimal.Decimal `json:"freight_amount"`
	OthersAmount   *decimal.Decimal `json:"others_amount"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
	Paid           *bool            `json:"paid"`
	PaymentMethod  *string          `json:"payment_method"`
	PaidAt         *time.Time       `json:"paid_at"`
}

// UpdateServiceOrderStatusInput represents a status and/or payment change of a service order
type UpdateServiceOrderStatusInput struct {
	Status        string     `json:"status"`
	Paid          *bool      `json:"paid"`
	PaymentMethod *string    `json:"payment_method"`
	PaidAt        *time.Time `json:"paid_at"`
}

// ServiceOrderResponse represents a service order in API responses
type ServiceOrderResponse struct {
	ID              uuid.UUID                `json:"id"`
	Number          string                   `json:"number"`
	CustomerID      uuid.UUID                `json:"customer_id"`
	BudgetID        *uuid.UUID               `json:"budget_id,omitempty"`
	Status          string                   `json:"status"`
	Priority        string                   `json:"priority"`
	Description     string                   `json:"description,omitempty"`
	Items           []LineItemResponse       `json:"items"`
	ProductsAmount  decimal.Decimal          `json:"products_amount"`
	ServicesAmount  decimal.Decimal          `json:"services_amount"`
	FreightAmount   decimal.Decimal          `json:"freight_amount"`
	OthersAmount    decimal.Decimal          `json:"others_amount"`
	DiscountAmount  decimal.Decimal          `json:"discount_amount"`
	TotalAmount     decimal.Decimal          `json:"total_amount"`
	Paid            bool                     `json:"paid"`
	PaidAt          *time.Time               `json:"paid_at,omitempty"`
	PaymentMethod   *string                  `json:"payment_method,omitempty"`
	DeliveredAt     *time.Time               `json:"delivered_at,omitempty"`
	FinancialRecord *FinancialRecordResponse `json:"financial_record,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	Version         int                      `json:"version"`
}

// ToServiceOrderResponse converts a domain service order to a response
func ToServiceOrderResponse(o *trade.ServiceOrder) ServiceOrderResponse {
	var method *string
	if o.PaymentMethod != nil {
		m := o.PaymentMethod.String()
		method = &m
	}
	return ServiceOrderResponse{
		ID:             o.ID,
		Number:         o.Number,
		CustomerID:     o.CustomerID,
		BudgetID:       o.BudgetID,
		Status:         o.Status.String(),
		Priority:       string(o.Priority),
		Description:    o.Description,
		Items:          ToLineItemResponses(o.Items),
		ProductsAmount: o.ProductsAmount,
		ServicesAmount: o.ServicesAmount,
		FreightAmount:  o.FreightAmount,
		OthersAmount:   o.OthersAmount,
		DiscountAmount: o.DiscountAmount,
		TotalAmount:    o.TotalAmount,
		Paid:           o.Paid,
		PaidAt:         o.PaidAt,
		PaymentMethod:  method,
		DeliveredAt:    o.DeliveredAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Version:        o.Version,
	}
}

// ============================================================================
// Sales
// ============================================================================

// CreateSaleInput represents a point-of-sale transaction
type CreateSaleInput struct {
	SellerID      uuid.UUID          `json:"-"`
	CustomerID    *uuid.UUID         `json:"customer_id"`
	PaymentMethod string             `json:"payment_method"`
	Items         []AddLineItemInput `json:"items" binding:"required,min=1"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID              uuid.UUID                `json:"id"`
	Number          string                   `json:"number"`
	SellerID        uuid.UUID                `json:"seller_id"`
	CustomerID      *uuid.UUID               `json:"customer_id,omitempty"`
	BudgetID        *uuid.UUID               `json:"budget_id,omitempty"`
	Items           []LineItemResponse       `json:"items"`
	TotalAmount     decimal.Decimal          `json:"total_amount"`
	Paid            bool                     `json:"paid"`
	PaidAt          *time.Time               `json:"paid_at,omitempty"`
	PaymentMethod   string                   `json:"payment_method"`
	FinancialRecord *FinancialRecordResponse `json:"financial_record,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

// ToSaleResponse converts a domain sale to a response
func ToSaleResponse(s *trade.Sale) SaleResponse {
	return SaleResponse{
		ID:            s.ID,
		Number:        s.Number,
		SellerID:      s.SellerID,
		CustomerID:    s.CustomerID,
		BudgetID:      s.BudgetID,
		Items:         ToLineItemResponses(s.Items),
		TotalAmount:   s.TotalAmount,
		Paid:          s.Paid,
		PaidAt:        s.PaidAt,
		PaymentMethod: s.PaymentMethod.String(),
		CreatedAt:     s.CreatedAt,
	}
}

// ============================================================================
// Conversions
// ============================================================================

// ConvertToSaleInput represents a budget-to-sale conversion request
type ConvertToSaleInput struct {
	BudgetID      uuid.UUID
	ActorID       uuid.UUID
	PaymentMethod string
}

// ConvertToOrderResult is returned by a budget-to-order conversion
type ConvertToOrderResult struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// ConvertToSaleResult is returned by a budget-to-sale conversion
type ConvertToSaleResult struct {
	SaleID            uuid.UUID `json:"sale_id"`
	SaleNumber        string    `json:"sale_number"`
	FinancialRecordID uuid.UUID `json:"financial_record_id"`
}

// ============================================================================
// Financial records
// ============================================================================

// PostFinancialRecordInput represents a standalone ledger posting
type PostFinancialRecordInput struct {
	ContainerKind string          `json:"container_kind" binding:"required,oneof=SERVICE_ORDER SALE"`
	ContainerID   uuid.UUID       `json:"container_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Paid          bool            `json:"paid"`
	PaidAt        *time.Time      `json:"paid_at"`
}

// FinancialRecordResponse represents a financial record in API responses
type FinancialRecordResponse struct {
	ID             uuid.UUID       `json:"id"`
	Type           string          `json:"type"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"payment_method"`
	Paid           bool            `json:"paid"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	ServiceOrderID *uuid.UUID      `json:"service_order_id,omitempty"`
	SaleID         *uuid.UUID      `json:"sale_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToFinancialRecordResponse converts a domain financial record to a response
func ToFinancialRecordResponse(r *finance.FinancialRecord) *FinancialRecordResponse {
	if r == nil {
		return nil
	}
	return &FinancialRecordResponse{
		ID:             r.ID,
		Type:           string(r.Type),
		Description:    r.Description,
		Amount:         r.Amount,
		PaymentMethod:  r.PaymentMethod.String(),
		Paid:           r.Paid,
		PaidAt:         r.PaidAt,
		ServiceOrderID: r.Source.ServiceOrderID,
		SaleID:         r.Source.SaleID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
