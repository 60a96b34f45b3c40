package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	salesapp "github.com/pharmos/backend/internal/application/sales"
	"github.com/pharmos/backend/internal/domain/sales"
	"github.com/pharmos/backend/internal/interfaces/http/dto"
)

// OrderHandler exposes checkout and order lookup endpoints.
type OrderHandler struct {
	BaseHandler
	orderService *salesapp.OrderService
}

func NewOrderHandler(orderService *salesapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CheckoutLineRequest is one cart line.
type CheckoutLineRequest struct {
	MedicineID string `json:"medicine_id" binding:"required,uuid"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest submits a cart. Lines may be empty when a share code
// is supplied; the resolved prescription supplies the lines instead.
type CheckoutRequest struct {
	CustomerID      *string               `json:"customer_id" binding:"omitempty,uuid"`
	ShareCode       *string               `json:"share_code"`
	PaymentMethod   string                `json:"payment_method" binding:"required,oneof=CASH CARD INSURANCE MOBILE"`
	PaymentStatus   string                `json:"payment_status" binding:"omitempty,oneof=PAID PENDING CANCELLED"`
	Lines           []CheckoutLineRequest `json:"lines" binding:"dive"`
	ExpenseCategory string                `json:"expense_category"`
}

func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("/checkout", h.Checkout)
		orders.GET("", h.List)
		orders.GET("/:id", h.GetByID)
	}
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	tenantID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	input := salesapp.CheckoutRequest{
		ShareCode:       req.ShareCode,
		PaymentMethod:   sales.PaymentMethod(req.PaymentMethod),
		PaymentStatus:   sales.PaymentStatus(req.PaymentStatus),
		ExpenseCategory: req.ExpenseCategory,
	}
	if req.PaymentStatus == "" {
		input.PaymentStatus = sales.PaymentStatusPaid
	}
	if req.CustomerID != nil {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			h.BadRequest(c, "invalid customer id")
			return
		}
		input.CustomerID = &id
	}
	for _, line := range req.Lines {
		medicineID, err := uuid.Parse(line.MedicineID)
		if err != nil {
			h.BadRequest(c, "invalid medicine id in lines")
			return
		}
		input.Lines = append(input.Lines, salesapp.CheckoutLineInput{
			MedicineID: medicineID,
			Quantity:   line.Quantity,
		})
	}

	result, err := h.orderService.Checkout(c.Request.Context(), tenantID, actorID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

func (h *OrderHandler) List(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), tenantID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, req.Page, req.PageSize)
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), tenantID, req.UUID())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
