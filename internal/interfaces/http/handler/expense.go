package handler

import (
	"github.com/gin-gonic/gin"

	budgetapp "github.com/pharmos/backend/internal/application/budget"
	domainidentity "github.com/pharmos/backend/internal/domain/identity"
	"github.com/pharmos/backend/internal/interfaces/http/dto"
	"github.com/pharmos/backend/internal/interfaces/http/middleware"
)

// ExpenseHandler exposes expense submission and the approval workflow.
type ExpenseHandler struct {
	BaseHandler
	expenseService *budgetapp.ExpenseService
}

func NewExpenseHandler(expenseService *budgetapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest submits an expense for approval.
type CreateExpenseRequest struct {
	Category    string `json:"category" binding:"required,max=100"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description" binding:"max=500"`
}

func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	approvers := middleware.RequireRole(string(domainidentity.RoleAdmin))

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.Create)
		expenses.GET("", h.List)
		expenses.POST("/:id/approve", approvers, h.Approve)
		expenses.POST("/:id/reject", approvers, h.Reject)
	}
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	tenantID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), tenantID, actorID, budgetapp.CreateExpenseRequest{
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

func (h *ExpenseHandler) List(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	expenses, err := h.expenseService.List(c.Request.Context(), tenantID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expenses)
}

func (h *ExpenseHandler) Approve(c *gin.Context) {
	tenantID, approverID, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid expense id")
		return
	}

	expense, err := h.expenseService.Approve(c.Request.Context(), tenantID, approverID, req.UUID())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

func (h *ExpenseHandler) Reject(c *gin.Context) {
	tenantID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid expense id")
		return
	}

	expense, err := h.expenseService.Reject(c.Request.Context(), tenantID, actorID, req.UUID())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}
