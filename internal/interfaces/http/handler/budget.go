package handler

import (
	"github.com/gin-gonic/gin"

	budgetapp "github.com/pharmos/backend/internal/application/budget"
	domainidentity "github.com/pharmos/backend/internal/domain/identity"
	"github.com/pharmos/backend/internal/interfaces/http/dto"
	"github.com/pharmos/backend/internal/interfaces/http/middleware"
)

// BudgetHandler exposes monthly budget endpoints.
type BudgetHandler struct {
	BaseHandler
	budgetService *budgetapp.BudgetService
}

func NewBudgetHandler(budgetService *budgetapp.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest allocates a monthly budget for a category.
type CreateBudgetRequest struct {
	Year      int    `json:"year" binding:"required,gte=2000,lte=2200"`
	Month     int    `json:"month" binding:"required,gte=1,lte=12"`
	Category  string `json:"category" binding:"required,max=100"`
	Allocated string `json:"allocated" binding:"required"`
}

func (h *BudgetHandler) RegisterRoutes(rg *gin.RouterGroup) {
	budgets := rg.Group("/budgets")
	{
		budgets.POST("", middleware.RequireRole(string(domainidentity.RoleAdmin)), h.Create)
		budgets.GET("", h.List)
		budgets.GET("/:id", h.GetByID)
	}
}

func (h *BudgetHandler) Create(c *gin.Context) {
	tenantID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	budget, err := h.budgetService.Create(c.Request.Context(), tenantID, actorID, budgetapp.CreateBudgetRequest{
		Year:      req.Year,
		Month:     req.Month,
		Category:  req.Category,
		Allocated: req.Allocated,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, budget)
}

func (h *BudgetHandler) List(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	budgets, err := h.budgetService.List(c.Request.Context(), tenantID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, budgets)
}

func (h *BudgetHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid budget id")
		return
	}

	budget, err := h.budgetService.GetByID(c.Request.Context(), tenantID, req.UUID())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, budget)
}
