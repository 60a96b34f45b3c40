package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/pharmos/backend/internal/application/catalog"
	"github.com/pharmos/backend/internal/domain/catalog"
	domainidentity "github.com/pharmos/backend/internal/domain/identity"
	"github.com/pharmos/backend/internal/interfaces/http/dto"
	"github.com/pharmos/backend/internal/interfaces/http/middleware"
)

// MedicineHandler exposes the medicine catalog endpoints.
type MedicineHandler struct {
	BaseHandler
	medicineService *catalogapp.MedicineService
}

func NewMedicineHandler(medicineService *catalogapp.MedicineService) *MedicineHandler {
	return &MedicineHandler{medicineService: medicineService}
}

// CreateMedicineRequest creates a catalog item. UnitPrice is a decimal
// string so the amount survives JSON intact.
type CreateMedicineRequest struct {
	Name         string     `json:"name" binding:"required,max=200"`
	Code         string     `json:"code" binding:"required,max=64"`
	Category     string     `json:"category" binding:"required,oneof=PRESCRIPTION OTC SUPPLEMENT EQUIPMENT OTHER"`
	UnitPrice    string     `json:"unit_price" binding:"required"`
	ReorderLevel int64      `json:"reorder_level" binding:"gte=0"`
	ExpiryDate   *time.Time `json:"expiry_date"`
}

// RestockRequest adds stock to a medicine.
type RestockRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// UpdatePriceRequest changes a medicine's unit price.
type UpdatePriceRequest struct {
	UnitPrice string `json:"unit_price" binding:"required"`
}

func (h *MedicineHandler) RegisterRoutes(rg *gin.RouterGroup) {
	writers := middleware.RequireRole(
		string(domainidentity.RoleAdmin),
		string(domainidentity.RolePharmacist),
	)

	medicines := rg.Group("/medicines")
	{
		medicines.POST("", writers, h.Create)
		medicines.GET("", h.List)
		medicines.GET("/low-stock", h.ListLowStock)
		medicines.GET("/:id", h.GetByID)
		medicines.POST("/:id/restock", writers, h.Restock)
		medicines.PUT("/:id/price", writers, h.UpdatePrice)
	}
}

func (h *MedicineHandler) Create(c *gin.Context) {
	tenantID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	medicine, err := h.medicineService.Create(c.Request.Context(), tenantID, actorID, catalogapp.CreateMedicineRequest{
		Name:         req.Name,
		Code:         req.Code,
		Category:     catalog.MedicineCategory(req.Category),
		UnitPrice:    req.UnitPrice,
		ReorderLevel: req.ReorderLevel,
		ExpiryDate:   req.ExpiryDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, medicine)
}

func (h *MedicineHandler) List(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	items, total, err := h.medicineService.List(c.Request.Context(), tenantID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// ListLowStock returns medicines at or below their reorder level.
func (h *MedicineHandler) ListLowStock(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	items, err := h.medicineService.ListBelowReorderLevel(c.Request.Context(), tenantID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

func (h *MedicineHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid medicine id")
		return
	}

	medicine, err := h.medicineService.GetByID(c.Request.Context(), tenantID, req.UUID())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, medicine)
}

func (h *MedicineHandler) Restock(c *gin.Context) {
	tenantID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "invalid medicine id")
		return
	}

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	medicine, err := h.medicineService.Restock(c.Request.Context(), tenantID, actorID, idReq.UUID(), req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, medicine)
}

func (h *MedicineHandler) UpdatePrice(c *gin.Context) {
	tenantID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "invalid medicine id")
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	medicine, err := h.medicineService.UpdatePrice(c.Request.Context(), tenantID, actorID, idReq.UUID(), req.UnitPrice)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, medicine)
}
