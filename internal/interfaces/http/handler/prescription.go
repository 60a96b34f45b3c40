package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	prescriptionapp "github.com/pharmos/backend/internal/application/prescription"
	domainidentity "github.com/pharmos/backend/internal/domain/identity"
	"github.com/pharmos/backend/internal/domain/prescription"
	"github.com/pharmos/backend/internal/interfaces/http/dto"
	"github.com/pharmos/backend/internal/interfaces/http/middleware"
)

// PrescriptionHandler manages prescriptions and share code lookups.
type PrescriptionHandler struct {
	BaseHandler
	resolverService *prescriptionapp.ResolverService
}

func NewPrescriptionHandler(resolverService *prescriptionapp.ResolverService) *PrescriptionHandler {
	return &PrescriptionHandler{resolverService: resolverService}
}

// PrescriptionLineRequest is one prescribed medicine.
type PrescriptionLineRequest struct {
	MedicineID string `json:"medicine_id" binding:"required,uuid"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
}

// CreatePrescriptionRequest issues a prescription with a fresh share code.
type CreatePrescriptionRequest struct {
	PatientID string                    `json:"patient_id" binding:"required,uuid"`
	Lines     []PrescriptionLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ResolveRequest binds a share code path parameter.
type ResolveRequest struct {
	Code string `uri:"code" binding:"required"`
}

func (h *PrescriptionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pharmacists := middleware.RequireRole(
		string(domainidentity.RoleAdmin),
		string(domainidentity.RolePharmacist),
	)

	prescriptions := rg.Group("/prescriptions")
	{
		prescriptions.POST("", pharmacists, h.Create)
		prescriptions.GET("/:id", h.GetByID)
		prescriptions.POST("/:id/revoke", pharmacists, h.Revoke)
		prescriptions.GET("/resolve/:code", h.Resolve)
	}
}

func (h *PrescriptionHandler) Create(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		h.BadRequest(c, "invalid patient id")
		return
	}

	lines := make([]prescription.Line, 0, len(req.Lines))
	for _, line := range req.Lines {
		medicineID, err := uuid.Parse(line.MedicineID)
		if err != nil {
			h.BadRequest(c, "invalid medicine id in lines")
			return
		}
		lines = append(lines, prescription.Line{
			MedicineID: medicineID,
			Quantity:   line.Quantity,
		})
	}

	created, err := h.resolverService.Create(c.Request.Context(), tenantID, patientID, lines)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Resolve looks up an active prescription by share code without
// claiming it; the code is only consumed by a committing checkout.
func (h *PrescriptionHandler) Resolve(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid share code")
		return
	}

	resolved, err := h.resolverService.Resolve(c.Request.Context(), tenantID, req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resolved)
}

func (h *PrescriptionHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid prescription id")
		return
	}

	found, err := h.resolverService.GetByID(c.Request.Context(), tenantID, req.UUID())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, found)
}

func (h *PrescriptionHandler) Revoke(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "invalid prescription id")
		return
	}

	if err := h.resolverService.Revoke(c.Request.Context(), tenantID, req.UUID()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
