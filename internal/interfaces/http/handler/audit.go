package handler

import (
	"github.com/gin-gonic/gin"

	auditapp "github.com/pharmos/backend/internal/application/audit"
	domainidentity "github.com/pharmos/backend/internal/domain/identity"
	"github.com/pharmos/backend/internal/interfaces/http/dto"
	"github.com/pharmos/backend/internal/interfaces/http/middleware"
)

// AuditHandler exposes the audit trail, admin-only.
type AuditHandler struct {
	BaseHandler
	recorder *auditapp.Recorder
}

func NewAuditHandler(recorder *auditapp.Recorder) *AuditHandler {
	return &AuditHandler{recorder: recorder}
}

func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	audit := rg.Group("/audit", middleware.RequireRole(string(domainidentity.RoleAdmin)))
	{
		audit.GET("", h.List)
	}
}

func (h *AuditHandler) List(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	entries, err := h.recorder.List(c.Request.Context(), tenantID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
