package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmos/backend/internal/infrastructure/persistence"
	"github.com/pharmos/backend/internal/interfaces/http/dto"
)

// SystemHandler serves health and liveness endpoints. These are on the
// JWT middleware's skip list so load balancers can probe unauthenticated.
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{db: db, startTime: time.Now()}
}

// HealthResponse reports process liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// ReadyResponse reports dependency readiness.
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// RegisterRoutes wires the probes at the API root, outside /api/v1.
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/ready", h.Ready)
}

// Health is a liveness probe; it never touches dependencies.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// Ready is a readiness probe; it fails when the database is unreachable.
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(ReadyResponse{
				Status:   "degraded",
				Database: "unreachable",
			}))
			return
		}
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(ReadyResponse{
		Status:   "ok",
		Database: "ok",
	}))
}
