package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cosmetia/cosmetia/pkg/health"
	"github.com/cosmetia/cosmetia/pkg/version"
)

// SystemHandler serves the liveness, readiness and version endpoints.
type SystemHandler struct {
	serviceName string
	registry    *health.Registry
}

// NewSystemHandler creates the system endpoints handler.
func NewSystemHandler(serviceName string, registry *health.Registry) *SystemHandler {
	return &SystemHandler{serviceName: serviceName, registry: registry}
}

// Healthz handles GET /healthz. Liveness only: the process is up.
func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": health.StatusHealthy})
}

// Readyz handles GET /readyz by probing every registered dependency.
func (h *SystemHandler) Readyz(c *gin.Context) {
	result := h.registry.Check(c.Request.Context())
	status := http.StatusOK
	if result.Status != health.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}

// Version handles GET /version.
func (h *SystemHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Current(h.serviceName))
}
