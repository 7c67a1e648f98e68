package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"session-service/internal/telemetry"
)

// RegisterDebugRoutes mounts diagnostics endpoints when DEBUG_ROUTES is on.
// They stay unregistered in production builds of the config.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}
	router.GET("/debug/audit-test", auditTestHandler(emitter))
}

func auditTestHandler(emitter *telemetry.AuditEmitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
