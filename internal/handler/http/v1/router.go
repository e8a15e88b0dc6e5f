package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check, без аутентификации
	api.GET("/system/health", h.healthCheck)

	secured := api.Group("", APIKeyAuthMiddleware(h.cfg, h.logger))

	// Маршруты для управления рабочими зонами (CRUD)
	zones := secured.Group("/zones")
	{
		zones.POST("", h.createZone)
		zones.GET("", h.listZones)
		zones.GET("/:id", h.getZone)
		zones.PUT("/:id", h.updateZone)
		zones.DELETE("/:id", h.deleteZone)
	}

	// Наблюдение за агентами
	agents := secured.Group("/agents/:agentID")
	{
		agents.POST("/monitoring", h.startMonitoring)
		agents.DELETE("/monitoring/:zoneID", h.stopMonitoring)
		agents.POST("/positions", h.reportPosition)
		agents.GET("/status", h.getStatus)
	}

	secured.GET("/alerts", h.listAlerts)
	secured.GET("/positions/stats", h.getStats)
}
