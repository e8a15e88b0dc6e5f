package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/DigitariaWebs/Safyr-sub007/internal/config"
	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
	"github.com/DigitariaWebs/Safyr-sub007/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	zoneService     service.ZoneService
	trackingService service.TrackingService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(zoneService service.ZoneService, trackingService service.TrackingService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		zoneService:     zoneService,
		trackingService: trackingService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Create a new work zone
// @Description Create a circular work zone. Requires API key.
// @Tags Zones
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param zone body CreateZoneRequest true "Work zone creation request"
// @Success 201 {object} ZoneResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /zones [post]
func (h *Handler) createZone(c *gin.Context) {
	var input CreateZoneRequest
	log := h.logger.WithField("method", "createZone")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	model := DTOToZoneModel(input)
	if err := h.zoneService.CreateZone(c.Request.Context(), model); err != nil {
		log.WithError(err).Error("Failed to create work zone in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, ModelToZoneResponse(model))
}

// @Summary Get a list of work zones
// @Description Get a paginated list of work zones. Requires API key.
// @Tags Zones
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(10)
// @Success 200 {array} ZoneResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /zones [get]
func (h *Handler) listZones(c *gin.Context) {
	log := h.logger.WithField("method", "listZones")
	page, pageSize := pagination(c)

	zones, err := h.zoneService.ListZones(c.Request.Context(), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list work zones from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToZoneResponses(zones))
}

// @Summary Get work zone by ID
// @Description Get a single work zone by its ID. Requires API key.
// @Tags Zones
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Zone ID"
// @Success 200 {object} ZoneResponse
// @Failure 400 {object} map[string]string "Invalid zone ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Zone not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /zones/{id} [get]
func (h *Handler) getZone(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "invalid zone ID")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getZone").WithField("id", id)

	zone, err := h.zoneService.GetZone(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToZoneResponse(zone))
}

// @Summary Update an existing work zone
// @Description Update a work zone by ID. Requires API key.
// @Tags Zones
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Zone ID"
// @Param zone body UpdateZoneRequest true "Work zone update request"
// @Success 200 {object} ZoneResponse
// @Failure 400 {object} map[string]string "Invalid zone ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Zone not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /zones/{id} [put]
func (h *Handler) updateZone(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "invalid zone ID")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateZone").WithField("id", id)

	var input UpdateZoneRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	model := DTOToZoneModel(input)
	model.ID = id

	if err := h.zoneService.UpdateZone(c.Request.Context(), model); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToZoneResponse(model))
}

// @Summary Deactivate a work zone
// @Description Mark a work zone as inactive. Requires API key.
// @Tags Zones
// @Security ApiKeyAuth
// @Param id path string true "Zone ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid zone ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Zone not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /zones/{id} [delete]
func (h *Handler) deleteZone(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "invalid zone ID")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteZone").WithField("id", id)

	if err := h.zoneService.DeactivateZone(c.Request.Context(), id); err != nil {
		h.respondError(c, log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Start monitoring an agent in a work zone
// @Description Enable dwell-time monitoring for an agent against a zone. Requires API key.
// @Tags Monitoring
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param agentID path string true "Agent ID"
// @Param request body StartMonitoringRequest true "Monitoring request"
// @Success 200 {object} MonitoringStatusResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Zone not found"
// @Failure 409 {object} map[string]string "Zone inactive"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /agents/{agentID}/monitoring [post]
func (h *Handler) startMonitoring(c *gin.Context) {
	agentID := c.Param("agentID")
	log := h.logger.WithField("method", "startMonitoring").WithField("agent_id", agentID)

	var input StartMonitoringRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}
	zoneID, err := uuid.Parse(input.ZoneID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid zone ID"})
		return
	}
	threshold := time.Duration(input.DwellThresholdMs) * time.Millisecond

	status, err := h.trackingService.StartMonitoring(c.Request.Context(), agentID, zoneID, threshold)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToStatusResponse(status))
}

// @Summary Stop monitoring an agent in a work zone
// @Description Disable monitoring and reset the excursion state. Requires API key.
// @Tags Monitoring
// @Produce json
// @Security ApiKeyAuth
// @Param agentID path string true "Agent ID"
// @Param zoneID path string true "Zone ID"
// @Success 200 {object} MonitoringStatusResponse
// @Failure 400 {object} map[string]string "Invalid zone ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Monitoring session not found"
// @Router /agents/{agentID}/monitoring/{zoneID} [delete]
func (h *Handler) stopMonitoring(c *gin.Context) {
	agentID := c.Param("agentID")
	zoneID, ok := parseUUIDParam(c, "zoneID", "invalid zone ID")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "stopMonitoring").WithField("agent_id", agentID)

	status, err := h.trackingService.StopMonitoring(c.Request.Context(), agentID, zoneID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToStatusResponse(status))
}

// @Summary Report an agent position
// @Description Evaluate a position sample against every zone the agent is monitored in. Omit coordinates to report a lost fix. Requires API key.
// @Tags Monitoring
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param agentID path string true "Agent ID"
// @Param position body PositionReportRequest true "Position sample"
// @Success 200 {array} MonitoringStatusResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /agents/{agentID}/positions [post]
func (h *Handler) reportPosition(c *gin.Context) {
	agentID := c.Param("agentID")
	log := h.logger.WithField("method", "reportPosition").WithField("agent_id", agentID)

	var input PositionReportRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude must be provided together"})
		return
	}

	statuses, err := h.trackingService.ReportPosition(c.Request.Context(), agentID, DTOToPosition(input))
	if err != nil {
		log.WithError(err).Error("Failed to report position in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelsToStatusResponses(statuses))
}

// @Summary Get agent monitoring status
// @Description Current outside/distance/dwell values for every zone the agent is monitored in. Requires API key.
// @Tags Monitoring
// @Produce json
// @Security ApiKeyAuth
// @Param agentID path string true "Agent ID"
// @Success 200 {array} MonitoringStatusResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /agents/{agentID}/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	agentID := c.Param("agentID")
	log := h.logger.WithField("method", "getStatus").WithField("agent_id", agentID)

	statuses, err := h.trackingService.GetStatus(c.Request.Context(), agentID)
	if err != nil {
		log.WithError(err).Error("Failed to get status from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelsToStatusResponses(statuses))
}

// @Summary List work zone alerts
// @Description Paginated dwell-threshold alerts, newest first. Requires API key.
// @Tags Monitoring
// @Produce json
// @Security ApiKeyAuth
// @Param agent_id query string false "Filter by agent"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(10)
// @Success 200 {array} AlertResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "listAlerts")
	page, pageSize := pagination(c)

	alerts, err := h.trackingService.ListAlerts(c.Request.Context(), c.Query("agent_id"), page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list alerts from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelsToAlertResponses(alerts))
}

// @Summary Get position statistics
// @Description Number of distinct agents that reported a position in the stats window. Requires API key.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /positions/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	count, err := h.trackingService.GetStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{AgentCount: count})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) bindAndValidate(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respondError сопоставляет ошибки сервиса с HTTP-статусами
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		log.WithError(err).Warn("Requested resource not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "work zone not found"})
	case errors.Is(err, models.ErrSessionNotFound):
		log.WithError(err).Warn("Monitoring session not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "monitoring session not found"})
	case errors.Is(err, models.ErrZoneInactive):
		log.WithError(err).Warn("Work zone is inactive")
		c.JSON(http.StatusConflict, gin.H{"error": "work zone is inactive"})
	default:
		log.WithError(err).Error("Service call failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parseUUIDParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return uuid.Nil, false
	}
	return id, true
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	return page, pageSize
}
