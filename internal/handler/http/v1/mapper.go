package v1

import (
	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
	"github.com/DigitariaWebs/Safyr-sub007/internal/monitor"
)

// DTOToZoneModel преобразует DTO создания/обновления в доменную модель.
// Используем одну функцию, так как поля совпадают.
func DTOToZoneModel(dto any) *models.WorkZone {
	switch v := dto.(type) {
	case CreateZoneRequest:
		return &models.WorkZone{
			Label:        v.Label,
			Center:       models.GeoPoint{Latitude: *v.Latitude, Longitude: *v.Longitude},
			RadiusMeters: v.RadiusMeters,
		}
	case UpdateZoneRequest:
		return &models.WorkZone{
			Label:        v.Label,
			Center:       models.GeoPoint{Latitude: *v.Latitude, Longitude: *v.Longitude},
			RadiusMeters: v.RadiusMeters,
			Status:       v.Status,
		}
	}
	return nil
}

// ModelToZoneResponse преобразует доменную модель в DTO для ответа
func ModelToZoneResponse(model *models.WorkZone) *ZoneResponse {
	return &ZoneResponse{
		ID:           model.ID,
		Label:        model.Label,
		Latitude:     model.Center.Latitude,
		Longitude:    model.Center.Longitude,
		RadiusMeters: model.RadiusMeters,
		Geohash:      model.Geohash,
		Status:       model.Status,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// ModelsToZoneResponses преобразует слайс моделей в слайс DTO
func ModelsToZoneResponses(zones []*models.WorkZone) []*ZoneResponse {
	responses := make([]*ZoneResponse, len(zones))
	for i, zone := range zones {
		responses[i] = ModelToZoneResponse(zone)
	}
	return responses
}

// DTOToPosition возвращает nil, если координаты не переданы
func DTOToPosition(dto PositionReportRequest) *monitor.Position {
	if dto.Latitude == nil || dto.Longitude == nil {
		return nil
	}
	return &monitor.Position{
		Point:    models.GeoPoint{Latitude: *dto.Latitude, Longitude: *dto.Longitude},
		Accuracy: dto.Accuracy,
	}
}

func ModelToStatusResponse(status *models.MonitoringStatus) *MonitoringStatusResponse {
	resp := &MonitoringStatusResponse{
		AgentID:          status.AgentID,
		ZoneID:           status.ZoneID,
		ZoneLabel:        status.ZoneLabel,
		Enabled:          status.Enabled,
		DwellThresholdMs: status.DwellThreshold.Milliseconds(),
		Outside:          status.Outside,
		DistanceMeters:   status.DistanceMeters,
		AlertRaised:      status.AlertRaised,
	}
	if status.OutsideFor != nil {
		ms := status.OutsideFor.Milliseconds()
		resp.OutsideSinceDurationMs = &ms
	}
	return resp
}

func ModelsToStatusResponses(statuses []*models.MonitoringStatus) []*MonitoringStatusResponse {
	responses := make([]*MonitoringStatusResponse, len(statuses))
	for i, status := range statuses {
		responses[i] = ModelToStatusResponse(status)
	}
	return responses
}

func ModelsToAlertResponses(alerts []*models.ZoneAlert) []*AlertResponse {
	responses := make([]*AlertResponse, len(alerts))
	for i, alert := range alerts {
		responses[i] = &AlertResponse{
			ID:             alert.ID,
			AgentID:        alert.AgentID,
			ZoneID:         alert.ZoneID,
			Title:          alert.Title,
			Message:        alert.Message,
			Severity:       alert.Severity,
			DistanceMeters: alert.DistanceMeters,
			OutsideForMs:   alert.OutsideFor.Milliseconds(),
			CreatedAt:      alert.CreatedAt,
		}
	}
	return responses
}
