package v1

import (
	"time"

	"github.com/google/uuid"
)

// CreateZoneRequest DTO для создания рабочей зоны
// @Description DTO для создания рабочей зоны
type CreateZoneRequest struct {
	Label        string   `json:"label" validate:"required,min=2,max=255"`
	Latitude     *float64 `json:"latitude" validate:"required,latitude"`
	Longitude    *float64 `json:"longitude" validate:"required,longitude"`
	RadiusMeters float64  `json:"radius_meters" validate:"required,gt=0"`
}

// UpdateZoneRequest DTO для обновления рабочей зоны
// @Description DTO для обновления рабочей зоны
type UpdateZoneRequest struct {
	Label        string   `json:"label" validate:"required,min=2,max=255"`
	Latitude     *float64 `json:"latitude" validate:"required,latitude"`
	Longitude    *float64 `json:"longitude" validate:"required,longitude"`
	RadiusMeters float64  `json:"radius_meters" validate:"required,gt=0"`
	Status       string   `json:"status" validate:"required,oneof=active inactive"`
}

// ZoneResponse DTO для ответа с информацией о зоне
// @Description DTO для ответа с информацией о зоне
type ZoneResponse struct {
	ID           uuid.UUID `json:"id"`
	Label        string    `json:"label"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radius_meters"`
	Geohash      string    `json:"geohash"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StartMonitoringRequest DTO для включения наблюдения
// @Description DTO для включения наблюдения
type StartMonitoringRequest struct {
	ZoneID           string `json:"zone_id" validate:"required,uuid"`
	// Не больше суток
	DwellThresholdMs int64  `json:"dwell_threshold_ms,omitempty" validate:"omitempty,gt=0,max=86400000"`
}

// PositionReportRequest DTO позиции агента. Без координат - нет фиксации.
// @Description DTO позиции агента
type PositionReportRequest struct {
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty" validate:"omitempty,gte=0"`
}

// MonitoringStatusResponse DTO состояния наблюдения
// @Description DTO состояния наблюдения
type MonitoringStatusResponse struct {
	AgentID                string    `json:"agent_id"`
	ZoneID                 uuid.UUID `json:"zone_id"`
	ZoneLabel              string    `json:"zone_label"`
	Enabled                bool      `json:"enabled"`
	DwellThresholdMs       int64     `json:"dwell_threshold_ms"`
	Outside                bool      `json:"outside"`
	DistanceMeters         *float64  `json:"distance_meters,omitempty"`
	OutsideSinceDurationMs *int64    `json:"outside_since_duration_ms,omitempty"`
	AlertRaised            bool      `json:"alert_raised"`
}

// AlertResponse DTO уведомления о выходе из зоны
// @Description DTO уведомления о выходе из зоны
type AlertResponse struct {
	ID             uuid.UUID `json:"id"`
	AgentID        string    `json:"agent_id"`
	ZoneID         uuid.UUID `json:"zone_id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Severity       string    `json:"severity"`
	DistanceMeters float64   `json:"distance_meters"`
	OutsideForMs   int64     `json:"outside_for_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	AgentCount int `json:"agent_count"`
}
