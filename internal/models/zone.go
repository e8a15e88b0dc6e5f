package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ZoneStatusActive   = "active"
	ZoneStatusInactive = "inactive"
)

// GeoPoint - точка в градусах WGS84
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WorkZone - круговая рабочая зона агента
type WorkZone struct {
	ID           uuid.UUID `json:"id"`
	Label        string    `json:"label"`
	Center       GeoPoint  `json:"center"`
	RadiusMeters float64   `json:"radius_meters"`
	Geohash      string    `json:"geohash"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
