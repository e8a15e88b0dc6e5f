package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrZoneInactive возвращается при попытке наблюдения за деактивированной зоной
var ErrZoneInactive = errors.New("work zone is inactive")

// ErrSessionNotFound - для агента нет наблюдения по указанной зоне
var ErrSessionNotFound = errors.New("monitoring session not found")

// MonitoringStatus - текущее состояние наблюдения агента в зоне
type MonitoringStatus struct {
	AgentID        string
	ZoneID         uuid.UUID
	ZoneLabel      string
	Enabled        bool
	DwellThreshold time.Duration
	Outside        bool
	DistanceMeters *float64
	OutsideFor     *time.Duration
	AlertRaised    bool
}
