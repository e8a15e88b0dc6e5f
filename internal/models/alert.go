package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SeverityHigh = "high"
)

// ZoneAlert - уведомление о длительном выходе агента из рабочей зоны
type ZoneAlert struct {
	ID             uuid.UUID     `json:"id"`
	AgentID        string        `json:"agent_id"`
	ZoneID         uuid.UUID     `json:"zone_id"`
	Title          string        `json:"title"`
	Message        string        `json:"message"`
	Severity       string        `json:"severity"`
	DistanceMeters float64       `json:"distance_meters"`
	OutsideFor     time.Duration `json:"outside_for"`
	CreatedAt      time.Time     `json:"created_at"`
}
