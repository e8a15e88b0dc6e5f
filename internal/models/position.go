package models

import (
	"time"
)

// AgentPosition представляет запись о полученной позиции агента
type AgentPosition struct {
	ID        int64     `json:"id"`
	AgentID   string    `json:"agent_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Outside   bool      `json:"outside"`
	CheckedAt time.Time `json:"checked_at"`
}
