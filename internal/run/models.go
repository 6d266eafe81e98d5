package run

import "time"

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

type Run struct {
	ID        string     `json:"id"`
	BikeID    string     `json:"bike_id"`
	OwnerID   string     `json:"owner_id"`
	Name      string     `json:"name,omitempty"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
