package models

import (
	"time"

	"github.com/google/uuid"
)

// TemperatureLog is an append-only cold-chain reading for a transport.
// IsViolation is derived at creation from the safe range and never changes.
type TemperatureLog struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TransportID uuid.UUID `json:"transport_id" db:"transport_id"`
	Temperature float64   `json:"temperature" db:"temperature"`
	RecordedAt  time.Time `json:"recorded_at" db:"recorded_at"`
	Location    string    `json:"location" db:"location"`
	IsViolation bool      `json:"is_violation" db:"is_violation"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	SyncFields
}

// TableName returns the database table name
func (TemperatureLog) TableName() string {
	return "temperature_logs"
}

// RecordTemperatureRequest is the request body for recording a reading
type RecordTemperatureRequest struct {
	Temperature float64   `json:"temperature"`
	RecordedAt  time.Time `json:"recorded_at" validate:"required"`
	Location    string    `json:"location" validate:"required"`
}

// TemperatureLogResponse is the API response for temperature log operations
type TemperatureLogResponse struct {
	TemperatureLog
}

// TemperatureLogListResponse is the API response for transport-scoped
// listings
type TemperatureLogListResponse struct {
	Items      []TemperatureLog `json:"items"`
	TotalCount int              `json:"total_count"`
}
