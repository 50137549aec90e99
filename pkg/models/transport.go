package models

import (
	"time"

	"github.com/google/uuid"
)

// TransportStatus is the lifecycle status of a transport manifest.
type TransportStatus string

const (
	TransportStatusCreated   TransportStatus = "CREATED"
	TransportStatusInTransit TransportStatus = "IN_TRANSIT"
	TransportStatusCompleted TransportStatus = "COMPLETED"
)

// Transport is a shipment of a batch between two parties.
type Transport struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	BatchID              uuid.UUID       `json:"batch_id" db:"batch_id"`
	FromPartyID          string          `json:"from_party_id" db:"from_party_id"`
	ToPartyID            string          `json:"to_party_id" db:"to_party_id"`
	VehicleID            string          `json:"vehicle_id" db:"vehicle_id"`
	DriverName           string          `json:"driver_name" db:"driver_name"`
	DepartureTime        time.Time       `json:"departure_time" db:"departure_time"`
	ArrivalTime          *time.Time      `json:"arrival_time,omitempty" db:"arrival_time"`
	OriginLocation       string          `json:"origin_location" db:"origin_location"`
	DestinationLocation  string          `json:"destination_location" db:"destination_location"`
	TemperatureMonitored bool            `json:"temperature_monitored" db:"temperature_monitored"`
	Status               TransportStatus `json:"status" db:"status"`
	Notes                *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
	SyncFields
}

// TableName returns the database table name
func (Transport) TableName() string {
	return "transports"
}

// CreateTransportRequest is the request body for creating a transport
type CreateTransportRequest struct {
	BatchID              uuid.UUID `json:"batch_id" validate:"required"`
	FromPartyID          string    `json:"from_party_id" validate:"required"`
	ToPartyID            string    `json:"to_party_id" validate:"required"`
	VehicleID            string    `json:"vehicle_id" validate:"required"`
	DriverName           string    `json:"driver_name" validate:"required"`
	DepartureTime        time.Time `json:"departure_time" validate:"required"`
	OriginLocation       string    `json:"origin_location" validate:"required"`
	DestinationLocation  string    `json:"destination_location" validate:"required"`
	TemperatureMonitored bool      `json:"temperature_monitored"`
	Notes                *string   `json:"notes,omitempty"`
}

// UpdateTransportStatusRequest is the request body for a transport status
// transition. ArrivalTime is persisted together with the COMPLETED status.
type UpdateTransportStatusRequest struct {
	Status      TransportStatus `json:"status" validate:"required"`
	ArrivalTime *time.Time      `json:"arrival_time,omitempty"`
}

// TransportResponse is the API response for transport operations
type TransportResponse struct {
	Transport
}

// TransportListResponse is the API response for listing transports
type TransportListResponse struct {
	Items      []Transport `json:"items"`
	TotalCount int         `json:"total_count"`
}
