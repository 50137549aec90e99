package models

import (
	"time"

	"github.com/google/uuid"
)

// LifecycleEventType classifies an on-farm event recorded against a batch.
type LifecycleEventType string

const (
	LifecycleEventVaccination       LifecycleEventType = "VACCINATION"
	LifecycleEventMedication        LifecycleEventType = "MEDICATION"
	LifecycleEventMortality         LifecycleEventType = "MORTALITY"
	LifecycleEventWeightMeasurement LifecycleEventType = "WEIGHT_MEASUREMENT"
	LifecycleEventGeneric           LifecycleEventType = "GENERIC"
)

// LifecycleEventTypes lists the accepted event types.
var LifecycleEventTypes = []LifecycleEventType{
	LifecycleEventVaccination,
	LifecycleEventMedication,
	LifecycleEventMortality,
	LifecycleEventWeightMeasurement,
	LifecycleEventGeneric,
}

// LifecycleEvent is an append-only timeline entry. It is created once and
// never updated or deleted; only its sync fields change afterwards.
type LifecycleEvent struct {
	ID               uuid.UUID          `json:"id" db:"id"`
	BatchID          uuid.UUID          `json:"batch_id" db:"batch_id"`
	EventType        LifecycleEventType `json:"event_type" db:"event_type"`
	Description      string             `json:"description" db:"description"`
	EventDate        time.Time          `json:"event_date" db:"event_date"`
	QuantityAffected *int               `json:"quantity_affected,omitempty" db:"quantity_affected"`
	RecordedBy       string             `json:"recorded_by" db:"recorded_by"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
	SyncFields
}

// TableName returns the database table name
func (LifecycleEvent) TableName() string {
	return "lifecycle_events"
}

// RecordLifecycleEventRequest is the request body for recording an event
type RecordLifecycleEventRequest struct {
	EventType        LifecycleEventType `json:"event_type" validate:"required"`
	Description      string             `json:"description" validate:"required"`
	EventDate        time.Time          `json:"event_date" validate:"required"`
	QuantityAffected *int               `json:"quantity_affected,omitempty"`
}

// LifecycleEventResponse is the API response for lifecycle event operations
type LifecycleEventResponse struct {
	LifecycleEvent
}

// LifecycleEventListResponse is the API response for batch-scoped listings
type LifecycleEventListResponse struct {
	Items      []LifecycleEvent `json:"items"`
	TotalCount int              `json:"total_count"`
}
