package models

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus is the lifecycle status of a batch.
type BatchStatus string

const (
	BatchStatusCreated    BatchStatus = "CREATED"
	BatchStatusInProgress BatchStatus = "IN_PROGRESS"
	BatchStatusCompleted  BatchStatus = "COMPLETED"
	BatchStatusFailed     BatchStatus = "FAILED"
	BatchStatusCancelled  BatchStatus = "CANCELLED"
)

// Batch is the aggregate root of the traceability chain. BatchNumber is the
// business identifier printed on labels and must stay globally unique.
type Batch struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	ProductID       uuid.UUID   `json:"product_id" db:"product_id"`
	FarmerID        string      `json:"farmer_id" db:"farmer_id"`
	BatchNumber     string      `json:"batch_number" db:"batch_number"`
	Status          BatchStatus `json:"status" db:"status"`
	Quantity        int         `json:"quantity" db:"quantity"`
	StartDate       time.Time   `json:"start_date" db:"start_date"`
	ExpectedEndDate time.Time   `json:"expected_end_date" db:"expected_end_date"`
	ActualEndDate   *time.Time  `json:"actual_end_date,omitempty" db:"actual_end_date"`
	Location        string      `json:"location" db:"location"`
	QRCode          *string     `json:"qr_code,omitempty" db:"qr_code"`
	Notes           *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
	SyncFields
}

// TableName returns the database table name
func (Batch) TableName() string {
	return "batches"
}

// CreateBatchRequest is the request body for creating a batch
type CreateBatchRequest struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	FarmerID        string    `json:"farmer_id" validate:"required"`
	BatchNumber     string    `json:"batch_number" validate:"required"`
	Quantity        int       `json:"quantity" validate:"required,gt=0"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	ExpectedEndDate time.Time `json:"expected_end_date" validate:"required"`
	Location        string    `json:"location" validate:"required"`
	QRCode          *string   `json:"qr_code,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}

// UpdateBatchStatusRequest is the request body for a batch status transition
type UpdateBatchStatusRequest struct {
	Status BatchStatus `json:"status" validate:"required"`
}

// CompleteBatchRequest is the request body for completing a batch
type CompleteBatchRequest struct {
	ActualEndDate *time.Time `json:"actual_end_date,omitempty"`
}

// BatchFilter narrows batch listings
type BatchFilter struct {
	FarmerID *string
	Status   *BatchStatus
	Page     int
	PageSize int
}

// BatchResponse is the API response for batch operations
type BatchResponse struct {
	Batch
}

// BatchListResponse is the API response for listing batches
type BatchListResponse struct {
	Items      []Batch `json:"items"`
	TotalCount int     `json:"total_count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
}

// BatchTrace composes a batch's full lineage from the operational store for
// the audit surface.
type BatchTrace struct {
	Batch             Batch              `json:"batch"`
	Product           *Product           `json:"product,omitempty"`
	LifecycleEvents   []LifecycleEvent   `json:"lifecycle_events"`
	Transports        []Transport        `json:"transports"`
	TemperatureLogs   []TemperatureLog   `json:"temperature_logs"`
	ProcessingRecords []ProcessingRecord `json:"processing_records"`
	Certifications    []Certification    `json:"certifications"`
	RegulatoryRecords []RegulatoryRecord `json:"regulatory_records"`
}
