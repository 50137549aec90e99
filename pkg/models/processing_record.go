package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingRecord captures what a processing facility produced from a
// batch.
type ProcessingRecord struct {
	ID             uuid.UUID `json:"id" db:"id"`
	BatchID        uuid.UUID `json:"batch_id" db:"batch_id"`
	FacilityName   string    `json:"facility_name" db:"facility_name"`
	SlaughterCount int       `json:"slaughter_count" db:"slaughter_count"`
	YieldAmount    float64   `json:"yield_amount" db:"yield_amount"`
	QualityScore   int       `json:"quality_score" db:"quality_score"`
	ProcessedAt    time.Time `json:"processed_at" db:"processed_at"`
	Notes          *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	SyncFields
}

// TableName returns the database table name
func (ProcessingRecord) TableName() string {
	return "processing_records"
}

// RecordProcessingRequest is the request body for recording processing
type RecordProcessingRequest struct {
	BatchID        uuid.UUID `json:"batch_id" validate:"required"`
	FacilityName   string    `json:"facility_name" validate:"required"`
	SlaughterCount int       `json:"slaughter_count" validate:"required,gt=0"`
	YieldAmount    float64   `json:"yield_amount" validate:"required,gt=0"`
	QualityScore   int       `json:"quality_score" validate:"gte=0,lte=100"`
	ProcessedAt    time.Time `json:"processed_at" validate:"required"`
	Notes          *string   `json:"notes,omitempty"`
}

// ProcessingRecordResponse is the API response for processing operations
type ProcessingRecordResponse struct {
	ProcessingRecord
}

// ProcessingRecordListResponse is the API response for listing processing
// records
type ProcessingRecordListResponse struct {
	Items      []ProcessingRecord `json:"items"`
	TotalCount int                `json:"total_count"`
}
