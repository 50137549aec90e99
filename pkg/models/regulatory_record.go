package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
)

// RegulatoryStatus is the decision status of a regulatory record.
type RegulatoryStatus string

const (
	RegulatoryStatusPending  RegulatoryStatus = "PENDING"
	RegulatoryStatusApproved RegulatoryStatus = "APPROVED"
	RegulatoryStatusRejected RegulatoryStatus = "REJECTED"
)

// RegulatoryRecord is a regulator's inspection/approval record for a batch.
// A REJECTED record always carries a rejection reason and is never deleted.
type RegulatoryRecord struct {
	ID              uuid.UUID                       `json:"id" db:"id"`
	BatchID         uuid.UUID                       `json:"batch_id" db:"batch_id"`
	RecordType      string                          `json:"record_type" db:"record_type"`
	Status          RegulatoryStatus                `json:"status" db:"status"`
	RegulatorID     string                          `json:"regulator_id" db:"regulator_id"`
	RejectionReason *string                         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	AuditFlags      database.JSONB[[]string]        `json:"audit_flags" db:"audit_flags"`
	Details         database.JSONB[map[string]any]  `json:"details" db:"details"`
	CreatedAt       time.Time                       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time                       `json:"updated_at" db:"updated_at"`
	SyncFields
}

// TableName returns the database table name
func (RegulatoryRecord) TableName() string {
	return "regulatory_records"
}

// CreateRegulatoryRecordRequest is the request body for opening a record
type CreateRegulatoryRecordRequest struct {
	BatchID    uuid.UUID      `json:"batch_id" validate:"required"`
	RecordType string         `json:"record_type" validate:"required"`
	Details    map[string]any `json:"details,omitempty"`
}

// RegulatoryDecisionRequest is the request body for approving or rejecting
// a record. Reason is required for rejections.
type RegulatoryDecisionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// AddAuditFlagRequest is the request body for appending an audit flag
type AddAuditFlagRequest struct {
	Flag string `json:"flag" validate:"required"`
}

// RegulatoryRecordResponse is the API response for regulatory operations
type RegulatoryRecordResponse struct {
	RegulatoryRecord
}

// RegulatoryRecordListResponse is the API response for batch-scoped listings
type RegulatoryRecordListResponse struct {
	Items      []RegulatoryRecord `json:"items"`
	TotalCount int                `json:"total_count"`
}

// ComplianceStatusResponse summarizes a batch's regulatory standing.
type ComplianceStatusResponse struct {
	BatchID       uuid.UUID `json:"batch_id"`
	TotalRecords  int       `json:"total_records"`
	Approved      int       `json:"approved"`
	Rejected      int       `json:"rejected"`
	Pending       int       `json:"pending"`
	AuditFlags    []string  `json:"audit_flags"`
	IsCompliant   bool      `json:"is_compliant"`
	EvaluatedFrom time.Time `json:"evaluated_from"`
}
