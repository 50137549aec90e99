package models

import (
	"time"

	"github.com/google/uuid"
)

// CertificationStatus is the approval status of a certification.
type CertificationStatus string

const (
	CertificationStatusPending  CertificationStatus = "PENDING"
	CertificationStatusApproved CertificationStatus = "APPROVED"
	CertificationStatusRejected CertificationStatus = "REJECTED"
)

// Certification is a quality/safety certificate issued against a processing
// record.
type Certification struct {
	ID           uuid.UUID           `json:"id" db:"id"`
	ProcessingID uuid.UUID           `json:"processing_id" db:"processing_id"`
	CertType     string              `json:"cert_type" db:"cert_type"`
	Issuer       string              `json:"issuer" db:"issuer"`
	IssueDate    time.Time           `json:"issue_date" db:"issue_date"`
	ExpiryDate   time.Time           `json:"expiry_date" db:"expiry_date"`
	Status       CertificationStatus `json:"status" db:"status"`
	Notes        *string             `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
	SyncFields
}

// TableName returns the database table name
func (Certification) TableName() string {
	return "certifications"
}

// IssueCertificationRequest is the request body for issuing a certification
type IssueCertificationRequest struct {
	ProcessingID uuid.UUID `json:"processing_id" validate:"required"`
	CertType     string    `json:"cert_type" validate:"required"`
	Issuer       string    `json:"issuer" validate:"required"`
	IssueDate    time.Time `json:"issue_date" validate:"required"`
	ExpiryDate   time.Time `json:"expiry_date" validate:"required"`
	Notes        *string   `json:"notes,omitempty"`
}

// CertificationResponse is the API response for certification operations
type CertificationResponse struct {
	Certification
}

// CertificationListResponse is the API response for listing certifications
type CertificationListResponse struct {
	Items      []Certification `json:"items"`
	TotalCount int             `json:"total_count"`
}
