package models

import (
	"time"
)

// SyncStatus tracks a record's mirroring progress to the external ledger.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "PENDING"
	SyncStatusConfirmed SyncStatus = "CONFIRMED"
	SyncStatusFailed    SyncStatus = "FAILED"
)

// EntityKind names the ledger-eligible record types. Used by the sync
// dispatcher and the sync ops surface to address records generically.
type EntityKind string

const (
	EntityKindProduct          EntityKind = "product"
	EntityKindBatch            EntityKind = "batch"
	EntityKindLifecycleEvent   EntityKind = "lifecycle_event"
	EntityKindTransport        EntityKind = "transport"
	EntityKindTemperatureLog   EntityKind = "temperature_log"
	EntityKindProcessingRecord EntityKind = "processing_record"
	EntityKindCertification    EntityKind = "certification"
	EntityKindRegulatoryRecord EntityKind = "regulatory_record"
)

// EntityKinds lists every ledger-eligible kind.
var EntityKinds = []EntityKind{
	EntityKindProduct,
	EntityKindBatch,
	EntityKindLifecycleEvent,
	EntityKindTransport,
	EntityKindTemperatureLog,
	EntityKindProcessingRecord,
	EntityKindCertification,
	EntityKindRegulatoryRecord,
}

// SyncFields are the four ledger-tracking columns every ledger-eligible
// record carries. They are the only columns append-only records ever have
// updated.
type SyncFields struct {
	LedgerTxID *string    `json:"ledger_tx_id,omitempty" db:"ledger_tx_id"`
	SyncStatus SyncStatus `json:"sync_status" db:"sync_status"`
	SyncError  *string    `json:"sync_error,omitempty" db:"sync_error"`
	SyncedAt   *time.Time `json:"synced_at,omitempty" db:"synced_at"`
}

// SyncOutcome is the terminal result of one ledger submit attempt.
type SyncOutcome struct {
	Status SyncStatus
	TxID   string
	Error  string
}

func ConfirmedOutcome(txID string) SyncOutcome {
	return SyncOutcome{Status: SyncStatusConfirmed, TxID: txID}
}

func FailedOutcome(message string) SyncOutcome {
	return SyncOutcome{Status: SyncStatusFailed, Error: message}
}

// SyncRecordRef identifies one ledger-eligible record for the sync ops
// surface.
type SyncRecordRef struct {
	Kind       EntityKind `json:"kind" db:"kind"`
	ID         string     `json:"id" db:"id"`
	SyncStatus SyncStatus `json:"sync_status" db:"sync_status"`
	SyncError  *string    `json:"sync_error,omitempty" db:"sync_error"`
	SyncedAt   *time.Time `json:"synced_at,omitempty" db:"synced_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// SyncSummary reports per-kind counts by sync status for reconciliation.
type SyncSummary struct {
	Kind      EntityKind `json:"kind" db:"kind"`
	Pending   int        `json:"pending" db:"pending"`
	Confirmed int        `json:"confirmed" db:"confirmed"`
	Failed    int        `json:"failed" db:"failed"`
}

// SyncSummaryResponse is the API response for the sync summary endpoint.
type SyncSummaryResponse struct {
	Items []SyncSummary `json:"items"`
}

// SyncFailureListResponse is the API response for listing failed syncs.
type SyncFailureListResponse struct {
	Items      []SyncRecordRef `json:"items"`
	TotalCount int             `json:"total_count"`
}
