// Package syncstate mutates the four sync columns shared by every
// ledger-eligible table. It is the only code that writes those columns
// after creation, which is what keeps append-only tables append-only.
package syncstate

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// SyncStateRepository defines the interface for sync field operations
// across all ledger-eligible tables
type SyncStateRepository interface {
	RecordOutcome(ctx context.Context, kind models.EntityKind, id uuid.UUID, outcome models.SyncOutcome) (bool, error)
	ResetForRetry(ctx context.Context, kind models.EntityKind, id uuid.UUID) (bool, error)
	ListFailures(ctx context.Context, kind *models.EntityKind, page, pageSize int) ([]models.SyncRecordRef, int, error)
	Summary(ctx context.Context) ([]models.SyncSummary, error)
}

// Repository implements SyncStateRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new sync state repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

var tables = map[models.EntityKind]string{
	models.EntityKindProduct:          "products",
	models.EntityKindBatch:            "batches",
	models.EntityKindLifecycleEvent:   "lifecycle_events",
	models.EntityKindTransport:        "transports",
	models.EntityKindTemperatureLog:   "temperature_logs",
	models.EntityKindProcessingRecord: "processing_records",
	models.EntityKindCertification:    "certifications",
	models.EntityKindRegulatoryRecord: "regulatory_records",
}

func tableFor(kind models.EntityKind) (string, error) {
	table, ok := tables[kind]
	if !ok {
		return "", fmt.Errorf("unknown entity kind %s", kind)
	}
	return table, nil
}

// RecordOutcome writes the terminal result of one ledger submit attempt.
// The update is guarded by sync_status = PENDING so each attempt completes
// at most once; a duplicate completion affects zero rows and returns false.
// synced_at is set only on CONFIRMED, when the row actually reached the
// ledger.
func (r *Repository) RecordOutcome(ctx context.Context, kind models.EntityKind, id uuid.UUID, outcome models.SyncOutcome) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "SyncStateRepository.RecordOutcome")
	defer span.End()

	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var query string
	var args []any
	switch outcome.Status {
	case models.SyncStatusConfirmed:
		query = fmt.Sprintf(`UPDATE %s SET sync_status = $1, ledger_tx_id = $2, sync_error = NULL, synced_at = $3 WHERE id = $4 AND sync_status = $5`, table)
		args = []any{models.SyncStatusConfirmed, outcome.TxID, time.Now().UTC(), id, models.SyncStatusPending}
	case models.SyncStatusFailed:
		query = fmt.Sprintf(`UPDATE %s SET sync_status = $1, sync_error = $2, ledger_tx_id = NULL, synced_at = NULL WHERE id = $3 AND sync_status = $4`, table)
		args = []any{models.SyncStatusFailed, outcome.Error, id, models.SyncStatusPending}
	default:
		return false, fmt.Errorf("outcome status must be terminal, got %s", outcome.Status)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to record sync outcome")
		return false, fmt.Errorf("failed to record sync outcome: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"kind":   kind,
		"id":     id,
		"status": outcome.Status,
	}).Info("recorded sync outcome")

	return true, nil
}

// ResetForRetry moves a FAILED record back to PENDING so the dispatcher can
// submit it again. This is the only path back to PENDING and only an
// explicit operator action reaches it. Returns false when the record is not
// FAILED (or does not exist).
func (r *Repository) ResetForRetry(ctx context.Context, kind models.EntityKind, id uuid.UUID) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "SyncStateRepository.ResetForRetry")
	defer span.End()

	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`UPDATE %s SET sync_status = $1, sync_error = NULL, ledger_tx_id = NULL, synced_at = NULL WHERE id = $2 AND sync_status = $3`, table)
	result, err := r.db.ExecContext(ctx, query, models.SyncStatusPending, id, models.SyncStatusFailed)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to reset sync for retry")
		return false, fmt.Errorf("failed to reset sync for retry: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"kind": kind,
		"id":   id,
	}).Info("reset sync status for retry")

	return true, nil
}

// ListFailures retrieves FAILED records for operator reconciliation,
// newest first, optionally narrowed to one kind
func (r *Repository) ListFailures(ctx context.Context, kind *models.EntityKind, page, pageSize int) ([]models.SyncRecordRef, int, error) {
	ctx, span := tracing.StartSpan(ctx, "SyncStateRepository.ListFailures")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	kinds := models.EntityKinds
	if kind != nil {
		if _, err := tableFor(*kind); err != nil {
			return nil, 0, err
		}
		kinds = []models.EntityKind{*kind}
	}

	union := ""
	for i, k := range kinds {
		if i > 0 {
			union += " UNION ALL "
		}
		union += fmt.Sprintf(`SELECT '%s' AS kind, id::text AS id, sync_status, sync_error, synced_at, created_at FROM %s WHERE sync_status = 'FAILED'`, k, tables[k])
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM (%s) failures`, union)
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count sync failures")
		return nil, 0, fmt.Errorf("failed to count sync failures: %w", err)
	}

	query := fmt.Sprintf(`SELECT * FROM (%s) failures ORDER BY created_at DESC LIMIT $1 OFFSET $2`, union)
	refs := []models.SyncRecordRef{}
	if err := r.db.SelectContext(ctx, &refs, query, pageSize, offset); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list sync failures")
		return nil, 0, fmt.Errorf("failed to list sync failures: %w", err)
	}

	return refs, totalCount, nil
}

// Summary reports per-kind counts by sync status for reconciliation
func (r *Repository) Summary(ctx context.Context) ([]models.SyncSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "SyncStateRepository.Summary")
	defer span.End()

	summaries := make([]models.SyncSummary, 0, len(models.EntityKinds))
	for _, kind := range models.EntityKinds {
		query := fmt.Sprintf(`SELECT
			COUNT(*) FILTER (WHERE sync_status = 'PENDING') AS pending,
			COUNT(*) FILTER (WHERE sync_status = 'CONFIRMED') AS confirmed,
			COUNT(*) FILTER (WHERE sync_status = 'FAILED') AS failed
			FROM %s`, tables[kind])

		var summary models.SyncSummary
		if err := r.db.GetContext(ctx, &summary, query); err != nil {
			r.logger.WithContext(ctx).WithError(err).Errorf("failed to summarize sync state for %s", kind)
			return nil, fmt.Errorf("failed to summarize sync state for %s: %w", kind, err)
		}
		summary.Kind = kind
		summaries = append(summaries, summary)
	}

	return summaries, nil
}
