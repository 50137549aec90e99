package regulatoryrecord

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectolinq"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// RegulatoryRecordRepository defines the interface for regulatory record persistence
type RegulatoryRecordRepository interface {
	Create(ctx context.Context, regulatorID string, req models.CreateRegulatoryRecordRequest) (*models.RegulatoryRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.RegulatoryRecord, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.RegulatoryRecord, error)
	Decide(ctx context.Context, id uuid.UUID, to models.RegulatoryStatus, reason *string) (*models.RegulatoryRecord, error)
	AddAuditFlag(ctx context.Context, id uuid.UUID, flag string) (*models.RegulatoryRecord, error)
}

// Repository implements RegulatoryRecordRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new regulatory record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "regulatory_records"

var columns = []string{"id", "batch_id", "record_type", "status", "regulator_id", "rejection_reason", "audit_flags", "details", "ledger_tx_id", "sync_status", "sync_error", "synced_at", "created_at", "updated_at"}

// Create opens a new regulatory record in PENDING status with sync_status
// PENDING
func (r *Repository) Create(ctx context.Context, regulatorID string, req models.CreateRegulatoryRecordRequest) (*models.RegulatoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "RegulatoryRecordRepository.Create")
	defer span.End()

	id := uuid.New()
	now := time.Now().UTC()

	details := req.Details
	if details == nil {
		details = map[string]any{}
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "batch_id", "record_type", "status", "regulator_id", "audit_flags", "details", "sync_status", "created_at", "updated_at")
	sb.Values(id, req.BatchID, req.RecordType, models.RegulatoryStatusPending, regulatorID, database.NewJSONB([]string{}), database.NewJSONB(details), models.SyncStatusPending, now, now)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create regulatory record")
		return nil, fmt.Errorf("failed to create regulatory record: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":           id,
		"batch_id":     req.BatchID,
		"record_type":  req.RecordType,
		"regulator_id": regulatorID,
	}).Info("created regulatory record")

	return r.GetByID(ctx, id)
}

// GetByID gets a regulatory record by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.RegulatoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "RegulatoryRecordRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var record models.RegulatoryRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get regulatory record")
		return nil, fmt.Errorf("failed to get regulatory record: %w", err)
	}

	return &record, nil
}

// ListByBatch retrieves all regulatory records for a batch
func (r *Repository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.RegulatoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "RegulatoryRecordRepository.ListByBatch")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("batch_id", batchID))
	sb.OrderBy("created_at ASC")

	query, args := sb.Build()
	records := []models.RegulatoryRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list regulatory records")
		return nil, fmt.Errorf("failed to list regulatory records: %w", err)
	}

	return records, nil
}

// Decide moves a PENDING record to APPROVED or REJECTED. The decision is
// itself mirrored to the ledger, so the same statement resets the sync
// fields back to PENDING for the dispatcher. Guarded by the PENDING status;
// zero affected rows (already decided or no such record) returns nil.
func (r *Repository) Decide(ctx context.Context, id uuid.UUID, to models.RegulatoryStatus, reason *string) (*models.RegulatoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "RegulatoryRecordRepository.Decide")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("status", to),
		sb.Assign("rejection_reason", reason),
		sb.Assign("sync_status", models.SyncStatusPending),
		sb.Assign("sync_error", nil),
		sb.Assign("ledger_tx_id", nil),
		sb.Assign("synced_at", nil),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("status", models.RegulatoryStatusPending),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to decide regulatory record")
		return nil, fmt.Errorf("failed to decide regulatory record: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, nil
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":     id,
		"status": to,
	}).Info("decided regulatory record")

	return r.GetByID(ctx, id)
}

// AddAuditFlag appends a flag to the record's audit flag list. The row is
// locked for the read-modify-write so concurrent appends cannot drop each
// other; duplicate flags are absorbed.
func (r *Repository) AddAuditFlag(ctx context.Context, id uuid.UUID, flag string) (*models.RegulatoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "RegulatoryRecordRepository.AddAuditFlag")
	defer span.End()

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var record models.RegulatoryRecord
	query := `SELECT id, batch_id, record_type, status, regulator_id, rejection_reason, audit_flags, details, ledger_tx_id, sync_status, sync_error, synced_at, created_at, updated_at
		FROM regulatory_records WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(txCtx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to lock regulatory record")
		return nil, fmt.Errorf("failed to lock regulatory record: %w", err)
	}

	flags := record.AuditFlags.Data
	if !ectolinq.Contains(flags, flag) {
		flags = append(flags, flag)
	}
	record.AuditFlags = database.NewJSONB(flags)
	record.UpdatedAt = time.Now().UTC()

	update := `UPDATE regulatory_records SET audit_flags = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(txCtx, update, record.AuditFlags, record.UpdatedAt, id); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to add audit flag")
		return nil, fmt.Errorf("failed to add audit flag: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":   id,
		"flag": flag,
	}).Info("added audit flag to regulatory record")

	return &record, nil
}
