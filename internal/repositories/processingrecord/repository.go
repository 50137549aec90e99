package processingrecord

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ProcessingRecordRepository defines the interface for processing record persistence
type ProcessingRecordRepository interface {
	Create(ctx context.Context, req models.RecordProcessingRequest) (*models.ProcessingRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProcessingRecord, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.ProcessingRecord, error)
}

// Repository implements ProcessingRecordRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new processing record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "processing_records"

var columns = []string{"id", "batch_id", "facility_name", "slaughter_count", "yield_amount", "quality_score", "processed_at", "notes", "ledger_tx_id", "sync_status", "sync_error", "synced_at", "created_at"}

// Create creates a new processing record with sync_status PENDING
func (r *Repository) Create(ctx context.Context, req models.RecordProcessingRequest) (*models.ProcessingRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "ProcessingRecordRepository.Create")
	defer span.End()

	id := uuid.New()
	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "batch_id", "facility_name", "slaughter_count", "yield_amount", "quality_score", "processed_at", "notes", "sync_status", "created_at")
	sb.Values(id, req.BatchID, req.FacilityName, req.SlaughterCount, req.YieldAmount, req.QualityScore, req.ProcessedAt, req.Notes, models.SyncStatusPending, now)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to record processing")
		return nil, fmt.Errorf("failed to record processing: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":       id,
		"batch_id": req.BatchID,
		"facility": req.FacilityName,
	}).Info("recorded processing")

	return r.GetByID(ctx, id)
}

// GetByID gets a processing record by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.ProcessingRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "ProcessingRecordRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var record models.ProcessingRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get processing record")
		return nil, fmt.Errorf("failed to get processing record: %w", err)
	}

	return &record, nil
}

// ListByBatch retrieves all processing records for a batch
func (r *Repository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.ProcessingRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "ProcessingRecordRepository.ListByBatch")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("batch_id", batchID))
	sb.OrderBy("processed_at ASC")

	query, args := sb.Build()
	records := []models.ProcessingRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list processing records")
		return nil, fmt.Errorf("failed to list processing records: %w", err)
	}

	return records, nil
}
