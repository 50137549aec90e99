// Package lifecycleevent persists batch timeline entries. The table is
// append-only: nothing here updates or deletes a row once written, so the
// only later mutation is the sync outcome writeback handled generically by
// the syncstate repository.
package lifecycleevent

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

// LifecycleEventRepository defines the interface for lifecycle event persistence
type LifecycleEventRepository interface {
	Create(ctx context.Context, batchID uuid.UUID, recordedBy string, req models.RecordLifecycleEventRequest) (*models.LifecycleEvent, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.LifecycleEvent, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.LifecycleEvent, error)
}

// Repository implements LifecycleEventRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new lifecycle event repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "lifecycle_events"

var columns = []string{"id", "batch_id", "event_type", "description", "event_date", "quantity_affected", "recorded_by", "ledger_tx_id", "sync_status", "sync_error", "synced_at", "created_at"}

// Create appends a new lifecycle event with sync_status PENDING
func (r *Repository) Create(ctx context.Context, batchID uuid.UUID, recordedBy string, req models.RecordLifecycleEventRequest) (*models.LifecycleEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "LifecycleEventRepository.Create")
	defer span.End()

	id := uuid.New()
	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "batch_id", "event_type", "description", "event_date", "quantity_affected", "recorded_by", "sync_status", "created_at")
	sb.Values(id, batchID, req.EventType, req.Description, req.EventDate, req.QuantityAffected, recordedBy, models.SyncStatusPending, now)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to record lifecycle event")
		return nil, fmt.Errorf("failed to record lifecycle event: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":         id,
		"batch_id":   batchID,
		"event_type": req.EventType,
	}).Info("recorded lifecycle event")

	return r.GetByID(ctx, id)
}

// GetByID gets a lifecycle event by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.LifecycleEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "LifecycleEventRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var event models.LifecycleEvent
	if err := r.db.GetContext(ctx, &event, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get lifecycle event")
		return nil, fmt.Errorf("failed to get lifecycle event: %w", err)
	}

	return &event, nil
}

// ListByBatch retrieves all lifecycle events for a batch in event order
func (r *Repository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.LifecycleEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "LifecycleEventRepository.ListByBatch")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("batch_id", batchID))
	sb.OrderBy("event_date ASC", "created_at ASC")

	query, args := sb.Build()
	events := []models.LifecycleEvent{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list lifecycle events")
		return nil, fmt.Errorf("failed to list lifecycle events: %w", err)
	}

	return events, nil
}
