// Package temperaturelog persists cold-chain readings. Append-only like
// lifecycle events: rows are written once and only their sync fields change
// afterwards, via the syncstate repository.
package temperaturelog

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

// TemperatureLogRepository defines the interface for temperature log persistence
type TemperatureLogRepository interface {
	Create(ctx context.Context, transportID uuid.UUID, isViolation bool, req models.RecordTemperatureRequest) (*models.TemperatureLog, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.TemperatureLog, error)
	ListByTransport(ctx context.Context, transportID uuid.UUID, violationsOnly bool) ([]models.TemperatureLog, error)
}

// Repository implements TemperatureLogRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new temperature log repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "temperature_logs"

var columns = []string{"id", "transport_id", "temperature", "recorded_at", "location", "is_violation", "ledger_tx_id", "sync_status", "sync_error", "synced_at", "created_at"}

// Create appends a new temperature reading with sync_status PENDING.
// isViolation is decided by the caller against the safe range and stored
// verbatim; it never changes afterwards.
func (r *Repository) Create(ctx context.Context, transportID uuid.UUID, isViolation bool, req models.RecordTemperatureRequest) (*models.TemperatureLog, error) {
	ctx, span := tracing.StartSpan(ctx, "TemperatureLogRepository.Create")
	defer span.End()

	id := uuid.New()
	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "transport_id", "temperature", "recorded_at", "location", "is_violation", "sync_status", "created_at")
	sb.Values(id, transportID, req.Temperature, req.RecordedAt, req.Location, isViolation, models.SyncStatusPending, now)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to record temperature log")
		return nil, fmt.Errorf("failed to record temperature log: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":           id,
		"transport_id": transportID,
		"temperature":  req.Temperature,
		"is_violation": isViolation,
	}).Info("recorded temperature log")

	return r.GetByID(ctx, id)
}

// GetByID gets a temperature log by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.TemperatureLog, error) {
	ctx, span := tracing.StartSpan(ctx, "TemperatureLogRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var log models.TemperatureLog
	if err := r.db.GetContext(ctx, &log, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get temperature log")
		return nil, fmt.Errorf("failed to get temperature log: %w", err)
	}

	return &log, nil
}

// ListByTransport retrieves readings for a transport in recording order,
// optionally violations only
func (r *Repository) ListByTransport(ctx context.Context, transportID uuid.UUID, violationsOnly bool) ([]models.TemperatureLog, error) {
	ctx, span := tracing.StartSpan(ctx, "TemperatureLogRepository.ListByTransport")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	where := []string{sb.Equal("transport_id", transportID)}
	if violationsOnly {
		where = append(where, sb.Equal("is_violation", true))
	}
	sb.Where(where...)
	sb.OrderBy("recorded_at ASC")

	query, args := sb.Build()
	logs := []models.TemperatureLog{}
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list temperature logs")
		return nil, fmt.Errorf("failed to list temperature logs: %w", err)
	}

	return logs, nil
}
