package transport

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

// TransportRepository defines the interface for transport persistence
type TransportRepository interface {
	Create(ctx context.Context, req models.CreateTransportRequest) (*models.Transport, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transport, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Transport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TransportStatus, arrivalTime *time.Time) (*models.Transport, error)
}

// Repository implements TransportRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new transport repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "transports"

var columns = []string{"id", "batch_id", "from_party_id", "to_party_id", "vehicle_id", "driver_name", "departure_time", "arrival_time", "origin_location", "destination_location", "temperature_monitored", "status", "notes", "ledger_tx_id", "sync_status", "sync_error", "synced_at", "created_at", "updated_at"}

// Create creates a new transport manifest in CREATED status with
// sync_status PENDING
func (r *Repository) Create(ctx context.Context, req models.CreateTransportRequest) (*models.Transport, error) {
	ctx, span := tracing.StartSpan(ctx, "TransportRepository.Create")
	defer span.End()

	id := uuid.New()
	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "batch_id", "from_party_id", "to_party_id", "vehicle_id", "driver_name", "departure_time", "origin_location", "destination_location", "temperature_monitored", "status", "notes", "sync_status", "created_at", "updated_at")
	sb.Values(id, req.BatchID, req.FromPartyID, req.ToPartyID, req.VehicleID, req.DriverName, req.DepartureTime, req.OriginLocation, req.DestinationLocation, req.TemperatureMonitored, models.TransportStatusCreated, req.Notes, models.SyncStatusPending, now, now)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create transport")
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":       id,
		"batch_id": req.BatchID,
		"vehicle":  req.VehicleID,
	}).Info("created transport")

	return r.GetByID(ctx, id)
}

// GetByID gets a transport by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transport, error) {
	ctx, span := tracing.StartSpan(ctx, "TransportRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var transport models.Transport
	if err := r.db.GetContext(ctx, &transport, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get transport")
		return nil, fmt.Errorf("failed to get transport: %w", err)
	}

	return &transport, nil
}

// ListByBatch retrieves all transports for a batch, oldest first
func (r *Repository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Transport, error) {
	ctx, span := tracing.StartSpan(ctx, "TransportRepository.ListByBatch")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("batch_id", batchID))
	sb.OrderBy("departure_time ASC")

	query, args := sb.Build()
	transports := []models.Transport{}
	if err := r.db.SelectContext(ctx, &transports, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list transports")
		return nil, fmt.Errorf("failed to list transports: %w", err)
	}

	return transports, nil
}

// UpdateStatus transitions a transport, guarded by the expected current
// status. arrivalTime is persisted together with the COMPLETED status so
// arrival is atomic with the transition. Zero affected rows returns nil.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TransportStatus, arrivalTime *time.Time) (*models.Transport, error) {
	ctx, span := tracing.StartSpan(ctx, "TransportRepository.UpdateStatus")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update(tableName)
	assignments := []string{
		sb.Assign("status", to),
		sb.Assign("updated_at", now),
	}
	if arrivalTime != nil {
		assignments = append(assignments, sb.Assign("arrival_time", *arrivalTime))
	}
	sb.Set(assignments...)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("status", from),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update transport status")
		return nil, fmt.Errorf("failed to update transport status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, nil
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":   id,
		"from": from,
		"to":   to,
	}).Info("updated transport status")

	return r.GetByID(ctx, id)
}
