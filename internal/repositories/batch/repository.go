package batch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/Ramsey-B/clover/pkg/database"
	cloverErrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// BatchRepository defines the interface for batch persistence
type BatchRepository interface {
	Create(ctx context.Context, req models.CreateBatchRequest) (*models.Batch, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error)
	GetByBatchNumber(ctx context.Context, batchNumber string) (*models.Batch, error)
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BatchStatus, actualEndDate *time.Time) (*models.Batch, error)
}

// Repository implements BatchRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new batch repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "batches"

const uniqueViolation = pq.ErrorCode("23505")

var columns = []string{"id", "product_id", "farmer_id", "batch_number", "status", "quantity", "start_date", "expected_end_date", "actual_end_date", "location", "qr_code", "notes", "ledger_tx_id", "sync_status", "sync_error", "synced_at", "created_at", "updated_at"}

// Create creates a new batch in CREATED status with sync_status PENDING.
// The unique index on batch_number makes concurrent same-number creates
// resolve to exactly one winner; the losers get a Conflict.
func (r *Repository) Create(ctx context.Context, req models.CreateBatchRequest) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "BatchRepository.Create")
	defer span.End()

	id := uuid.New()
	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "product_id", "farmer_id", "batch_number", "status", "quantity", "start_date", "expected_end_date", "location", "qr_code", "notes", "sync_status", "created_at", "updated_at")
	sb.Values(id, req.ProductID, req.FarmerID, req.BatchNumber, models.BatchStatusCreated, req.Quantity, req.StartDate, req.ExpectedEndDate, req.Location, req.QRCode, req.Notes, models.SyncStatusPending, now, now)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, cloverErrors.NewConflict(fmt.Sprintf("batch number %s already exists", req.BatchNumber)).AddEntity("batch")
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to create batch")
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":           id,
		"batch_number": req.BatchNumber,
		"farmer_id":    req.FarmerID,
	}).Info("created batch")

	return r.GetByID(ctx, id)
}

// GetByID gets a batch by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "BatchRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get batch")
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	return &batch, nil
}

// GetByBatchNumber gets a batch by its business identifier
func (r *Repository) GetByBatchNumber(ctx context.Context, batchNumber string) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "BatchRepository.GetByBatchNumber")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("batch_number", batchNumber))

	query, args := sb.Build()
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get batch by number")
		return nil, fmt.Errorf("failed to get batch by number: %w", err)
	}

	return &batch, nil
}

// List retrieves batches matching the filter with paging
func (r *Repository) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error) {
	ctx, span := tracing.StartSpan(ctx, "BatchRepository.List")
	defer span.End()

	page := filter.Page
	pageSize := filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	countWhere := []string{}
	if filter.FarmerID != nil {
		countWhere = append(countWhere, countSb.Equal("farmer_id", *filter.FarmerID))
	}
	if filter.Status != nil {
		countWhere = append(countWhere, countSb.Equal("status", *filter.Status))
	}
	if len(countWhere) > 0 {
		countSb.Where(countWhere...)
	}

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count batches")
		return nil, 0, fmt.Errorf("failed to count batches: %w", err)
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	where := []string{}
	if filter.FarmerID != nil {
		where = append(where, sb.Equal("farmer_id", *filter.FarmerID))
	}
	if filter.Status != nil {
		where = append(where, sb.Equal("status", *filter.Status))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	batches := []models.Batch{}
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list batches")
		return nil, 0, fmt.Errorf("failed to list batches: %w", err)
	}

	return batches, totalCount, nil
}

// UpdateStatus transitions a batch from one status to another. The update
// is guarded by the expected current status so a concurrent transition
// affects zero rows instead of clobbering; zero rows returns nil so the
// caller can re-read and report what actually happened. actualEndDate is
// persisted together with the status when completing.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BatchStatus, actualEndDate *time.Time) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "BatchRepository.UpdateStatus")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update(tableName)
	assignments := []string{
		sb.Assign("status", to),
		sb.Assign("updated_at", now),
	}
	if actualEndDate != nil {
		assignments = append(assignments, sb.Assign("actual_end_date", *actualEndDate))
	}
	sb.Set(assignments...)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("status", from),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update batch status")
		return nil, fmt.Errorf("failed to update batch status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, nil
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":   id,
		"from": from,
		"to":   to,
	}).Info("updated batch status")

	return r.GetByID(ctx, id)
}
