package certification

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

// CertificationRepository defines the interface for certification persistence
type CertificationRepository interface {
	Create(ctx context.Context, req models.IssueCertificationRequest) (*models.Certification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Certification, error)
	ListByProcessing(ctx context.Context, processingID uuid.UUID) ([]models.Certification, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.CertificationStatus) (*models.Certification, error)
}

// Repository implements CertificationRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new certification repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "certifications"

var columns = []string{"id", "processing_id", "cert_type", "issuer", "issue_date", "expiry_date", "status", "notes", "ledger_tx_id", "sync_status", "sync_error", "synced_at", "created_at", "updated_at"}

// Create issues a new certification in PENDING status with sync_status
// PENDING. Only issuance is mirrored to the ledger; the later decision is
// local-only.
func (r *Repository) Create(ctx context.Context, req models.IssueCertificationRequest) (*models.Certification, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificationRepository.Create")
	defer span.End()

	id := uuid.New()
	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "processing_id", "cert_type", "issuer", "issue_date", "expiry_date", "status", "notes", "sync_status", "created_at", "updated_at")
	sb.Values(id, req.ProcessingID, req.CertType, req.Issuer, req.IssueDate, req.ExpiryDate, models.CertificationStatusPending, req.Notes, models.SyncStatusPending, now, now)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to issue certification")
		return nil, fmt.Errorf("failed to issue certification: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"processing_id": req.ProcessingID,
		"cert_type":     req.CertType,
	}).Info("issued certification")

	return r.GetByID(ctx, id)
}

// GetByID gets a certification by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Certification, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificationRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var cert models.Certification
	if err := r.db.GetContext(ctx, &cert, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get certification")
		return nil, fmt.Errorf("failed to get certification: %w", err)
	}

	return &cert, nil
}

// ListByProcessing retrieves all certifications for a processing record
func (r *Repository) ListByProcessing(ctx context.Context, processingID uuid.UUID) ([]models.Certification, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificationRepository.ListByProcessing")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(sb.Equal("processing_id", processingID))
	sb.OrderBy("issue_date ASC")

	query, args := sb.Build()
	certs := []models.Certification{}
	if err := r.db.SelectContext(ctx, &certs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list certifications")
		return nil, fmt.Errorf("failed to list certifications: %w", err)
	}

	return certs, nil
}

// UpdateStatus moves a certification to its decision status, guarded by
// the expected current status. Zero affected rows returns nil.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.CertificationStatus) (*models.Certification, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificationRepository.UpdateStatus")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("status", to),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("status", from),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update certification status")
		return nil, fmt.Errorf("failed to update certification status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, nil
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":   id,
		"from": from,
		"to":   to,
	}).Info("updated certification status")

	return r.GetByID(ctx, id)
}
