package supplychain

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
	"github.com/Ramsey-B/clover/pkg/statemachine"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/validation"
)

// IssueCertification issues a certification against a processing record.
// New certifications start PENDING.
func (s *Service) IssueCertification(ctx context.Context, req models.IssueCertificationRequest) (*models.Certification, error) {
	if err := roles.Require(ctx, roles.CapManageCertifications); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.IssueCertification")
	defer span.End()

	if err := validation.NonEmptyString(req.CertType, "cert_type"); err != nil {
		return nil, err
	}
	if err := validation.NonEmptyString(req.Issuer, "issuer"); err != nil {
		return nil, err
	}
	if !req.ExpiryDate.After(req.IssueDate) {
		return nil, errors.NewInvalidInput("expiry_date must be after issue_date").AddEntity("certification")
	}

	parent, err := s.processing.GetByID(ctx, req.ProcessingID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "processing record", req.ProcessingID.String()); err != nil {
		return nil, err
	}

	created, err := s.certs.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.dispatcher.CertificationIssued(ctx, created)

	if s.emitter != nil {
		s.emitter.EmitCertificationUpdated(ctx, created)
	}
	if s.provenance != nil {
		s.provenance.UpsertCertification(ctx, created)
	}

	return created, nil
}

// GetCertification retrieves a certification by ID
func (s *Service) GetCertification(ctx context.Context, id uuid.UUID) (*models.Certification, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.GetCertification")
	defer span.End()

	found, err := s.certs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.NewNotFound("certification", id.String())
	}

	return found, nil
}

// ListCertificationsByProcessing retrieves a processing record's
// certifications in issue order
func (s *Service) ListCertificationsByProcessing(ctx context.Context, processingID uuid.UUID) ([]models.Certification, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.ListCertificationsByProcessing")
	defer span.End()

	parent, err := s.processing.GetByID(ctx, processingID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "processing record", processingID.String()); err != nil {
		return nil, err
	}

	return s.certs.ListByProcessing(ctx, processingID)
}

// DecideCertification approves or rejects a pending certification. The
// decision stays local, only the original issuance is ledgered.
func (s *Service) DecideCertification(ctx context.Context, id uuid.UUID, to models.CertificationStatus) (*models.Certification, error) {
	if err := roles.Require(ctx, roles.CapManageCertifications); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.DecideCertification")
	defer span.End()

	existing, err := s.certs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.NewNotFound("certification", id.String())
	}

	if err := statemachine.Validate(models.EntityKindCertification, string(existing.Status), string(to)); err != nil {
		return nil, err
	}

	updated, err := s.certs.UpdateStatus(ctx, id, existing.Status, to)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NewConflict("certification status changed concurrently, retry").AddEntity("certification")
	}

	if s.emitter != nil {
		s.emitter.EmitCertificationUpdated(ctx, updated)
	}
	if s.provenance != nil {
		s.provenance.UpsertCertification(ctx, updated)
	}

	return updated, nil
}
