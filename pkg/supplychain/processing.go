package supplychain

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/validation"
)

// RecordProcessing appends a processing record to a batch
func (s *Service) RecordProcessing(ctx context.Context, req models.RecordProcessingRequest) (*models.ProcessingRecord, error) {
	if err := roles.Require(ctx, roles.CapRecordProcessing); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.RecordProcessing")
	defer span.End()

	if err := validation.NonEmptyString(req.FacilityName, "facility_name"); err != nil {
		return nil, err
	}
	if err := validation.PositiveInt(req.SlaughterCount, "slaughter_count"); err != nil {
		return nil, err
	}
	if err := validation.PositiveFloat(req.YieldAmount, "yield_amount"); err != nil {
		return nil, err
	}
	if err := validation.ScoreInRange(req.QualityScore, "quality_score"); err != nil {
		return nil, err
	}

	parent, err := s.batches.GetByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "batch", req.BatchID.String()); err != nil {
		return nil, err
	}

	created, err := s.processing.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.dispatcher.ProcessingRecorded(ctx, created)

	if s.emitter != nil {
		s.emitter.EmitProcessingRecorded(ctx, created)
	}
	if s.provenance != nil {
		s.provenance.UpsertProcessingRecord(ctx, created)
	}

	return created, nil
}

// GetProcessingRecord retrieves a processing record by ID
func (s *Service) GetProcessingRecord(ctx context.Context, id uuid.UUID) (*models.ProcessingRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.GetProcessingRecord")
	defer span.End()

	found, err := s.processing.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.NewNotFound("processing record", id.String())
	}

	return found, nil
}

// ListProcessingByBatch retrieves a batch's processing records in processing order
func (s *Service) ListProcessingByBatch(ctx context.Context, batchID uuid.UUID) ([]models.ProcessingRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.ListProcessingByBatch")
	defer span.End()

	parent, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "batch", batchID.String()); err != nil {
		return nil, err
	}

	return s.processing.ListByBatch(ctx, batchID)
}
