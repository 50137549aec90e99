package supplychain

import (
	"context"

	"github.com/google/uuid"

	cloverContext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/validation"
)

// RecordLifecycleEvent appends an event to a batch's timeline. The record
// is append-only: it is written once here and nothing ever updates it
// except the sync outcome writeback.
func (s *Service) RecordLifecycleEvent(ctx context.Context, batchID uuid.UUID, req models.RecordLifecycleEventRequest) (*models.LifecycleEvent, error) {
	if err := roles.Require(ctx, roles.CapRecordLifecycleEvent); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.RecordLifecycleEvent")
	defer span.End()

	if err := validation.LifecycleEventType(req.EventType); err != nil {
		return nil, err
	}
	if err := validation.NonEmptyString(req.Description, "description"); err != nil {
		return nil, err
	}
	if req.QuantityAffected != nil {
		if err := validation.PositiveInt(*req.QuantityAffected, "quantity_affected"); err != nil {
			return nil, err
		}
	}

	parent, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "batch", batchID.String()); err != nil {
		return nil, err
	}

	created, err := s.lifecycle.Create(ctx, batchID, cloverContext.GetActorID(ctx), req)
	if err != nil {
		return nil, err
	}

	s.dispatcher.LifecycleEventRecorded(ctx, created)
	if s.emitter != nil {
		s.emitter.EmitLifecycleEventRecorded(ctx, created)
	}
	if s.provenance != nil {
		s.provenance.UpsertLifecycleEvent(ctx, created)
	}

	return created, nil
}

// GetLifecycleEvent retrieves a lifecycle event by ID
func (s *Service) GetLifecycleEvent(ctx context.Context, id uuid.UUID) (*models.LifecycleEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.GetLifecycleEvent")
	defer span.End()

	found, err := s.lifecycle.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.NewNotFound("lifecycle event", id.String())
	}

	return found, nil
}

// ListLifecycleEvents retrieves a batch's timeline in event order
func (s *Service) ListLifecycleEvents(ctx context.Context, batchID uuid.UUID) ([]models.LifecycleEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.ListLifecycleEvents")
	defer span.End()

	parent, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "batch", batchID.String()); err != nil {
		return nil, err
	}

	return s.lifecycle.ListByBatch(ctx, batchID)
}
