package supplychain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
	"github.com/Ramsey-B/clover/pkg/statemachine"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/validation"
)

// CreateTransport opens a shipment manifest for a batch
func (s *Service) CreateTransport(ctx context.Context, req models.CreateTransportRequest) (*models.Transport, error) {
	if err := roles.Require(ctx, roles.CapCreateTransport); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.CreateTransport")
	defer span.End()

	if err := validation.NonEmptyString(req.FromPartyID, "from_party_id"); err != nil {
		return nil, err
	}
	if err := validation.NonEmptyString(req.ToPartyID, "to_party_id"); err != nil {
		return nil, err
	}
	if err := validation.NonEmptyString(req.VehicleID, "vehicle_id"); err != nil {
		return nil, err
	}
	if err := validation.NonEmptyString(req.DriverName, "driver_name"); err != nil {
		return nil, err
	}
	if err := validation.NonEmptyString(req.OriginLocation, "origin_location"); err != nil {
		return nil, err
	}
	if err := validation.NonEmptyString(req.DestinationLocation, "destination_location"); err != nil {
		return nil, err
	}

	parent, err := s.batches.GetByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "batch", req.BatchID.String()); err != nil {
		return nil, err
	}

	created, err := s.transports.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.dispatcher.TransportCreated(ctx, created)
	if s.emitter != nil {
		s.emitter.EmitTransportCreated(ctx, created)
	}
	if s.provenance != nil {
		s.provenance.UpsertTransport(ctx, created)
	}

	return created, nil
}

// GetTransport retrieves a transport by ID
func (s *Service) GetTransport(ctx context.Context, id uuid.UUID) (*models.Transport, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.GetTransport")
	defer span.End()

	found, err := s.transports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.NewNotFound("transport", id.String())
	}

	return found, nil
}

// ListTransportsByBatch retrieves a batch's shipments, oldest first
func (s *Service) ListTransportsByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Transport, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.ListTransportsByBatch")
	defer span.End()

	parent, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "batch", batchID.String()); err != nil {
		return nil, err
	}

	return s.transports.ListByBatch(ctx, batchID)
}

// UpdateTransportStatus moves a transport along its machine. Completing a
// transport stamps the arrival time (now when not supplied) atomically with
// the status.
func (s *Service) UpdateTransportStatus(ctx context.Context, id uuid.UUID, req models.UpdateTransportStatusRequest) (*models.Transport, error) {
	if err := roles.Require(ctx, roles.CapUpdateTransportStatus); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.UpdateTransportStatus")
	defer span.End()

	current, err := s.transports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.NewNotFound("transport", id.String())
	}

	if err := statemachine.Validate(models.EntityKindTransport, string(current.Status), string(req.Status)); err != nil {
		return nil, err
	}

	var arrivalTime *time.Time
	if req.Status == models.TransportStatusCompleted {
		arrival := time.Now().UTC()
		if req.ArrivalTime != nil {
			arrival = *req.ArrivalTime
		}
		arrivalTime = &arrival
	}

	updated, err := s.transports.UpdateStatus(ctx, id, current.Status, req.Status, arrivalTime)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NewConflict("transport status changed concurrently, retry").AddEntity("transport")
	}

	if s.emitter != nil {
		s.emitter.EmitTransportStatusChanged(ctx, updated)
	}
	if s.provenance != nil {
		s.provenance.UpsertTransport(ctx, updated)
	}

	return updated, nil
}
