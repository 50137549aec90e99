package supplychain

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/validation"
)

// RecordTemperature appends a cold-chain reading to a transport. An
// out-of-range reading is recorded with is_violation=true, never rejected:
// the violation itself is the fact the chain needs to remember.
func (s *Service) RecordTemperature(ctx context.Context, transportID uuid.UUID, req models.RecordTemperatureRequest) (*models.TemperatureLog, error) {
	if err := roles.Require(ctx, roles.CapRecordTemperature); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.RecordTemperature")
	defer span.End()

	if err := validation.NonEmptyString(req.Location, "location"); err != nil {
		return nil, err
	}

	parent, err := s.transports.GetByID(ctx, transportID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "transport", transportID.String()); err != nil {
		return nil, err
	}

	isViolation := validation.IsTemperatureViolation(req.Temperature)

	created, err := s.tempLogs.Create(ctx, transportID, isViolation, req)
	if err != nil {
		return nil, err
	}

	s.dispatcher.TemperatureLogged(ctx, created)

	if isViolation {
		metrics.RecordTemperatureViolation()
		s.logger.WithContext(ctx).WithFields(map[string]any{
			"transport_id": transportID,
			"temperature":  req.Temperature,
			"location":     req.Location,
		}).Warn("temperature violation detected")

		if s.emitter != nil {
			s.emitter.EmitTemperatureViolationDetected(ctx, created)
		}
	}

	if s.provenance != nil {
		s.provenance.UpsertTemperatureLog(ctx, created)
	}

	return created, nil
}

// GetTemperatureLog retrieves a reading by ID
func (s *Service) GetTemperatureLog(ctx context.Context, id uuid.UUID) (*models.TemperatureLog, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.GetTemperatureLog")
	defer span.End()

	found, err := s.tempLogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.NewNotFound("temperature log", id.String())
	}

	return found, nil
}

// ListTemperatureLogs retrieves a transport's readings in recording order,
// optionally violations only
func (s *Service) ListTemperatureLogs(ctx context.Context, transportID uuid.UUID, violationsOnly bool) ([]models.TemperatureLog, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.ListTemperatureLogs")
	defer span.End()

	parent, err := s.transports.GetByID(ctx, transportID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "transport", transportID.String()); err != nil {
		return nil, err
	}

	return s.tempLogs.ListByTransport(ctx, transportID, violationsOnly)
}
