package supplychain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
	"github.com/Ramsey-B/clover/pkg/statemachine"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/validation"
)

// CreateBatch registers a new batch against an active product. The batch
// number must be globally unique; the losing side of a concurrent
// same-number create gets a Conflict from the store's unique index.
func (s *Service) CreateBatch(ctx context.Context, req models.CreateBatchRequest) (*models.Batch, error) {
	if err := roles.Require(ctx, roles.CapCreateBatch); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.CreateBatch")
	defer span.End()

	if err := validation.NonEmptyString(req.BatchNumber, "batch_number"); err != nil {
		return nil, err
	}
	if err := validation.NonEmptyString(req.FarmerID, "farmer_id"); err != nil {
		return nil, err
	}
	if err := validation.NonEmptyString(req.Location, "location"); err != nil {
		return nil, err
	}
	if err := validation.PositiveInt(req.Quantity, "quantity"); err != nil {
		return nil, err
	}

	prod, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(prod, "product", req.ProductID.String()); err != nil {
		return nil, err
	}
	if !prod.IsActive {
		return nil, errors.NewInvalidInputf("product %s is not active", req.ProductID).AddEntity("batch")
	}

	created, err := s.batches.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.dispatcher.BatchCreated(ctx, created)
	if s.emitter != nil {
		s.emitter.EmitBatchCreated(ctx, created)
	}
	if s.provenance != nil {
		s.provenance.UpsertBatch(ctx, created)
	}

	return created, nil
}

// GetBatch retrieves a batch by ID
func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.GetBatch")
	defer span.End()

	found, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.NewNotFound("batch", id.String())
	}

	return found, nil
}

// ListBatches retrieves batches matching the filter
func (s *Service) ListBatches(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.ListBatches")
	defer span.End()

	return s.batches.List(ctx, filter)
}

// UpdateBatchStatus transitions a batch along a declared edge. The status
// write is guarded by the status the machine validated against, so a
// concurrent transition surfaces as a Conflict instead of being clobbered.
func (s *Service) UpdateBatchStatus(ctx context.Context, id uuid.UUID, req models.UpdateBatchStatusRequest) (*models.Batch, error) {
	if err := roles.Require(ctx, roles.CapUpdateBatchStatus); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.UpdateBatchStatus")
	defer span.End()

	current, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.NewNotFound("batch", id.String())
	}

	if err := statemachine.Validate(models.EntityKindBatch, string(current.Status), string(req.Status)); err != nil {
		return nil, err
	}

	return s.transitionBatch(ctx, id, current.Status, req.Status, nil)
}

// CompleteBatch moves a batch to COMPLETED and stamps the actual end date
// (now when the request does not supply one) atomically with the status.
func (s *Service) CompleteBatch(ctx context.Context, id uuid.UUID, req models.CompleteBatchRequest) (*models.Batch, error) {
	if err := roles.Require(ctx, roles.CapUpdateBatchStatus); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.CompleteBatch")
	defer span.End()

	current, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.NewNotFound("batch", id.String())
	}

	if err := statemachine.Validate(models.EntityKindBatch, string(current.Status), string(models.BatchStatusCompleted)); err != nil {
		return nil, err
	}

	actualEnd := time.Now().UTC()
	if req.ActualEndDate != nil {
		actualEnd = *req.ActualEndDate
	}

	return s.transitionBatch(ctx, id, current.Status, models.BatchStatusCompleted, &actualEnd)
}

func (s *Service) transitionBatch(ctx context.Context, id uuid.UUID, from, to models.BatchStatus, actualEndDate *time.Time) (*models.Batch, error) {
	updated, err := s.batches.UpdateStatus(ctx, id, from, to, actualEndDate)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NewConflict("batch status changed concurrently, retry").AddEntity("batch")
	}

	if s.emitter != nil {
		s.emitter.EmitBatchStatusChanged(ctx, updated)
	}
	if s.provenance != nil {
		s.provenance.UpsertBatch(ctx, updated)
	}

	return updated, nil
}

// TraceBatch composes the batch's full lineage from the operational store.
// PostgreSQL is authoritative; the graph projection is a secondary view.
func (s *Service) TraceBatch(ctx context.Context, id uuid.UUID) (*models.BatchTrace, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.TraceBatch")
	defer span.End()

	found, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.NewNotFound("batch", id.String())
	}

	trace := &models.BatchTrace{Batch: *found}

	trace.Product, err = s.products.GetByID(ctx, found.ProductID)
	if err != nil {
		return nil, err
	}

	trace.LifecycleEvents, err = s.lifecycle.ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	trace.Transports, err = s.transports.ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	trace.TemperatureLogs = []models.TemperatureLog{}
	for _, t := range trace.Transports {
		logs, err := s.tempLogs.ListByTransport(ctx, t.ID, false)
		if err != nil {
			return nil, err
		}
		trace.TemperatureLogs = append(trace.TemperatureLogs, logs...)
	}

	trace.ProcessingRecords, err = s.processing.ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	trace.Certifications = []models.Certification{}
	for _, p := range trace.ProcessingRecords {
		certs, err := s.certs.ListByProcessing(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		trace.Certifications = append(trace.Certifications, certs...)
	}

	trace.RegulatoryRecords, err = s.regulatory.ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	return trace, nil
}

// BatchLedgerRecord reads the batch's mirrored record straight from the
// ledger. This is the one surface where a ledger outage reaches the caller:
// the gateway being down is the queried fact.
func (s *Service) BatchLedgerRecord(ctx context.Context, id uuid.UUID) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.BatchLedgerRecord")
	defer span.End()

	payload, err := s.contract.GetBatch(ctx, id.String())
	if err != nil {
		return nil, errors.NewLedgerUnavailable(err.Error())
	}
	if len(payload) == 0 {
		return nil, errors.NewNotFound("ledger record for batch", id.String())
	}

	return payload, nil
}

// BatchProvenance reads the batch's lineage from the provenance graph
func (s *Service) BatchProvenance(ctx context.Context, id uuid.UUID) (*graph.ProvenanceTrace, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.BatchProvenance")
	defer span.End()

	if s.provenance == nil {
		return nil, errors.NewLedgerUnavailable("provenance graph is not configured")
	}

	existing, err := s.batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.NewNotFound("batch", id.String())
	}

	trace, err := s.provenance.Trace(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if trace == nil {
		return nil, errors.NewNotFound("provenance for batch", id.String())
	}

	return trace, nil
}
