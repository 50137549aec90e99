package supplychain

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ListSyncFailures pages through records stuck in FAILED, newest first,
// optionally narrowed to one kind
func (s *Service) ListSyncFailures(ctx context.Context, kind *models.EntityKind, page, pageSize int) ([]models.SyncRecordRef, int, error) {
	if err := roles.Require(ctx, roles.CapManageSync); err != nil {
		return nil, 0, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.ListSyncFailures")
	defer span.End()

	return s.syncState.ListFailures(ctx, kind, page, pageSize)
}

// SyncSummary reports per-kind sync status counts for reconciliation
func (s *Service) SyncSummary(ctx context.Context) ([]models.SyncSummary, error) {
	if err := roles.Require(ctx, roles.CapManageSync); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.SyncSummary")
	defer span.End()

	return s.syncState.Summary(ctx)
}

// RetrySync re-dispatches one FAILED record to the ledger. The record flips
// back to PENDING under a status guard, so concurrent retries collapse to a
// single new submission. Records in PENDING or CONFIRMED are refused.
func (s *Service) RetrySync(ctx context.Context, kind models.EntityKind, id uuid.UUID) (*models.SyncRecordRef, error) {
	if err := roles.Require(ctx, roles.CapManageSync); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.RetrySync")
	defer span.End()

	redispatch, current, err := s.loadForRetry(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if current != models.SyncStatusFailed {
		return nil, errors.NewConflict(fmt.Sprintf("%s %s is %s, only FAILED records can be retried", kind, id, current)).AddEntity(string(kind))
	}

	reset, err := s.syncState.ResetForRetry(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !reset {
		return nil, errors.NewConflict(fmt.Sprintf("%s %s is no longer FAILED, retry already in flight", kind, id)).AddEntity(string(kind))
	}

	redispatch(ctx)

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"kind": kind,
		"id":   id,
	}).Info("re-dispatched failed ledger sync")

	return &models.SyncRecordRef{
		Kind:       kind,
		ID:         id.String(),
		SyncStatus: models.SyncStatusPending,
	}, nil
}

// loadForRetry resolves a kind+id to the record's current sync status and
// the dispatch call that re-submits it. Regulatory records re-submit as a
// creation while still PENDING and as a decision once decided.
func (s *Service) loadForRetry(ctx context.Context, kind models.EntityKind, id uuid.UUID) (func(context.Context), models.SyncStatus, error) {
	notFound := func() error {
		return errors.NewNotFound(string(kind), id.String())
	}

	switch kind {
	case models.EntityKindProduct:
		record, err := s.products.GetByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if record == nil {
			return nil, "", notFound()
		}
		return func(ctx context.Context) { s.dispatcher.ProductCreated(ctx, record) }, record.SyncStatus, nil

	case models.EntityKindBatch:
		record, err := s.batches.GetByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if record == nil {
			return nil, "", notFound()
		}
		return func(ctx context.Context) { s.dispatcher.BatchCreated(ctx, record) }, record.SyncStatus, nil

	case models.EntityKindLifecycleEvent:
		record, err := s.lifecycle.GetByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if record == nil {
			return nil, "", notFound()
		}
		return func(ctx context.Context) { s.dispatcher.LifecycleEventRecorded(ctx, record) }, record.SyncStatus, nil

	case models.EntityKindTransport:
		record, err := s.transports.GetByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if record == nil {
			return nil, "", notFound()
		}
		return func(ctx context.Context) { s.dispatcher.TransportCreated(ctx, record) }, record.SyncStatus, nil

	case models.EntityKindTemperatureLog:
		record, err := s.tempLogs.GetByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if record == nil {
			return nil, "", notFound()
		}
		return func(ctx context.Context) { s.dispatcher.TemperatureLogged(ctx, record) }, record.SyncStatus, nil

	case models.EntityKindProcessingRecord:
		record, err := s.processing.GetByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if record == nil {
			return nil, "", notFound()
		}
		return func(ctx context.Context) { s.dispatcher.ProcessingRecorded(ctx, record) }, record.SyncStatus, nil

	case models.EntityKindCertification:
		record, err := s.certs.GetByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if record == nil {
			return nil, "", notFound()
		}
		return func(ctx context.Context) { s.dispatcher.CertificationIssued(ctx, record) }, record.SyncStatus, nil

	case models.EntityKindRegulatoryRecord:
		record, err := s.regulatory.GetByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if record == nil {
			return nil, "", notFound()
		}
		if record.Status == models.RegulatoryStatusPending {
			return func(ctx context.Context) { s.dispatcher.RegulatoryRecordCreated(ctx, record) }, record.SyncStatus, nil
		}
		return func(ctx context.Context) { s.dispatcher.RegulatoryDecided(ctx, record) }, record.SyncStatus, nil

	default:
		return nil, "", errors.NewInvalidInputf("unknown entity kind %q", kind)
	}
}
