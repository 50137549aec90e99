package supplychain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	cloverContext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
	"github.com/Ramsey-B/clover/pkg/statemachine"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/validation"
)

// CreateRegulatoryRecord opens a regulatory record against a batch. The
// acting regulator is taken from the request context, not the body.
func (s *Service) CreateRegulatoryRecord(ctx context.Context, req models.CreateRegulatoryRecordRequest) (*models.RegulatoryRecord, error) {
	if err := roles.Require(ctx, roles.CapManageRegulatory); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.CreateRegulatoryRecord")
	defer span.End()

	if err := validation.NonEmptyString(req.RecordType, "record_type"); err != nil {
		return nil, err
	}

	parent, err := s.batches.GetByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "batch", req.BatchID.String()); err != nil {
		return nil, err
	}

	created, err := s.regulatory.Create(ctx, cloverContext.GetActorID(ctx), req)
	if err != nil {
		return nil, err
	}

	s.dispatcher.RegulatoryRecordCreated(ctx, created)

	if s.emitter != nil {
		s.emitter.EmitRegulatoryRecordUpdated(ctx, created)
	}
	if s.provenance != nil {
		s.provenance.UpsertRegulatoryRecord(ctx, created)
	}

	return created, nil
}

// GetRegulatoryRecord retrieves a regulatory record by ID
func (s *Service) GetRegulatoryRecord(ctx context.Context, id uuid.UUID) (*models.RegulatoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.GetRegulatoryRecord")
	defer span.End()

	found, err := s.regulatory.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errors.NewNotFound("regulatory record", id.String())
	}

	return found, nil
}

// ListRegulatoryByBatch retrieves a batch's regulatory records oldest first
func (s *Service) ListRegulatoryByBatch(ctx context.Context, batchID uuid.UUID) ([]models.RegulatoryRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.ListRegulatoryByBatch")
	defer span.End()

	parent, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "batch", batchID.String()); err != nil {
		return nil, err
	}

	return s.regulatory.ListByBatch(ctx, batchID)
}

// DecideRegulatoryRecord approves or rejects a pending record. Rejections
// require a reason. The decision is ledgered as its own submission.
func (s *Service) DecideRegulatoryRecord(ctx context.Context, id uuid.UUID, to models.RegulatoryStatus, reason string) (*models.RegulatoryRecord, error) {
	if err := roles.Require(ctx, roles.CapManageRegulatory); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.DecideRegulatoryRecord")
	defer span.End()

	if to == models.RegulatoryStatusRejected && strings.TrimSpace(reason) == "" {
		return nil, errors.NewInvalidInput("rejection reason is required").AddEntity("regulatory_record")
	}

	existing, err := s.regulatory.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.NewNotFound("regulatory record", id.String())
	}

	if err := statemachine.Validate(models.EntityKindRegulatoryRecord, string(existing.Status), string(to)); err != nil {
		return nil, err
	}

	var rejectionReason *string
	if to == models.RegulatoryStatusRejected {
		rejectionReason = &reason
	}

	updated, err := s.regulatory.Decide(ctx, id, to, rejectionReason)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NewConflict("regulatory record was already decided").AddEntity("regulatory_record")
	}

	s.dispatcher.RegulatoryDecided(ctx, updated)

	if s.emitter != nil {
		s.emitter.EmitRegulatoryRecordUpdated(ctx, updated)
	}
	if s.provenance != nil {
		s.provenance.UpsertRegulatoryRecord(ctx, updated)
	}

	return updated, nil
}

// AddAuditFlag appends a flag to a record's audit trail. Duplicates are
// dropped. Flags never touch the ledger.
func (s *Service) AddAuditFlag(ctx context.Context, id uuid.UUID, flag string) (*models.RegulatoryRecord, error) {
	if err := roles.Require(ctx, roles.CapManageRegulatory); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.AddAuditFlag")
	defer span.End()

	if err := validation.NonEmptyString(flag, "flag"); err != nil {
		return nil, err
	}

	updated, err := s.regulatory.AddAuditFlag(ctx, id, flag)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NewNotFound("regulatory record", id.String())
	}

	return updated, nil
}

// ComplianceStatus summarizes a batch's regulatory standing. A batch is
// compliant only when it has at least one record and none are rejected or
// still pending.
func (s *Service) ComplianceStatus(ctx context.Context, batchID uuid.UUID) (*models.ComplianceStatusResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "supplychain.Service.ComplianceStatus")
	defer span.End()

	parent, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireRef(parent, "batch", batchID.String()); err != nil {
		return nil, err
	}

	records, err := s.regulatory.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	status := &models.ComplianceStatusResponse{
		BatchID:       batchID,
		TotalRecords:  len(records),
		AuditFlags:    []string{},
		EvaluatedFrom: time.Now().UTC(),
	}

	seen := map[string]bool{}
	for _, record := range records {
		switch record.Status {
		case models.RegulatoryStatusApproved:
			status.Approved++
		case models.RegulatoryStatusRejected:
			status.Rejected++
		case models.RegulatoryStatusPending:
			status.Pending++
		}
		for _, flag := range record.AuditFlags.Data {
			if !seen[flag] {
				seen[flag] = true
				status.AuditFlags = append(status.AuditFlags, flag)
			}
		}
	}

	status.IsCompliant = status.TotalRecords > 0 && status.Rejected == 0 && status.Pending == 0

	return status, nil
}
