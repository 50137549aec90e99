package supplychain

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	cloverContext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/dispatch"
	cloverErrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/ledger"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func actorCtx(role roles.Role) context.Context {
	ctx := cloverContext.SetActorID(context.Background(), "actor-"+string(role))
	return cloverContext.SetActorRole(ctx, string(role))
}

// store backs every fake repository so sync outcome writes are visible
// through the entity repositories, the way the real repositories share one
// database. Slices keep listings in insertion order.
type store struct {
	mu         sync.Mutex
	products   []models.Product
	batches    []models.Batch
	events     []models.LifecycleEvent
	transports []models.Transport
	tempLogs   []models.TemperatureLog
	processing []models.ProcessingRecord
	certs      []models.Certification
	regulatory []models.RegulatoryRecord
}

// syncFields returns a pointer into the stored record so outcome writes
// mutate what the entity repos read. Callers must hold mu.
func (s *store) syncFields(kind models.EntityKind, id uuid.UUID) *models.SyncFields {
	switch kind {
	case models.EntityKindProduct:
		for i := range s.products {
			if s.products[i].ID == id {
				return &s.products[i].SyncFields
			}
		}
	case models.EntityKindBatch:
		for i := range s.batches {
			if s.batches[i].ID == id {
				return &s.batches[i].SyncFields
			}
		}
	case models.EntityKindLifecycleEvent:
		for i := range s.events {
			if s.events[i].ID == id {
				return &s.events[i].SyncFields
			}
		}
	case models.EntityKindTransport:
		for i := range s.transports {
			if s.transports[i].ID == id {
				return &s.transports[i].SyncFields
			}
		}
	case models.EntityKindTemperatureLog:
		for i := range s.tempLogs {
			if s.tempLogs[i].ID == id {
				return &s.tempLogs[i].SyncFields
			}
		}
	case models.EntityKindProcessingRecord:
		for i := range s.processing {
			if s.processing[i].ID == id {
				return &s.processing[i].SyncFields
			}
		}
	case models.EntityKindCertification:
		for i := range s.certs {
			if s.certs[i].ID == id {
				return &s.certs[i].SyncFields
			}
		}
	case models.EntityKindRegulatoryRecord:
		for i := range s.regulatory {
			if s.regulatory[i].ID == id {
				return &s.regulatory[i].SyncFields
			}
		}
	}
	return nil
}

func pendingSync() models.SyncFields {
	return models.SyncFields{SyncStatus: models.SyncStatusPending}
}

type fakeProducts struct{ s *store }

func (f *fakeProducts) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	now := time.Now().UTC()
	product := models.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
		SyncFields:  pendingSync(),
	}
	f.s.products = append(f.s.products, product)
	return &product, nil
}

func (f *fakeProducts) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.products {
		if f.s.products[i].ID == id {
			found := f.s.products[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeProducts) List(ctx context.Context, activeOnly bool, page, pageSize int) ([]models.Product, int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var items []models.Product
	for _, product := range f.s.products {
		if activeOnly && !product.IsActive {
			continue
		}
		items = append(items, product)
	}
	return pageOf(items, page, pageSize), len(items), nil
}

func (f *fakeProducts) Update(ctx context.Context, id uuid.UUID, req models.UpdateProductRequest) (*models.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.products {
		if f.s.products[i].ID == id {
			if req.Name != nil {
				f.s.products[i].Name = *req.Name
			}
			if req.Description != nil {
				f.s.products[i].Description = *req.Description
			}
			f.s.products[i].UpdatedAt = time.Now().UTC()
			found := f.s.products[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeProducts) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.products {
		if f.s.products[i].ID == id {
			f.s.products[i].IsActive = active
			f.s.products[i].UpdatedAt = time.Now().UTC()
			found := f.s.products[i]
			return &found, nil
		}
	}
	return nil, nil
}

type fakeBatches struct{ s *store }

func (f *fakeBatches) Create(ctx context.Context, req models.CreateBatchRequest) (*models.Batch, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for _, existing := range f.s.batches {
		if existing.BatchNumber == req.BatchNumber {
			return nil, cloverErrors.NewConflict("batch number " + req.BatchNumber + " already exists").AddEntity("batch")
		}
	}

	now := time.Now().UTC()
	batch := models.Batch{
		ID:              uuid.New(),
		ProductID:       req.ProductID,
		FarmerID:        req.FarmerID,
		BatchNumber:     req.BatchNumber,
		Status:          models.BatchStatusCreated,
		Quantity:        req.Quantity,
		StartDate:       req.StartDate,
		ExpectedEndDate: req.ExpectedEndDate,
		Location:        req.Location,
		QRCode:          req.QRCode,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
		SyncFields:      pendingSync(),
	}
	f.s.batches = append(f.s.batches, batch)
	return &batch, nil
}

func (f *fakeBatches) GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.batches {
		if f.s.batches[i].ID == id {
			found := f.s.batches[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeBatches) GetByBatchNumber(ctx context.Context, batchNumber string) (*models.Batch, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.batches {
		if f.s.batches[i].BatchNumber == batchNumber {
			found := f.s.batches[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeBatches) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var items []models.Batch
	for _, batch := range f.s.batches {
		if filter.FarmerID != nil && batch.FarmerID != *filter.FarmerID {
			continue
		}
		if filter.Status != nil && batch.Status != *filter.Status {
			continue
		}
		items = append(items, batch)
	}
	return pageOf(items, filter.Page, filter.PageSize), len(items), nil
}

func (f *fakeBatches) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BatchStatus, actualEndDate *time.Time) (*models.Batch, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.batches {
		if f.s.batches[i].ID == id {
			if f.s.batches[i].Status != from {
				return nil, nil
			}
			f.s.batches[i].Status = to
			if actualEndDate != nil {
				f.s.batches[i].ActualEndDate = actualEndDate
			}
			f.s.batches[i].UpdatedAt = time.Now().UTC()
			found := f.s.batches[i]
			return &found, nil
		}
	}
	return nil, nil
}

type fakeLifecycle struct{ s *store }

func (f *fakeLifecycle) Create(ctx context.Context, batchID uuid.UUID, recordedBy string, req models.RecordLifecycleEventRequest) (*models.LifecycleEvent, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	event := models.LifecycleEvent{
		ID:               uuid.New(),
		BatchID:          batchID,
		EventType:        req.EventType,
		Description:      req.Description,
		EventDate:        req.EventDate,
		QuantityAffected: req.QuantityAffected,
		RecordedBy:       recordedBy,
		CreatedAt:        time.Now().UTC(),
		SyncFields:       pendingSync(),
	}
	f.s.events = append(f.s.events, event)
	return &event, nil
}

func (f *fakeLifecycle) GetByID(ctx context.Context, id uuid.UUID) (*models.LifecycleEvent, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.events {
		if f.s.events[i].ID == id {
			found := f.s.events[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeLifecycle) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.LifecycleEvent, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var items []models.LifecycleEvent
	for _, event := range f.s.events {
		if event.BatchID == batchID {
			items = append(items, event)
		}
	}
	return items, nil
}

type fakeTransports struct{ s *store }

func (f *fakeTransports) Create(ctx context.Context, req models.CreateTransportRequest) (*models.Transport, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	now := time.Now().UTC()
	transport := models.Transport{
		ID:                   uuid.New(),
		BatchID:              req.BatchID,
		FromPartyID:          req.FromPartyID,
		ToPartyID:            req.ToPartyID,
		VehicleID:            req.VehicleID,
		DriverName:           req.DriverName,
		DepartureTime:        req.DepartureTime,
		OriginLocation:       req.OriginLocation,
		DestinationLocation:  req.DestinationLocation,
		TemperatureMonitored: req.TemperatureMonitored,
		Status:               models.TransportStatusCreated,
		Notes:                req.Notes,
		CreatedAt:            now,
		UpdatedAt:            now,
		SyncFields:           pendingSync(),
	}
	f.s.transports = append(f.s.transports, transport)
	return &transport, nil
}

func (f *fakeTransports) GetByID(ctx context.Context, id uuid.UUID) (*models.Transport, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.transports {
		if f.s.transports[i].ID == id {
			found := f.s.transports[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeTransports) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Transport, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var items []models.Transport
	for _, transport := range f.s.transports {
		if transport.BatchID == batchID {
			items = append(items, transport)
		}
	}
	return items, nil
}

func (f *fakeTransports) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TransportStatus, arrivalTime *time.Time) (*models.Transport, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.transports {
		if f.s.transports[i].ID == id {
			if f.s.transports[i].Status != from {
				return nil, nil
			}
			f.s.transports[i].Status = to
			if arrivalTime != nil {
				f.s.transports[i].ArrivalTime = arrivalTime
			}
			f.s.transports[i].UpdatedAt = time.Now().UTC()
			found := f.s.transports[i]
			return &found, nil
		}
	}
	return nil, nil
}

type fakeTempLogs struct{ s *store }

func (f *fakeTempLogs) Create(ctx context.Context, transportID uuid.UUID, isViolation bool, req models.RecordTemperatureRequest) (*models.TemperatureLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	log := models.TemperatureLog{
		ID:          uuid.New(),
		TransportID: transportID,
		Temperature: req.Temperature,
		RecordedAt:  req.RecordedAt,
		Location:    req.Location,
		IsViolation: isViolation,
		CreatedAt:   time.Now().UTC(),
		SyncFields:  pendingSync(),
	}
	f.s.tempLogs = append(f.s.tempLogs, log)
	return &log, nil
}

func (f *fakeTempLogs) GetByID(ctx context.Context, id uuid.UUID) (*models.TemperatureLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.tempLogs {
		if f.s.tempLogs[i].ID == id {
			found := f.s.tempLogs[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeTempLogs) ListByTransport(ctx context.Context, transportID uuid.UUID, violationsOnly bool) ([]models.TemperatureLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var items []models.TemperatureLog
	for _, log := range f.s.tempLogs {
		if log.TransportID != transportID {
			continue
		}
		if violationsOnly && !log.IsViolation {
			continue
		}
		items = append(items, log)
	}
	return items, nil
}

type fakeProcessing struct{ s *store }

func (f *fakeProcessing) Create(ctx context.Context, req models.RecordProcessingRequest) (*models.ProcessingRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	record := models.ProcessingRecord{
		ID:             uuid.New(),
		BatchID:        req.BatchID,
		FacilityName:   req.FacilityName,
		SlaughterCount: req.SlaughterCount,
		YieldAmount:    req.YieldAmount,
		QualityScore:   req.QualityScore,
		ProcessedAt:    req.ProcessedAt,
		Notes:          req.Notes,
		CreatedAt:      time.Now().UTC(),
		SyncFields:     pendingSync(),
	}
	f.s.processing = append(f.s.processing, record)
	return &record, nil
}

func (f *fakeProcessing) GetByID(ctx context.Context, id uuid.UUID) (*models.ProcessingRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.processing {
		if f.s.processing[i].ID == id {
			found := f.s.processing[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeProcessing) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.ProcessingRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var items []models.ProcessingRecord
	for _, record := range f.s.processing {
		if record.BatchID == batchID {
			items = append(items, record)
		}
	}
	return items, nil
}

type fakeCerts struct{ s *store }

func (f *fakeCerts) Create(ctx context.Context, req models.IssueCertificationRequest) (*models.Certification, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	now := time.Now().UTC()
	cert := models.Certification{
		ID:           uuid.New(),
		ProcessingID: req.ProcessingID,
		CertType:     req.CertType,
		Issuer:       req.Issuer,
		IssueDate:    req.IssueDate,
		ExpiryDate:   req.ExpiryDate,
		Status:       models.CertificationStatusPending,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
		SyncFields:   pendingSync(),
	}
	f.s.certs = append(f.s.certs, cert)
	return &cert, nil
}

func (f *fakeCerts) GetByID(ctx context.Context, id uuid.UUID) (*models.Certification, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.certs {
		if f.s.certs[i].ID == id {
			found := f.s.certs[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeCerts) ListByProcessing(ctx context.Context, processingID uuid.UUID) ([]models.Certification, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var items []models.Certification
	for _, cert := range f.s.certs {
		if cert.ProcessingID == processingID {
			items = append(items, cert)
		}
	}
	return items, nil
}

func (f *fakeCerts) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.CertificationStatus) (*models.Certification, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.certs {
		if f.s.certs[i].ID == id {
			if f.s.certs[i].Status != from {
				return nil, nil
			}
			f.s.certs[i].Status = to
			f.s.certs[i].UpdatedAt = time.Now().UTC()
			found := f.s.certs[i]
			return &found, nil
		}
	}
	return nil, nil
}

type fakeRegulatory struct{ s *store }

func (f *fakeRegulatory) Create(ctx context.Context, regulatorID string, req models.CreateRegulatoryRecordRequest) (*models.RegulatoryRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	details := req.Details
	if details == nil {
		details = map[string]any{}
	}

	now := time.Now().UTC()
	record := models.RegulatoryRecord{
		ID:          uuid.New(),
		BatchID:     req.BatchID,
		RecordType:  req.RecordType,
		Status:      models.RegulatoryStatusPending,
		RegulatorID: regulatorID,
		AuditFlags:  database.NewJSONB([]string{}),
		Details:     database.NewJSONB(details),
		CreatedAt:   now,
		UpdatedAt:   now,
		SyncFields:  pendingSync(),
	}
	f.s.regulatory = append(f.s.regulatory, record)
	return &record, nil
}

func (f *fakeRegulatory) GetByID(ctx context.Context, id uuid.UUID) (*models.RegulatoryRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.regulatory {
		if f.s.regulatory[i].ID == id {
			found := f.s.regulatory[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeRegulatory) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.RegulatoryRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var items []models.RegulatoryRecord
	for _, record := range f.s.regulatory {
		if record.BatchID == batchID {
			items = append(items, record)
		}
	}
	return items, nil
}

func (f *fakeRegulatory) Decide(ctx context.Context, id uuid.UUID, to models.RegulatoryStatus, reason *string) (*models.RegulatoryRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.regulatory {
		if f.s.regulatory[i].ID == id {
			if f.s.regulatory[i].Status != models.RegulatoryStatusPending {
				return nil, nil
			}
			f.s.regulatory[i].Status = to
			f.s.regulatory[i].RejectionReason = reason
			f.s.regulatory[i].SyncFields = pendingSync()
			f.s.regulatory[i].UpdatedAt = time.Now().UTC()
			found := f.s.regulatory[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeRegulatory) AddAuditFlag(ctx context.Context, id uuid.UUID, flag string) (*models.RegulatoryRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for i := range f.s.regulatory {
		if f.s.regulatory[i].ID == id {
			flags := f.s.regulatory[i].AuditFlags.Data
			duplicate := false
			for _, existing := range flags {
				if existing == flag {
					duplicate = true
					break
				}
			}
			if !duplicate {
				f.s.regulatory[i].AuditFlags = database.NewJSONB(append(flags, flag))
				f.s.regulatory[i].UpdatedAt = time.Now().UTC()
			}
			found := f.s.regulatory[i]
			return &found, nil
		}
	}
	return nil, nil
}

type fakeSyncState struct{ s *store }

func (f *fakeSyncState) RecordOutcome(ctx context.Context, kind models.EntityKind, id uuid.UUID, outcome models.SyncOutcome) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	fields := f.s.syncFields(kind, id)
	if fields == nil || fields.SyncStatus != models.SyncStatusPending {
		return false, nil
	}

	switch outcome.Status {
	case models.SyncStatusConfirmed:
		now := time.Now().UTC()
		fields.SyncStatus = models.SyncStatusConfirmed
		fields.LedgerTxID = &outcome.TxID
		fields.SyncError = nil
		fields.SyncedAt = &now
	case models.SyncStatusFailed:
		message := outcome.Error
		fields.SyncStatus = models.SyncStatusFailed
		fields.SyncError = &message
		fields.LedgerTxID = nil
		fields.SyncedAt = nil
	}
	return true, nil
}

func (f *fakeSyncState) ResetForRetry(ctx context.Context, kind models.EntityKind, id uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	fields := f.s.syncFields(kind, id)
	if fields == nil || fields.SyncStatus != models.SyncStatusFailed {
		return false, nil
	}
	*fields = pendingSync()
	return true, nil
}

func (f *fakeSyncState) ListFailures(ctx context.Context, kind *models.EntityKind, page, pageSize int) ([]models.SyncRecordRef, int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	var refs []models.SyncRecordRef
	add := func(k models.EntityKind, id uuid.UUID, fields models.SyncFields, createdAt time.Time) {
		if kind != nil && k != *kind {
			return
		}
		if fields.SyncStatus != models.SyncStatusFailed {
			return
		}
		refs = append(refs, models.SyncRecordRef{
			Kind:       k,
			ID:         id.String(),
			SyncStatus: fields.SyncStatus,
			SyncError:  fields.SyncError,
			SyncedAt:   fields.SyncedAt,
			CreatedAt:  createdAt,
		})
	}

	for _, p := range f.s.products {
		add(models.EntityKindProduct, p.ID, p.SyncFields, p.CreatedAt)
	}
	for _, b := range f.s.batches {
		add(models.EntityKindBatch, b.ID, b.SyncFields, b.CreatedAt)
	}
	for _, e := range f.s.events {
		add(models.EntityKindLifecycleEvent, e.ID, e.SyncFields, e.CreatedAt)
	}
	for _, tr := range f.s.transports {
		add(models.EntityKindTransport, tr.ID, tr.SyncFields, tr.CreatedAt)
	}
	for _, l := range f.s.tempLogs {
		add(models.EntityKindTemperatureLog, l.ID, l.SyncFields, l.CreatedAt)
	}
	for _, pr := range f.s.processing {
		add(models.EntityKindProcessingRecord, pr.ID, pr.SyncFields, pr.CreatedAt)
	}
	for _, c := range f.s.certs {
		add(models.EntityKindCertification, c.ID, c.SyncFields, c.CreatedAt)
	}
	for _, r := range f.s.regulatory {
		add(models.EntityKindRegulatoryRecord, r.ID, r.SyncFields, r.CreatedAt)
	}

	return pageOf(refs, page, pageSize), len(refs), nil
}

func (f *fakeSyncState) Summary(ctx context.Context) ([]models.SyncSummary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	counts := map[models.EntityKind]*models.SyncSummary{}
	for _, kind := range models.EntityKinds {
		counts[kind] = &models.SyncSummary{Kind: kind}
	}

	tally := func(kind models.EntityKind, fields models.SyncFields) {
		switch fields.SyncStatus {
		case models.SyncStatusPending:
			counts[kind].Pending++
		case models.SyncStatusConfirmed:
			counts[kind].Confirmed++
		case models.SyncStatusFailed:
			counts[kind].Failed++
		}
	}

	for _, p := range f.s.products {
		tally(models.EntityKindProduct, p.SyncFields)
	}
	for _, b := range f.s.batches {
		tally(models.EntityKindBatch, b.SyncFields)
	}
	for _, e := range f.s.events {
		tally(models.EntityKindLifecycleEvent, e.SyncFields)
	}
	for _, tr := range f.s.transports {
		tally(models.EntityKindTransport, tr.SyncFields)
	}
	for _, l := range f.s.tempLogs {
		tally(models.EntityKindTemperatureLog, l.SyncFields)
	}
	for _, pr := range f.s.processing {
		tally(models.EntityKindProcessingRecord, pr.SyncFields)
	}
	for _, c := range f.s.certs {
		tally(models.EntityKindCertification, c.SyncFields)
	}
	for _, r := range f.s.regulatory {
		tally(models.EntityKindRegulatoryRecord, r.SyncFields)
	}

	var summaries []models.SyncSummary
	for _, kind := range models.EntityKinds {
		summaries = append(summaries, *counts[kind])
	}
	return summaries, nil
}

func pageOf[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// fakeLedgerClient stands in for the gateway. With the immediate queue the
// whole submit/record round trip runs inline in the caller's goroutine.
type fakeLedgerClient struct {
	mu          sync.Mutex
	txRef       string
	submitErr   error
	evalPayload []byte
	evalErr     error
	functions   []string
}

func (f *fakeLedgerClient) Submit(ctx context.Context, req ledger.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.functions = append(f.functions, req.Function)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.txRef, nil
}

func (f *fakeLedgerClient) Evaluate(ctx context.Context, req ledger.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	return f.evalPayload, nil
}

func (f *fakeLedgerClient) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitErr = err
}

func (f *fakeLedgerClient) succeed(txRef string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitErr = nil
	f.txRef = txRef
}

func (f *fakeLedgerClient) submitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.functions...)
}

type testService struct {
	*Service
	store  *store
	client *fakeLedgerClient
}

func newTestService(t *testing.T) *testService {
	t.Helper()

	s := &store{}
	client := &fakeLedgerClient{txRef: "tx-1"}
	logger := testLogger()
	syncState := &fakeSyncState{s: s}
	dispatcher := dispatch.NewDispatcher(dispatch.NewImmediateQueue(), ledger.NewContract(client), syncState, logger)

	service := NewService(Dependencies{
		Logger:     logger,
		Products:   &fakeProducts{s: s},
		Batches:    &fakeBatches{s: s},
		Lifecycle:  &fakeLifecycle{s: s},
		Transports: &fakeTransports{s: s},
		TempLogs:   &fakeTempLogs{s: s},
		Processing: &fakeProcessing{s: s},
		Certs:      &fakeCerts{s: s},
		Regulatory: &fakeRegulatory{s: s},
		SyncState:  syncState,
		Dispatcher: dispatcher,
		Contract:   ledger.NewContract(client),
	})

	return &testService{Service: service, store: s, client: client}
}

func (ts *testService) seedProduct(t *testing.T) *models.Product {
	t.Helper()

	product, err := ts.CreateProduct(actorCtx(roles.RoleRegulator), models.CreateProductRequest{
		Name:        "Free Range Chicken",
		Description: "Pasture raised broilers",
	})
	require.NoError(t, err)
	return product
}

func (ts *testService) seedBatch(t *testing.T) *models.Batch {
	t.Helper()

	product := ts.seedProduct(t)
	batch, err := ts.CreateBatch(actorCtx(roles.RoleFarmer), models.CreateBatchRequest{
		ProductID:       product.ID,
		FarmerID:        "farmer-7",
		BatchNumber:     "BATCH-" + strings.ToUpper(uuid.NewString()[:8]),
		Quantity:        500,
		StartDate:       time.Now().UTC(),
		ExpectedEndDate: time.Now().UTC().Add(42 * 24 * time.Hour),
		Location:        "Barn 3",
	})
	require.NoError(t, err)
	return batch
}

func (ts *testService) seedTransport(t *testing.T) *models.Transport {
	t.Helper()

	batch := ts.seedBatch(t)
	transport, err := ts.CreateTransport(actorCtx(roles.RoleFarmer), models.CreateTransportRequest{
		BatchID:              batch.ID,
		FromPartyID:          "farm-1",
		ToPartyID:            "plant-9",
		VehicleID:            "TRUCK-42",
		DriverName:           "J. Mutua",
		DepartureTime:        time.Now().UTC(),
		OriginLocation:       "Nairobi",
		DestinationLocation:  "Nakuru",
		TemperatureMonitored: true,
	})
	require.NoError(t, err)
	return transport
}

func (ts *testService) seedProcessing(t *testing.T) *models.ProcessingRecord {
	t.Helper()

	batch := ts.seedBatch(t)
	record, err := ts.RecordProcessing(actorCtx(roles.RoleProcessor), models.RecordProcessingRequest{
		BatchID:        batch.ID,
		FacilityName:   "Plant 9",
		SlaughterCount: 480,
		YieldAmount:    960.5,
		QualityScore:   92,
		ProcessedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return record
}

func (ts *testService) seedRegulatory(t *testing.T) *models.RegulatoryRecord {
	t.Helper()

	batch := ts.seedBatch(t)
	record, err := ts.CreateRegulatoryRecord(actorCtx(roles.RoleRegulator), models.CreateRegulatoryRecordRequest{
		BatchID:    batch.ID,
		RecordType: "HEALTH_INSPECTION",
	})
	require.NoError(t, err)
	return record
}

func (ts *testService) batchFromStore(t *testing.T, id uuid.UUID) models.Batch {
	t.Helper()

	ts.store.mu.Lock()
	defer ts.store.mu.Unlock()
	for _, batch := range ts.store.batches {
		if batch.ID == id {
			return batch
		}
	}
	t.Fatalf("batch %s not in store", id)
	return models.Batch{}
}
