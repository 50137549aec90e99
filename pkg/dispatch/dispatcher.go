package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/ledger"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// OutcomeRecorder persists the terminal result of a sync attempt. The write
// is conditional: it only lands while the record is still PENDING, so a
// second attempt for an already-confirmed record is a no-op.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, kind models.EntityKind, id uuid.UUID, outcome models.SyncOutcome) (bool, error)
}

// Dispatcher mirrors locally committed facts to the ledger. Every method
// snapshots the record, enqueues a submit task and returns immediately.
// Failures are absorbed into the record's sync fields; nothing propagates
// back to the caller.
type Dispatcher struct {
	queue    TaskQueue
	contract *ledger.Contract
	outcomes OutcomeRecorder
	logger   ectologger.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(queue TaskQueue, contract *ledger.Contract, outcomes OutcomeRecorder, logger ectologger.Logger) *Dispatcher {
	return &Dispatcher{
		queue:    queue,
		contract: contract,
		outcomes: outcomes,
		logger:   logger,
	}
}

func (d *Dispatcher) ProductCreated(ctx context.Context, product *models.Product) {
	record := *product
	d.enqueue(ctx, models.EntityKindProduct, record.ID, func(taskCtx context.Context) (string, error) {
		return d.contract.CreateProduct(taskCtx, &record)
	})
}

func (d *Dispatcher) BatchCreated(ctx context.Context, batch *models.Batch) {
	record := *batch
	d.enqueue(ctx, models.EntityKindBatch, record.ID, func(taskCtx context.Context) (string, error) {
		return d.contract.CreateBatch(taskCtx, &record)
	})
}

func (d *Dispatcher) LifecycleEventRecorded(ctx context.Context, event *models.LifecycleEvent) {
	record := *event
	d.enqueue(ctx, models.EntityKindLifecycleEvent, record.ID, func(taskCtx context.Context) (string, error) {
		return d.contract.RecordLifecycleEvent(taskCtx, &record)
	})
}

func (d *Dispatcher) TransportCreated(ctx context.Context, transport *models.Transport) {
	record := *transport
	d.enqueue(ctx, models.EntityKindTransport, record.ID, func(taskCtx context.Context) (string, error) {
		return d.contract.CreateTransportManifest(taskCtx, &record)
	})
}

func (d *Dispatcher) TemperatureLogged(ctx context.Context, log *models.TemperatureLog) {
	record := *log
	d.enqueue(ctx, models.EntityKindTemperatureLog, record.ID, func(taskCtx context.Context) (string, error) {
		return d.contract.AddTemperatureLog(taskCtx, &record)
	})
}

func (d *Dispatcher) ProcessingRecorded(ctx context.Context, processing *models.ProcessingRecord) {
	record := *processing
	d.enqueue(ctx, models.EntityKindProcessingRecord, record.ID, func(taskCtx context.Context) (string, error) {
		return d.contract.RecordProcessing(taskCtx, &record)
	})
}

func (d *Dispatcher) CertificationIssued(ctx context.Context, cert *models.Certification) {
	record := *cert
	d.enqueue(ctx, models.EntityKindCertification, record.ID, func(taskCtx context.Context) (string, error) {
		return d.contract.IssueCertification(taskCtx, &record)
	})
}

func (d *Dispatcher) RegulatoryRecordCreated(ctx context.Context, regulatory *models.RegulatoryRecord) {
	record := *regulatory
	d.enqueue(ctx, models.EntityKindRegulatoryRecord, record.ID, func(taskCtx context.Context) (string, error) {
		return d.contract.CreateRegulatoryRecord(taskCtx, &record)
	})
}

// RegulatoryDecided mirrors an approve/reject decision. The decision write
// already reset the record's sync fields to PENDING.
func (d *Dispatcher) RegulatoryDecided(ctx context.Context, regulatory *models.RegulatoryRecord) {
	record := *regulatory
	d.enqueue(ctx, models.EntityKindRegulatoryRecord, record.ID, func(taskCtx context.Context) (string, error) {
		return d.contract.UpdateRegulatoryStatus(taskCtx, &record)
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, kind models.EntityKind, id uuid.UUID, submit func(context.Context) (string, error)) {
	task := Task{
		Name: fmt.Sprintf("sync.%s.%s", kind, id),
		Run: func(taskCtx context.Context) {
			d.run(taskCtx, kind, id, submit)
		},
	}

	if err := d.queue.Submit(task); err != nil {
		// Absorb the enqueue failure into the sync fields so operators can
		// re-dispatch it later.
		d.logger.WithContext(ctx).WithError(err).Errorf("failed to enqueue %s sync for %s", kind, id)
		d.record(ctx, kind, id, models.FailedOutcome("sync dispatch failed: "+err.Error()))
		metrics.RecordSyncTask(string(kind), "rejected", 0)
	}
}

func (d *Dispatcher) run(ctx context.Context, kind models.EntityKind, id uuid.UUID, submit func(context.Context) (string, error)) {
	ctx, span := tracing.StartSpan(ctx, "Dispatcher.run")
	defer span.End()

	start := time.Now()

	txRef, err := submit(ctx)
	if err != nil {
		metrics.RecordSyncTask(string(kind), "failed", time.Since(start).Seconds())
		d.logger.WithContext(ctx).WithError(err).Errorf("ledger sync for %s %s failed", kind, id)
		d.record(ctx, kind, id, models.FailedOutcome(err.Error()))
		return
	}

	metrics.RecordSyncTask(string(kind), "confirmed", time.Since(start).Seconds())
	d.record(ctx, kind, id, models.ConfirmedOutcome(txRef))
}

func (d *Dispatcher) record(ctx context.Context, kind models.EntityKind, id uuid.UUID, outcome models.SyncOutcome) {
	updated, err := d.outcomes.RecordOutcome(ctx, kind, id, outcome)
	if err != nil {
		d.logger.WithContext(ctx).WithError(err).Errorf("failed to record %s sync outcome for %s %s", outcome.Status, kind, id)
		return
	}

	if !updated {
		d.logger.WithContext(ctx).Infof("sync outcome for %s %s already recorded, skipping", kind, id)
	}
}
