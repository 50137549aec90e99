package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/ledger"
	"github.com/Ramsey-B/clover/pkg/models"
)

type fakeLedgerClient struct {
	txRef     string
	submitErr error
	functions []string
}

func (f *fakeLedgerClient) Submit(ctx context.Context, req ledger.Request) (string, error) {
	f.functions = append(f.functions, req.Function)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.txRef, nil
}

func (f *fakeLedgerClient) Evaluate(ctx context.Context, req ledger.Request) ([]byte, error) {
	return nil, nil
}

type fakeOutcomeRecorder struct {
	mu        sync.Mutex
	outcomes  map[uuid.UUID]models.SyncOutcome
	kinds     map[uuid.UUID]models.EntityKind
	duplicate bool
	err       error
}

func newFakeOutcomeRecorder() *fakeOutcomeRecorder {
	return &fakeOutcomeRecorder{
		outcomes: make(map[uuid.UUID]models.SyncOutcome),
		kinds:    make(map[uuid.UUID]models.EntityKind),
	}
}

func (f *fakeOutcomeRecorder) RecordOutcome(ctx context.Context, kind models.EntityKind, id uuid.UUID, outcome models.SyncOutcome) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return false, f.err
	}
	if f.duplicate {
		return false, nil
	}

	f.outcomes[id] = outcome
	f.kinds[id] = kind
	return true, nil
}

func (f *fakeOutcomeRecorder) outcome(id uuid.UUID) (models.SyncOutcome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out, ok := f.outcomes[id]
	return out, ok
}

type rejectingQueue struct{ err error }

func (q *rejectingQueue) Submit(task Task) error { return q.err }

func TestDispatcherConfirmsOnSuccessfulSubmit(t *testing.T) {
	client := &fakeLedgerClient{txRef: "tx-77"}
	recorder := newFakeOutcomeRecorder()
	dispatcher := NewDispatcher(NewImmediateQueue(), ledger.NewContract(client), recorder, testLogger())

	batch := &models.Batch{ID: uuid.New(), BatchNumber: "BATCH-1"}
	dispatcher.BatchCreated(context.Background(), batch)

	outcome, ok := recorder.outcome(batch.ID)
	require.True(t, ok)
	assert.Equal(t, models.SyncStatusConfirmed, outcome.Status)
	assert.Equal(t, "tx-77", outcome.TxID)
	assert.Equal(t, models.EntityKindBatch, recorder.kinds[batch.ID])
}

func TestDispatcherRecordsFailureMessage(t *testing.T) {
	client := &fakeLedgerClient{submitErr: errors.New("gateway unreachable")}
	recorder := newFakeOutcomeRecorder()
	dispatcher := NewDispatcher(NewImmediateQueue(), ledger.NewContract(client), recorder, testLogger())

	product := &models.Product{ID: uuid.New(), Name: "Free Range Chicken"}
	dispatcher.ProductCreated(context.Background(), product)

	outcome, ok := recorder.outcome(product.ID)
	require.True(t, ok)
	assert.Equal(t, models.SyncStatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "gateway unreachable")
	assert.Empty(t, outcome.TxID)
}

func TestDispatcherMarksFailedWhenQueueRejects(t *testing.T) {
	client := &fakeLedgerClient{txRef: "tx-1"}
	recorder := newFakeOutcomeRecorder()
	dispatcher := NewDispatcher(&rejectingQueue{err: ErrQueueFull}, ledger.NewContract(client), recorder, testLogger())

	transport := &models.Transport{ID: uuid.New()}
	dispatcher.TransportCreated(context.Background(), transport)

	outcome, ok := recorder.outcome(transport.ID)
	require.True(t, ok)
	assert.Equal(t, models.SyncStatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "sync dispatch failed")
	assert.Empty(t, client.functions, "nothing should reach the ledger when the queue rejects")
}

func TestDispatcherAbsorbsDuplicateOutcomes(t *testing.T) {
	client := &fakeLedgerClient{txRef: "tx-1"}
	recorder := newFakeOutcomeRecorder()
	recorder.duplicate = true
	dispatcher := NewDispatcher(NewImmediateQueue(), ledger.NewContract(client), recorder, testLogger())

	// Must not panic or propagate anything when the outcome write is a no-op.
	dispatcher.BatchCreated(context.Background(), &models.Batch{ID: uuid.New()})
}

func TestDispatcherAbsorbsRecorderErrors(t *testing.T) {
	client := &fakeLedgerClient{txRef: "tx-1"}
	recorder := newFakeOutcomeRecorder()
	recorder.err = errors.New("database down")
	dispatcher := NewDispatcher(NewImmediateQueue(), ledger.NewContract(client), recorder, testLogger())

	dispatcher.BatchCreated(context.Background(), &models.Batch{ID: uuid.New()})
}

func TestDispatcherRoutesEachKindToItsContractFunction(t *testing.T) {
	client := &fakeLedgerClient{txRef: "tx-1"}
	recorder := newFakeOutcomeRecorder()
	dispatcher := NewDispatcher(NewImmediateQueue(), ledger.NewContract(client), recorder, testLogger())

	ctx := context.Background()
	dispatcher.ProductCreated(ctx, &models.Product{ID: uuid.New()})
	dispatcher.BatchCreated(ctx, &models.Batch{ID: uuid.New()})
	dispatcher.LifecycleEventRecorded(ctx, &models.LifecycleEvent{ID: uuid.New()})
	dispatcher.TransportCreated(ctx, &models.Transport{ID: uuid.New()})
	dispatcher.TemperatureLogged(ctx, &models.TemperatureLog{ID: uuid.New()})
	dispatcher.ProcessingRecorded(ctx, &models.ProcessingRecord{ID: uuid.New()})
	dispatcher.CertificationIssued(ctx, &models.Certification{ID: uuid.New()})
	dispatcher.RegulatoryRecordCreated(ctx, &models.RegulatoryRecord{ID: uuid.New()})
	dispatcher.RegulatoryDecided(ctx, &models.RegulatoryRecord{ID: uuid.New(), Status: models.RegulatoryStatusApproved})

	assert.Equal(t, []string{
		ledger.FuncCreateProduct,
		ledger.FuncCreateBatch,
		ledger.FuncRecordLifecycleEvent,
		ledger.FuncCreateTransportManifest,
		ledger.FuncAddTemperatureLog,
		ledger.FuncRecordProcessing,
		ledger.FuncIssueCertification,
		ledger.FuncCreateRegulatoryRecord,
		ledger.FuncUpdateRegulatoryStatus,
	}, client.functions)
}
