package supplychain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cloverErrors "github.com/Ramsey-B/clover/pkg/errors"
	"github.com/Ramsey-B/clover/pkg/ledger"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/roles"
)

func validProcessingRequest(batchID uuid.UUID) models.RecordProcessingRequest {
	return models.RecordProcessingRequest{
		BatchID:        batchID,
		FacilityName:   "Plant 9",
		SlaughterCount: 480,
		YieldAmount:    960.5,
		QualityScore:   92,
		ProcessedAt:    time.Now().UTC(),
	}
}

func TestRecordProcessingConfirmsLedgerSync(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)

	record, err := ts.RecordProcessing(actorCtx(roles.RoleProcessor), validProcessingRequest(batch.ID))
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, record.SyncStatus)

	ts.store.mu.Lock()
	stored := ts.store.processing[0]
	ts.store.mu.Unlock()
	assert.Equal(t, models.SyncStatusConfirmed, stored.SyncStatus)
	assert.Contains(t, ts.client.submitted(), ledger.FuncRecordProcessing)
}

func TestRecordProcessingValidatesRequest(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)

	tests := []struct {
		name   string
		mutate func(*models.RecordProcessingRequest)
	}{
		{"empty facility", func(r *models.RecordProcessingRequest) { r.FacilityName = "" }},
		{"zero slaughter count", func(r *models.RecordProcessingRequest) { r.SlaughterCount = 0 }},
		{"negative slaughter count", func(r *models.RecordProcessingRequest) { r.SlaughterCount = -1 }},
		{"zero yield", func(r *models.RecordProcessingRequest) { r.YieldAmount = 0 }},
		{"negative yield", func(r *models.RecordProcessingRequest) { r.YieldAmount = -4.2 }},
		{"score above range", func(r *models.RecordProcessingRequest) { r.QualityScore = 101 }},
		{"score below range", func(r *models.RecordProcessingRequest) { r.QualityScore = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := validProcessingRequest(batch.ID)
			tt.mutate(&request)

			_, err := ts.RecordProcessing(actorCtx(roles.RoleProcessor), request)
			assert.True(t, cloverErrors.IsInvalidInput(err))
		})
	}
}

func TestRecordProcessingAllowsBoundaryScores(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)
	ctx := actorCtx(roles.RoleProcessor)

	for _, score := range []int{0, 100} {
		request := validProcessingRequest(batch.ID)
		request.QualityScore = score

		_, err := ts.RecordProcessing(ctx, request)
		assert.NoError(t, err)
	}
}

func TestRecordProcessingUnknownBatch(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.RecordProcessing(actorCtx(roles.RoleProcessor), validProcessingRequest(uuid.New()))
	assert.True(t, cloverErrors.IsNotFound(err))
}

func TestRecordProcessingCapability(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)

	_, err := ts.RecordProcessing(actorCtx(roles.RoleFarmer), validProcessingRequest(batch.ID))
	assert.True(t, cloverErrors.IsUnauthorized(err))
}

func TestListProcessingByBatch(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)
	ctx := actorCtx(roles.RoleProcessor)

	_, err := ts.RecordProcessing(ctx, validProcessingRequest(batch.ID))
	require.NoError(t, err)

	records, err := ts.ListProcessingByBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGetProcessingRecordNotFound(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.GetProcessingRecord(actorCtx(roles.RoleProcessor), uuid.New())
	assert.True(t, cloverErrors.IsNotFound(err))
}
