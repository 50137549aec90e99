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

func TestRecordLifecycleEventConfirmsLedgerSync(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)

	quantity := 12
	event, err := ts.RecordLifecycleEvent(actorCtx(roles.RoleFarmer), batch.ID, models.RecordLifecycleEventRequest{
		EventType:        models.LifecycleEventMortality,
		Description:      "Heat stress losses overnight",
		EventDate:        time.Now().UTC(),
		QuantityAffected: &quantity,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, event.SyncStatus)
	assert.Equal(t, "actor-farmer", event.RecordedBy, "the recorder comes from the request context")

	ts.store.mu.Lock()
	stored := ts.store.events[0]
	ts.store.mu.Unlock()
	assert.Equal(t, models.SyncStatusConfirmed, stored.SyncStatus)
	assert.Contains(t, ts.client.submitted(), ledger.FuncRecordLifecycleEvent)
}

func TestRecordLifecycleEventValidatesRequest(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)

	zero := 0
	negative := -3

	tests := []struct {
		name    string
		request models.RecordLifecycleEventRequest
	}{
		{
			name: "unknown event type",
			request: models.RecordLifecycleEventRequest{
				EventType:   "HARVEST_MOON",
				Description: "?",
				EventDate:   time.Now().UTC(),
			},
		},
		{
			name: "empty description",
			request: models.RecordLifecycleEventRequest{
				EventType: models.LifecycleEventVaccination,
				EventDate: time.Now().UTC(),
			},
		},
		{
			name: "zero quantity affected",
			request: models.RecordLifecycleEventRequest{
				EventType:        models.LifecycleEventMortality,
				Description:      "losses",
				EventDate:        time.Now().UTC(),
				QuantityAffected: &zero,
			},
		},
		{
			name: "negative quantity affected",
			request: models.RecordLifecycleEventRequest{
				EventType:        models.LifecycleEventMortality,
				Description:      "losses",
				EventDate:        time.Now().UTC(),
				QuantityAffected: &negative,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.RecordLifecycleEvent(actorCtx(roles.RoleFarmer), batch.ID, tt.request)
			assert.True(t, cloverErrors.IsInvalidInput(err))
		})
	}
}

func TestRecordLifecycleEventUnknownBatch(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.RecordLifecycleEvent(actorCtx(roles.RoleFarmer), uuid.New(), models.RecordLifecycleEventRequest{
		EventType:   models.LifecycleEventGeneric,
		Description: "note",
		EventDate:   time.Now().UTC(),
	})
	assert.True(t, cloverErrors.IsNotFound(err))
}

func TestRecordLifecycleEventCapability(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)

	_, err := ts.RecordLifecycleEvent(actorCtx(roles.RoleTransporter), batch.ID, models.RecordLifecycleEventRequest{
		EventType:   models.LifecycleEventGeneric,
		Description: "note",
		EventDate:   time.Now().UTC(),
	})
	assert.True(t, cloverErrors.IsUnauthorized(err))
}

func TestListLifecycleEventsScopedToBatch(t *testing.T) {
	ts := newTestService(t)
	first := ts.seedBatch(t)
	second := ts.seedBatch(t)
	ctx := actorCtx(roles.RoleFarmer)

	for _, description := range []string{"placement", "first weighing"} {
		_, err := ts.RecordLifecycleEvent(ctx, first.ID, models.RecordLifecycleEventRequest{
			EventType:   models.LifecycleEventGeneric,
			Description: description,
			EventDate:   time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	events, err := ts.ListLifecycleEvents(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = ts.ListLifecycleEvents(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGetLifecycleEventNotFound(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.GetLifecycleEvent(actorCtx(roles.RoleFarmer), uuid.New())
	assert.True(t, cloverErrors.IsNotFound(err))
}
