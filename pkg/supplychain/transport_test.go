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

func validTransportRequest(batchID uuid.UUID) models.CreateTransportRequest {
	return models.CreateTransportRequest{
		BatchID:              batchID,
		FromPartyID:          "farm-1",
		ToPartyID:            "plant-9",
		VehicleID:            "TRUCK-42",
		DriverName:           "J. Mutua",
		DepartureTime:        time.Now().UTC(),
		OriginLocation:       "Nairobi",
		DestinationLocation:  "Nakuru",
		TemperatureMonitored: true,
	}
}

func TestCreateTransportConfirmsLedgerSync(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)

	transport, err := ts.CreateTransport(actorCtx(roles.RoleFarmer), validTransportRequest(batch.ID))
	require.NoError(t, err)
	assert.Equal(t, models.TransportStatusCreated, transport.Status)
	assert.Equal(t, models.SyncStatusPending, transport.SyncStatus)

	ts.store.mu.Lock()
	stored := ts.store.transports[0]
	ts.store.mu.Unlock()
	assert.Equal(t, models.SyncStatusConfirmed, stored.SyncStatus)
	assert.Contains(t, ts.client.submitted(), ledger.FuncCreateTransportManifest)
}

func TestCreateTransportValidatesParties(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)

	tests := []struct {
		name   string
		mutate func(*models.CreateTransportRequest)
	}{
		{"empty from party", func(r *models.CreateTransportRequest) { r.FromPartyID = "" }},
		{"empty to party", func(r *models.CreateTransportRequest) { r.ToPartyID = "" }},
		{"empty vehicle", func(r *models.CreateTransportRequest) { r.VehicleID = "" }},
		{"empty driver", func(r *models.CreateTransportRequest) { r.DriverName = "" }},
		{"empty origin", func(r *models.CreateTransportRequest) { r.OriginLocation = "" }},
		{"empty destination", func(r *models.CreateTransportRequest) { r.DestinationLocation = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := validTransportRequest(batch.ID)
			tt.mutate(&request)

			_, err := ts.CreateTransport(actorCtx(roles.RoleFarmer), request)
			assert.True(t, cloverErrors.IsInvalidInput(err))
		})
	}
}

func TestCreateTransportUnknownBatch(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.CreateTransport(actorCtx(roles.RoleFarmer), validTransportRequest(uuid.New()))
	assert.True(t, cloverErrors.IsNotFound(err))
}

func TestUpdateTransportStatusFlow(t *testing.T) {
	ts := newTestService(t)
	transport := ts.seedTransport(t)
	ctx := actorCtx(roles.RoleTransporter)

	inTransit, err := ts.UpdateTransportStatus(ctx, transport.ID, models.UpdateTransportStatusRequest{Status: models.TransportStatusInTransit})
	require.NoError(t, err)
	assert.Equal(t, models.TransportStatusInTransit, inTransit.Status)
	assert.Nil(t, inTransit.ArrivalTime)

	completed, err := ts.UpdateTransportStatus(ctx, transport.ID, models.UpdateTransportStatusRequest{Status: models.TransportStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.TransportStatusCompleted, completed.Status)
	require.NotNil(t, completed.ArrivalTime, "completing a transport stamps the arrival")
	assert.WithinDuration(t, time.Now().UTC(), *completed.ArrivalTime, 5*time.Second)
}

func TestUpdateTransportStatusHonorsExplicitArrival(t *testing.T) {
	ts := newTestService(t)
	transport := ts.seedTransport(t)
	ctx := actorCtx(roles.RoleTransporter)

	_, err := ts.UpdateTransportStatus(ctx, transport.ID, models.UpdateTransportStatusRequest{Status: models.TransportStatusInTransit})
	require.NoError(t, err)

	arrival := time.Date(2026, 3, 2, 18, 45, 0, 0, time.UTC)
	completed, err := ts.UpdateTransportStatus(ctx, transport.ID, models.UpdateTransportStatusRequest{
		Status:      models.TransportStatusCompleted,
		ArrivalTime: &arrival,
	})
	require.NoError(t, err)
	require.NotNil(t, completed.ArrivalTime)
	assert.True(t, completed.ArrivalTime.Equal(arrival))
}

func TestUpdateTransportStatusRejectsSkippingTransit(t *testing.T) {
	ts := newTestService(t)
	transport := ts.seedTransport(t)

	_, err := ts.UpdateTransportStatus(actorCtx(roles.RoleTransporter), transport.ID, models.UpdateTransportStatusRequest{Status: models.TransportStatusCompleted})
	assert.True(t, cloverErrors.IsInvalidTransition(err))
}

func TestUpdateTransportStatusCompletedIsTerminal(t *testing.T) {
	ts := newTestService(t)
	transport := ts.seedTransport(t)
	ctx := actorCtx(roles.RoleTransporter)

	_, err := ts.UpdateTransportStatus(ctx, transport.ID, models.UpdateTransportStatusRequest{Status: models.TransportStatusInTransit})
	require.NoError(t, err)
	_, err = ts.UpdateTransportStatus(ctx, transport.ID, models.UpdateTransportStatusRequest{Status: models.TransportStatusCompleted})
	require.NoError(t, err)

	_, err = ts.UpdateTransportStatus(ctx, transport.ID, models.UpdateTransportStatusRequest{Status: models.TransportStatusInTransit})
	assert.True(t, cloverErrors.IsInvalidTransition(err))
}

func TestTransportStatusChangeStaysLocal(t *testing.T) {
	ts := newTestService(t)
	transport := ts.seedTransport(t)
	before := len(ts.client.submitted())

	_, err := ts.UpdateTransportStatus(actorCtx(roles.RoleTransporter), transport.ID, models.UpdateTransportStatusRequest{Status: models.TransportStatusInTransit})
	require.NoError(t, err)

	assert.Len(t, ts.client.submitted(), before, "status transitions never reach the ledger")
}

func TestUpdateTransportStatusCapability(t *testing.T) {
	ts := newTestService(t)
	transport := ts.seedTransport(t)

	_, err := ts.UpdateTransportStatus(actorCtx(roles.RoleFarmer), transport.ID, models.UpdateTransportStatusRequest{Status: models.TransportStatusInTransit})
	assert.True(t, cloverErrors.IsUnauthorized(err))
}

func TestUpdateTransportStatusNotFound(t *testing.T) {
	ts := newTestService(t)

	_, err := ts.UpdateTransportStatus(actorCtx(roles.RoleTransporter), uuid.New(), models.UpdateTransportStatusRequest{Status: models.TransportStatusInTransit})
	assert.True(t, cloverErrors.IsNotFound(err))
}

func TestListTransportsByBatch(t *testing.T) {
	ts := newTestService(t)
	batch := ts.seedBatch(t)
	ctx := actorCtx(roles.RoleFarmer)

	for i := 0; i < 2; i++ {
		_, err := ts.CreateTransport(ctx, validTransportRequest(batch.ID))
		require.NoError(t, err)
	}

	transports, err := ts.ListTransportsByBatch(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, transports, 2)
}
