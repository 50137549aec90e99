package ledger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
)

type captureClient struct {
	submitted []Request
	evaluated []Request
}

func (c *captureClient) Submit(ctx context.Context, req Request) (string, error) {
	c.submitted = append(c.submitted, req)
	return "tx-capture", nil
}

func (c *captureClient) Evaluate(ctx context.Context, req Request) ([]byte, error) {
	c.evaluated = append(c.evaluated, req)
	return []byte("{}"), nil
}

func TestContractCreateBatchArgOrder(t *testing.T) {
	capture := &captureClient{}
	contract := NewContract(capture)

	qrCode := "QR-1"
	batch := &models.Batch{
		ID:              uuid.New(),
		ProductID:       uuid.New(),
		FarmerID:        "farmer-1",
		BatchNumber:     "BATCH-2025-001",
		Quantity:        500,
		StartDate:       time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		ExpectedEndDate: time.Date(2025, 4, 15, 8, 0, 0, 0, time.UTC),
		Location:        "Farm A",
		QRCode:          &qrCode,
	}

	txRef, err := contract.CreateBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, "tx-capture", txRef)

	require.Len(t, capture.submitted, 1)
	req := capture.submitted[0]
	assert.Equal(t, FuncCreateBatch, req.Function)
	assert.Equal(t, []string{
		batch.ID.String(),
		batch.ProductID.String(),
		"farmer-1",
		"BATCH-2025-001",
		"500",
		"2025-03-01T08:00:00Z",
		"2025-04-15T08:00:00Z",
		"Farm A",
		"QR-1",
		"",
	}, req.Args)
}

func TestContractRecordLifecycleEventArgOrder(t *testing.T) {
	capture := &captureClient{}
	contract := NewContract(capture)

	quantity := 12
	event := &models.LifecycleEvent{
		ID:               uuid.New(),
		BatchID:          uuid.New(),
		EventType:        models.LifecycleEventVaccination,
		Description:      "first round",
		EventDate:        time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		QuantityAffected: &quantity,
		RecordedBy:       "farmer-1",
	}

	_, err := contract.RecordLifecycleEvent(context.Background(), event)
	require.NoError(t, err)

	require.Len(t, capture.submitted, 1)
	req := capture.submitted[0]
	assert.Equal(t, FuncRecordLifecycleEvent, req.Function)
	assert.Equal(t, []string{
		event.ID.String(),
		event.BatchID.String(),
		"VACCINATION",
		"first round",
		"farmer-1",
		"2025-03-10T09:30:00Z",
		"12",
	}, req.Args)
}

func TestContractAddTemperatureLogFormatsReading(t *testing.T) {
	capture := &captureClient{}
	contract := NewContract(capture)

	log := &models.TemperatureLog{
		ID:          uuid.New(),
		TransportID: uuid.New(),
		Temperature: 8.5,
		RecordedAt:  time.Date(2025, 3, 20, 14, 0, 0, 0, time.UTC),
		Location:    "Highway 12",
	}

	_, err := contract.AddTemperatureLog(context.Background(), log)
	require.NoError(t, err)

	require.Len(t, capture.submitted, 1)
	assert.Equal(t, "8.5", capture.submitted[0].Args[2])
}

func TestContractRegulatoryRecordSerializesDetails(t *testing.T) {
	capture := &captureClient{}
	contract := NewContract(capture)

	record := &models.RegulatoryRecord{
		ID:          uuid.New(),
		BatchID:     uuid.New(),
		RecordType:  "INSPECTION",
		RegulatorID: "regulator-1",
		Details:     database.NewJSONB(map[string]any{"finding": "clean"}),
	}

	_, err := contract.CreateRegulatoryRecord(context.Background(), record)
	require.NoError(t, err)

	require.Len(t, capture.submitted, 1)
	req := capture.submitted[0]
	assert.Equal(t, FuncCreateRegulatoryRecord, req.Function)
	assert.Contains(t, req.Args[4], `"finding":"clean"`)
}

func TestContractUpdateRegulatoryStatusCarriesReason(t *testing.T) {
	capture := &captureClient{}
	contract := NewContract(capture)

	reason := "missing documentation"
	record := &models.RegulatoryRecord{
		ID:              uuid.New(),
		Status:          models.RegulatoryStatusRejected,
		RejectionReason: &reason,
	}

	_, err := contract.UpdateRegulatoryStatus(context.Background(), record)
	require.NoError(t, err)

	require.Len(t, capture.submitted, 1)
	assert.Equal(t, []string{
		record.ID.String(),
		"REJECTED",
		"missing documentation",
	}, capture.submitted[0].Args)
}

func TestContractEvaluateReads(t *testing.T) {
	capture := &captureClient{}
	contract := NewContract(capture)

	_, err := contract.GetBatch(context.Background(), "batch-1")
	require.NoError(t, err)
	_, err = contract.GetBatchLifecycleEvents(context.Background(), "batch-1")
	require.NoError(t, err)

	require.Len(t, capture.evaluated, 2)
	assert.Equal(t, FuncGetBatch, capture.evaluated[0].Function)
	assert.Equal(t, FuncGetBatchLifecycleEvents, capture.evaluated[1].Function)
	assert.Equal(t, []string{"batch-1"}, capture.evaluated[0].Args)
}

func TestNoOpClientReturnsSyntheticReference(t *testing.T) {
	client := NewNoOpClient(testLogger())

	txRef, err := client.Submit(context.Background(), Request{Function: FuncCreateBatch})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(txRef, "NOOP-"))

	second, err := client.Submit(context.Background(), Request{Function: FuncCreateBatch})
	require.NoError(t, err)
	assert.NotEqual(t, txRef, second)

	payload, err := client.Evaluate(context.Background(), Request{Function: FuncGetBatch})
	require.NoError(t, err)
	assert.Nil(t, payload)
}
