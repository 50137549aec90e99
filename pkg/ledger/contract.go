package ledger

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Contract function names on the supply-chain ledger.
const (
	FuncCreateProduct           = "CreateProduct"
	FuncCreateBatch             = "CreateBatch"
	FuncRecordLifecycleEvent    = "RecordLifecycleEvent"
	FuncCreateTransportManifest = "CreateTransportManifest"
	FuncAddTemperatureLog       = "AddTemperatureLog"
	FuncRecordProcessing        = "RecordProcessing"
	FuncIssueCertification      = "IssueCertification"
	FuncCreateRegulatoryRecord  = "CreateRegulatoryRecord"
	FuncUpdateRegulatoryStatus  = "UpdateRegulatoryStatus"
	FuncGetBatch                = "GetBatch"
	FuncGetBatchLifecycleEvents = "GetBatchLifecycleEvents"
)

// Contract wraps a Client with one method per ledger operation. The arg
// order is part of the gateway contract; keep it stable.
type Contract struct {
	client Client
}

func NewContract(client Client) *Contract {
	return &Contract{client: client}
}

// Client returns the underlying ledger client.
func (c *Contract) Client() Client {
	return c.client
}

func (c *Contract) CreateProduct(ctx context.Context, product *models.Product) (string, error) {
	return c.client.Submit(ctx, Request{
		Function: FuncCreateProduct,
		Args: []string{
			product.ID.String(),
			product.Name,
			product.Description,
		},
	})
}

func (c *Contract) CreateBatch(ctx context.Context, batch *models.Batch) (string, error) {
	return c.client.Submit(ctx, Request{
		Function: FuncCreateBatch,
		Args: []string{
			batch.ID.String(),
			batch.ProductID.String(),
			batch.FarmerID,
			batch.BatchNumber,
			strconv.Itoa(batch.Quantity),
			formatTime(batch.StartDate),
			formatTime(batch.ExpectedEndDate),
			batch.Location,
			stringValue(batch.QRCode),
			stringValue(batch.Notes),
		},
	})
}

func (c *Contract) RecordLifecycleEvent(ctx context.Context, event *models.LifecycleEvent) (string, error) {
	quantity := 0
	if event.QuantityAffected != nil {
		quantity = *event.QuantityAffected
	}

	return c.client.Submit(ctx, Request{
		Function: FuncRecordLifecycleEvent,
		Args: []string{
			event.ID.String(),
			event.BatchID.String(),
			string(event.EventType),
			event.Description,
			event.RecordedBy,
			formatTime(event.EventDate),
			strconv.Itoa(quantity),
		},
	})
}

func (c *Contract) CreateTransportManifest(ctx context.Context, transport *models.Transport) (string, error) {
	return c.client.Submit(ctx, Request{
		Function: FuncCreateTransportManifest,
		Args: []string{
			transport.ID.String(),
			transport.BatchID.String(),
			transport.FromPartyID,
			transport.ToPartyID,
			transport.VehicleID,
			transport.DriverName,
			formatTime(transport.DepartureTime),
			transport.OriginLocation,
			transport.DestinationLocation,
			strconv.FormatBool(transport.TemperatureMonitored),
			stringValue(transport.Notes),
		},
	})
}

func (c *Contract) AddTemperatureLog(ctx context.Context, log *models.TemperatureLog) (string, error) {
	return c.client.Submit(ctx, Request{
		Function: FuncAddTemperatureLog,
		Args: []string{
			log.ID.String(),
			log.TransportID.String(),
			strconv.FormatFloat(log.Temperature, 'f', -1, 64),
			formatTime(log.RecordedAt),
			log.Location,
		},
	})
}

func (c *Contract) RecordProcessing(ctx context.Context, record *models.ProcessingRecord) (string, error) {
	return c.client.Submit(ctx, Request{
		Function: FuncRecordProcessing,
		Args: []string{
			record.ID.String(),
			record.BatchID.String(),
			formatTime(record.ProcessedAt),
			record.FacilityName,
			strconv.Itoa(record.SlaughterCount),
			strconv.FormatFloat(record.YieldAmount, 'f', -1, 64),
			strconv.Itoa(record.QualityScore),
			stringValue(record.Notes),
		},
	})
}

func (c *Contract) IssueCertification(ctx context.Context, cert *models.Certification) (string, error) {
	return c.client.Submit(ctx, Request{
		Function: FuncIssueCertification,
		Args: []string{
			cert.ID.String(),
			cert.ProcessingID.String(),
			cert.CertType,
			formatTime(cert.IssueDate),
			formatTime(cert.ExpiryDate),
			cert.Issuer,
			stringValue(cert.Notes),
		},
	})
}

func (c *Contract) CreateRegulatoryRecord(ctx context.Context, record *models.RegulatoryRecord) (string, error) {
	details, err := json.Marshal(record.Details.Data)
	if err != nil {
		return "", err
	}

	return c.client.Submit(ctx, Request{
		Function: FuncCreateRegulatoryRecord,
		Args: []string{
			record.ID.String(),
			record.BatchID.String(),
			record.RecordType,
			record.RegulatorID,
			string(details),
		},
	})
}

func (c *Contract) UpdateRegulatoryStatus(ctx context.Context, record *models.RegulatoryRecord) (string, error) {
	return c.client.Submit(ctx, Request{
		Function: FuncUpdateRegulatoryStatus,
		Args: []string{
			record.ID.String(),
			string(record.Status),
			stringValue(record.RejectionReason),
		},
	})
}

// GetBatch reads the ledger's copy of a batch for reconciliation.
func (c *Contract) GetBatch(ctx context.Context, batchID string) ([]byte, error) {
	return c.client.Evaluate(ctx, Request{
		Function: FuncGetBatch,
		Args:     []string{batchID},
	})
}

// GetBatchLifecycleEvents reads the ledger's event trail for a batch.
func (c *Contract) GetBatchLifecycleEvents(ctx context.Context, batchID string) ([]byte, error) {
	return c.client.Evaluate(ctx, Request{
		Function: FuncGetBatchLifecycleEvents,
		Args:     []string{batchID},
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
