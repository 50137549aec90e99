package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ProvenanceService maintains the supply chain provenance graph:
//
//	(Batch)-[:OF_PRODUCT]->(Product)
//	(Batch)-[:HAS_EVENT]->(LifecycleEvent)
//	(Batch)-[:SHIPPED_BY]->(Transport)-[:LOGGED]->(TemperatureLog)
//	(Batch)-[:PROCESSED_IN]->(ProcessingRecord)-[:CERTIFIED_BY]->(Certification)
//	(Batch)-[:REGULATED_BY]->(RegulatoryRecord)
type ProvenanceService struct {
	client *Client
	logger ectologger.Logger
}

// NewProvenanceService creates a new provenance service
func NewProvenanceService(client *Client, logger ectologger.Logger) *ProvenanceService {
	return &ProvenanceService{
		client: client,
		logger: logger,
	}
}

// ProvenanceTrace is the graph's view of a batch lineage. Values are raw
// node property maps because the graph carries a projection, not the
// authoritative rows.
type ProvenanceTrace struct {
	Batch             map[string]any   `json:"batch"`
	Product           map[string]any   `json:"product,omitempty"`
	LifecycleEvents   []map[string]any `json:"lifecycle_events"`
	Transports        []map[string]any `json:"transports"`
	TemperatureLogs   []map[string]any `json:"temperature_logs"`
	ProcessingRecords []map[string]any `json:"processing_records"`
	Certifications    []map[string]any `json:"certifications"`
	RegulatoryRecords []map[string]any `json:"regulatory_records"`
}

func (s *ProvenanceService) upsert(ctx context.Context, name, cypher string, params map[string]any) error {
	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Errorf("failed to project %s into graph", name)
		return fmt.Errorf("failed to project %s into graph: %w", name, err)
	}
	return nil
}

// UpsertProduct projects a product node
func (s *ProvenanceService) UpsertProduct(ctx context.Context, product *models.Product) error {
	ctx, span := tracing.StartSpan(ctx, "graph.ProvenanceService.UpsertProduct")
	defer span.End()

	cypher := `
		MERGE (p:Product {id: $id})
		SET p.name = $name, p.is_active = $is_active, p.created_at = $created_at
	`
	return s.upsert(ctx, "product", cypher, map[string]any{
		"id":         product.ID.String(),
		"name":       product.Name,
		"is_active":  product.IsActive,
		"created_at": formatTime(product.CreatedAt),
	})
}

// UpsertBatch projects a batch node and its OF_PRODUCT edge
func (s *ProvenanceService) UpsertBatch(ctx context.Context, batch *models.Batch) error {
	ctx, span := tracing.StartSpan(ctx, "graph.ProvenanceService.UpsertBatch")
	defer span.End()

	cypher := `
		MERGE (b:Batch {id: $id})
		SET b.batch_number = $batch_number, b.status = $status, b.farmer_id = $farmer_id,
			b.quantity = $quantity, b.location = $location, b.created_at = $created_at
		WITH b
		MATCH (p:Product {id: $product_id})
		MERGE (b)-[:OF_PRODUCT]->(p)
	`
	return s.upsert(ctx, "batch", cypher, map[string]any{
		"id":           batch.ID.String(),
		"batch_number": batch.BatchNumber,
		"status":       string(batch.Status),
		"farmer_id":    batch.FarmerID,
		"quantity":     batch.Quantity,
		"location":     batch.Location,
		"created_at":   formatTime(batch.CreatedAt),
		"product_id":   batch.ProductID.String(),
	})
}

// UpsertLifecycleEvent projects a lifecycle event node and its HAS_EVENT
// edge
func (s *ProvenanceService) UpsertLifecycleEvent(ctx context.Context, event *models.LifecycleEvent) error {
	ctx, span := tracing.StartSpan(ctx, "graph.ProvenanceService.UpsertLifecycleEvent")
	defer span.End()

	cypher := `
		MERGE (e:LifecycleEvent {id: $id})
		SET e.event_type = $event_type, e.description = $description,
			e.event_date = $event_date, e.recorded_by = $recorded_by
		WITH e
		MATCH (b:Batch {id: $batch_id})
		MERGE (b)-[:HAS_EVENT]->(e)
	`
	return s.upsert(ctx, "lifecycle event", cypher, map[string]any{
		"id":          event.ID.String(),
		"event_type":  string(event.EventType),
		"description": event.Description,
		"event_date":  formatTime(event.EventDate),
		"recorded_by": event.RecordedBy,
		"batch_id":    event.BatchID.String(),
	})
}

// UpsertTransport projects a transport node and its SHIPPED_BY edge
func (s *ProvenanceService) UpsertTransport(ctx context.Context, transport *models.Transport) error {
	ctx, span := tracing.StartSpan(ctx, "graph.ProvenanceService.UpsertTransport")
	defer span.End()

	cypher := `
		MERGE (t:Transport {id: $id})
		SET t.status = $status, t.vehicle_id = $vehicle_id, t.driver_name = $driver_name,
			t.from_party_id = $from_party_id, t.to_party_id = $to_party_id,
			t.origin = $origin, t.destination = $destination
		WITH t
		MATCH (b:Batch {id: $batch_id})
		MERGE (b)-[:SHIPPED_BY]->(t)
	`
	return s.upsert(ctx, "transport", cypher, map[string]any{
		"id":            transport.ID.String(),
		"status":        string(transport.Status),
		"vehicle_id":    transport.VehicleID,
		"driver_name":   transport.DriverName,
		"from_party_id": transport.FromPartyID,
		"to_party_id":   transport.ToPartyID,
		"origin":        transport.OriginLocation,
		"destination":   transport.DestinationLocation,
		"batch_id":      transport.BatchID.String(),
	})
}

// UpsertTemperatureLog projects a temperature reading node and its LOGGED
// edge
func (s *ProvenanceService) UpsertTemperatureLog(ctx context.Context, log *models.TemperatureLog) error {
	ctx, span := tracing.StartSpan(ctx, "graph.ProvenanceService.UpsertTemperatureLog")
	defer span.End()

	cypher := `
		MERGE (l:TemperatureLog {id: $id})
		SET l.temperature = $temperature, l.recorded_at = $recorded_at,
			l.location = $location, l.is_violation = $is_violation
		WITH l
		MATCH (t:Transport {id: $transport_id})
		MERGE (t)-[:LOGGED]->(l)
	`
	return s.upsert(ctx, "temperature log", cypher, map[string]any{
		"id":           log.ID.String(),
		"temperature":  log.Temperature,
		"recorded_at":  formatTime(log.RecordedAt),
		"location":     log.Location,
		"is_violation": log.IsViolation,
		"transport_id": log.TransportID.String(),
	})
}

// UpsertProcessingRecord projects a processing node and its PROCESSED_IN
// edge
func (s *ProvenanceService) UpsertProcessingRecord(ctx context.Context, record *models.ProcessingRecord) error {
	ctx, span := tracing.StartSpan(ctx, "graph.ProvenanceService.UpsertProcessingRecord")
	defer span.End()

	cypher := `
		MERGE (pr:ProcessingRecord {id: $id})
		SET pr.facility_name = $facility_name, pr.slaughter_count = $slaughter_count,
			pr.yield_amount = $yield_amount, pr.quality_score = $quality_score,
			pr.processed_at = $processed_at
		WITH pr
		MATCH (b:Batch {id: $batch_id})
		MERGE (b)-[:PROCESSED_IN]->(pr)
	`
	return s.upsert(ctx, "processing record", cypher, map[string]any{
		"id":              record.ID.String(),
		"facility_name":   record.FacilityName,
		"slaughter_count": record.SlaughterCount,
		"yield_amount":    record.YieldAmount,
		"quality_score":   record.QualityScore,
		"processed_at":    formatTime(record.ProcessedAt),
		"batch_id":        record.BatchID.String(),
	})
}

// UpsertCertification projects a certification node and its CERTIFIED_BY
// edge
func (s *ProvenanceService) UpsertCertification(ctx context.Context, cert *models.Certification) error {
	ctx, span := tracing.StartSpan(ctx, "graph.ProvenanceService.UpsertCertification")
	defer span.End()

	cypher := `
		MERGE (c:Certification {id: $id})
		SET c.cert_type = $cert_type, c.issuer = $issuer, c.status = $status,
			c.issue_date = $issue_date, c.expiry_date = $expiry_date
		WITH c
		MATCH (pr:ProcessingRecord {id: $processing_id})
		MERGE (pr)-[:CERTIFIED_BY]->(c)
	`
	return s.upsert(ctx, "certification", cypher, map[string]any{
		"id":            cert.ID.String(),
		"cert_type":     cert.CertType,
		"issuer":        cert.Issuer,
		"status":        string(cert.Status),
		"issue_date":    formatTime(cert.IssueDate),
		"expiry_date":   formatTime(cert.ExpiryDate),
		"processing_id": cert.ProcessingID.String(),
	})
}

// UpsertRegulatoryRecord projects a regulatory node and its REGULATED_BY
// edge
func (s *ProvenanceService) UpsertRegulatoryRecord(ctx context.Context, record *models.RegulatoryRecord) error {
	ctx, span := tracing.StartSpan(ctx, "graph.ProvenanceService.UpsertRegulatoryRecord")
	defer span.End()

	cypher := `
		MERGE (r:RegulatoryRecord {id: $id})
		SET r.record_type = $record_type, r.status = $status, r.regulator_id = $regulator_id
		WITH r
		MATCH (b:Batch {id: $batch_id})
		MERGE (b)-[:REGULATED_BY]->(r)
	`
	return s.upsert(ctx, "regulatory record", cypher, map[string]any{
		"id":           record.ID.String(),
		"record_type":  record.RecordType,
		"status":       string(record.Status),
		"regulator_id": record.RegulatorID,
		"batch_id":     record.BatchID.String(),
	})
}

// Trace reads the batch's neighborhood from the graph
func (s *ProvenanceService) Trace(ctx context.Context, batchID string) (*ProvenanceTrace, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.ProvenanceService.Trace")
	defer span.End()

	cypher := `
		MATCH (b:Batch {id: $id})
		OPTIONAL MATCH (b)-[:OF_PRODUCT]->(p:Product)
		OPTIONAL MATCH (b)-[:HAS_EVENT]->(e:LifecycleEvent)
		OPTIONAL MATCH (b)-[:SHIPPED_BY]->(t:Transport)
		OPTIONAL MATCH (t)-[:LOGGED]->(tl:TemperatureLog)
		OPTIONAL MATCH (b)-[:PROCESSED_IN]->(pr:ProcessingRecord)
		OPTIONAL MATCH (pr)-[:CERTIFIED_BY]->(c:Certification)
		OPTIONAL MATCH (b)-[:REGULATED_BY]->(r:RegulatoryRecord)
		RETURN b, p,
			collect(DISTINCT e) AS events,
			collect(DISTINCT t) AS transports,
			collect(DISTINCT tl) AS temperature_logs,
			collect(DISTINCT pr) AS processing_records,
			collect(DISTINCT c) AS certifications,
			collect(DISTINCT r) AS regulatory_records
	`

	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"id": batchID})
		if err != nil {
			return nil, err
		}

		if !result.Next(ctx) {
			return nil, nil
		}
		record := result.Record()

		trace := &ProvenanceTrace{
			LifecycleEvents:   nodeProps(record, "events"),
			Transports:        nodeProps(record, "transports"),
			TemperatureLogs:   nodeProps(record, "temperature_logs"),
			ProcessingRecords: nodeProps(record, "processing_records"),
			Certifications:    nodeProps(record, "certifications"),
			RegulatoryRecords: nodeProps(record, "regulatory_records"),
		}
		if batchNode, ok := record.Get("b"); ok {
			if node, ok := batchNode.(neo4j.Node); ok {
				trace.Batch = node.Props
			}
		}
		if productNode, ok := record.Get("p"); ok {
			if node, ok := productNode.(neo4j.Node); ok {
				trace.Product = node.Props
			}
		}
		return trace, nil
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("failed to trace batch in graph")
		return nil, fmt.Errorf("failed to trace batch in graph: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	return result.(*ProvenanceTrace), nil
}

func nodeProps(record *neo4j.Record, key string) []map[string]any {
	props := []map[string]any{}
	value, ok := record.Get(key)
	if !ok {
		return props
	}
	items, ok := value.([]any)
	if !ok {
		return props
	}
	for _, item := range items {
		if node, ok := item.(neo4j.Node); ok {
			props = append(props, node.Props)
		}
	}
	return props
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
