// Package events publishes traceability domain events to Kafka. One event
// is emitted per committed write so downstream consumers (dashboards,
// alerting, analytics) can follow the supply chain without polling the API.
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	cloverContext "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Event types published to the events topic.
const (
	EventProductCreated               = "product.created"
	EventBatchCreated                 = "batch.created"
	EventBatchStatusChanged           = "batch.status_changed"
	EventLifecycleEventRecorded       = "lifecycle_event.recorded"
	EventTransportCreated             = "transport.created"
	EventTransportStatusChanged       = "transport.status_changed"
	EventTemperatureViolationDetected = "temperature.violation_detected"
	EventProcessingRecorded           = "processing.recorded"
	EventCertificationUpdated         = "certification.updated"
	EventRegulatoryRecordUpdated      = "regulatory_record.updated"
)

// Emitter publishes domain events for committed supply chain writes.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitProductCreated emits a product.created event
func (e *Emitter) EmitProductCreated(ctx context.Context, product *models.Product) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitProductCreated")
	defer span.End()

	return e.emit(ctx, EventProductCreated, product.ID.String(), "", product)
}

// EmitBatchCreated emits a batch.created event
func (e *Emitter) EmitBatchCreated(ctx context.Context, batch *models.Batch) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBatchCreated")
	defer span.End()

	return e.emit(ctx, EventBatchCreated, batch.ID.String(), batch.ID.String(), batch)
}

// EmitBatchStatusChanged emits a batch.status_changed event
func (e *Emitter) EmitBatchStatusChanged(ctx context.Context, batch *models.Batch) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBatchStatusChanged")
	defer span.End()

	return e.emit(ctx, EventBatchStatusChanged, batch.ID.String(), batch.ID.String(), batch)
}

// EmitLifecycleEventRecorded emits a lifecycle_event.recorded event
func (e *Emitter) EmitLifecycleEventRecorded(ctx context.Context, event *models.LifecycleEvent) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitLifecycleEventRecorded")
	defer span.End()

	return e.emit(ctx, EventLifecycleEventRecorded, event.ID.String(), event.BatchID.String(), event)
}

// EmitTransportCreated emits a transport.created event
func (e *Emitter) EmitTransportCreated(ctx context.Context, transport *models.Transport) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitTransportCreated")
	defer span.End()

	return e.emit(ctx, EventTransportCreated, transport.ID.String(), transport.BatchID.String(), transport)
}

// EmitTransportStatusChanged emits a transport.status_changed event
func (e *Emitter) EmitTransportStatusChanged(ctx context.Context, transport *models.Transport) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitTransportStatusChanged")
	defer span.End()

	return e.emit(ctx, EventTransportStatusChanged, transport.ID.String(), transport.BatchID.String(), transport)
}

// EmitTemperatureViolationDetected emits a temperature.violation_detected
// event. Only logs outside the safe range produce this event; in-range logs
// are persisted without one.
func (e *Emitter) EmitTemperatureViolationDetected(ctx context.Context, log *models.TemperatureLog) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitTemperatureViolationDetected")
	defer span.End()

	return e.emit(ctx, EventTemperatureViolationDetected, log.ID.String(), "", log)
}

// EmitProcessingRecorded emits a processing.recorded event
func (e *Emitter) EmitProcessingRecorded(ctx context.Context, record *models.ProcessingRecord) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitProcessingRecorded")
	defer span.End()

	return e.emit(ctx, EventProcessingRecorded, record.ID.String(), record.BatchID.String(), record)
}

// EmitCertificationUpdated emits a certification.updated event. Fired both
// when a certification is issued and when its status changes.
func (e *Emitter) EmitCertificationUpdated(ctx context.Context, cert *models.Certification) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCertificationUpdated")
	defer span.End()

	return e.emit(ctx, EventCertificationUpdated, cert.ID.String(), "", cert)
}

// EmitRegulatoryRecordUpdated emits a regulatory_record.updated event. Fired
// both when a record is created and when it is approved or rejected.
func (e *Emitter) EmitRegulatoryRecordUpdated(ctx context.Context, record *models.RegulatoryRecord) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRegulatoryRecordUpdated")
	defer span.End()

	return e.emit(ctx, EventRegulatoryRecordUpdated, record.ID.String(), record.BatchID.String(), record)
}

func (e *Emitter) emit(ctx context.Context, eventType, entityID, batchID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to marshal %s event payload", eventType)
		return err
	}

	event := &kafka.DomainEvent{
		EventType: eventType,
		EntityID:  entityID,
		BatchID:   batchID,
		Actor:     cloverContext.GetActorID(ctx),
		Data:      data,
	}

	return e.producer.PublishDomainEvent(ctx, event)
}
