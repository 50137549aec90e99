// Package supplychain orchestrates every traceability write: capability
// gate, validation, state machine enforcement, the local PostgreSQL commit,
// and the post-commit fan-out (ledger sync dispatch, Kafka event, provenance
// projection). The local commit is authoritative; everything after it is
// asynchronous or best-effort and never fails the request.
package supplychain

import (
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/repositories/batch"
	"github.com/Ramsey-B/clover/internal/repositories/certification"
	"github.com/Ramsey-B/clover/internal/repositories/lifecycleevent"
	"github.com/Ramsey-B/clover/internal/repositories/processingrecord"
	"github.com/Ramsey-B/clover/internal/repositories/product"
	"github.com/Ramsey-B/clover/internal/repositories/regulatoryrecord"
	"github.com/Ramsey-B/clover/internal/repositories/syncstate"
	"github.com/Ramsey-B/clover/internal/repositories/temperaturelog"
	"github.com/Ramsey-B/clover/internal/repositories/transport"
	"github.com/Ramsey-B/clover/pkg/dispatch"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/ledger"
)

// Service coordinates the supply chain domain operations
type Service struct {
	logger      ectologger.Logger
	products    product.ProductRepository
	batches     batch.BatchRepository
	lifecycle   lifecycleevent.LifecycleEventRepository
	transports  transport.TransportRepository
	tempLogs    temperaturelog.TemperatureLogRepository
	processing  processingrecord.ProcessingRecordRepository
	certs       certification.CertificationRepository
	regulatory  regulatoryrecord.RegulatoryRecordRepository
	syncState   syncstate.SyncStateRepository
	dispatcher  *dispatch.Dispatcher
	contract    *ledger.Contract
	emitter     *events.Emitter          // nil when Kafka is disabled
	provenance  *graph.ProvenanceService // nil when the graph store is disabled
}

// Dependencies collects everything the service needs. Emitter and
// Provenance may be nil; both are best-effort surfaces.
type Dependencies struct {
	Logger     ectologger.Logger
	Products   product.ProductRepository
	Batches    batch.BatchRepository
	Lifecycle  lifecycleevent.LifecycleEventRepository
	Transports transport.TransportRepository
	TempLogs   temperaturelog.TemperatureLogRepository
	Processing processingrecord.ProcessingRecordRepository
	Certs      certification.CertificationRepository
	Regulatory regulatoryrecord.RegulatoryRecordRepository
	SyncState  syncstate.SyncStateRepository
	Dispatcher *dispatch.Dispatcher
	Contract   *ledger.Contract
	Emitter    *events.Emitter
	Provenance *graph.ProvenanceService
}

// NewService creates a new supply chain service
func NewService(deps Dependencies) *Service {
	return &Service{
		logger:     deps.Logger,
		products:   deps.Products,
		batches:    deps.Batches,
		lifecycle:  deps.Lifecycle,
		transports: deps.Transports,
		tempLogs:   deps.TempLogs,
		processing: deps.Processing,
		certs:      deps.Certs,
		regulatory: deps.Regulatory,
		syncState:  deps.SyncState,
		dispatcher: deps.Dispatcher,
		contract:   deps.Contract,
		emitter:    deps.Emitter,
		provenance: deps.Provenance,
	}
}
