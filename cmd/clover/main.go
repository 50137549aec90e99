package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/internal/repositories/batch"
	"github.com/Ramsey-B/clover/internal/repositories/certification"
	"github.com/Ramsey-B/clover/internal/repositories/lifecycleevent"
	"github.com/Ramsey-B/clover/internal/repositories/processingrecord"
	"github.com/Ramsey-B/clover/internal/repositories/product"
	"github.com/Ramsey-B/clover/internal/repositories/regulatoryrecord"
	"github.com/Ramsey-B/clover/internal/repositories/syncstate"
	"github.com/Ramsey-B/clover/internal/repositories/temperaturelog"
	"github.com/Ramsey-B/clover/internal/repositories/transport"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/dispatch"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/health"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/ledger"
	"github.com/Ramsey-B/clover/pkg/middleware"
	cloverredis "github.com/Ramsey-B/clover/pkg/redis"
	batchroutes "github.com/Ramsey-B/clover/pkg/routes/batch"
	certificationroutes "github.com/Ramsey-B/clover/pkg/routes/certification"
	"github.com/Ramsey-B/clover/pkg/routes/lifecycle"
	processingroutes "github.com/Ramsey-B/clover/pkg/routes/processing"
	productroutes "github.com/Ramsey-B/clover/pkg/routes/product"
	regulatoryroutes "github.com/Ramsey-B/clover/pkg/routes/regulatory"
	"github.com/Ramsey-B/clover/pkg/routes/syncops"
	temperatureroutes "github.com/Ramsey-B/clover/pkg/routes/temperature"
	transportroutes "github.com/Ramsey-B/clover/pkg/routes/transport"
	"github.com/Ramsey-B/clover/pkg/startup"
	"github.com/Ramsey-B/clover/pkg/supplychain"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

func main() {
	// .env is optional; in deployed environments everything comes from the
	// process environment
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := ectoenv.BindEnv(&cfg); err != nil {
		log.Fatalf("failed to bind environment config: %s", err)
	}

	zapLogger := newZapLogger(cfg)
	defer func() { _ = zapLogger.Sync() }()

	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := initTracing(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %s", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode)

	sqlxDB, err := sqlx.Open(cfg.DatabaseDriver, dsn)
	if err != nil {
		log.Fatalf("failed to open database connection: %s", err)
	}
	sqlxDB.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})

	pool := dispatch.NewWorkerPool(dispatch.PoolConfig{
		WorkerCount: cfg.SyncWorkerCount,
		QueueSize:   cfg.SyncQueueSize,
	}, logger)

	var producer *kafka.Producer
	var emitter *events.Emitter
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaEventsTopic,
		}, logger)
		emitter = events.NewEmitter(producer, logger)
	}

	var cache *cloverredis.Client
	var graphClient *graph.Client

	startupService := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	startupService.AddDependency(startup.Dependency{
		Name: "postgres",
		StartFunc: func(ctx context.Context) error {
			if err := sqlxDB.PingContext(ctx); err != nil {
				return err
			}
			driver, err := postgres.WithInstance(sqlxDB.DB, &postgres.Config{})
			if err != nil {
				return err
			}
			return migrations.Migrate(cfg.DatabaseName, driver)
		},
		StopFunc: func(context.Context) error { return sqlxDB.Close() },
	})
	startupService.AddDependency(startup.Dependency{
		Name: "redis",
		StartFunc: func(ctx context.Context) error {
			client, err := cloverredis.NewClient(cloverredis.Config{
				Host:     cfg.RedisHost,
				Port:     cfg.RedisPort,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			}, logger)
			if err != nil {
				return err
			}
			cache = client
			return nil
		},
		StopFunc: func(context.Context) error {
			if cache == nil {
				return nil
			}
			return cache.Close()
		},
	})
	if cfg.GraphEnabled {
		startupService.AddDependency(startup.Dependency{
			Name: "graph",
			StartFunc: func(ctx context.Context) error {
				client, err := graph.NewClient(graph.Config{
					Host:     cfg.GraphHost,
					Port:     cfg.GraphPort,
					Username: cfg.GraphUsername,
					Password: cfg.GraphPassword,
				}, logger)
				if err != nil {
					return err
				}
				if err := client.VerifyConnectivity(ctx); err != nil {
					_ = client.Close(ctx)
					return err
				}
				graphClient = client
				return nil
			},
			StopFunc: func(ctx context.Context) error {
				if graphClient == nil {
					return nil
				}
				return graphClient.Close(ctx)
			},
		})
	}
	startupService.AddDependency(startup.Dependency{
		Name:      "sync-workers",
		Needs:     []string{"postgres", "redis"},
		StartFunc: pool.Start,
		StopFunc:  pool.Stop,
	})
	if producer != nil {
		startupService.AddDependency(startup.Dependency{
			Name:     "kafka-producer",
			StopFunc: func(context.Context) error { return producer.Close() },
		})
	}

	if err := startupService.Start(ctx); err != nil {
		log.Fatalf("failed to start dependencies: %s", err)
	}

	var ledgerClient ledger.Client
	switch cfg.LedgerMode {
	case "noop", "":
		ledgerClient = ledger.NewNoOpClient(logger)
	case "gateway":
		gatewayClient, err := ledger.NewGatewayClient(ledger.GatewayConfig{
			URL:               cfg.LedgerGatewayURL,
			Channel:           cfg.LedgerChannel,
			Chaincode:         cfg.LedgerChaincode,
			Timeout:           cfg.LedgerTimeout,
			TLSCertPath:       cfg.LedgerTLSCertPath,
			TLSKeyPath:        cfg.LedgerTLSKeyPath,
			TLSCAPath:         cfg.LedgerTLSCAPath,
			TokenURL:          cfg.LedgerTokenURL,
			TokenClientID:     cfg.LedgerTokenClientID,
			TokenClientSecret: cfg.LedgerTokenClientSecret,
			TxRefExpression:   cfg.LedgerTxRefExpression,
		}, cache, logger)
		if err != nil {
			log.Fatalf("failed to create ledger gateway client: %s", err)
		}
		ledgerClient = gatewayClient
	default:
		log.Fatalf("unknown ledger mode: %s", cfg.LedgerMode)
	}
	contract := ledger.NewContract(ledgerClient)

	db := database.NewDatabaseInstance(sqlxDB, logger)

	products := product.NewRepository(db, logger)
	batches := batch.NewRepository(db, logger)
	lifecycleEvents := lifecycleevent.NewRepository(db, logger)
	transports := transport.NewRepository(db, logger)
	tempLogs := temperaturelog.NewRepository(db, logger)
	processingRecords := processingrecord.NewRepository(db, logger)
	certifications := certification.NewRepository(db, logger)
	regulatoryRecords := regulatoryrecord.NewRepository(db, logger)
	syncStates := syncstate.NewRepository(db, logger)

	dispatcher := dispatch.NewDispatcher(pool, contract, syncStates, logger)

	var provenance *graph.ProvenanceService
	if graphClient != nil {
		provenance = graph.NewProvenanceService(graphClient, logger)
	}

	svc := supplychain.NewService(supplychain.Dependencies{
		Logger:     logger,
		Products:   products,
		Batches:    batches,
		Lifecycle:  lifecycleEvents,
		Transports: transports,
		TempLogs:   tempLogs,
		Processing: processingRecords,
		Certs:      certifications,
		Regulatory: regulatoryRecords,
		SyncState:  syncStates,
		Dispatcher: dispatcher,
		Contract:   contract,
		Emitter:    emitter,
		Provenance: provenance,
	})

	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		log.Fatalf("failed to create dependency container: %s", err)
	}
	if err := ectoinject.RegisterInstance[ectologger.Logger](container, logger); err != nil {
		log.Fatalf("failed to register logger: %s", err)
	}
	if err := ectoinject.RegisterInstance[*supplychain.Service](container, svc); err != nil {
		log.Fatalf("failed to register supply chain service: %s", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	if cfg.AuthEnabled {
		e.Use(middleware.Authentication(logger, cfg.AuthIssuerURL, cfg.AuthClientID))
	}

	api := e.Group("/api/v1")
	productroutes.Register(api.Group("/products"))
	batchroutes.Register(api.Group("/batches"))
	lifecycle.Register(api)
	transportroutes.Register(api.Group("/transports"))
	temperatureroutes.Register(api)
	processingroutes.Register(api.Group("/processing-records"))
	certificationroutes.Register(api.Group("/certifications"))
	regulatoryroutes.Register(api.Group("/regulatory-records"))
	syncops.Register(api.Group("/sync"))

	checker := health.NewChecker(sqlxDB, cache, cfg.Version)
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	checker.SetReady(true)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Infof("Starting %s on %s", cfg.AppName, addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server stopped unexpectedly: %s", err)
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info("Shutting down")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down http server cleanly")
	}
	if err := startupService.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to stop dependencies cleanly")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shut down tracing cleanly")
	}
}

func newZapLogger(cfg config.Config) *zap.Logger {
	var zapCfg zap.Config
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = level
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %s", err)
	}
	return zapLogger
}

func initTracing(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	if cfg.OTLPEnabled {
		otlpCfg := exporters.DefaultOTLPConfig()
		otlpCfg.Endpoint = cfg.OTLPEndpoint
		otlpCfg.Protocol = cfg.OTLPProtocol
		otlpCfg.Insecure = cfg.OTLPInsecure

		otlpExporter, err := exporters.NewOTLPExporter(ctx, otlpCfg)
		if err != nil {
			return nil, err
		}
		exporter = otlpExporter
	} else {
		exporter = &exporters.ConsoleExporter{}
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.AppName),
		attribute.String("service.version", cfg.Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tracing.SetTracer(tp.Tracer(cfg.AppName))

	return tp.Shutdown, nil
}
