package config

import "time"

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"clover-api"`
	Version                       string   `env:"APP_VERSION" env-default:"dev"`
	Port                          int      `env:"PORT" env-default:"3000"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Database driver
	DatabaseDriver string `env:"DB_DRIVER" env-default:"postgres"`
	// Database host
	DatabaseHost string `env:"DB_HOST" env-default:""`
	// Database port
	DatabasePort string `env:"DB_PORT" env-default:"5432"`
	// Database user
	DatabaseUserName string `env:"DB_USER_NAME" env-default:""`
	// Database user password
	DatabasePassword string `env:"DB_PASSWORD" env-default:""`
	// Database name
	DatabaseName string `env:"DB_NAME" env-default:"clover"`
	// Database SSL Mode
	DatabaseSSLMode string `env:"DB_SSL_MODE" env-default:"disable"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	// Migration Folder Path
	DatabaseMigrationFolderPath string `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	// Database Migration Version
	DatabaseMigrationVersion int `env:"DB_MIGRATION_VERSION" env-default:"0"`
	// Database Migration Force
	DatabaseMigrationForce int `env:"DB_MIGRATION_FORCE" env-default:"0"`
	// Database Migration Auto Rollback
	DatabaseMigrationAutoRollback bool `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Auth Enabled - when false, X-Actor-Id and X-Actor-Role headers carry
	// the actor identity (local development and tests)
	AuthEnabled bool `env:"AUTH_ENABLED" env-default:"false"`
	// Auth Issuer URL
	AuthIssuerURL string `env:"AUTH_ISSUER_URL" env-default:""`
	// Auth Client ID
	AuthClientID string `env:"AUTH_CLIENT_ID" env-default:""`

	// Redis host
	RedisHost string `env:"REDIS_HOST" env-default:"localhost"`
	// Redis port
	RedisPort int `env:"REDIS_PORT" env-default:"6379"`
	// Redis password
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	// Redis database number
	RedisDB int `env:"REDIS_DB" env-default:"0"`

	// Kafka enabled - when false, no contract events are published
	KafkaEnabled bool `env:"KAFKA_ENABLED" env-default:"false"`
	// Kafka brokers (comma-separated)
	KafkaBrokers []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	// Kafka topic for supply chain contract events
	KafkaEventsTopic string `env:"KAFKA_EVENTS_TOPIC" env-default:"clover-events"`

	// Graph enabled - when false, no provenance projection runs
	GraphEnabled bool `env:"GRAPH_ENABLED" env-default:"false"`
	// Graph (Bolt) host
	GraphHost string `env:"GRAPH_HOST" env-default:"localhost"`
	// Graph (Bolt) port
	GraphPort int `env:"GRAPH_PORT" env-default:"7687"`
	// Graph username
	GraphUsername string `env:"GRAPH_USERNAME" env-default:""`
	// Graph password
	GraphPassword string `env:"GRAPH_PASSWORD" env-default:""`

	// Ledger mode: "gateway" submits to the ledger network, "noop" confirms
	// locally with synthetic transaction refs
	LedgerMode string `env:"LEDGER_MODE" env-default:"noop"`
	// Ledger gateway URL
	LedgerGatewayURL string `env:"LEDGER_GATEWAY_URL" env-default:""`
	// Ledger channel name
	LedgerChannel string `env:"LEDGER_CHANNEL" env-default:"supplychain"`
	// Ledger chaincode name
	LedgerChaincode string `env:"LEDGER_CHAINCODE" env-default:"clover"`
	// Ledger submit/evaluate timeout
	LedgerTimeout time.Duration `env:"LEDGER_TIMEOUT" env-default:"30s"`
	// Ledger gateway TLS client certificate path
	LedgerTLSCertPath string `env:"LEDGER_TLS_CERT_PATH" env-default:""`
	// Ledger gateway TLS client key path
	LedgerTLSKeyPath string `env:"LEDGER_TLS_KEY_PATH" env-default:""`
	// Ledger gateway TLS CA certificate path
	LedgerTLSCAPath string `env:"LEDGER_TLS_CA_PATH" env-default:""`
	// Ledger gateway token endpoint (optional bearer token flow)
	LedgerTokenURL string `env:"LEDGER_TOKEN_URL" env-default:""`
	// Ledger gateway token client id
	LedgerTokenClientID string `env:"LEDGER_TOKEN_CLIENT_ID" env-default:""`
	// Ledger gateway token client secret
	LedgerTokenClientSecret string `env:"LEDGER_TOKEN_CLIENT_SECRET" env-default:""`
	// JMESPath expression locating the transaction ref in submit responses
	LedgerTxRefExpression string `env:"LEDGER_TX_REF_EXPRESSION" env-default:""`

	// Sync dispatcher worker count
	SyncWorkerCount int `env:"SYNC_WORKER_COUNT" env-default:"4"`
	// Sync dispatcher queue size
	SyncQueueSize int `env:"SYNC_QUEUE_SIZE" env-default:"256"`

	// Tracing settings
	// Enable OTLP tracing export (set to true to send traces to collector)
	OTLPEnabled bool `env:"OTLP_ENABLED" env-default:"false"`
	// OTLP collector endpoint
	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	// OTLP protocol (grpc or http)
	OTLPProtocol string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	// Disable TLS for OTLP (for local development)
	OTLPInsecure bool `env:"OTLP_INSECURE" env-default:"true"`
}
