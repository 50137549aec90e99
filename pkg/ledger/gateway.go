package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/expressions"
	"github.com/Ramsey-B/clover/pkg/httpclient"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const (
	// DefaultTxRefExpression extracts the transaction reference from a
	// submit response.
	DefaultTxRefExpression = "transaction_id"

	// DefaultTokenExpression extracts the bearer token from a token
	// endpoint response.
	DefaultTokenExpression = "access_token"

	// DefaultExpiresInExpression extracts the token lifetime in seconds.
	DefaultExpiresInExpression = "expires_in"

	// DefaultTokenTTLSeconds is used when the token response carries no
	// lifetime.
	DefaultTokenTTLSeconds = 3600

	// DefaultTokenSkewSeconds refreshes tokens this long before expiry.
	DefaultTokenSkewSeconds = 60

	// TokenCacheKeyPrefix is the prefix for gateway token cache keys
	TokenCacheKeyPrefix = "ledger:token:"
)

// GatewayConfig holds the transaction gateway settings. Certificate and key
// material is referenced by file path and loaded at startup; nothing is
// embedded.
type GatewayConfig struct {
	URL       string
	Channel   string
	Chaincode string
	Timeout   time.Duration

	// Mutual TLS client credentials. All three must be set together.
	TLSCertPath string
	TLSKeyPath  string
	TLSCAPath   string

	// Optional bearer token flow. Enabled when TokenURL is set.
	TokenURL            string
	TokenClientID       string
	TokenClientSecret   string
	TokenExpression     string
	ExpiresInExpression string
	TokenSkewSeconds    int

	TxRefExpression string
}

// GatewayClient is the production ledger client. Every failure surfaces as
// an error: the gateway fails closed and leaves retry policy to the caller.
type GatewayClient struct {
	cfg       GatewayConfig
	http      *httpclient.Client
	evaluator *expressions.Evaluator
	cache     *redis.Client
	logger    ectologger.Logger
}

type submitRequest struct {
	Channel   string   `json:"channel"`
	Chaincode string   `json:"chaincode"`
	Function  string   `json:"function"`
	Args      []string `json:"args"`
}

// NewGatewayClient validates the configuration, loads the TLS credentials
// and returns a ready client. The redis client is optional; without it
// every submit fetches a fresh token.
func NewGatewayClient(cfg GatewayConfig, cache *redis.Client, logger ectologger.Logger) (*GatewayClient, error) {
	if cfg.URL == "" || cfg.Channel == "" || cfg.Chaincode == "" {
		return nil, ErrNotConfigured
	}

	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid gateway URL %q: %w", cfg.URL, err)
	}

	if cfg.TxRefExpression == "" {
		cfg.TxRefExpression = DefaultTxRefExpression
	}
	if cfg.TokenExpression == "" {
		cfg.TokenExpression = DefaultTokenExpression
	}
	if cfg.ExpiresInExpression == "" {
		cfg.ExpiresInExpression = DefaultExpiresInExpression
	}
	if cfg.TokenSkewSeconds == 0 {
		cfg.TokenSkewSeconds = DefaultTokenSkewSeconds
	}

	httpCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}

	if cfg.TLSCertPath != "" || cfg.TLSKeyPath != "" || cfg.TLSCAPath != "" {
		if cfg.TLSCertPath == "" || cfg.TLSKeyPath == "" || cfg.TLSCAPath == "" {
			return nil, fmt.Errorf("mutual TLS requires cert, key and CA paths together")
		}

		tlsCfg, err := httpclient.MutualTLSConfig(cfg.TLSCertPath, cfg.TLSKeyPath, cfg.TLSCAPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load gateway TLS credentials: %w", err)
		}
		httpCfg.TLS = tlsCfg
	}

	return &GatewayClient{
		cfg:       cfg,
		http:      httpclient.NewClient(httpCfg, logger),
		evaluator: expressions.NewEvaluator(),
		cache:     cache,
		logger:    logger,
	}, nil
}

// Submit invokes a contract function on the ledger and returns the
// transaction reference extracted from the gateway response.
func (c *GatewayClient) Submit(ctx context.Context, req Request) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "LedgerGateway.Submit")
	defer span.End()

	start := time.Now()

	parsed, err := c.invoke(ctx, c.cfg.URL+"/transactions", req)
	if err != nil {
		metrics.RecordLedgerSubmit(req.Function, "error", time.Since(start).Seconds())
		return "", err
	}

	txRef, err := c.evaluator.EvaluateString(c.cfg.TxRefExpression, parsed)
	if err != nil {
		metrics.RecordLedgerSubmit(req.Function, "error", time.Since(start).Seconds())
		c.logger.WithContext(ctx).WithError(err).Errorf("failed to extract transaction reference for %s", req.Function)
		return "", fmt.Errorf("failed to extract transaction reference: %w", err)
	}

	if txRef == "" {
		metrics.RecordLedgerSubmit(req.Function, "error", time.Since(start).Seconds())
		return "", ErrTxRefMissing
	}

	metrics.RecordLedgerSubmit(req.Function, "success", time.Since(start).Seconds())
	c.logger.WithContext(ctx).Infof("Submitted %s to ledger, tx %s", req.Function, txRef)

	return txRef, nil
}

// Evaluate runs a read-only contract query and returns the raw gateway
// response payload.
func (c *GatewayClient) Evaluate(ctx context.Context, req Request) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "LedgerGateway.Evaluate")
	defer span.End()

	body, err := json.Marshal(submitRequest{
		Channel:   c.cfg.Channel,
		Chaincode: c.cfg.Chaincode,
		Function:  req.Function,
		Args:      req.Args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query request: %w", err)
	}

	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.PostJSON(ctx, c.cfg.URL+"/query", body, headers)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Errorf("ledger query %s failed", req.Function)
		return nil, fmt.Errorf("ledger query failed: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("ledger query %s returned %d: %s", req.Function, resp.StatusCode, summarize(resp.Body))
	}

	return resp.Body, nil
}

func (c *GatewayClient) invoke(ctx context.Context, url string, req Request) (any, error) {
	body, err := json.Marshal(submitRequest{
		Channel:   c.cfg.Channel,
		Chaincode: c.cfg.Chaincode,
		Function:  req.Function,
		Args:      req.Args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submit request: %w", err)
	}

	headers, err := c.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.PostJSON(ctx, url, body, headers)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Errorf("ledger submit %s failed", req.Function)
		return nil, fmt.Errorf("ledger submit failed: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("ledger submit %s returned %d: %s", req.Function, resp.StatusCode, summarize(resp.Body))
	}

	var parsed any
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	return parsed, nil
}

func (c *GatewayClient) authHeaders(ctx context.Context) (map[string]string, error) {
	if c.cfg.TokenURL == "" {
		return nil, nil
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// CachedToken is the redis representation of a gateway bearer token.
type CachedToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// IsExpired checks if the token is expired (with skew)
func (t *CachedToken) IsExpired(skewSeconds int) bool {
	if t.ExpiresAt == 0 {
		return false // No expiry set
	}
	return time.Now().Unix() >= (t.ExpiresAt - int64(skewSeconds))
}

func (c *GatewayClient) token(ctx context.Context) (string, error) {
	cacheKey := TokenCacheKeyPrefix + c.cfg.TokenClientID

	if c.cache != nil {
		raw, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			var cached CachedToken
			if err := json.Unmarshal([]byte(raw), &cached); err == nil && !cached.IsExpired(c.cfg.TokenSkewSeconds) {
				return cached.Token, nil
			}
		} else if !redis.IsNil(err) {
			c.logger.WithContext(ctx).WithError(err).Warn("token cache read failed, fetching fresh token")
		}
	}

	token, expiresIn, err := c.fetchToken(ctx)
	if err != nil {
		metrics.RecordTokenRefresh("error")
		return "", err
	}
	metrics.RecordTokenRefresh("success")

	if c.cache != nil {
		cached := CachedToken{
			Token:     token,
			ExpiresAt: time.Now().Unix() + int64(expiresIn),
			CreatedAt: time.Now().Unix(),
		}

		payload, err := json.Marshal(cached)
		if err == nil {
			ttl := time.Duration(expiresIn-c.cfg.TokenSkewSeconds) * time.Second
			if ttl <= 0 {
				ttl = time.Duration(expiresIn) * time.Second
			}
			if err := c.cache.Set(ctx, cacheKey, payload, ttl); err != nil {
				c.logger.WithContext(ctx).WithError(err).Warn("failed to cache gateway token")
			}
		}
	}

	return token, nil
}

func (c *GatewayClient) fetchToken(ctx context.Context) (string, int, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.TokenClientID)
	form.Set("client_secret", c.cfg.TokenClientSecret)

	resp, err := c.http.PostForm(ctx, c.cfg.TokenURL, form.Encode(), nil)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Error("failed to fetch gateway token")
		return "", 0, fmt.Errorf("failed to fetch gateway token: %w", err)
	}

	if !resp.IsSuccess() {
		return "", 0, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, summarize(resp.Body))
	}

	var parsed any
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", 0, fmt.Errorf("failed to parse token response: %w", err)
	}

	token, err := c.evaluator.EvaluateString(c.cfg.TokenExpression, parsed)
	if err != nil || token == "" {
		return "", 0, fmt.Errorf("failed to extract token from response")
	}

	expiresIn, err := c.evaluator.EvaluateInt(c.cfg.ExpiresInExpression, parsed)
	if err != nil || expiresIn <= 0 {
		expiresIn = DefaultTokenTTLSeconds
	}

	return token, expiresIn, nil
}

// summarize trims a response body for error messages and logs.
func summarize(body []byte) string {
	const max = 256
	text := strings.TrimSpace(string(body))
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
