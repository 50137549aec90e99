// Package ledger talks to the shared supply-chain ledger through its
// transaction gateway. The local database commits first; everything here
// runs after the fact and must never block or fail a caller's request.
package ledger

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned when the gateway client is constructed
	// without the settings it needs to reach the ledger.
	ErrNotConfigured = errors.New("ledger gateway is not configured")

	// ErrTxRefMissing is returned when a submit response carries no
	// transaction reference at the configured expression.
	ErrTxRefMissing = errors.New("submit response carries no transaction reference")
)

// Request describes one ledger contract invocation.
type Request struct {
	Function string   `json:"function"`
	Args     []string `json:"args"`
}

// Client submits transactions to the ledger and evaluates read-only
// queries against it. Submit returns the ledger's transaction reference.
type Client interface {
	Submit(ctx context.Context, req Request) (string, error)
	Evaluate(ctx context.Context, req Request) ([]byte, error)
}
