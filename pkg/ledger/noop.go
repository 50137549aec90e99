package ledger

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
)

// NoOpClient stands in for the gateway in environments without a ledger.
// Submits log what would have been sent and succeed with a synthetic
// reference so the sync pipeline still runs end to end.
type NoOpClient struct {
	logger ectologger.Logger
}

func NewNoOpClient(logger ectologger.Logger) *NoOpClient {
	return &NoOpClient{logger: logger}
}

func (c *NoOpClient) Submit(ctx context.Context, req Request) (string, error) {
	ref := "NOOP-" + uuid.NewString()
	c.logger.WithContext(ctx).Infof("[NOOP] Would submit %s to ledger with %d args, returning %s", req.Function, len(req.Args), ref)
	return ref, nil
}

// Evaluate returns an empty payload; callers treat that as the record not
// being available on the ledger.
func (c *NoOpClient) Evaluate(ctx context.Context, req Request) ([]byte, error) {
	c.logger.WithContext(ctx).Infof("[NOOP] Would evaluate %s on ledger", req.Function)
	return nil, nil
}
