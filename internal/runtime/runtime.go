package runtime

import (
	"context"
	"time"

	"github.com/revenueops/warehouse-mcp/config"
	"golang.org/x/sync/semaphore"
)

// Limits captures the dispatch guardrails for the server. The default is
// single-flight: one tool call at a time, so a slow warehouse query delays
// subsequent calls instead of fanning out concurrent load.
type Limits struct {
	MaxConcurrentRequests int
	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits initializes Limits with defaults for unset values.
func NewLimits(maxConcurrentRequests int) Limits {
	if maxConcurrentRequests <= 0 {
		maxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	return Limits{
		MaxConcurrentRequests: maxConcurrentRequests,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// Controller serializes request dispatch through a weighted semaphore.
type Controller struct {
	limits           Limits
	requestSemaphore *semaphore.Weighted
}

// NewController constructs a Controller for the given limits.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:           limits,
		requestSemaphore: semaphore.NewWeighted(int64(limits.MaxConcurrentRequests)),
	}
}

// AcquireRequest reserves dispatch capacity for an incoming call.
func (c *Controller) AcquireRequest(ctx context.Context) error {
	return c.requestSemaphore.Acquire(ctx, 1)
}

// ReleaseRequest frees previously-acquired capacity.
func (c *Controller) ReleaseRequest() {
	c.requestSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails for startup logging.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
