package approval

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ipguard/internal/platform/metrics"
)

// Sweeper exposes expiry cleanup for pending approvals.
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// Cleanup periodically removes expired approvals.
type Cleanup struct {
	registry Sweeper
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type CleanupOption func(*Cleanup)

// WithCleanupInterval overrides the cleanup interval when greater than zero.
func WithCleanupInterval(interval time.Duration) CleanupOption {
	return func(c *Cleanup) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

func WithCleanupLogger(logger *slog.Logger) CleanupOption {
	return func(c *Cleanup) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithCleanupMetrics(m *metrics.Metrics) CleanupOption {
	return func(c *Cleanup) { c.metrics = m }
}

func WithCleanupClock(now func() time.Time) CleanupOption {
	return func(c *Cleanup) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCleanup(registry Sweeper, opts ...CleanupOption) (*Cleanup, error) {
	if registry == nil {
		return nil, errors.New("approval registry is required")
	}
	c := &Cleanup{
		registry: registry,
		interval: 5 * time.Minute,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (c *Cleanup) Start(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.RunOnce(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce sweeps expired approvals and returns how many were removed.
func (c *Cleanup) RunOnce(ctx context.Context) int {
	removed := c.registry.Sweep(c.now())
	pending := c.registry.Len()

	c.metrics.AddTokensExpired(removed)
	c.metrics.SetPendingTokens(pending)
	if removed > 0 {
		c.logger.InfoContext(ctx, "expired approval tokens removed",
			"removed", removed,
			"pending", pending,
		)
	}
	return removed
}
