// Package poller implements the fixed-interval status polling loop with a
// hard overall ceiling. Individual ticks are retried with exponential backoff
// before their error is surfaced, so a transient network blip during a long
// execution does not fail the whole session.
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// ErrCeilingExceeded is wrapped into the error returned when polling runs
// past the configured ceiling without the tick reporting stop.
var ErrCeilingExceeded = fmt.Errorf("polling ceiling exceeded")

// TickerPoller polls on a fixed interval. The first tick fires after one
// interval, not immediately, matching the cadence of a status check that
// follows an execution kickoff.
type TickerPoller struct {
	interval     time.Duration
	ceiling      time.Duration
	retryInitial time.Duration
	retryElapsed time.Duration
}

// Option adjusts a TickerPoller.
type Option func(*TickerPoller)

// WithRetry overrides the per-tick retry policy.
func WithRetry(initial, maxElapsed time.Duration) Option {
	return func(p *TickerPoller) {
		p.retryInitial = initial
		p.retryElapsed = maxElapsed
	}
}

// New builds a poller. Non-positive interval or ceiling fall back to the
// defaults of 3 seconds and 10 minutes.
func New(interval, ceiling time.Duration, opts ...Option) *TickerPoller {
	if interval <= 0 {
		interval = domain.DefaultPollInterval
	}
	if ceiling <= 0 {
		ceiling = domain.DefaultPollCeiling
	}
	p := &TickerPoller{
		interval:     interval,
		ceiling:      ceiling,
		retryInitial: domain.DefaultPollRetryInitial,
		retryElapsed: domain.DefaultPollRetryElapsed,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run implements ports.Poller.
func (p *TickerPoller) Run(ctx context.Context, tick func(ctx context.Context) (bool, error)) error {
	deadline := time.NewTimer(p.ceiling)
	defer deadline.Stop()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w after %s", ErrCeilingExceeded, p.ceiling)
		case <-ticker.C:
			stop, err := p.tickWithRetry(ctx, tick)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
	}
}

func (p *TickerPoller) tickWithRetry(ctx context.Context, tick func(ctx context.Context) (bool, error)) (bool, error) {
	var stop bool
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.retryInitial
	policy.MaxElapsedTime = p.retryElapsed

	err := backoff.Retry(func() error {
		var tickErr error
		stop, tickErr = tick(ctx)
		return tickErr
	}, backoff.WithContext(policy, ctx))
	return stop, err
}

var _ ports.Poller = (*TickerPoller)(nil)
