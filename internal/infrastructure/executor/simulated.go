package executor

import (
	"context"
	"time"

	"github.com/catalystqa/e2eagent/internal/ports"
)

// SimulatedRunner pretends to execute steps against a cluster. It honors
// context cancellation during its delay so aborted sessions stop promptly.
type SimulatedRunner struct {
	// StepDelay is the simulated duration of one step. Zero means no delay.
	StepDelay time.Duration
}

// RunStep implements ports.Runner.
func (r *SimulatedRunner) RunStep(ctx context.Context, _ ports.StepRequest) error {
	if r.StepDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.StepDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ ports.Runner = (*SimulatedRunner)(nil)
