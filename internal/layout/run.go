package layout

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// DefaultTickRate is the number of steps per second used by Run when no
// rate is given.
const DefaultTickRate = 30.0

// Run calls step at a fixed rate until ctx is done. It is the host
// scheduler for a Simulation (or anything that wraps one); step runs on the
// calling goroutine. Run returns nil when ctx is cancelled.
func Run(ctx context.Context, ticksPerSecond float64, step func()) error {
	if ticksPerSecond <= 0 {
		ticksPerSecond = DefaultTickRate
	}
	limiter := rate.NewLimiter(rate.Limit(ticksPerSecond), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("tick limiter: %w", err)
		}
		step()
	}
}
