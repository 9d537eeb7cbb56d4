package tracker

import (
	"context"
	"time"
)

// RunLoop calls pollFn immediately and then again interval after each call
// returns, until ctx is cancelled. Cycles never overlap.
func RunLoop(ctx context.Context, interval time.Duration, pollFn func(context.Context)) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return
		}

		pollFn(ctx)
		timer.Reset(interval)
	}
}
