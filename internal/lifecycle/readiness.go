package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

const readinessPollInterval = 50 * time.Millisecond

// errNotStarted is reported by runnables without their own ReadyChecker until Run is entered.
var errNotStarted = errors.New("not started")

// startedTracker marks a runnable ready as soon as its Run method is called.
type startedTracker struct {
	started  atomic.Bool
	runnable Runnable
}

func (s *startedTracker) Run(ctx context.Context) error {
	s.started.Store(true)
	return s.runnable.Run(ctx)
}

func (s *startedTracker) IsReady(context.Context) error {
	if s.started.Load() {
		return nil
	}
	return errNotStarted
}

// WaitForReadiness polls every hosted runnable until all report ready.
//
// It returns nil once everything is ready, the app's final error if it stops
// first, the context error if ctx is cancelled, and after timeout the last
// readiness error wrapped with the component that produced it.
func (a *App) WaitForReadiness(ctx context.Context, timeout time.Duration) error {
	if len(a.hosted) == 0 {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readinessPollInterval)
	defer ticker.Stop()

	var (
		lastErr     error
		lastFailing Runnable
	)
	for {
		lastErr, lastFailing = nil, nil
		for _, h := range a.hosted {
			if err := h.ready.IsReady(waitCtx); err != nil {
				lastErr, lastFailing = err, h.original
				break
			}
		}
		if lastErr == nil {
			return nil
		}

		select {
		case <-a.stopped:
			if a.runErr != nil {
				return a.runErr
			}
			return errors.New("app stopped before becoming ready")
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return NewError(lastErr, lastFailing)
		case <-ticker.C:
		}
	}
}
