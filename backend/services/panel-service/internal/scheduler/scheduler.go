package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Task is one unit of scheduled work.
type Task func(ctx context.Context)

// Handle controls a running schedule.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start runs task immediately and then once per period until ctx is
// cancelled or Stop is called. Runs never overlap: a run that outlasts the
// period makes the ticker drop the missed ticks.
func Start(ctx context.Context, period time.Duration, task Task) (*Handle, error) {
	if period <= 0 {
		return nil, errors.New("scheduler: period must be positive")
	}
	if task == nil {
		return nil, errors.New("scheduler: task is nil")
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)

		task(runCtx)

		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if runCtx.Err() != nil {
					return
				}
				task(runCtx)
			}
		}
	}()

	return h, nil
}

// Stop cancels the schedule and waits for the in-flight run to return.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the schedule has fully stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
