// Package taskloop runs the engine's queued tasks on a dedicated goroutine.
//
// The worker is a re-arming timer: after each delay it asks the engine to run
// one task, and re-arms unless the engine says polling is over.
package taskloop

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/realmbridge/pkg/log"
)

// DefaultInterval is the delay between two polls.
const DefaultInterval = 10 * time.Millisecond

// PollFunc runs at most one task. Returning true stops the worker.
type PollFunc func(ctx context.Context) (bool, error)

// Worker polls a PollFunc until it reports completion or is stopped.
type Worker struct {
	poll     PollFunc
	interval time.Duration
	logger   log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	polls  int
}

// New creates a stopped worker. A non-positive interval selects DefaultInterval.
func New(poll PollFunc, interval time.Duration, logger log.Logger) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Worker{
		poll:     poll,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the polling goroutine. Starting a worker that is already
// running is a no-op.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done != nil {
		select {
		case <-w.done:
		default:
			return
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(runCtx, w.done)
}

// Stop terminates the worker and waits for the goroutine to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when the worker exits. It is nil before the first Start.
func (w *Worker) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Polls returns how many times the poll function ran.
func (w *Worker) Polls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polls
}

func (w *Worker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		stop, err := w.poll(ctx)
		w.mu.Lock()
		w.polls++
		w.mu.Unlock()

		if err != nil {
			w.logger.Error("task poll failed", log.Err(err))
		} else if stop {
			w.logger.Debug("task queue drained, worker exiting")
			return
		}

		timer.Reset(w.interval)
	}
}
