package host

import (
	"sync"
	"sync/atomic"

	"github.com/bft-labs/realmbridge/internal/ports"
	"github.com/bft-labs/realmbridge/pkg/log"
)

// DefaultQueueSize bounds callbacks waiting for the loop.
const DefaultQueueSize = 256

// Loop runs callbacks one at a time on a dedicated goroutine, in submission
// order. It is the JS thread of a standalone host.
type Loop struct {
	queue  chan func()
	logger log.Logger

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
}

var _ ports.CallInvoker = (*Loop)(nil)

// NewLoop starts a loop. A non-positive size selects DefaultQueueSize.
func NewLoop(size int, logger log.Logger) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	l := &Loop{
		queue:  make(chan func(), size),
		logger: logger,
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

// InvokeAsync queues fn. Callbacks submitted after Close, or while the queue
// is full, are dropped.
func (l *Loop) InvokeAsync(fn func()) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return
	}
	select {
	case l.queue <- fn:
	default:
		l.dropped.Add(1)
		l.logger.Warn("call invoker queue full, dropping callback", log.Int("queue_size", cap(l.queue)))
	}
}

// Close stops accepting callbacks, drains the queue and waits for the loop.
// Close is idempotent.
func (l *Loop) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()
	<-l.done
}

// Dropped returns how many callbacks were dropped on a full queue.
func (l *Loop) Dropped() int64 {
	return l.dropped.Load()
}

func (l *Loop) run() {
	defer close(l.done)
	for fn := range l.queue {
		l.call(fn)
	}
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("call invoker callback panicked", log.Any("panic", r))
		}
	}()
	fn()
}
