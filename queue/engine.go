// Package queue provides the explicit handoff between the hub transports
// and the adapter: transports enqueue raw payloads, a worker pool drains
// them into ProcessEvent.
//
// The bounded channel makes back-pressure explicit: a saturated queue is
// reported to the transport instead of buffering without bound.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/imarval/mele-sap-adapter/observability"
	"github.com/imarval/mele-sap-adapter/outcome"
)

// Sentinel errors returned by Enqueue.
var (
	// ErrQueueFull is returned when the bounded queue is saturated.
	ErrQueueFull = errors.New("queue: full")

	// ErrQueueClosed is returned when enqueueing after Stop.
	ErrQueueClosed = errors.New("queue: closed")
)

// Processor relays one raw payload and returns the normalized outcome.
// Implemented by the adapter.
type Processor interface {
	ProcessEvent(ctx context.Context, raw map[string]any) *outcome.Outcome
}

// EngineConfig holds engine configuration.
type EngineConfig struct {
	// Concurrency is the number of worker goroutines.
	Concurrency int

	// QueueSize is the bounded queue capacity.
	QueueSize int

	// ShutdownTimeout bounds the drain wait on Stop.
	ShutdownTimeout time.Duration

	// Metrics optionally tracks queue depth.
	Metrics *observability.Metrics
}

// DefaultEngineConfig returns an EngineConfig with sensible defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Concurrency:     5,
		QueueSize:       100,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Engine is the worker pool that drains enqueued raw payloads into the
// processor.
type Engine struct {
	proc   Processor
	config EngineConfig
	logger *slog.Logger

	queue chan map[string]any

	mu      sync.Mutex
	started bool
	closed  bool

	wg sync.WaitGroup
}

// NewEngine creates a queue engine over the given processor.
func NewEngine(proc Processor, cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultEngineConfig().Concurrency
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultEngineConfig().QueueSize
	}
	return &Engine{
		proc:   proc,
		config: cfg,
		logger: logger,
		queue:  make(chan map[string]any, cfg.QueueSize),
	}
}

// Enqueue submits a raw payload for processing. It never blocks: a
// saturated queue returns ErrQueueFull so the transport can signal
// back-pressure to the hub.
func (e *Engine) Enqueue(raw map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrQueueClosed
	}

	// The send is non-blocking, so it stays under the lock: Stop closes the
	// channel under the same lock, and a send may never race the close.
	select {
	case e.queue <- raw:
		if e.config.Metrics != nil {
			e.config.Metrics.QueueDepth.Inc()
		}
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker pool. Workers run until Stop is called and the
// queue is drained, or the context is cancelled.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	for i := 0; i < e.config.Concurrency; i++ {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.work(ctx)
		}()
	}
}

// Stop closes the queue and waits for the workers to drain it, bounded by
// ShutdownTimeout.
func (e *Engine) Stop(ctx context.Context) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	timeout := e.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultEngineConfig().ShutdownTimeout
	}

	select {
	case <-done:
	case <-time.After(timeout):
		e.logger.WarnContext(ctx, "queue drain timed out", "timeout", timeout)
	case <-ctx.Done():
	}
}

// work drains the queue until it is closed and empty.
func (e *Engine) work(ctx context.Context) {
	for raw := range e.queue {
		if e.config.Metrics != nil {
			e.config.Metrics.QueueDepth.Dec()
		}

		out := e.proc.ProcessEvent(ctx, raw)

		e.logger.DebugContext(ctx, "event processed",
			"event_id", out.EventID,
			"operation", out.Operation,
			"success", out.Success,
		)
	}
}
