package hardware

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Notification is a queued request to the board controller
type Notification struct {
	Path string
	Body any
}

// DispatcherConfig holds queue and worker settings
type DispatcherConfig struct {
	Workers        int
	QueueSize      int
	RequestTimeout time.Duration
	// DrainTimeout bounds how long Run waits for queued work after its
	// context is cancelled
	DrainTimeout time.Duration
}

// DefaultDispatcherConfig returns sensible defaults
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:        2,
		QueueSize:      64,
		RequestTimeout: 3 * time.Second,
		DrainTimeout:   5 * time.Second,
	}
}

// Stats counts what happened to enqueued notifications
type Stats struct {
	Sent    int64
	Failed  int64
	Dropped int64
}

// Dispatcher delivers notifications on a bounded queue served by a fixed
// set of workers. Enqueue never blocks: a full queue drops the
// notification. Delivery is a single attempt.
type Dispatcher struct {
	sender Sender
	cfg    DispatcherConfig
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Notification

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewDispatcher creates a Dispatcher. Call Run to start the workers.
func NewDispatcher(sender Sender, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	defaults := DefaultDispatcherConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaults.DrainTimeout
	}
	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "hardware-dispatcher")),
		queue:  make(chan Notification, cfg.QueueSize),
	}
}

// Enqueue queues n for delivery. Returns false if it was dropped.
func (d *Dispatcher) Enqueue(n Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		d.logger.Warn("hardware notification dropped - dispatcher stopped",
			slog.String("path", n.Path))
		return false
	}

	select {
	case d.queue <- n:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("hardware notification dropped - queue full",
			slog.String("path", n.Path),
			slog.Int("queue_size", d.cfg.QueueSize))
		return false
	}
}

// Run serves the queue until ctx is cancelled, then delivers what is
// still queued, waiting at most DrainTimeout
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work()
		}()
	}
	d.logger.Info("hardware dispatcher started", slog.Int("workers", d.cfg.Workers))

	<-ctx.Done()

	d.mu.Lock()
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("hardware dispatcher stopped")
	case <-time.After(d.cfg.DrainTimeout):
		d.logger.Warn("hardware dispatcher drain timed out",
			slog.Int("pending", len(d.queue)))
	}
	return nil
}

func (d *Dispatcher) work() {
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	if err := d.sender.Post(ctx, n.Path, n.Body); err != nil {
		d.failed.Add(1)
		d.logger.Error("hardware notification failed",
			slog.String("path", n.Path),
			slog.String("error", err.Error()))
		return
	}

	d.sent.Add(1)
	d.logger.Debug("hardware notification sent",
		slog.String("path", n.Path),
		slog.Duration("duration", time.Since(start)))
}

// Stats returns delivery counters
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
	}
}
