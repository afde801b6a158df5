package hook

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/recognizer"
)

const (
	// DefaultCooldown is the minimum gap between two runs for the same gesture.
	DefaultCooldown = 2 * time.Second

	defaultQueueSize = 16
)

// Dispatcher runs the hooks bound to each recognized gesture. It implements
// recognizer.Publisher; Publish never blocks and hooks run on a single
// background worker in publish order.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	cooldown time.Duration
	now      func() time.Time

	mu     sync.Mutex
	last   map[gesture.Gesture]time.Time
	queue  chan Request
	closed bool
	wg     sync.WaitGroup

	runs     atomic.Int64
	failures atomic.Int64
	dropped  atomic.Int64
}

var _ recognizer.Publisher = (*Dispatcher)(nil)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithCooldown sets the per-gesture cooldown. Zero disables it.
func WithCooldown(d time.Duration) DispatcherOption {
	return func(x *Dispatcher) {
		x.cooldown = d
	}
}

// WithDispatchClock sets the time source used for cooldowns.
func WithDispatchClock(now func() time.Time) DispatcherOption {
	return func(x *Dispatcher) {
		x.now = now
	}
}

// WithQueueSize sets how many pending gestures are buffered before new ones
// are dropped.
func WithQueueSize(n int) DispatcherOption {
	return func(x *Dispatcher) {
		if n > 0 {
			x.queue = make(chan Request, n)
		}
	}
}

// NewDispatcher creates a Dispatcher over the hooks known to m.
func NewDispatcher(m *Manager, e *Executor, opts ...DispatcherOption) *Dispatcher {
	if e == nil {
		e = NewExecutor(DefaultTimeout)
	}
	d := &Dispatcher{
		manager:  m,
		executor: e,
		cooldown: DefaultCooldown,
		now:      time.Now,
		last:     make(map[gesture.Gesture]time.Time),
		queue:    make(chan Request, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the worker. It exits when Close is called; ctx bounds each
// hook run and carries the logger.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for req := range d.queue {
			d.run(ctx, req)
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, req Request) {
	logger := logging.From(ctx)
	for _, h := range d.manager.For(req.Gesture) {
		d.runs.Add(1)
		if _, err := d.executor.Execute(ctx, h, req); err != nil {
			d.failures.Add(1)
			logger.Warn("hook failed",
				"hook", h.Manifest.Name,
				"gesture", req.Gesture.String(),
				"error", err,
			)
			continue
		}
		logger.Debug("hook ran", "hook", h.Manifest.Name, "gesture", req.Gesture.String())
	}
}

// Publish queues res for its hooks. NoHand and Unrecognized results, gestures
// inside their cooldown and results arriving while the queue is full are
// ignored.
func (d *Dispatcher) Publish(res recognizer.Result) {
	if !res.Gesture.Detected() {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	now := d.now()
	if last, ok := d.last[res.Gesture]; ok && d.cooldown > 0 && now.Sub(last) < d.cooldown {
		return
	}

	req := Request{
		ID:        res.ID,
		Gesture:   res.Gesture,
		Distance:  res.Distance,
		Timestamp: res.Timestamp,
	}
	select {
	case d.queue <- req:
		d.last[res.Gesture] = now
	default:
		d.dropped.Add(1)
	}
}

// Close stops accepting results and waits for queued hooks to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Runs returns the number of hook executions started.
func (d *Dispatcher) Runs() int64 { return d.runs.Load() }

// Failures returns the number of hook executions that failed.
func (d *Dispatcher) Failures() int64 { return d.failures.Load() }

// Dropped returns the number of results dropped because the queue was full.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }
