package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/Quran-Semantic-Search/pkg/kafka"
)

// Recorder receives events in-process. *Aggregator implements it.
type Recorder interface {
	Record(event SearchEvent)
}

type CollectorOptions struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	// Dropped counts events lost to a full buffer or a failing publisher.
	Dropped prometheus.Counter
}

// Collector moves events off the request path. Track never blocks: when
// the buffer is full the event is dropped and counted. A background loop
// hands each event to the recorder and batches it for the publisher.
// Either sink may be nil.
type Collector struct {
	recorder  Recorder
	publisher kafka.Publisher
	opts      CollectorOptions

	eventCh chan SearchEvent
	pending []kafka.Event
	dropped atomic.Int64

	mu      sync.RWMutex
	closed  bool
	started atomic.Bool
	done    chan struct{}
	logger  *slog.Logger
}

func NewCollector(recorder Recorder, publisher kafka.Publisher, opts CollectorOptions) *Collector {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 1024
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 2 * time.Second
	}
	return &Collector{
		recorder:  recorder,
		publisher: publisher,
		opts:      opts,
		eventCh:   make(chan SearchEvent, opts.BufferSize),
		done:      make(chan struct{}),
		logger:    slog.Default().With("component", "analytics-collector"),
	}
}

// Start launches the background loop. It returns immediately.
func (c *Collector) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go c.run(ctx)
	c.logger.Info("analytics collector started",
		"buffer_size", c.opts.BufferSize,
		"publish", c.publisher != nil,
	)
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.finalFlush()
				return
			}
			c.handle(ctx, event)
		case <-ticker.C:
			c.flush(ctx)
		case <-ctx.Done():
			c.drain()
			c.finalFlush()
			return
		}
	}
}

func (c *Collector) handle(ctx context.Context, event SearchEvent) {
	if c.recorder != nil {
		c.recorder.Record(event)
	}
	if c.publisher == nil {
		return
	}
	c.pending = append(c.pending, kafka.Event{Key: event.Language, Value: event})
	if len(c.pending) >= c.opts.BatchSize {
		c.flush(ctx)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.handle(context.Background(), event)
		default:
			return
		}
	}
}

func (c *Collector) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.flush(ctx)
}

// flush publishes the pending batch. A failed batch is kept for the next
// attempt, bounded at three batches; overflow is dropped.
func (c *Collector) flush(ctx context.Context) {
	if c.publisher == nil || len(c.pending) == 0 {
		return
	}
	if err := c.publisher.PublishBatch(ctx, c.pending); err != nil {
		c.logger.Warn("analytics publish failed", "events", len(c.pending), "error", err)
		if limit := c.opts.BatchSize * 3; len(c.pending) > limit {
			c.countDropped(len(c.pending) - limit)
			c.pending = c.pending[len(c.pending)-limit:]
		}
		return
	}
	c.logger.Debug("analytics batch published", "events", len(c.pending))
	c.pending = c.pending[:0]
}

// Track enqueues event without blocking.
func (c *Collector) Track(event SearchEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.countDropped(1)
		c.logger.Debug("analytics event dropped, buffer full")
	}
}

func (c *Collector) countDropped(n int) {
	c.dropped.Add(int64(n))
	if c.opts.Dropped != nil {
		c.opts.Dropped.Add(float64(n))
	}
}

// Dropped is the number of events lost so far.
func (c *Collector) Dropped() int64 {
	return c.dropped.Load()
}

// Close stops accepting events, processes what is buffered and waits for
// the loop to exit.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.eventCh)
	c.mu.Unlock()

	if c.started.Load() {
		<-c.done
	}
}
