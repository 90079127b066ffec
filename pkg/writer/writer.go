// Package writer applies cache writes in the background so storing a
// response never delays the GET that fetched it.
package writer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"devapi/pkg/cache"
	"devapi/pkg/logging"
	"devapi/pkg/metrics"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Write when the queue stayed full for MaxWait
	ErrQueueFull = errors.New("writer: queue full, write dropped")

	// ErrClosed is returned by Write after Close
	ErrClosed = errors.New("writer: closed")

	// ErrFlushTimeout is returned by Flush when writes are still pending
	ErrFlushTimeout = errors.New("writer: flush timed out")
)

// Config configures a Writer.
type Config struct {
	// QueueSize bounds the number of distinct keys waiting (default 1000)
	QueueSize int

	// Workers is the number of goroutines calling Set (default 2)
	Workers int

	// MaxWait is how long Write blocks on a full queue before dropping
	// the write (default 10ms)
	MaxWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 1000
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 10 * time.Millisecond
	}
	return c
}

// Stats counts writes since the Writer started.
type Stats struct {
	Queued    int   // keys waiting for a worker
	Accepted  int64 // writes that entered the queue
	Coalesced int64 // writes that replaced a queued value for the same key
	Dropped   int64 // writes rejected with ErrQueueFull
	Failed    int64 // writes the layer refused
}

type pendingWrite struct {
	value []byte
	ttl   time.Duration
}

// Writer feeds one cache layer from a bounded queue of keys. A key that is
// written again before a worker reaches it is stored once, with the newest
// value.
type Writer struct {
	layer   cache.Layer
	config  Config
	metrics metrics.MetricsCollector
	logger  *logging.Logger

	keys chan string

	mu      sync.Mutex
	pending map[string]pendingWrite
	closed  bool

	// outstanding counts writes accepted but not yet applied
	outstanding atomic.Int64

	accepted  atomic.Int64
	coalesced atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New starts a Writer for layer without metrics. Close stops it.
func New(layer cache.Layer, config Config) *Writer {
	return NewWithMetrics(layer, config, metrics.NoOpCollector{})
}

// NewWithMetrics reports every applied write as a cache set on the layer.
func NewWithMetrics(layer cache.Layer, config Config, collector metrics.MetricsCollector) *Writer {
	config = config.withDefaults()

	w := &Writer{
		layer:   layer,
		config:  config,
		metrics: collector,
		logger:  logging.Global().Named("writer").Named(layer.Name()),
		keys:    make(chan string, config.QueueSize),
		pending: make(map[string]pendingWrite),
	}

	w.wg.Add(config.Workers)
	for range config.Workers {
		go w.work()
	}
	return w
}

// Write queues value for key. A full queue blocks for at most MaxWait.
func (w *Writer) Write(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if _, queued := w.pending[key]; queued {
		w.pending[key] = pendingWrite{value: value, ttl: ttl}
		w.coalesced.Add(1)
		return nil
	}

	timer := time.NewTimer(w.config.MaxWait)
	defer timer.Stop()

	select {
	case w.keys <- key:
	case <-timer.C:
		w.dropped.Add(1)
		w.logger.Debug("write dropped", zap.String("key", key))
		return ErrQueueFull
	case <-ctx.Done():
		return ctx.Err()
	}

	w.pending[key] = pendingWrite{value: value, ttl: ttl}
	w.outstanding.Add(1)
	w.accepted.Add(1)
	return nil
}

func (w *Writer) work() {
	defer w.wg.Done()
	for key := range w.keys {
		w.apply(key)
	}
}

func (w *Writer) apply(key string) {
	defer w.outstanding.Add(-1)

	w.mu.Lock()
	pw := w.pending[key]
	delete(w.pending, key)
	w.mu.Unlock()

	start := time.Now()
	err := w.layer.Set(context.Background(), key, pw.value, pw.ttl)
	w.metrics.RecordCacheSet(w.layer.Name(), err == nil, time.Since(start))

	if err != nil {
		w.failed.Add(1)
		w.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Flush waits until every accepted write has been applied.
func (w *Writer) Flush(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for w.outstanding.Load() > 0 {
		if time.Now().After(deadline) {
			return ErrFlushTimeout
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// Close rejects new writes, applies the queued ones and stops the workers.
// Safe to call twice.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.keys)
		w.mu.Unlock()
		w.wg.Wait()
	})
	return nil
}

func (w *Writer) Stats() Stats {
	w.mu.Lock()
	queued := len(w.pending)
	w.mu.Unlock()

	return Stats{
		Queued:    queued,
		Accepted:  w.accepted.Load(),
		Coalesced: w.coalesced.Load(),
		Dropped:   w.dropped.Load(),
		Failed:    w.failed.Load(),
	}
}
