package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"devapi/pkg/cache"
	"devapi/pkg/logging"
	"devapi/pkg/metrics"
	"devapi/pkg/transport"
	"devapi/pkg/writer"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Config configures the caching transport.
type Config struct {
	// TTL is how long a GET response stays cached
	TTL time.Duration

	// TTLStrategy derives each layer's TTL from TTL (default: uniform)
	TTLStrategy TTLStrategy

	// Keyspace scopes cache keys, so callers with different credentials
	// sharing a layer never see each other's responses
	Keyspace cache.Keyspace

	// Writer configures the per-layer background writers
	Writer writer.Config
}

// DefaultConfig returns a one minute uniform TTL.
func DefaultConfig() Config {
	return Config{
		TTL:         time.Minute,
		TTLStrategy: Uniform,
	}
}

// Chain is a Transport that answers GETs from an ordered list of cache
// layers before asking the wrapped transport. Layers are ordered from
// fastest (L1) to slowest (LN). A hit in a lower layer warms the layers
// above it; a full miss stores the upstream response in every layer.
// POSTs always go upstream. Entries are only invalidated by TTL or
// Invalidate.
type Chain struct {
	next    transport.Transport
	layers  []cache.Layer
	writers []*writer.Writer
	sf      singleflight.Group
	config  Config
	metrics metrics.MetricsCollector
	logger  *logging.Logger
}

// New creates a caching transport in front of next.
// Returns an error if no layers are provided.
func New(next transport.Transport, config Config, layers ...cache.Layer) (*Chain, error) {
	return NewWithMetrics(next, config, metrics.NoOpCollector{}, layers...)
}

// NewWithMetrics creates a caching transport reporting layer and chain
// lookups to the collector.
func NewWithMetrics(next transport.Transport, config Config, collector metrics.MetricsCollector, layers ...cache.Layer) (*Chain, error) {
	if next == nil {
		return nil, errors.New("chain: transport required")
	}
	if len(layers) == 0 {
		return nil, errors.New("chain: at least one layer required")
	}
	if config.TTL <= 0 {
		config.TTL = DefaultConfig().TTL
	}
	if config.TTLStrategy == nil {
		config.TTLStrategy = Uniform
	}

	writers := make([]*writer.Writer, len(layers))
	for i, layer := range layers {
		writers[i] = writer.NewWithMetrics(layer, config.Writer, collector)
	}

	return &Chain{
		next:    next,
		layers:  layers,
		writers: writers,
		config:  config,
		metrics: collector,
		logger:  logging.Global().Named("chain"),
	}, nil
}

// Name returns the name of the wrapped transport.
func (c *Chain) Name() string {
	return transport.NameOf(c.next)
}

// Get serves path from the first layer that has it, otherwise fetches it
// from the wrapped transport and caches a successful response. Concurrent
// Gets for the same request share one lookup.
func (c *Chain) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := c.config.Keyspace.RequestKey(path, query)
	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		return c.getWithFallback(ctx, key, path, query)
	})
	if err != nil {
		return nil, err
	}

	return result.(json.RawMessage), nil
}

func (c *Chain) getWithFallback(ctx context.Context, key, path string, query url.Values) (json.RawMessage, error) {
	start := time.Now()

	for i, layer := range c.layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		layerStart := time.Now()
		value, err := layer.Get(ctx, key)
		c.metrics.RecordCacheGet(layer.Name(), err == nil, time.Since(layerStart))
		if err != nil {
			if !cache.IsNotFound(err) {
				c.logger.Warn("cache layer failed, skipping",
					zap.String("layer", layer.Name()),
					zap.String("key", key),
					zap.Error(err),
				)
			}
			continue
		}

		if i > 0 {
			c.store(ctx, key, value, i)
		}
		c.metrics.RecordChainGet(true, i, time.Since(start))
		return json.RawMessage(value), nil
	}

	body, err := c.next.Get(ctx, path, query)
	c.metrics.RecordChainGet(false, -1, time.Since(start))
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, body, len(c.layers))
	return body, nil
}

// store queues value into every layer above limit.
func (c *Chain) store(ctx context.Context, key string, value []byte, limit int) {
	for i := limit - 1; i >= 0; i-- {
		ttl := c.config.TTLStrategy.LayerTTL(i, len(c.layers), c.config.TTL)
		if err := c.writers[i].Write(ctx, key, value, ttl); err != nil {
			c.logger.Debug("cache write skipped",
				zap.String("layer", c.layers[i].Name()),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}

// Post passes through to the wrapped transport.
func (c *Chain) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.next.Post(ctx, path, body)
}

// Invalidate removes the cached response for a GET of path with query
// from every layer.
func (c *Chain) Invalidate(ctx context.Context, path string, query url.Values) error {
	key := c.config.Keyspace.RequestKey(path, query)

	var errs []error
	for _, layer := range c.layers {
		if err := layer.Delete(ctx, key); err != nil {
			errs = append(errs, cache.OpError(layer, "delete", err))
		}
	}
	return errors.Join(errs...)
}

// Flush waits for queued cache writes to land.
func (c *Chain) Flush(timeout time.Duration) error {
	for _, w := range c.writers {
		if err := w.Flush(timeout); err != nil {
			return err
		}
	}
	return nil
}

// Close drains the writers and closes all layers. The wrapped transport is
// not closed. Returns the joined errors of every layer.
func (c *Chain) Close() error {
	for _, w := range c.writers {
		w.Close()
	}

	var errs []error
	for _, layer := range c.layers {
		if err := layer.Close(); err != nil {
			errs = append(errs, cache.OpError(layer, "close", err))
		}
	}
	return errors.Join(errs...)
}

// Layers returns a copy of the layers slice for inspection.
func (c *Chain) Layers() []cache.Layer {
	layers := make([]cache.Layer, len(c.layers))
	copy(layers, c.layers)
	return layers
}

// Len returns the number of layers in the chain.
func (c *Chain) Len() int {
	return len(c.layers)
}

// String returns a string representation of the chain.
func (c *Chain) String() string {
	names := make([]string, 0, len(c.layers)+1)
	for _, layer := range c.layers {
		names = append(names, layer.Name())
	}
	names = append(names, c.Name())
	return fmt.Sprintf("chain(%d layers): %s", len(c.layers), strings.Join(names, " -> "))
}
