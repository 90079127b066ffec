package main

import (
	"time"

	"go.uber.org/zap"

	"devapi/pkg/cache"
	"devapi/pkg/cache/bloom"
	"devapi/pkg/cache/memory"
	"devapi/pkg/cache/redis"
	"devapi/pkg/chain"
	"devapi/pkg/config"
	"devapi/pkg/logging"
	"devapi/pkg/metrics"
	"devapi/pkg/resilience"
	"devapi/pkg/transport"
)

// stack is the transport a command talks through plus whatever must be
// closed when the command ends.
type stack struct {
	transport.Transport
	closers []func() error
}

func (s *stack) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// buildStack assembles HTTP, then the circuit breaker when enabled, then the
// response cache when a TTL is set.
func buildStack(cfg config.Config, collector metrics.MetricsCollector) (*stack, error) {
	logger := logging.Global().Named("stack")

	httpTransport, err := transport.NewHTTPTransportWithMetrics(cfg.HTTPConfig(), nil, collector)
	if err != nil {
		return nil, err
	}
	s := &stack{Transport: httpTransport}

	if cfg.API.CircuitBreaker {
		rc := resilience.DefaultConfig()
		if cfg.API.Timeout > 0 {
			rc = rc.WithCallTimeout(cfg.API.Timeout + time.Second)
		}
		s.Transport = resilience.NewResilientTransportWithMetrics(s.Transport, rc, collector)
	}

	if cfg.Cache.TTL <= 0 {
		return s, nil
	}

	l1 := memory.New(memory.Config{
		Name:       "L1-memory",
		MaxEntries: cfg.Cache.Size,
		DefaultTTL: cfg.Cache.TTL,
	})
	expected := uint(max(cfg.Cache.Size, 100))
	layers := []cache.Layer{bloom.Wrap(l1, expected, 0.01)}

	if cfg.Cache.RedisAddr != "" {
		rc := redis.DefaultConfig()
		rc.Name = "L2-redis"
		rc.Addr = cfg.Cache.RedisAddr
		rc.DefaultTTL = cfg.Cache.TTL
		l2, err := redis.New(rc)
		if err != nil {
			logger.Warn("redis cache unavailable, continuing with memory only",
				zap.String("addr", cfg.Cache.RedisAddr),
				zap.Error(err),
			)
		} else {
			layers = append(layers, l2)
		}
	}

	cc := chain.DefaultConfig()
	cc.TTL = cfg.Cache.TTL
	cc.Keyspace = cache.NewKeyspace(cfg.API.BaseURL, cfg.API.Token)
	if len(layers) > 1 {
		cc.TTLStrategy = chain.Halving
	}

	ch, err := chain.NewWithMetrics(s.Transport, cc, collector, layers...)
	if err != nil {
		for _, l := range layers {
			l.Close()
		}
		return nil, err
	}
	logger.Debug("response cache enabled", zap.Stringer("chain", ch))

	s.Transport = ch
	s.closers = append(s.closers, ch.Close)
	return s, nil
}
