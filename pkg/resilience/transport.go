package resilience

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"devapi/pkg/logging"
	"devapi/pkg/metrics"
	"devapi/pkg/transport"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ResilientTransport wraps a Transport with a circuit breaker and a timeout.
// Client errors (4xx) are the caller's fault and do not count against the
// breaker; timeouts, connection failures and 5xx responses do.
type ResilientTransport struct {
	next    transport.Transport
	name    string
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	metrics metrics.MetricsCollector
	logger  *logging.Logger
}

// NewResilientTransport creates a resilient wrapper around next.
func NewResilientTransport(next transport.Transport, config Config) *ResilientTransport {
	return NewResilientTransportWithMetrics(next, config, metrics.NoOpCollector{})
}

// NewResilientTransportWithMetrics creates a resilient wrapper reporting
// circuit breaker state changes to the collector.
func NewResilientTransportWithMetrics(next transport.Transport, config Config, metricsCollector metrics.MetricsCollector) *ResilientTransport {
	name := transport.NameOf(next)
	logger := logging.Global().Named("resilience").Named(name)

	rt := &ResilientTransport{
		next:    next,
		name:    name,
		timeout: config.CallTimeout,
		metrics: metricsCollector,
		logger:  logger,
	}

	logger.Debug("resilient transport initialized",
		zap.Duration("call_timeout", config.CallTimeout),
		zap.Uint32("half_open_probes", config.Breaker.HalfOpenProbes),
		zap.Duration("count_window", config.Breaker.CountWindow),
		zap.Duration("open_for", config.Breaker.OpenFor),
	)

	settings := config.Breaker.settings(name)
	settings.OnStateChange = func(name string, from gobreaker.State, to gobreaker.State) {
		logger.Warn("circuit breaker state changed",
			zap.String("transport", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		rt.metrics.RecordCircuitState(name, circuitState(to))
	}
	rt.cb = gobreaker.NewCircuitBreaker(settings)

	return rt
}

func circuitState(s gobreaker.State) metrics.CircuitState {
	switch s {
	case gobreaker.StateOpen:
		return metrics.CircuitOpen
	case gobreaker.StateHalfOpen:
		return metrics.CircuitHalfOpen
	default:
		return metrics.CircuitClosed
	}
}

// isSuccessful keeps 4xx responses and caller cancellation from tripping the breaker.
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var te *transport.TransportError
	if errors.As(err, &te) {
		return te.ClientError() && te.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// Name returns the name of the wrapped transport.
func (rt *ResilientTransport) Name() string {
	return rt.name
}

// State returns the current circuit breaker state.
func (rt *ResilientTransport) State() metrics.CircuitState {
	return circuitState(rt.cb.State())
}

// Get fetches through the circuit breaker.
func (rt *ResilientTransport) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return rt.execute(ctx, http.MethodGet, path, func(ctx context.Context) (json.RawMessage, error) {
		return rt.next.Get(ctx, path, query)
	})
}

// Post sends through the circuit breaker.
func (rt *ResilientTransport) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return rt.execute(ctx, http.MethodPost, path, func(ctx context.Context) (json.RawMessage, error) {
		return rt.next.Post(ctx, path, body)
	})
}

func (rt *ResilientTransport) execute(ctx context.Context, method, path string, call func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	start := time.Now()

	if rt.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.timeout)
		defer cancel()
	}

	result, err := rt.cb.Execute(func() (interface{}, error) {
		return call(ctx)
	})
	if err == nil {
		return result.(json.RawMessage), nil
	}

	duration := time.Since(start)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		rt.logger.Warn("circuit breaker open - request rejected",
			zap.String("method", method),
			zap.String("path", path),
		)
		rt.metrics.RecordRequestError(rt.name, method, "circuit_breaker_open")
		return nil, transport.WrapError(transport.ErrCircuitOpen, rt.name, method+" "+path)
	case ctx.Err() == context.DeadlineExceeded && !transport.IsTimeout(err):
		rt.logger.Warn("operation timeout",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("timeout", rt.timeout),
			zap.Duration("elapsed", duration),
		)
		return nil, transport.WrapError(errors.Join(transport.ErrTimeout, err), rt.name, method+" "+path)
	}

	return nil, err
}
