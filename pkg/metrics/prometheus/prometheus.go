package prometheus

import (
	"strconv"
	"time"

	"devapi/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements MetricsCollector for Prometheus.
type PrometheusCollector struct {
	namespace string

	requests      *prometheus.CounterVec
	requestErrors *prometheus.CounterVec
	latency       *prometheus.HistogramVec

	circuitOpens *prometheus.CounterVec
	circuitState *prometheus.GaugeVec

	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	cacheSets    *prometheus.CounterVec
	cacheErrors  *prometheus.CounterVec
	cacheLatency *prometheus.HistogramVec

	chainHits    *prometheus.CounterVec
	chainMisses  prometheus.Counter
	chainLatency *prometheus.HistogramVec
}

// NewPrometheusCollector creates a new Prometheus metrics collector.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		namespace: namespace,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of API requests per transport, method and status class",
			},
			[]string{"transport", "method", "status"},
		),
		requestErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "request_errors_total",
				Help:      "Total number of API requests that produced no response",
			},
			[]string{"transport", "method", "error_type"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "API request latency",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"transport", "method"},
		),
		circuitOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_opens_total",
				Help:      "Total number of circuit breaker opens",
			},
			[]string{"name"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of response cache hits per layer",
			},
			[]string{"layer"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of response cache misses per layer",
			},
			[]string{"layer"},
		),
		cacheSets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_sets_total",
				Help:      "Total number of response cache writes per layer",
			},
			[]string{"layer"},
		),
		cacheErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_errors_total",
				Help:      "Total number of failed response cache writes per layer",
			},
			[]string{"layer"},
		),
		cacheLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cache_duration_seconds",
				Help:      "Response cache operation latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 0.1ms to ~3s
			},
			[]string{"layer", "operation"},
		),
		chainHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chain_hits_total",
				Help:      "Total number of cached GETs served, by layer index",
			},
			[]string{"layer_index"},
		),
		chainMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chain_misses_total",
				Help:      "Total number of GETs that missed every cache layer",
			},
		),
		chainLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chain_get_duration_seconds",
				Help:      "Cached GET latency including the upstream fetch on a miss",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 17),
			},
			[]string{"hit"},
		),
	}
}

// Register registers all metrics with the given registerer.
func (pc *PrometheusCollector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pc.requests,
		pc.requestErrors,
		pc.latency,
		pc.circuitOpens,
		pc.circuitState,
		pc.cacheHits,
		pc.cacheMisses,
		pc.cacheSets,
		pc.cacheErrors,
		pc.cacheLatency,
		pc.chainHits,
		pc.chainMisses,
		pc.chainLatency,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// RecordRequest records a completed request.
func (pc *PrometheusCollector) RecordRequest(transport, method string, statusCode int, duration time.Duration) {
	pc.requests.WithLabelValues(transport, method, metrics.StatusClass(statusCode)).Inc()
	pc.latency.WithLabelValues(transport, method).Observe(duration.Seconds())
}

// RecordRequestError records a request that produced no response.
func (pc *PrometheusCollector) RecordRequestError(transport, method, errorType string) {
	pc.requestErrors.WithLabelValues(transport, method, errorType).Inc()
}

// RecordCircuitState records the current circuit breaker state.
func (pc *PrometheusCollector) RecordCircuitState(name string, state metrics.CircuitState) {
	pc.circuitState.WithLabelValues(name).Set(float64(state))
	if state == metrics.CircuitOpen {
		pc.circuitOpens.WithLabelValues(name).Inc()
	}
}

// RecordCacheGet records a cache layer lookup.
func (pc *PrometheusCollector) RecordCacheGet(layer string, hit bool, duration time.Duration) {
	if hit {
		pc.cacheHits.WithLabelValues(layer).Inc()
	} else {
		pc.cacheMisses.WithLabelValues(layer).Inc()
	}
	pc.cacheLatency.WithLabelValues(layer, "get").Observe(duration.Seconds())
}

// RecordCacheSet records a cache layer write.
func (pc *PrometheusCollector) RecordCacheSet(layer string, success bool, duration time.Duration) {
	pc.cacheSets.WithLabelValues(layer).Inc()
	if !success {
		pc.cacheErrors.WithLabelValues(layer).Inc()
	}
	pc.cacheLatency.WithLabelValues(layer, "set").Observe(duration.Seconds())
}

// RecordChainGet records a chain-level lookup.
func (pc *PrometheusCollector) RecordChainGet(hit bool, layerIndex int, totalDuration time.Duration) {
	if hit {
		pc.chainHits.WithLabelValues(strconv.Itoa(layerIndex)).Inc()
	} else {
		pc.chainMisses.Inc()
	}
	pc.chainLatency.WithLabelValues(strconv.FormatBool(hit)).Observe(totalDuration.Seconds())
}
