// Package metrics defines the hooks the transports, the breaker and the
// response cache report through. Backends live in the memory and
// prometheus subpackages.
package metrics

import (
	"strconv"
	"time"
)

// RequestRecorder observes calls made by a transport. transport names the
// component, e.g. "http" or "sandbox".
type RequestRecorder interface {
	RecordRequest(transport, method string, statusCode int, duration time.Duration)
	RecordRequestError(transport, method, errorType string)
}

// BreakerRecorder observes circuit breaker transitions.
type BreakerRecorder interface {
	RecordCircuitState(name string, state CircuitState)
}

// CacheRecorder observes the response cache. layerIndex is -1 when a
// chain lookup missed every layer.
type CacheRecorder interface {
	RecordCacheGet(layer string, hit bool, duration time.Duration)
	RecordCacheSet(layer string, success bool, duration time.Duration)
	RecordChainGet(hit bool, layerIndex int, totalDuration time.Duration)
}

// MetricsCollector is implemented by every backend.
type MetricsCollector interface {
	RequestRecorder
	BreakerRecorder
	CacheRecorder
}

// CircuitState is the state reported by RecordCircuitState.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

var circuitStateNames = [...]string{
	CircuitClosed:   "closed",
	CircuitOpen:     "open",
	CircuitHalfOpen: "half-open",
}

func (s CircuitState) String() string {
	if s < 0 || int(s) >= len(circuitStateNames) {
		return "unknown"
	}
	return circuitStateNames[s]
}

// StatusClass buckets an HTTP status code into "2xx", "4xx", etc.
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// NoOpCollector discards everything. Components fall back to it when no
// collector is given.
type NoOpCollector struct{}

var _ MetricsCollector = NoOpCollector{}

func (NoOpCollector) RecordRequest(string, string, int, time.Duration) {}
func (NoOpCollector) RecordRequestError(string, string, string) {}
func (NoOpCollector) RecordCircuitState(string, CircuitState) {}
func (NoOpCollector) RecordCacheGet(string, bool, time.Duration) {}
func (NoOpCollector) RecordCacheSet(string, bool, time.Duration) {}
func (NoOpCollector) RecordChainGet(bool, int, time.Duration) {}
