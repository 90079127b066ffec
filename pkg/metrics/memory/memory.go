package memory

import (
	"sync"
	"time"

	"devapi/pkg/metrics"
)

// MemoryCollector implements MetricsCollector in memory for tests and
// for the CLI's -stats summary.
type MemoryCollector struct {
	mu sync.RWMutex

	// Keyed by transport or cache layer name
	components map[string]*ComponentMetrics

	chainHits        int64
	chainMisses      int64
	chainHitsByLayer map[int]int64
}

// ComponentMetrics holds metrics for one transport or cache layer.
type ComponentMetrics struct {
	// Requests by method and status class ("GET 2xx")
	Requests map[string]int64

	// Errors by error type label
	ErrorsByType map[string]int64

	// Cache layers
	Hits      int64
	Misses    int64
	Sets      int64
	SetErrors int64

	// Circuit breaker
	CircuitState metrics.CircuitState
	CircuitOpens int64

	RequestLatencies []time.Duration
	CacheLatencies   []time.Duration
}

// NewMemoryCollector creates a new in-memory metrics collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{
		components:       make(map[string]*ComponentMetrics),
		chainHitsByLayer: make(map[int]int64),
	}
}

// component returns the metrics for name, creating them if needed.
// Callers must hold mc.mu.
func (mc *MemoryCollector) component(name string) *ComponentMetrics {
	cm, ok := mc.components[name]
	if !ok {
		cm = &ComponentMetrics{
			Requests:     make(map[string]int64),
			ErrorsByType: make(map[string]int64),
		}
		mc.components[name] = cm
	}
	return cm
}

// RecordRequest records a completed transport request.
func (mc *MemoryCollector) RecordRequest(transport, method string, statusCode int, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	cm := mc.component(transport)
	cm.Requests[method+" "+metrics.StatusClass(statusCode)]++
	cm.RequestLatencies = append(cm.RequestLatencies, duration)
}

// RecordRequestError records a request that produced no response.
func (mc *MemoryCollector) RecordRequestError(transport, method, errorType string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.component(transport).ErrorsByType[errorType]++
}

// RecordCircuitState records the current circuit breaker state.
func (mc *MemoryCollector) RecordCircuitState(name string, state metrics.CircuitState) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	cm := mc.component(name)
	if cm.CircuitState != metrics.CircuitOpen && state == metrics.CircuitOpen {
		cm.CircuitOpens++
	}
	cm.CircuitState = state
}

// RecordCacheGet records a cache layer lookup.
func (mc *MemoryCollector) RecordCacheGet(layer string, hit bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	cm := mc.component(layer)
	if hit {
		cm.Hits++
	} else {
		cm.Misses++
	}
	cm.CacheLatencies = append(cm.CacheLatencies, duration)
}

// RecordCacheSet records a cache layer write.
func (mc *MemoryCollector) RecordCacheSet(layer string, success bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	cm := mc.component(layer)
	cm.Sets++
	if !success {
		cm.SetErrors++
	}
	cm.CacheLatencies = append(cm.CacheLatencies, duration)
}

// RecordChainGet records a chain-level lookup.
func (mc *MemoryCollector) RecordChainGet(hit bool, layerIndex int, totalDuration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if hit {
		mc.chainHits++
		mc.chainHitsByLayer[layerIndex]++
	} else {
		mc.chainMisses++
	}
}

// Snapshot is a copy of the collected metrics.
type Snapshot struct {
	Components       map[string]ComponentMetrics
	ChainHits        int64
	ChainMisses      int64
	ChainHitsByLayer map[int]int64
}

// Snapshot returns a copy of the current metrics state.
func (mc *MemoryCollector) Snapshot() Snapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	snapshot := Snapshot{
		Components:       make(map[string]ComponentMetrics, len(mc.components)),
		ChainHits:        mc.chainHits,
		ChainMisses:      mc.chainMisses,
		ChainHitsByLayer: make(map[int]int64, len(mc.chainHitsByLayer)),
	}
	for name, cm := range mc.components {
		snapshot.Components[name] = cm.clone()
	}
	for idx, hits := range mc.chainHitsByLayer {
		snapshot.ChainHitsByLayer[idx] = hits
	}
	return snapshot
}

// Component returns a copy of the metrics for name, or nil.
func (mc *MemoryCollector) Component(name string) *ComponentMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if cm, ok := mc.components[name]; ok {
		c := cm.clone()
		return &c
	}
	return nil
}

// Reset clears all collected metrics.
func (mc *MemoryCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.components = make(map[string]*ComponentMetrics)
	mc.chainHits = 0
	mc.chainMisses = 0
	mc.chainHitsByLayer = make(map[int]int64)
}

func (cm *ComponentMetrics) clone() ComponentMetrics {
	c := *cm
	c.Requests = make(map[string]int64, len(cm.Requests))
	for k, v := range cm.Requests {
		c.Requests[k] = v
	}
	c.ErrorsByType = make(map[string]int64, len(cm.ErrorsByType))
	for k, v := range cm.ErrorsByType {
		c.ErrorsByType[k] = v
	}
	c.RequestLatencies = append([]time.Duration(nil), cm.RequestLatencies...)
	c.CacheLatencies = append([]time.Duration(nil), cm.CacheLatencies...)
	return c
}
