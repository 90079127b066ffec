package chain

import "time"

// TTLStrategy picks the TTL a response is stored with in each layer.
// Layer 0 is the fastest layer.
type TTLStrategy interface {
	LayerTTL(layer, layers int, base time.Duration) time.Duration
}

// TTLFunc adapts a function to TTLStrategy.
type TTLFunc func(layer, layers int, base time.Duration) time.Duration

func (f TTLFunc) LayerTTL(layer, layers int, base time.Duration) time.Duration {
	return f(layer, layers, base)
}

// Uniform stores every layer with the base TTL.
var Uniform TTLStrategy = TTLFunc(func(_, _ int, base time.Duration) time.Duration {
	return base
})

// Halving keeps the slowest layer at the base TTL and halves it for each
// layer above, so a process-local copy expires before the shared one.
var Halving TTLStrategy = Decaying{Factor: 0.5, Floor: time.Second}

// Decaying multiplies the TTL by Factor for every layer above the slowest.
// Factors outside (0, 1) leave the base TTL unchanged.
type Decaying struct {
	Factor float64

	// Floor is the shortest TTL handed out; zero means no floor
	Floor time.Duration
}

func (d Decaying) LayerTTL(layer, layers int, base time.Duration) time.Duration {
	if d.Factor <= 0 || d.Factor >= 1 {
		return base
	}

	ttl := float64(base)
	for i := layer; i < layers-1; i++ {
		ttl *= d.Factor
	}
	if out := time.Duration(ttl); out > d.Floor {
		return out
	}
	return min(d.Floor, base)
}

// PerLayer lists explicit TTLs by layer index. Missing or zero entries
// use the base TTL.
type PerLayer []time.Duration

func (p PerLayer) LayerTTL(layer, _ int, base time.Duration) time.Duration {
	if layer < len(p) && p[layer] > 0 {
		return p[layer]
	}
	return base
}
