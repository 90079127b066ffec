package chain

import (
	"testing"
	"time"
)

func TestUniform(t *testing.T) {
	for i := 0; i < 3; i++ {
		if ttl := Uniform.LayerTTL(i, 3, time.Minute); ttl != time.Minute {
			t.Errorf("Layer %d: expected 1m, got %v", i, ttl)
		}
	}
}

func TestDecaying(t *testing.T) {
	tests := []struct {
		name     string
		strategy Decaying
		layer    int
		layers   int
		expected time.Duration
	}{
		{"top of three", Decaying{Factor: 0.5}, 0, 3, 15 * time.Second},
		{"middle of three", Decaying{Factor: 0.5}, 1, 3, 30 * time.Second},
		{"bottom of three", Decaying{Factor: 0.5}, 2, 3, time.Minute},
		{"single layer", Decaying{Factor: 0.5}, 0, 1, time.Minute},
		{"invalid factor", Decaying{Factor: 1.5}, 0, 3, time.Minute},
		{"zero factor", Decaying{}, 0, 3, time.Minute},
		{"floor applies", Decaying{Factor: 0.1, Floor: 10 * time.Second}, 0, 3, 10 * time.Second},
		{"floor above base", Decaying{Factor: 0.1, Floor: 2 * time.Minute}, 0, 2, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.strategy.LayerTTL(tt.layer, tt.layers, time.Minute); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestHalving(t *testing.T) {
	if got := Halving.LayerTTL(0, 2, time.Minute); got != 30*time.Second {
		t.Errorf("L1 of two: got %v", got)
	}
	if got := Halving.LayerTTL(0, 2, time.Second); got != time.Second {
		t.Errorf("floor should hold at 1s, got %v", got)
	}
}

func TestPerLayer(t *testing.T) {
	strategy := PerLayer{10 * time.Second, 0}

	if got := strategy.LayerTTL(0, 3, time.Minute); got != 10*time.Second {
		t.Errorf("layer 0: got %v", got)
	}
	if got := strategy.LayerTTL(1, 3, time.Minute); got != time.Minute {
		t.Errorf("zero entry should fall back to base, got %v", got)
	}
	if got := strategy.LayerTTL(2, 3, time.Minute); got != time.Minute {
		t.Errorf("missing entry should fall back to base, got %v", got)
	}
}
