// Package bloom puts a bloom filter of written keys in front of a cache
// layer so requests that were never cached skip the layer entirely.
package bloom

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"devapi/pkg/cache"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	defaultExpected = 10000
	defaultFPRate   = 0.01

	// saturation is how far past the expected key count the filter may
	// grow before it is rebuilt empty
	saturation = 2
)

// Stats reports how often the filter saved a lookup.
type Stats struct {
	TotalQueries   uint64
	BloomRejected  uint64
	FalsePositives uint64
	Rebuilds       uint64

	RejectionRate     float64
	FalsePositiveRate float64
	ApproximateKeys   uint32
}

// Filtered wraps a cache.Layer. A filter cannot forget keys, so deleted
// keys keep reaching the wrapped layer until the filter is rebuilt, either
// by Reset or after it fills up.
type Filtered struct {
	layer    cache.Layer
	expected uint
	fpRate   float64

	mu     sync.RWMutex
	filter *bloom.BloomFilter
	added  uint

	queries        atomic.Uint64
	rejected       atomic.Uint64
	falsePositives atomic.Uint64
	rebuilds       atomic.Uint64
}

// Wrap returns layer behind a filter sized for expected keys at the given
// false positive rate. Zero or out of range values use 10000 and 0.01.
func Wrap(layer cache.Layer, expected uint, fpRate float64) *Filtered {
	if expected == 0 {
		expected = defaultExpected
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = defaultFPRate
	}
	return &Filtered{
		layer:    layer,
		expected: expected,
		fpRate:   fpRate,
		filter:   bloom.NewWithEstimates(expected, fpRate),
	}
}

func (f *Filtered) Name() string {
	return "bloom(" + f.layer.Name() + ")"
}

// Get answers cache.ErrKeyNotFound without touching the wrapped layer when
// the key was never written.
func (f *Filtered) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.queries.Add(1)
	f.mu.RLock()
	known := f.filter.TestString(key)
	f.mu.RUnlock()
	if !known {
		f.rejected.Add(1)
		return nil, cache.ErrKeyNotFound
	}

	value, err := f.layer.Get(ctx, key)
	if cache.IsNotFound(err) {
		f.falsePositives.Add(1)
	}
	return value, err
}

func (f *Filtered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	if f.added >= saturation*f.expected {
		f.filter = bloom.NewWithEstimates(f.expected, f.fpRate)
		f.added = 0
		f.rebuilds.Add(1)
	}
	f.filter.AddString(key)
	f.added++
	f.mu.Unlock()

	return f.layer.Set(ctx, key, value, ttl)
}

func (f *Filtered) Delete(ctx context.Context, key string) error {
	return f.layer.Delete(ctx, key)
}

func (f *Filtered) Close() error {
	return f.layer.Close()
}

// Reset empties the filter and zeroes the statistics.
func (f *Filtered) Reset() {
	f.mu.Lock()
	f.filter = bloom.NewWithEstimates(f.expected, f.fpRate)
	f.added = 0
	f.mu.Unlock()

	f.queries.Store(0)
	f.rejected.Store(0)
	f.falsePositives.Store(0)
	f.rebuilds.Store(0)
}

func (f *Filtered) Stats() Stats {
	s := Stats{
		TotalQueries:   f.queries.Load(),
		BloomRejected:  f.rejected.Load(),
		FalsePositives: f.falsePositives.Load(),
		Rebuilds:       f.rebuilds.Load(),
	}

	f.mu.RLock()
	s.ApproximateKeys = f.filter.ApproximatedSize()
	f.mu.RUnlock()

	if s.TotalQueries > 0 {
		s.RejectionRate = float64(s.BloomRejected) / float64(s.TotalQueries)
	}
	if passed := s.TotalQueries - s.BloomRejected; passed > 0 {
		s.FalsePositiveRate = float64(s.FalsePositives) / float64(passed)
	}
	return s
}
