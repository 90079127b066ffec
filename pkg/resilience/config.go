package resilience

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// Counts is the breaker's view of recent calls within the count window.
type Counts = gobreaker.Counts

// TripPolicy decides from the current counts whether the breaker opens.
// It is consulted after every failed call.
type TripPolicy func(Counts) bool

// ConsecutiveFailures opens the breaker after n failures in a row.
func ConsecutiveFailures(n uint32) TripPolicy {
	return func(c Counts) bool {
		return c.ConsecutiveFailures >= n
	}
}

// FailureRatio opens the breaker once at least minRequests calls were seen
// in the window and the share of failures reaches ratio.
func FailureRatio(minRequests uint32, ratio float64) TripPolicy {
	return func(c Counts) bool {
		if c.Requests < minRequests || c.Requests == 0 {
			return false
		}
		return float64(c.TotalFailures)/float64(c.Requests) >= ratio
	}
}

// Config configures a ResilientTransport.
type Config struct {
	// CallTimeout bounds each call including time spent in the breaker.
	// Zero leaves it to the wrapped transport.
	CallTimeout time.Duration

	Breaker BreakerConfig
}

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	// HalfOpenProbes is how many calls may pass while half-open (default 1)
	HalfOpenProbes uint32

	// CountWindow is how often counts reset while closed. Zero never resets.
	CountWindow time.Duration

	// OpenFor is how long the breaker rejects calls before probing
	OpenFor time.Duration

	// Trip decides when to open; nil means ConsecutiveFailures(5)
	Trip TripPolicy
}

// DefaultConfig suits the sandbox API: the breaker opens after 5
// consecutive server-side failures and probes again after 30 seconds.
func DefaultConfig() Config {
	return Config{
		CallTimeout: 15 * time.Second,
		Breaker: BreakerConfig{
			HalfOpenProbes: 1,
			CountWindow:    time.Minute,
			OpenFor:        30 * time.Second,
			Trip:           ConsecutiveFailures(5),
		},
	}
}

// WithCallTimeout returns a copy with the given per-call timeout.
func (c Config) WithCallTimeout(timeout time.Duration) Config {
	c.CallTimeout = timeout
	return c
}

// WithOpenFor returns a copy with the given open period.
func (c Config) WithOpenFor(d time.Duration) Config {
	c.Breaker.OpenFor = d
	return c
}

// WithTrip returns a copy with the given trip policy.
func (c Config) WithTrip(trip TripPolicy) Config {
	c.Breaker.Trip = trip
	return c
}

// Validate rejects negative durations.
func (c Config) Validate() error {
	var errs []error
	if c.CallTimeout < 0 {
		errs = append(errs, errors.New("resilience: call timeout must not be negative"))
	}
	if c.Breaker.CountWindow < 0 {
		errs = append(errs, errors.New("resilience: count window must not be negative"))
	}
	if c.Breaker.OpenFor < 0 {
		errs = append(errs, errors.New("resilience: open period must not be negative"))
	}
	return errors.Join(errs...)
}

func (b BreakerConfig) settings(name string) gobreaker.Settings {
	trip := b.Trip
	if trip == nil {
		trip = ConsecutiveFailures(5)
	}
	probes := b.HalfOpenProbes
	if probes == 0 {
		probes = 1
	}
	return gobreaker.Settings{
		Name:         name,
		MaxRequests:  probes,
		Interval:     b.CountWindow,
		Timeout:      b.OpenFor,
		ReadyToTrip:  trip,
		IsSuccessful: isSuccessful,
	}
}
