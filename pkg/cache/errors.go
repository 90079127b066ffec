package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is a cache miss. Layers return it (possibly wrapped)
	// for absent and expired entries alike.
	ErrKeyNotFound = errors.New("cache: key not found")

	ErrInvalidKey = errors.New("cache: invalid key")

	// ErrLayerUnavailable means the backend could not be reached. The
	// chain treats it like a miss and moves on to the next layer.
	ErrLayerUnavailable = errors.New("cache: layer unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

func IsUnavailable(err error) bool {
	return errors.Is(err, ErrLayerUnavailable)
}

// LayerError records which layer failed and during which operation.
type LayerError struct {
	Layer string
	Op    string
	Err   error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("cache layer %s %s: %v", e.Layer, e.Op, e.Err)
}

func (e *LayerError) Unwrap() error {
	return e.Err
}

// OpError returns nil for a nil err, otherwise a *LayerError.
func OpError(layer Layer, op string, err error) error {
	if err == nil {
		return nil
	}
	return &LayerError{Layer: layer.Name(), Op: op, Err: err}
}
