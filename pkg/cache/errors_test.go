package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type namedLayer string

func (n namedLayer) Get(context.Context, string) ([]byte, error) { return nil, ErrKeyNotFound }
func (n namedLayer) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (n namedLayer) Delete(context.Context, string) error { return nil }
func (n namedLayer) Name() string { return string(n) }
func (n namedLayer) Close() error { return nil }

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrKeyNotFound)
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should see through wrapping")
	}
	if IsNotFound(ErrLayerUnavailable) {
		t.Error("unavailable is not a miss")
	}
	if !IsUnavailable(OpError(namedLayer("redis"), "get", ErrLayerUnavailable)) {
		t.Error("IsUnavailable should see through LayerError")
	}
}

func TestOpError(t *testing.T) {
	if OpError(namedLayer("L1"), "get", nil) != nil {
		t.Error("OpError(nil) should be nil")
	}

	err := OpError(namedLayer("L1"), "delete", ErrKeyNotFound)
	if err.Error() != "cache layer L1 delete: cache: key not found" {
		t.Errorf("unexpected message %q", err.Error())
	}

	var le *LayerError
	if !errors.As(err, &le) {
		t.Fatal("Expected a *LayerError")
	}
	if le.Layer != "L1" || le.Op != "delete" {
		t.Errorf("LayerError = %+v", le)
	}
	if !errors.Is(err, ErrKeyNotFound) {
		t.Error("LayerError should unwrap to ErrKeyNotFound")
	}
}
